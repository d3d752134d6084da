package minimeta

import (
	"unsafe"

	"gopkg.in/yaml.v3"
)

// opaqueActions belong to types outside the serializable set. Composites
// skip such fields before dispatching, so these are only reached by a
// caller driving Actions directly; they occupy zero bytes and no node.
type opaqueActions struct{}

func (opaqueActions) WriteBinary(*Encoder, *FieldDescriptor, unsafe.Pointer) error { return nil }
func (opaqueActions) ReadBinary(*Decoder, *FieldDescriptor, unsafe.Pointer) error  { return nil }
func (opaqueActions) WriteTree(*FieldDescriptor, unsafe.Pointer, *yaml.Node) error { return nil }
func (opaqueActions) ReadTree(*FieldDescriptor, *yaml.Node, unsafe.Pointer) error  { return nil }
