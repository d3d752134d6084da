package minimeta

import (
	"unsafe"

	"gopkg.in/yaml.v3"
)

// textActions encodes strings as a sequence of bytes in the binary form and
// as a single scalar in the tree form.
type textActions struct {
	td *TypeDescriptor
}

func (a textActions) WriteBinary(e *Encoder, _ *FieldDescriptor, src unsafe.Pointer) error {
	s := *(*string)(src)
	e.writeUint64(uint64(len(s)))
	e.buf = append(e.buf, s...)
	return nil
}

func (a textActions) ReadBinary(d *Decoder, _ *FieldDescriptor, dst unsafe.Pointer) error {
	n, err := d.readCount(a.td.name, 1)
	if err != nil {
		return err
	}
	p, err := d.readRaw(a.td.name, n)
	if err != nil {
		return err
	}
	*(*string)(dst) = string(p)
	return nil
}

func (a textActions) WriteTree(_ *FieldDescriptor, src unsafe.Pointer, to *yaml.Node) error {
	setScalar(to, scalar{tagStr, *(*string)(src)})
	return nil
}

func (a textActions) ReadTree(_ *FieldDescriptor, from *yaml.Node, dst unsafe.Pointer) error {
	n := resolve(from)
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.ScalarNode {
		return malformed(PhaseDecode, a.td.name, "expected scalar node, got %s", kindName(n))
	}
	*(*string)(dst) = n.Value
	return nil
}
