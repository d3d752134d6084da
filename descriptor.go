package minimeta

import (
	"fmt"
	"io"
	"reflect"
	"unsafe"

	"gopkg.in/yaml.v3"
)

// Actions is the per-type operation table. f is the field through which the
// value is reached, or nil for a root value; src and dst point at the
// value's in-memory representation.
type Actions interface {
	WriteBinary(e *Encoder, f *FieldDescriptor, src unsafe.Pointer) error
	ReadBinary(d *Decoder, f *FieldDescriptor, dst unsafe.Pointer) error
	WriteTree(f *FieldDescriptor, src unsafe.Pointer, to *yaml.Node) error
	ReadTree(f *FieldDescriptor, from *yaml.Node, dst unsafe.Pointer) error
}

// TypeDescriptor identifies one type: name, in-memory size, identity hash and
// operation table. Descriptors are immutable once the registry is built.
type TypeDescriptor struct {
	name     string
	size     uint64
	identity uint64
	category Category
	goType   reflect.Type
	actions  Actions
	minSize  uint64 // fewest bytes any binary encoding of the type occupies

	elem  *TypeDescriptor  // Sequence and Text
	class *ClassDescriptor // Composite
}

func (t *TypeDescriptor) Name() string            { return t.name }
func (t *TypeDescriptor) Size() uint64            { return t.size }
func (t *TypeDescriptor) Identity() uint64        { return t.identity }
func (t *TypeDescriptor) Category() Category      { return t.category }
func (t *TypeDescriptor) GoType() reflect.Type    { return t.goType }
func (t *TypeDescriptor) Actions() Actions        { return t.actions }
func (t *TypeDescriptor) Elem() *TypeDescriptor   { return t.elem }
func (t *TypeDescriptor) Class() *ClassDescriptor { return t.class }

// MinEncodedSize is the smallest number of bytes a binary encoding of this
// type can occupy. Decoders use it to reject sequence counts the remaining
// input cannot hold before allocating.
func (t *TypeDescriptor) MinEncodedSize() uint64 { return t.minSize }

// Serializable reports whether values of this type take part in encoding.
func (t *TypeDescriptor) Serializable() bool { return t.category != Opaque }

// Same reports whether both descriptors denote the same type.
func (t *TypeDescriptor) Same(o *TypeDescriptor) bool {
	return o != nil && t.identity == o.identity
}

func (t *TypeDescriptor) String() string {
	return fmt.Sprintf("type: name => %s, size => %d, hash => %d, category => %s", t.name, t.size, t.identity, t.category)
}

// FieldDescriptor describes one member of a composite.
type FieldDescriptor struct {
	name   string
	typ    *TypeDescriptor
	offset uint64
}

func (f *FieldDescriptor) Name() string          { return f.name }
func (f *FieldDescriptor) Type() *TypeDescriptor { return f.typ }
func (f *FieldDescriptor) Offset() uint64        { return f.offset }

// Hash is the identity of the field's type.
func (f *FieldDescriptor) Hash() uint64 { return f.typ.identity }

// Pointer returns the address of this field inside the composite at base.
func (f *FieldDescriptor) Pointer(base unsafe.Pointer) unsafe.Pointer {
	return unsafe.Add(base, uintptr(f.offset))
}

// ClassDescriptor is the ordered field list and schema version of a
// composite type.
type ClassDescriptor struct {
	fields  []*FieldDescriptor
	byName  map[string]*FieldDescriptor
	version uint64
}

// Fields returns the fields in declaration order. The slice must not be
// modified.
func (c *ClassDescriptor) Fields() []*FieldDescriptor { return c.fields }
func (c *ClassDescriptor) FieldCount() int            { return len(c.fields) }
func (c *ClassDescriptor) Version() uint64            { return c.version }

// Field looks up a field by name.
func (c *ClassDescriptor) Field(name string) (*FieldDescriptor, bool) {
	f, ok := c.byName[name]
	return f, ok
}

// Dump writes a human readable description of the class.
func (c *ClassDescriptor) Dump(w io.Writer) {
	fmt.Fprintf(w, "class: num_fields => %d, version => %#016x\n", len(c.fields), c.version)
	for _, f := range c.fields {
		fmt.Fprintf(w, "  field: name => %s, type => %s, offset => %d, %s\n", f.name, f.typ.name, f.offset, f.typ.category)
	}
}
