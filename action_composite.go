package minimeta

import (
	"unsafe"

	"gopkg.in/yaml.v3"
)

// compositeActions recurses into the fields of a registered struct. The
// binary form is prefixed with the class version; the tree form is a mapping
// keyed by field name and is not version checked.
type compositeActions struct {
	td *TypeDescriptor
}

func (a compositeActions) WriteBinary(e *Encoder, _ *FieldDescriptor, src unsafe.Pointer) error {
	c := a.td.class
	e.writeUint64(c.version)
	for _, f := range c.fields {
		if f.typ.category == Opaque {
			continue
		}
		if err := f.typ.actions.WriteBinary(e, f, f.Pointer(src)); err != nil {
			return atPath(err, f.name)
		}
	}
	return nil
}

func (a compositeActions) ReadBinary(d *Decoder, _ *FieldDescriptor, dst unsafe.Pointer) error {
	if err := d.enter(a.td.name); err != nil {
		return err
	}
	defer d.leave()
	c := a.td.class
	got, err := d.readUint64(a.td.name)
	if err != nil {
		return err
	}
	if got != c.version {
		return schemaMismatch(a.td.name, c.version, got)
	}
	for _, f := range c.fields {
		if f.typ.category == Opaque {
			continue
		}
		if err := f.typ.actions.ReadBinary(d, f, f.Pointer(dst)); err != nil {
			return atPath(err, f.name)
		}
	}
	return nil
}

// WriteTree fills to as a mapping. An existing mapping (a reused root) keeps
// its other keys; anything else is replaced.
func (a compositeActions) WriteTree(_ *FieldDescriptor, src unsafe.Pointer, to *yaml.Node) error {
	if to.Kind != yaml.MappingNode {
		*to = yaml.Node{Kind: yaml.MappingNode, Tag: tagMap}
	}
	for _, f := range a.td.class.fields {
		if f.typ.category == Opaque {
			continue
		}
		if err := f.typ.actions.WriteTree(f, f.Pointer(src), mappingValue(to, f.name)); err != nil {
			return atPath(err, f.name)
		}
	}
	return nil
}

func (a compositeActions) ReadTree(_ *FieldDescriptor, from *yaml.Node, dst unsafe.Pointer) error {
	n := resolve(from)
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return malformed(PhaseDecode, a.td.name, "expected mapping node, got %s", kindName(n))
	}
	for _, f := range a.td.class.fields {
		if f.typ.category == Opaque {
			continue
		}
		v := lookupKey(n, f.name)
		if v == nil {
			continue
		}
		if err := f.typ.actions.ReadTree(f, v, f.Pointer(dst)); err != nil {
			return atPath(err, f.name)
		}
	}
	return nil
}

// mappingValue returns the value node stored under key in mapping m,
// appending an empty one when the key is absent.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if v := lookupKey(m, key); v != nil {
		return v
	}
	k := &yaml.Node{Kind: yaml.ScalarNode, Tag: tagStr, Value: key}
	v := &yaml.Node{}
	m.Content = append(m.Content, k, v)
	return v
}

// lookupKey returns the value stored under key, or nil. The last occurrence
// wins for duplicated keys.
func lookupKey(m *yaml.Node, key string) *yaml.Node {
	var found *yaml.Node
	for i := 0; i+1 < len(m.Content); i += 2 {
		if k := resolve(m.Content[i]); k != nil && k.Kind == yaml.ScalarNode && k.Value == key {
			found = m.Content[i+1]
		}
	}
	return found
}
