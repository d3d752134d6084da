package minimeta

import (
	"reflect"
	"strconv"
	"unsafe"

	"gopkg.in/yaml.v3"
)

// sequenceActions handles slices and fixed-size arrays of one serializable
// element type. Both forms write count:u64 followed by the elements; arrays
// only accept their own length back.
type sequenceActions struct {
	td *TypeDescriptor
}

// elems returns the address of the first element and the element count.
func (a sequenceActions) elems(p unsafe.Pointer) (unsafe.Pointer, int) {
	rt := a.td.goType
	if rt.Kind() == reflect.Array {
		return p, rt.Len()
	}
	sv := reflect.NewAt(rt, p).Elem()
	return sv.UnsafePointer(), sv.Len()
}

// alloc sizes the destination for n elements and returns the base address.
// A slice of length zero is set to nil, or to an empty non-nil slice when
// keepEmpty is set.
func (a sequenceActions) alloc(p unsafe.Pointer, n int, keepEmpty bool) (unsafe.Pointer, error) {
	rt := a.td.goType
	if rt.Kind() == reflect.Array {
		if n != rt.Len() {
			return nil, malformed(PhaseDecode, a.td.name, "array of length %d cannot hold %d elements", rt.Len(), n)
		}
		return p, nil
	}
	sv := reflect.NewAt(rt, p).Elem()
	if n == 0 {
		if keepEmpty {
			sv.Set(reflect.MakeSlice(rt, 0, 0))
		} else {
			sv.SetZero()
		}
		return nil, nil
	}
	sv.Set(reflect.MakeSlice(rt, n, n))
	return sv.UnsafePointer(), nil
}

func (a sequenceActions) at(base unsafe.Pointer, i int) unsafe.Pointer {
	return unsafe.Add(base, uintptr(i)*uintptr(a.td.elem.size))
}

func (a sequenceActions) WriteBinary(e *Encoder, f *FieldDescriptor, src unsafe.Pointer) error {
	base, n := a.elems(src)
	e.writeUint64(uint64(n))
	elem := a.td.elem
	for i := 0; i < n; i++ {
		if err := elem.actions.WriteBinary(e, f, a.at(base, i)); err != nil {
			return atPath(err, strconv.Itoa(i))
		}
	}
	return nil
}

func (a sequenceActions) ReadBinary(d *Decoder, f *FieldDescriptor, dst unsafe.Pointer) error {
	if err := d.enter(a.td.name); err != nil {
		return err
	}
	defer d.leave()
	n, err := d.readCount(a.td.name, a.td.elem.minSize)
	if err != nil {
		return err
	}
	base, err := a.alloc(dst, n, false)
	if err != nil {
		return err
	}
	elem := a.td.elem
	for i := 0; i < n; i++ {
		if err := elem.actions.ReadBinary(d, f, a.at(base, i)); err != nil {
			return atPath(err, strconv.Itoa(i))
		}
	}
	return nil
}

func (a sequenceActions) WriteTree(_ *FieldDescriptor, src unsafe.Pointer, to *yaml.Node) error {
	base, n := a.elems(src)
	*to = yaml.Node{Kind: yaml.SequenceNode, Tag: tagSeq, Content: make([]*yaml.Node, 0, n)}
	elem := a.td.elem
	for i := 0; i < n; i++ {
		child := &yaml.Node{}
		if err := elem.actions.WriteTree(nil, a.at(base, i), child); err != nil {
			return atPath(err, strconv.Itoa(i))
		}
		to.Content = append(to.Content, child)
	}
	return nil
}

func (a sequenceActions) ReadTree(_ *FieldDescriptor, from *yaml.Node, dst unsafe.Pointer) error {
	n := resolve(from)
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		return malformed(PhaseDecode, a.td.name, "expected sequence node, got %s", kindName(n))
	}
	// the tree distinguishes an empty sequence from an absent or null one
	base, err := a.alloc(dst, len(n.Content), true)
	if err != nil {
		return err
	}
	elem := a.td.elem
	for i, child := range n.Content {
		if err := elem.actions.ReadTree(nil, child, a.at(base, i)); err != nil {
			return atPath(err, strconv.Itoa(i))
		}
	}
	return nil
}
