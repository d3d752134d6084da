package minimeta

import (
	"reflect"
	"unsafe"

	"gopkg.in/yaml.v3"
)

// SerializeTree returns the tree form of v: a mapping for composites, a
// sequence for slices and arrays, a scalar otherwise.
func SerializeTree[T any](r *Registry, v T) (*yaml.Node, error) {
	td, err := TypeDescriptorOf[T](r)
	if err != nil {
		return nil, err
	}
	root := &yaml.Node{}
	if err := td.actions.WriteTree(nil, unsafe.Pointer(&v), root); err != nil {
		return nil, err
	}
	return root, nil
}

// DeserializeTree builds a T from node. Keys absent from the tree leave the
// corresponding fields at their zero value.
func DeserializeTree[T any](r *Registry, node *yaml.Node) (T, error) {
	var v T
	td, err := TypeDescriptorOf[T](r)
	if err != nil {
		return v, err
	}
	if err := td.actions.ReadTree(nil, node, unsafe.Pointer(&v)); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// EncodeTree writes v into root. When root already is a mapping (or a
// document holding one) and v is a composite, v's fields are set on it and
// unrelated keys are kept.
func (r *Registry) EncodeTree(v any, root *yaml.Node) error {
	if v == nil || root == nil {
		return newError(PhaseEncode, KindRegistration).detail("EncodeTree requires a value and a root node").build()
	}
	rv := reflect.ValueOf(v)
	td, err := r.TypeOf(rv.Type())
	if err != nil {
		return err
	}
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	return td.actions.WriteTree(nil, p.UnsafePointer(), root)
}

// DecodeTree reads node into the value out points to, which is reset to its
// zero value first.
func (r *Registry) DecodeTree(node *yaml.Node, out any) error {
	rv := reflect.ValueOf(out)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return newError(PhaseDecode, KindRegistration).detail("DecodeTree requires a non-nil pointer, got %T", out).build()
	}
	td, err := r.TypeOf(rv.Type().Elem())
	if err != nil {
		return err
	}
	tmp := reflect.New(td.goType)
	if err := td.actions.ReadTree(nil, node, tmp.UnsafePointer()); err != nil {
		return err
	}
	rv.Elem().Set(tmp.Elem())
	return nil
}
