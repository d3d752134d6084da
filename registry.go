package minimeta

import (
	"fmt"
	"io"
	"math"
	"math/bits"
	"reflect"
	"sort"
	"sync"
)

// Registry maps Go types to their descriptors. It is produced by
// Builder.Build and is read-only afterwards, so concurrent encode and
// decode calls on different values need no locking.
type Registry struct {
	opts       Options
	composites map[reflect.Type]*TypeDescriptor
	byIdentity map[uint64]*TypeDescriptor
	derived    sync.Map // reflect.Type -> *TypeDescriptor, non-composite types
}

func newRegistry(opts Options) *Registry {
	return &Registry{
		opts:       opts,
		composites: make(map[reflect.Type]*TypeDescriptor),
		byIdentity: make(map[uint64]*TypeDescriptor),
	}
}

// TypeOf returns the descriptor for rt. Unregistered structs and opaque
// types fail with a registration error.
func (r *Registry) TypeOf(rt reflect.Type) (*TypeDescriptor, error) {
	if rt == nil {
		return nil, newError(PhaseRegister, KindRegistration).detail("nil type").build()
	}
	if td, ok := r.composites[rt]; ok {
		return td, nil
	}
	if rt.Kind() == reflect.Struct {
		return nil, newError(PhaseRegister, KindRegistration).typ(typeName(rt)).
			detail("struct type was never registered").build()
	}
	td := r.derive(rt, nil)
	if td.category == Opaque {
		return nil, newError(PhaseRegister, KindRegistration).typ(td.name).
			detail("unsupported type").build()
	}
	return td, nil
}

// ClassOf returns the class descriptor of a registered composite type.
func (r *Registry) ClassOf(rt reflect.Type) (*ClassDescriptor, error) {
	td, err := r.TypeOf(rt)
	if err != nil {
		return nil, err
	}
	if td.class == nil {
		return nil, newError(PhaseRegister, KindRegistration).typ(td.name).
			detail("%s type has no class descriptor", td.category).build()
	}
	return td.class, nil
}

// Lookup returns the registered composite with the given identity.
func (r *Registry) Lookup(identity uint64) (*TypeDescriptor, bool) {
	td, ok := r.byIdentity[identity]
	return td, ok
}

// Types returns the registered composites ordered by name.
func (r *Registry) Types() []*TypeDescriptor {
	out := make([]*TypeDescriptor, 0, len(r.composites))
	for _, td := range r.composites {
		out = append(out, td)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Dump writes every registered composite and its class.
func (r *Registry) Dump(w io.Writer) {
	for _, td := range r.Types() {
		fmt.Fprintln(w, td)
		td.class.Dump(w)
	}
}

// TypeDescriptorOf returns the descriptor of T.
func TypeDescriptorOf[T any](r *Registry) (*TypeDescriptor, error) {
	return r.TypeOf(reflect.TypeOf((*T)(nil)).Elem())
}

// ClassDescriptorOf returns the class descriptor of composite T.
func ClassDescriptorOf[T any](r *Registry) (*ClassDescriptor, error) {
	return r.ClassOf(reflect.TypeOf((*T)(nil)).Elem())
}

// IsSerializable reports whether values of T can be encoded by r.
func IsSerializable[T any](r *Registry) bool {
	_, err := r.TypeOf(reflect.TypeOf((*T)(nil)).Elem())
	return err == nil
}

// derive classifies rt and returns its descriptor, building and memoizing
// one for non-composite types. It never returns nil: types outside the
// closed set get an Opaque descriptor. visiting guards recursive unnamed
// containers such as type L []L.
func (r *Registry) derive(rt reflect.Type, visiting map[reflect.Type]bool) *TypeDescriptor {
	if td, ok := r.composites[rt]; ok {
		return td
	}
	if v, ok := r.derived.Load(rt); ok {
		return v.(*TypeDescriptor)
	}
	if visiting[rt] {
		return r.opaque(rt)
	}

	var td *TypeDescriptor
	switch k := rt.Kind(); {
	case primitiveKind(k):
		td = r.newDerived(rt, typeName(rt), Primitive)
		td.minSize = td.size
		td.actions = primitiveActions{td: td}
	case k == reflect.String:
		td = r.newDerived(rt, typeName(rt), Text)
		td.minSize = 8
		td.elem = r.derive(reflect.TypeOf((*byte)(nil)).Elem(), visiting)
		td.actions = textActions{td: td}
	case k == reflect.Slice || k == reflect.Array:
		if visiting == nil {
			visiting = make(map[reflect.Type]bool)
		}
		visiting[rt] = true
		elem := r.derive(rt.Elem(), visiting)
		delete(visiting, rt)
		if elem.category == Opaque {
			return r.opaque(rt)
		}
		name := typeName(rt)
		if rt.Name() == "" {
			if k == reflect.Slice {
				name = "[]" + elem.name
			} else {
				name = fmt.Sprintf("[%d]%s", rt.Len(), elem.name)
			}
		}
		td = r.newDerived(rt, name, Sequence)
		td.elem = elem
		td.minSize = 8
		if k == reflect.Array {
			td.minSize = addSat(8, mulSat(uint64(rt.Len()), elem.minSize))
		}
		td.actions = sequenceActions{td: td}
	default:
		return r.opaque(rt)
	}
	v, _ := r.derived.LoadOrStore(rt, td)
	return v.(*TypeDescriptor)
}

// settleMinSize computes minSize for td and everything reachable from it.
// During Build, arrays of composites are derived before the composite's
// class exists, so their sizes are provisional until this pass. A value type
// can only reach itself through a slice, whose size does not depend on its
// element; marking td before recursing therefore never feeds a provisional
// size into a result.
func settleMinSize(td *TypeDescriptor, done map[*TypeDescriptor]bool) uint64 {
	if done[td] {
		return td.minSize
	}
	done[td] = true
	switch td.category {
	case Composite:
		m := uint64(8)
		for _, f := range td.class.fields {
			if f.typ.category != Opaque {
				m = addSat(m, settleMinSize(f.typ, done))
			}
		}
		td.minSize = m
	case Sequence:
		elem := settleMinSize(td.elem, done)
		if td.goType.Kind() == reflect.Array {
			td.minSize = addSat(8, mulSat(uint64(td.goType.Len()), elem))
		}
	}
	return td.minSize
}

func addSat(a, b uint64) uint64 {
	s, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return s
}

func mulSat(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}

func (r *Registry) opaque(rt reflect.Type) *TypeDescriptor {
	td := r.newDerived(rt, typeName(rt), Opaque)
	td.actions = opaqueActions{}
	v, _ := r.derived.LoadOrStore(rt, td)
	return v.(*TypeDescriptor)
}

func (r *Registry) newDerived(rt reflect.Type, name string, c Category) *TypeDescriptor {
	return &TypeDescriptor{
		name:     name,
		size:     uint64(rt.Size()),
		identity: Hash(name),
		category: c,
		goType:   rt,
	}
}

// typeName is the package-qualified name of a named type, or the Go
// spelling of an unnamed one.
func typeName(rt reflect.Type) string {
	if rt == nil {
		return "<nil>"
	}
	if rt.Name() != "" && rt.PkgPath() != "" {
		return rt.PkgPath() + "." + rt.Name()
	}
	return rt.String()
}
