package minimeta

import "reflect"

// Category is the serializability classification of a type.
type Category int

const (
	Opaque    Category = iota // excluded from serialization
	Primitive                 // machine scalar, copied byte for byte
	Composite                 // registered struct, recurses into fields
	Sequence                  // slice or array of one serializable element type
	Text                      // string
)

func (c Category) String() string {
	switch c {
	case Primitive:
		return "primitive"
	case Composite:
		return "composite"
	case Sequence:
		return "sequence"
	case Text:
		return "text"
	default:
		return "opaque"
	}
}

// primitiveKind reports whether k is a machine scalar with a fixed size.
// uintptr is excluded: its value is an address, not data.
func primitiveKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	default:
		return false
	}
}
