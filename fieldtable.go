package minimeta

import (
	"reflect"

	"github.com/pvnetto/minimeta/internal/scan"
)

// FieldEntry is one row of a declarative field table as produced by a field
// extraction tool: the field's external name, the registered name of its
// type, and its byte offset inside the owning struct.
type FieldEntry struct {
	Name     string
	TypeName string // optional; when set it must match the resolved type name
	Offset   uint64
}

// FieldTable derives the field table of struct type rt using the mmeta tag
// rules (exported fields by default; mmeta:"add", mmeta:"ignore",
// mmeta:"name=..."). TypeName is left empty: it is resolved against the
// registry at build time.
func FieldTable(rt reflect.Type) []FieldEntry {
	fs := scan.Fields(rt)
	out := make([]FieldEntry, 0, len(fs))
	for _, f := range fs {
		out = append(out, FieldEntry{Name: f.Name, Offset: uint64(f.Offset)})
	}
	return out
}

// structFieldAt finds the struct field an entry refers to. Several fields can
// share an offset when some have zero size, so a name match wins, then the
// first field with a non-zero size.
func structFieldAt(rt reflect.Type, e FieldEntry) (reflect.StructField, bool) {
	var (
		candidate reflect.StructField
		found     bool
	)
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if uint64(sf.Offset) != e.Offset {
			continue
		}
		if name, _ := scan.ResolveField(sf); name == e.Name || sf.Name == e.Name {
			return sf, true
		}
		if !found || (candidate.Type.Size() == 0 && sf.Type.Size() > 0) {
			candidate, found = sf, true
		}
	}
	return candidate, found
}
