// Package scan derives a field table from a struct type using reflection.
// It stands in for an external annotation scanner: the registry only
// consumes its output.
package scan

import (
	"reflect"
	"strings"
)

// TagKey is the struct tag consulted by Fields.
const TagKey = "mmeta"

// Field is one entry of a derived field table.
type Field struct {
	Name   string // external name (tree key)
	GoName string // Go field name
	Index  int
	Offset uintptr
	Type   reflect.Type
}

// Fields returns the serializable field table of struct type rt in
// declaration order.
//
// Exported fields are included by default. mmeta:"add" force-includes an
// unexported field; mmeta:"ignore" or mmeta:"-" excludes a field;
// mmeta:"name=key" renames it. Options combine with commas.
func Fields(rt reflect.Type) []Field {
	if rt.Kind() != reflect.Struct {
		return nil
	}
	out := make([]Field, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.Name == "_" {
			continue
		}
		name, include := ResolveField(sf)
		if !include {
			continue
		}
		out = append(out, Field{
			Name:   name,
			GoName: sf.Name,
			Index:  i,
			Offset: sf.Offset,
			Type:   sf.Type,
		})
	}
	return out
}

// ResolveField applies the tag rules to a single struct field.
// Priority: mmeta ignore > mmeta add > visibility; name=... > field name.
func ResolveField(sf reflect.StructField) (name string, include bool) {
	name = sf.Name
	include = sf.IsExported()
	tag, ok := sf.Tag.Lookup(TagKey)
	if !ok {
		return name, include
	}
	if strings.TrimSpace(tag) == "-" {
		return name, false
	}
	ignored := false
	for _, p := range strings.Split(tag, ",") {
		p = strings.TrimSpace(p)
		switch {
		case p == "add":
			include = true
		case p == "ignore":
			ignored = true
		case strings.HasPrefix(p, "name="):
			if n := strings.TrimPrefix(p, "name="); n != "" {
				name = n
			}
		}
	}
	if ignored {
		include = false
	}
	return name, include
}
