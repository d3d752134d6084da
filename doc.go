// Package minimeta provides reflection-driven serialization from a registry
// of per-type metadata.
//
// - Type, field and class descriptors built once into an immutable Registry
// - A host-endian binary form with per-composite schema versions
// - A named tree form on yaml.Node, tolerant of missing fields
//
// Design policy:
// - Keep public APIs in the root package; put helpers under internal/.
// - Text renderings of the tree form (YAML, JSON, CBOR) live in document/.
// - The codec never logs; every failure is returned as *Error.
//
// Typical usage:
//
//	b := minimeta.NewBuilder(minimeta.Options{})
//	minimeta.Add[Point](b)
//	minimeta.Add[Entity](b)
//	reg, err := b.Build()
//
//	buf, err := minimeta.Serialize(reg, entity)
//	back, err := minimeta.Deserialize[Entity](reg, buf)
//
//	node, err := minimeta.SerializeTree(reg, entity)
//	back, err = minimeta.DeserializeTree[Entity](reg, node)
//
// The binary form carries no names or tags. Each composite is written as its
// class version followed by its fields; decoding fails with
// ErrSchemaMismatch when the version differs from the local one.
package minimeta
