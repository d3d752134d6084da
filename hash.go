package minimeta

const (
	fnv1aOffset uint64 = 0xcbf29ce484222325
	fnv1aPrime  uint64 = 0x100000001b3
)

// Hash returns the FNV-1a hash of s. Type identities are Hash(name).
func Hash(s string) uint64 { return HashWith(s, fnv1aOffset) }

// HashWith continues an FNV-1a fold over s starting from seed.
func HashWith(s string, seed uint64) uint64 {
	h := seed
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnv1aPrime
	}
	return h
}

// ClassVersion folds each field type name into a running hash seeded with
// the owning type's identity. Field names do not participate; only the
// number, order and type names of fields do.
func ClassVersion(identity uint64, fieldTypeNames ...string) uint64 {
	h := identity
	for _, n := range fieldTypeNames {
		h = HashWith(n, h)
	}
	return h
}
