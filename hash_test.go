package minimeta_test

import (
	"testing"

	"github.com/pvnetto/minimeta"
)

func TestHash_KnownVectors(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"", 0xcbf29ce484222325},
		{"a", 0xaf63dc4c8601ec8c},
		{"foobar", 0x85944171f73967e8},
	}
	for _, c := range cases {
		if got := minimeta.Hash(c.in); got != c.want {
			t.Fatalf("Hash(%q)=%#x want %#x", c.in, got, c.want)
		}
	}
}

func TestHashWith_ContinuesFold(t *testing.T) {
	if minimeta.HashWith("bar", minimeta.Hash("foo")) != minimeta.Hash("foobar") {
		t.Fatalf("HashWith must continue the FNV-1a fold")
	}
}

func TestClassVersion_OrderCountAndNames(t *testing.T) {
	id := minimeta.Hash("Entity")
	base := minimeta.ClassVersion(id, "int32", "Point", "[]string")
	if again := minimeta.ClassVersion(id, "int32", "Point", "[]string"); again != base {
		t.Fatalf("version not stable: %#x vs %#x", base, again)
	}
	variants := map[string]uint64{
		"reordered":    minimeta.ClassVersion(id, "Point", "int32", "[]string"),
		"added":        minimeta.ClassVersion(id, "int32", "Point", "[]string", "float32"),
		"removed":      minimeta.ClassVersion(id, "int32", "Point"),
		"renamed type": minimeta.ClassVersion(id, "int64", "Point", "[]string"),
		"other owner":  minimeta.ClassVersion(minimeta.Hash("Other"), "int32", "Point", "[]string"),
	}
	for name, v := range variants {
		if v == base {
			t.Fatalf("%s: version unchanged", name)
		}
	}
	if minimeta.ClassVersion(id) != id {
		t.Fatalf("a class without fields must have its identity as version")
	}
}
