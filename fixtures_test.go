package minimeta_test

import (
	"testing"

	"github.com/pvnetto/minimeta"
)

type Point struct {
	X float32 `mmeta:"name=x"`
	Y float32 `mmeta:"name=y"`
}

type Entity struct {
	ID   int32    `mmeta:"name=id"`
	Pos  Point    `mmeta:"name=pos"`
	Tags []string `mmeta:"name=tags"`
}

// pointV2 is Point after gaining a third field. Registered under the same
// name it models the next release of the same type.
type pointV2 struct {
	X float32 `mmeta:"name=x"`
	Y float32 `mmeta:"name=y"`
	Z float32 `mmeta:"name=z"`
}

type entityV2 struct {
	ID   int32    `mmeta:"name=id"`
	Pos  pointV2  `mmeta:"name=pos"`
	Tags []string `mmeta:"name=tags"`
}

type playerState struct {
	State  int
	Points float32
}

type Player struct {
	ID       int
	State    playerState // never registered: opaque
	Integers []int
	Nested   [][]float32
	Targets  []Point
	Grid     [3]int16
	Lookup   map[string]int // opaque
	Ptr      *Point         // opaque
	Debug    bool           `mmeta:"ignore"`
	name     string         `mmeta:"add"`
	secret   string
}

type Node struct {
	Label    string
	Children []Node
}

func entityRegistry(t *testing.T) *minimeta.Registry {
	t.Helper()
	b := minimeta.NewBuilder(minimeta.Options{})
	// dependents first: resolution happens in Build
	minimeta.Add[Entity](b, minimeta.WithName("Entity"))
	minimeta.Add[Point](b, minimeta.WithName("Point"))
	r, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return r
}

func entityV2Registry(t *testing.T) *minimeta.Registry {
	t.Helper()
	b := minimeta.NewBuilder(minimeta.Options{})
	minimeta.Add[pointV2](b, minimeta.WithName("Point"))
	minimeta.Add[entityV2](b, minimeta.WithName("Entity"))
	r, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return r
}

func fullRegistry(t *testing.T) *minimeta.Registry {
	t.Helper()
	b := minimeta.NewBuilder(minimeta.Options{})
	minimeta.Add[Point](b, minimeta.WithName("Point"))
	minimeta.Add[Entity](b, minimeta.WithName("Entity"))
	minimeta.Add[Player](b)
	minimeta.Add[Node](b)
	r, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return r
}
