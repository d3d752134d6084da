package minimeta_test

import (
	"fmt"
	"testing"

	j "github.com/goccy/go-json"

	"github.com/pvnetto/minimeta"
	"github.com/pvnetto/minimeta/document"
)

type vec3 struct {
	X float32 `json:"x" mmeta:"name=x"`
	Y float32 `json:"y" mmeta:"name=y"`
	Z float32 `json:"z" mmeta:"name=z"`
}

type particle struct {
	ID       uint32   `json:"id" mmeta:"name=id"`
	Name     string   `json:"name" mmeta:"name=name"`
	Position vec3     `json:"position" mmeta:"name=position"`
	Velocity vec3     `json:"velocity" mmeta:"name=velocity"`
	Tags     []string `json:"tags" mmeta:"name=tags"`
}

type scene struct {
	Particles []particle `json:"particles" mmeta:"name=particles"`
}

func benchRegistry(tb testing.TB) *minimeta.Registry {
	tb.Helper()
	b := minimeta.NewBuilder(minimeta.Options{})
	minimeta.Add[vec3](b)
	minimeta.Add[particle](b)
	minimeta.Add[scene](b)
	r, err := b.Build()
	if err != nil {
		tb.Fatalf("registry build failed: %v", err)
	}
	return r
}

func makeScene(n int) scene {
	s := scene{Particles: make([]particle, n)}
	for i := range s.Particles {
		f := float32(i)
		s.Particles[i] = particle{
			ID:       uint32(i),
			Name:     fmt.Sprintf("p%d", i),
			Position: vec3{X: f, Y: f * 2, Z: -f},
			Velocity: vec3{X: 0.5, Y: 0.25, Z: 0.125},
			Tags:     []string{"a", "b"},
		}
	}
	return s
}

func BenchmarkSerialize_Binary(b *testing.B) {
	r := benchRegistry(b)
	for _, n := range []int{10, 1000} {
		s := makeScene(n)
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := minimeta.Serialize(r, s); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDeserialize_Binary(b *testing.B) {
	r := benchRegistry(b)
	for _, n := range []int{10, 1000} {
		buf, err := minimeta.Serialize(r, makeScene(n))
		if err != nil {
			b.Fatal(err)
		}
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.SetBytes(int64(len(buf)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := minimeta.Deserialize[scene](r, buf); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRoundTrip_TreeJSON(b *testing.B) {
	r := benchRegistry(b)
	s := makeScene(100)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		n, err := minimeta.SerializeTree(r, s)
		if err != nil {
			b.Fatal(err)
		}
		out, err := document.MarshalJSON(n)
		if err != nil {
			b.Fatal(err)
		}
		back, err := document.UnmarshalJSON(out)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := minimeta.DeserializeTree[scene](r, back); err != nil {
			b.Fatal(err)
		}
	}
}

// Baseline: go-json struct encoding of the same value.
func BenchmarkRoundTrip_GoJSON(b *testing.B) {
	s := makeScene(100)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		out, err := j.Marshal(s)
		if err != nil {
			b.Fatal(err)
		}
		var back scene
		if err := j.Unmarshal(out, &back); err != nil {
			b.Fatal(err)
		}
	}
}
