package minimeta_test

import (
	"errors"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/pvnetto/minimeta"
)

func sampleEntity() Entity {
	return Entity{ID: 7, Pos: Point{X: 1.5, Y: -2.5}, Tags: []string{"a", "bb"}}
}

func TestEntity_BinaryRoundTrip(t *testing.T) {
	r := entityRegistry(t)
	in := sampleEntity()
	buf, err := minimeta.Serialize(r, in)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	// version + id + (version + x + y) + count + (count + "a") + (count + "bb")
	if want := 8 + 4 + (8 + 4 + 4) + 8 + (8 + 1) + (8 + 2); len(buf) != want {
		t.Fatalf("encoded length=%d want %d", len(buf), want)
	}
	out, err := minimeta.Deserialize[Entity](r, buf)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch: %+v vs %+v", in, out)
	}
}

func TestEntity_TreeShape(t *testing.T) {
	r := entityRegistry(t)
	node, err := minimeta.SerializeTree(r, sampleEntity())
	if err != nil {
		t.Fatalf("serialize tree: %v", err)
	}
	var got map[string]any
	if err := node.Decode(&got); err != nil {
		t.Fatalf("decode node: %v", err)
	}
	want := map[string]any{
		"id":   7,
		"pos":  map[string]any{"x": 1.5, "y": -2.5},
		"tags": []any{"a", "bb"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tree=%#v want %#v", got, want)
	}
	// keys follow declaration order
	var keys []string
	for i := 0; i < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}
	if !reflect.DeepEqual(keys, []string{"id", "pos", "tags"}) {
		t.Fatalf("key order=%v", keys)
	}

	back, err := minimeta.DeserializeTree[Entity](r, node)
	if err != nil {
		t.Fatalf("deserialize tree: %v", err)
	}
	if !reflect.DeepEqual(back, sampleEntity()) {
		t.Fatalf("tree round trip mismatch: %+v", back)
	}
}

func TestEntity_OldPointSchemaIsRejected(t *testing.T) {
	oldReg := entityRegistry(t)
	newReg := entityV2Registry(t)

	oldEntity, _ := minimeta.ClassDescriptorOf[Entity](oldReg)
	newEntity, _ := minimeta.ClassDescriptorOf[entityV2](newReg)
	if oldEntity.Version() != newEntity.Version() {
		t.Fatalf("Entity field types did not change; versions must match")
	}
	oldPoint, _ := minimeta.ClassDescriptorOf[Point](oldReg)
	newPoint, _ := minimeta.ClassDescriptorOf[pointV2](newReg)
	if oldPoint.Version() == newPoint.Version() {
		t.Fatalf("adding z must change the Point version")
	}

	buf, err := minimeta.Serialize(oldReg, sampleEntity())
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	_, err = minimeta.Deserialize[entityV2](newReg, buf)
	if !errors.Is(err, minimeta.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
	e, ok := minimeta.AsError(err)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if e.Type != "Point" || !reflect.DeepEqual(e.Path, []string{"pos"}) {
		t.Fatalf("unexpected error location: type=%q path=%v", e.Type, e.Path)
	}
	if e.Expected != newPoint.Version() || e.Got != oldPoint.Version() {
		t.Fatalf("unexpected versions in error: %v", e)
	}
}

func TestEntity_TreeIgnoresSchemaDrift(t *testing.T) {
	oldReg := entityRegistry(t)
	newReg := entityV2Registry(t)
	node, err := minimeta.SerializeTree(oldReg, sampleEntity())
	if err != nil {
		t.Fatalf("serialize tree: %v", err)
	}
	got, err := minimeta.DeserializeTree[entityV2](newReg, node)
	if err != nil {
		t.Fatalf("tree decode must tolerate missing fields: %v", err)
	}
	want := entityV2{ID: 7, Pos: pointV2{X: 1.5, Y: -2.5}, Tags: []string{"a", "bb"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestEntity_TreeFromYAMLText(t *testing.T) {
	r := entityRegistry(t)
	var doc yaml.Node
	src := "id: 7\npos: {x: 1.5, y: -2.5}\ntags: [a, bb]\nextra: ignored\n"
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	got, err := minimeta.DeserializeTree[Entity](r, &doc)
	if err != nil {
		t.Fatalf("deserialize tree: %v", err)
	}
	if !reflect.DeepEqual(got, sampleEntity()) {
		t.Fatalf("got %+v", got)
	}
}
