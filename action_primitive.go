package minimeta

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"unsafe"

	"gopkg.in/yaml.v3"
)

const (
	tagNull  = "!!null"
	tagBool  = "!!bool"
	tagInt   = "!!int"
	tagFloat = "!!float"
	tagStr   = "!!str"
	tagSeq   = "!!seq"
	tagMap   = "!!map"
)

// primitiveActions copies machine scalars byte for byte in the binary form
// and maps them to scalar nodes in the tree form.
type primitiveActions struct {
	td *TypeDescriptor
}

func (a primitiveActions) bytes(p unsafe.Pointer) []byte {
	return unsafe.Slice((*byte)(p), a.td.size)
}

func (a primitiveActions) WriteBinary(e *Encoder, _ *FieldDescriptor, src unsafe.Pointer) error {
	e.writeRaw(a.bytes(src))
	return nil
}

func (a primitiveActions) ReadBinary(d *Decoder, _ *FieldDescriptor, dst unsafe.Pointer) error {
	p, err := d.readRaw(a.td.name, int(a.td.size))
	if err != nil {
		return err
	}
	if a.td.goType.Kind() == reflect.Bool && p[0] > 1 {
		return malformed(PhaseDecode, a.td.name, "invalid bool byte %#x", p[0])
	}
	copy(a.bytes(dst), p)
	return nil
}

func (a primitiveActions) WriteTree(_ *FieldDescriptor, src unsafe.Pointer, to *yaml.Node) error {
	v := reflect.NewAt(a.td.goType, src).Elem()
	setScalar(to, formatScalar(v))
	return nil
}

func (a primitiveActions) ReadTree(_ *FieldDescriptor, from *yaml.Node, dst unsafe.Pointer) error {
	n := resolve(from)
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.ScalarNode {
		return malformed(PhaseDecode, a.td.name, "expected scalar node, got %s", kindName(n))
	}
	v := reflect.NewAt(a.td.goType, dst).Elem()
	if err := parseScalar(v, n.Value); err != nil {
		return newError(PhaseDecode, KindMalformedInput).typ(a.td.name).
			detail("cannot parse %q", n.Value).cause(err).build()
	}
	return nil
}

type scalar struct {
	tag   string
	value string
}

func formatScalar(v reflect.Value) scalar {
	switch v.Kind() {
	case reflect.Bool:
		return scalar{tagBool, strconv.FormatBool(v.Bool())}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return scalar{tagInt, strconv.FormatInt(v.Int(), 10)}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return scalar{tagInt, strconv.FormatUint(v.Uint(), 10)}
	case reflect.Float32, reflect.Float64:
		return scalar{tagFloat, formatFloat(v.Float(), v.Type().Bits())}
	case reflect.Complex64, reflect.Complex128:
		return scalar{tagStr, strconv.FormatComplex(v.Complex(), 'g', -1, v.Type().Bits())}
	case reflect.String:
		return scalar{tagStr, v.String()}
	}
	return scalar{tagNull, "null"}
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	// keep the float tag stable when re-resolved by a YAML reader
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func parseFloat(s string, bits int) (float64, error) {
	switch strings.ToLower(s) {
	case ".nan", "nan":
		return math.NaN(), nil
	case ".inf", "+.inf", "inf", "+inf":
		return math.Inf(1), nil
	case "-.inf", "-inf":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(s, bits)
}

func parseScalar(v reflect.Value, s string) error {
	switch v.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(strings.ReplaceAll(s, "_", ""), 0, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(strings.ReplaceAll(s, "_", ""), 0, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := parseFloat(s, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(f)
	case reflect.Complex64, reflect.Complex128:
		c, err := strconv.ParseComplex(s, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetComplex(c)
	case reflect.String:
		v.SetString(s)
	}
	return nil
}

// setScalar turns node into a scalar, dropping any previous content.
func setScalar(node *yaml.Node, s scalar) {
	*node = yaml.Node{Kind: yaml.ScalarNode, Tag: s.tag, Value: s.value}
}

// resolve follows document wrappers and aliases to the content node.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch {
		case n.Kind == yaml.DocumentNode && len(n.Content) > 0:
			n = n.Content[0]
		case n.Kind == yaml.AliasNode && n.Alias != nil:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

func isNull(n *yaml.Node) bool {
	if n == nil || n.Kind == 0 {
		return true
	}
	if n.Kind == yaml.DocumentNode {
		return true // empty document
	}
	return n.Kind == yaml.ScalarNode && n.ShortTag() == tagNull
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "empty"
}
