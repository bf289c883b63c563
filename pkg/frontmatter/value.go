package frontmatter

import (
	"math"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	// KindNull is the null value.
	KindNull Kind = iota
	// KindBool is a boolean.
	KindBool
	// KindNumber is a numeric value. All numbers are float64, matching the
	// scripting engine's single number type.
	KindNumber
	// KindString is a text scalar.
	KindString
	// KindSequence is an ordered list of values.
	KindSequence
	// KindMapping is an ordered list of key/value pairs.
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is the structured form of a metadata block: a recursive
// null/bool/number/string/sequence/mapping tree independent of both the
// serialization grammar and the scripting engine. Mapping entries keep their
// order so an untouched document round-trips byte-identically.
//
// Only the fields matching Kind are meaningful; the rest stay zero.
type Value struct {
	Kind Kind
	Bool bool
	Num  float64
	Str  string
	Seq  []*Value
	Map  []MapEntry
}

// MapEntry is one ordered key/value pair of a mapping Value. Keys are values
// themselves; in practice they are almost always strings.
type MapEntry struct {
	Key *Value
	Val *Value
}

// Null returns the null value.
func Null() *Value { return &Value{Kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) *Value { return &Value{Kind: KindBool, Bool: b} }

// Number returns a numeric value.
func Number(n float64) *Value { return &Value{Kind: KindNumber, Num: n} }

// String returns a text value.
func String(s string) *Value { return &Value{Kind: KindString, Str: s} }

// Sequence returns a sequence of the given items.
func Sequence(items ...*Value) *Value {
	return &Value{Kind: KindSequence, Seq: items}
}

// Mapping returns a mapping of the given entries, in order.
func Mapping(entries ...MapEntry) *Value {
	return &Value{Kind: KindMapping, Map: entries}
}

// Entry builds a string-keyed mapping entry.
func Entry(key string, val *Value) MapEntry {
	return MapEntry{Key: String(key), Val: val}
}

// Equal reports whether two values are structurally identical, including
// mapping order. Two NaN numbers compare equal.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindBool:
		return v.Bool == o.Bool
	case KindNumber:
		return v.Num == o.Num || (math.IsNaN(v.Num) && math.IsNaN(o.Num))
	case KindString:
		return v.Str == o.Str
	case KindSequence:
		if len(v.Seq) != len(o.Seq) {
			return false
		}
		for i := range v.Seq {
			if !v.Seq[i].Equal(o.Seq[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(v.Map) != len(o.Map) {
			return false
		}
		for i := range v.Map {
			if !v.Map[i].Key.Equal(o.Map[i].Key) || !v.Map[i].Val.Equal(o.Map[i].Val) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// UnmarshalYAML decodes an arbitrary YAML node into the value tree.
// Timestamps and unknown-tagged scalars keep their literal text as strings.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			v.Kind = KindNull
			return nil
		}
		return v.UnmarshalYAML(node.Content[0])
	case yaml.AliasNode:
		return v.UnmarshalYAML(node.Alias)
	case yaml.ScalarNode:
		return v.unmarshalScalar(node)
	case yaml.SequenceNode:
		v.Kind = KindSequence
		v.Seq = make([]*Value, len(node.Content))
		for i, n := range node.Content {
			item := new(Value)
			if err := item.UnmarshalYAML(n); err != nil {
				return err
			}
			v.Seq[i] = item
		}
		return nil
	case yaml.MappingNode:
		v.Kind = KindMapping
		v.Map = make([]MapEntry, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := new(Value), new(Value)
			if err := key.UnmarshalYAML(node.Content[i]); err != nil {
				return err
			}
			if err := val.UnmarshalYAML(node.Content[i+1]); err != nil {
				return err
			}
			v.Map = append(v.Map, MapEntry{Key: key, Val: val})
		}
		return nil
	default:
		return errors.Newf("unsupported YAML node kind %d", node.Kind)
	}
}

func (v *Value) unmarshalScalar(node *yaml.Node) error {
	switch node.Tag {
	case "!!null":
		v.Kind = KindNull
		return nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		v.Kind, v.Bool = KindBool, b
		return nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err == nil {
			v.Kind, v.Num = KindNumber, float64(i)
			return nil
		}
		fallthrough
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		v.Kind, v.Num = KindNumber, f
		return nil
	default:
		// !!str, !!timestamp and custom tags keep their literal text.
		v.Kind, v.Str = KindString, node.Value
		return nil
	}
}

// MarshalYAML emits the value as a YAML node tree with preserved mapping
// order.
func (v *Value) MarshalYAML() (interface{}, error) {
	return v.toNode(), nil
}

func (v *Value) toNode() *yaml.Node {
	if v == nil {
		return nullNode()
	}
	switch v.Kind {
	case KindBool:
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!bool",
			Value: strconv.FormatBool(v.Bool),
		}
	case KindNumber:
		return numberNode(v.Num)
	case KindString:
		return stringNode(v.Str)
	case KindSequence:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		node.Content = make([]*yaml.Node, len(v.Seq))
		for i, item := range v.Seq {
			node.Content[i] = item.toNode()
		}
		return node
	case KindMapping:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		node.Content = make([]*yaml.Node, 0, 2*len(v.Map))
		for _, ent := range v.Map {
			node.Content = append(node.Content, ent.Key.toNode(), ent.Val.toNode())
		}
		return node
	default:
		return nullNode()
	}
}

func nullNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

// maxExactInt is the largest float64 magnitude that still represents every
// integer exactly; integral numbers beyond it are emitted in float notation.
const maxExactInt = 1 << 53

func numberNode(n float64) *yaml.Node {
	node := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float"}
	switch {
	case math.IsNaN(n):
		node.Value = ".nan"
	case math.IsInf(n, 1):
		node.Value = ".inf"
	case math.IsInf(n, -1):
		node.Value = "-.inf"
	case n == math.Trunc(n) && math.Abs(n) < maxExactInt:
		node.Tag, node.Value = "!!int", strconv.FormatInt(int64(n), 10)
	default:
		node.Value = strconv.FormatFloat(n, 'g', -1, 64)
	}
	return node
}

func stringNode(s string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if looksLikeTimestamp(s) {
		// Date-like strings would gain quotes on every rewrite if tagged as
		// plain strings; the timestamp tag keeps them unquoted, the same way
		// they arrived.
		node.Tag = "!!timestamp"
	}
	return node
}

// yamlTimestampLayouts mirrors the formats the YAML resolver accepts for
// unquoted timestamp scalars.
var yamlTimestampLayouts = []string{
	"2006-1-2T15:4:5.999999999Z07:00",
	"2006-1-2t15:4:5.999999999Z07:00",
	"2006-1-2 15:4:5.999999999",
	"2006-1-2",
}

func looksLikeTimestamp(s string) bool {
	if len(s) == 0 || s[0] < '0' || s[0] > '9' {
		return false
	}
	for _, layout := range yamlTimestampLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
