package frontmatter

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	toml "github.com/pelletier/go-toml/v2"
)

func decodeTOML(block string) (*Value, error) {
	if strings.TrimSpace(block) == "" {
		return nil, &DecodeError{Err: ErrEmptyBlock}
	}
	var table map[string]any
	if err := toml.Unmarshal([]byte(block), &table); err != nil {
		return nil, &DecodeError{Err: err}
	}
	v, err := fromTOML(table)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return v, nil
}

func encodeTOML(v *Value) ([]byte, error) {
	x, err := toTOML(v)
	if err != nil {
		return nil, &EncodeError{Err: err}
	}
	data, err := toml.Marshal(x)
	if err != nil {
		return nil, &EncodeError{Err: err}
	}
	return data, nil
}

// fromTOML converts the interface tree go-toml produces into a Value. TOML
// tables are unordered maps, so entries are recovered in sorted key order.
func fromTOML(x any) (*Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case int64:
		return Number(float64(t)), nil
	case float64:
		return Number(t), nil
	case string:
		return String(t), nil
	case time.Time:
		return String(t.Format(time.RFC3339Nano)), nil
	case toml.LocalDate:
		return String(t.String()), nil
	case toml.LocalDateTime:
		return String(t.String()), nil
	case toml.LocalTime:
		return String(t.String()), nil
	case []any:
		seq := make([]*Value, len(t))
		for i, item := range t {
			v, err := fromTOML(item)
			if err != nil {
				return nil, err
			}
			seq[i] = v
		}
		return &Value{Kind: KindSequence, Seq: seq}, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]MapEntry, 0, len(keys))
		for _, k := range keys {
			v, err := fromTOML(t[k])
			if err != nil {
				return nil, err
			}
			entries = append(entries, Entry(k, v))
		}
		return &Value{Kind: KindMapping, Map: entries}, nil
	default:
		return nil, errors.Newf("unsupported TOML value of type %T", x)
	}
}

func toTOML(v *Value) (any, error) {
	if v == nil {
		return nil, errors.New("TOML cannot represent null")
	}
	switch v.Kind {
	case KindNull:
		return nil, errors.New("TOML cannot represent null")
	case KindBool:
		return v.Bool, nil
	case KindNumber:
		if v.Num == math.Trunc(v.Num) && math.Abs(v.Num) < maxExactInt {
			return int64(v.Num), nil
		}
		return v.Num, nil
	case KindString:
		return v.Str, nil
	case KindSequence:
		out := make([]any, len(v.Seq))
		for i, item := range v.Seq {
			x, err := toTOML(item)
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	case KindMapping:
		out := make(map[string]any, len(v.Map))
		for _, ent := range v.Map {
			if ent.Key == nil || ent.Key.Kind != KindString {
				return nil, errors.Newf("TOML keys must be strings, got %s", ent.Key.Kind)
			}
			x, err := toTOML(ent.Val)
			if err != nil {
				return nil, err
			}
			out[ent.Key.Str] = x
		}
		return out, nil
	default:
		return nil, errors.Newf("unsupported value kind %s", v.Kind)
	}
}
