package fixer

import (
	"strconv"

	lua "github.com/yuin/gopher-lua"

	"github.com/fmfix/fmfix/internal/errors"
	"github.com/fmfix/fmfix/pkg/frontmatter"
)

// toLua converts a metadata tree into a Lua value. Sequences become tables
// indexed from 1, mappings become tables keyed in document order, and null
// becomes the null sentinel so scripts can tell it apart from an absent key.
func (f *Fixer) toLua(v *frontmatter.Value) lua.LValue {
	if v == nil {
		return lua.LNil
	}
	switch v.Kind {
	case frontmatter.KindNull:
		return f.null
	case frontmatter.KindBool:
		return lua.LBool(v.Bool)
	case frontmatter.KindNumber:
		return lua.LNumber(v.Num)
	case frontmatter.KindString:
		return lua.LString(v.Str)
	case frontmatter.KindSequence:
		tbl := f.state.NewTable()
		for i, item := range v.Seq {
			tbl.RawSetInt(i+1, f.toLua(item))
		}
		return tbl
	case frontmatter.KindMapping:
		tbl := f.state.NewTable()
		for _, e := range v.Map {
			tbl.RawSet(f.toLua(e.Key), f.toLua(e.Val))
		}
		return tbl
	}
	return lua.LNil
}

// fromLua converts a Lua value back into a metadata tree. Values with no
// metadata representation are errors rather than silent drops: functions,
// coroutines, channels, userdata other than the null sentinel, and tables
// that contain themselves.
func (f *Fixer) fromLua(lv lua.LValue) (*frontmatter.Value, error) {
	return f.fromLuaValue(lv, make(map[*lua.LTable]bool))
}

func (f *Fixer) fromLuaValue(lv lua.LValue, seen map[*lua.LTable]bool) (*frontmatter.Value, error) {
	switch v := lv.(type) {
	case *lua.LNilType:
		return frontmatter.Null(), nil
	case lua.LBool:
		return frontmatter.Bool(bool(v)), nil
	case lua.LNumber:
		return frontmatter.Number(float64(v)), nil
	case lua.LString:
		return frontmatter.String(string(v)), nil
	case *lua.LUserData:
		if v == f.null {
			return frontmatter.Null(), nil
		}
		return nil, errors.New("cannot represent userdata as metadata")
	case *lua.LTable:
		return f.fromLuaTable(v, seen)
	default:
		return nil, errors.Newf("cannot represent %s as metadata", lv.Type().String())
	}
}

// fromLuaTable converts a table, reading any table with array entries as a
// sequence and everything else, the empty table included, as a mapping. A
// sequence's hash part is ignored; Lua itself blurs the two shapes and the
// array reading wins.
func (f *Fixer) fromLuaTable(tbl *lua.LTable, seen map[*lua.LTable]bool) (*frontmatter.Value, error) {
	if seen[tbl] {
		return nil, errors.New("cannot represent recursive table as metadata")
	}
	seen[tbl] = true
	defer delete(seen, tbl)

	if n := tbl.Len(); n > 0 {
		items := make([]*frontmatter.Value, 0, n)
		for i := 1; i <= n; i++ {
			item, err := f.fromLuaValue(tbl.RawGetInt(i), seen)
			if err != nil {
				return nil, errors.Wrapf(err, "in sequence index %d", i)
			}
			items = append(items, item)
		}
		return frontmatter.Sequence(items...), nil
	}

	var entries []frontmatter.MapEntry
	var key lua.LValue = lua.LNil
	for {
		var val lua.LValue
		key, val = tbl.Next(key)
		if key == lua.LNil {
			break
		}
		k, err := f.fromLuaValue(key, seen)
		if err != nil {
			return nil, errors.Wrap(err, "in mapping key")
		}
		v, err := f.fromLuaValue(val, seen)
		if err != nil {
			return nil, errors.Wrapf(err, "in value of key %s", lvalueLabel(key))
		}
		entries = append(entries, frontmatter.MapEntry{Key: k, Val: v})
	}
	return frontmatter.Mapping(entries...), nil
}

// lvalueLabel renders a mapping key for error messages.
func lvalueLabel(lv lua.LValue) string {
	switch v := lv.(type) {
	case lua.LString:
		return strconv.Quote(string(v))
	case lua.LNumber:
		return v.String()
	default:
		return lv.Type().String()
	}
}
