package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/drawstorm/internal/diagram"
)

// checkIDs reads a string or an array of strings at argument n.
func checkIDs(L *lua.LState, n int) []string {
	switch v := L.Get(n).(type) {
	case lua.LString:
		return []string{string(v)}
	case *lua.LTable:
		ids := make([]string, 0, v.Len())
		for i := 1; i <= v.Len(); i++ {
			s, ok := v.RawGetInt(i).(lua.LString)
			if !ok {
				L.ArgError(n, "expected array of shape ids")
				return nil
			}
			ids = append(ids, string(s))
		}
		return ids
	default:
		L.TypeError(n, lua.LTTable)
		return nil
	}
}

func optString(L *lua.LState, t *lua.LTable, key string) string {
	switch v := t.RawGetString(key).(type) {
	case *lua.LNilType:
		return ""
	case lua.LString:
		return string(v)
	default:
		L.RaiseError("field %q: expected string, got %s", key, v.Type())
		return ""
	}
}

func optNumber(L *lua.LState, t *lua.LTable, key string) float64 {
	switch v := t.RawGetString(key).(type) {
	case *lua.LNilType:
		return 0
	case lua.LNumber:
		return float64(v)
	default:
		L.RaiseError("field %q: expected number, got %s", key, v.Type())
		return 0
	}
}

// tableToProperties converts a Lua table to Properties. Numbers become
// float64 so values match what the document codec decodes.
func tableToProperties(t *lua.LTable) diagram.Properties {
	props := diagram.Properties{}
	t.ForEach(func(k, v lua.LValue) {
		props[keyString(k)] = toGo(v, map[*lua.LTable]bool{t: true})
	})
	return props
}

func keyString(k lua.LValue) string {
	switch kv := k.(type) {
	case lua.LString:
		return string(kv)
	case lua.LNumber:
		return fmt.Sprintf("%v", float64(kv))
	default:
		return k.String()
	}
}

// toGo converts a Lua value. Tables with keys 1..n become slices, other
// tables become maps. Cycles and functions convert to nil.
func toGo(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		defer delete(visited, v)
		return tableToGo(v, visited)
	default:
		return nil
	}
}

func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	n := t.Len()
	count := 0
	t.ForEach(func(_, _ lua.LValue) { count++ })

	if n > 0 && count == n {
		arr := make([]any, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = toGo(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		m[keyString(k)] = toGo(v, visited)
	})
	return m
}

// toLua converts a property value back to Lua.
func toLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case float64:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []any:
		t := L.NewTable()
		for i, item := range val {
			t.RawSetInt(i+1, toLua(L, item))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, item := range val {
			t.RawSetString(k, toLua(L, item))
		}
		return t
	case diagram.Properties:
		return toLua(L, map[string]any(val))
	default:
		return lua.LString(fmt.Sprint(val))
	}
}

func shapeToTable(L *lua.LState, sh diagram.Shape) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(sh.ID))
	t.RawSetString("type", lua.LString(sh.Type))
	t.RawSetString("x", lua.LNumber(sh.X))
	t.RawSetString("y", lua.LNumber(sh.Y))
	t.RawSetString("width", lua.LNumber(sh.Width))
	t.RawSetString("height", lua.LNumber(sh.Height))
	t.RawSetString("rotation", lua.LNumber(sh.Rotation))
	if sh.ParentID != "" {
		t.RawSetString("parent", lua.LString(sh.ParentID))
	}
	if len(sh.Props) > 0 {
		t.RawSetString("props", toLua(L, sh.Props))
	}
	return t
}
