package script

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"
)

// toGo converts a Lua value. Tables with keys 1..n become []any, other
// tables become map[string]any, functions become value.Computed. Cyclic
// references convert to nil.
func (r *Runtime) toGo(lv lua.LValue) any {
	return r.toGoVisited(lv, make(map[*lua.LTable]bool))
}

func (r *Runtime) toGoVisited(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case nil, *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LFunction:
		return r.Computed(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		defer delete(visited, v)
		return r.tableToGo(v, visited)
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

func (r *Runtime) tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	n := t.Len()
	count := 0
	t.ForEach(func(lua.LValue, lua.LValue) { count++ })

	if n > 0 && n == count {
		arr := make([]any, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = r.toGoVisited(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		case lua.LNumber:
			key = fmt.Sprint(r.toGoVisited(kv, visited))
		default:
			key = k.String()
		}
		m[key] = r.toGoVisited(v, visited)
	})
	return m
}

// toLua converts a Go value for passing into Lua. Unsupported types are
// wrapped as userdata.
func (r *Runtime) toLua(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int32:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []string:
		t := r.L.NewTable()
		for _, s := range val {
			t.Append(lua.LString(s))
		}
		return t
	case []any:
		t := r.L.NewTable()
		for _, item := range val {
			t.Append(r.toLua(item))
		}
		return t
	case map[string]any:
		t := r.L.NewTable()
		for k, item := range val {
			t.RawSetString(k, r.toLua(item))
		}
		return t
	case lua.LValue:
		return val
	default:
		ud := r.L.NewUserData()
		ud.Value = v
		return ud
	}
}
