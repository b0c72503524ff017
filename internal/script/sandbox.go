package script

import (
	lua "github.com/yuin/gopher-lua"
)

// moduleName is the Lua module exposing host accessors.
const moduleName = "imgclip"

// openSafeLibraries opens the Lua standard libraries that cannot reach the
// file system or the process.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
}

// installSandbox removes loaders that read files or compile strings and
// restricts require to the safe libraries and the imgclip module.
func installSandbox(L *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}

	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		L.SetField(pkg, "path", lua.LString(""))
		L.SetField(pkg, "cpath", lua.LString(""))
	}

	allowed := map[string]bool{
		"string":   true,
		"table":    true,
		"math":     true,
		moduleName: true,
	}
	require := L.GetGlobal("require")

	L.SetGlobal("require", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if !allowed[name] {
			L.RaiseError("module %q is not available", name)
			return 0
		}
		L.Push(require)
		L.Push(lua.LString(name))
		L.Call(1, 1)
		return 1
	}))
}

// installHostModule exposes the current host to Lua as the imgclip module,
// both preloaded for require and as a global.
func (r *Runtime) installHostModule() {
	accessor := func(get func() string) lua.LGFunction {
		return func(L *lua.LState) int {
			L.Push(lua.LString(get()))
			return 1
		}
	}

	funcs := map[string]lua.LGFunction{
		"file_path": accessor(func() string { return r.current.FilePath() }),
		"file_name": accessor(func() string { return r.current.FileName() }),
		"dir_path":  accessor(func() string { return r.current.DirPath() }),
		"dir_name":  accessor(func() string { return r.current.DirName() }),
		"filetype":  accessor(func() string { return r.current.Filetype() }),
	}

	mod := r.L.SetFuncs(r.L.NewTable(), funcs)
	r.L.PreloadModule(moduleName, func(L *lua.LState) int {
		L.Push(mod)
		return 1
	})
	r.L.SetGlobal(moduleName, mod)
}
