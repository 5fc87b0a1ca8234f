package runtime

// moduleRegistry caches loaded modules by canonical path and tracks the
// active import stack for cycle detection (spec §4.J).
type moduleRegistry struct {
	loaded  map[string]Value // canonical path -> Module value
	loading map[string]bool
	stack   []string
}

func newModuleRegistry() *moduleRegistry {
	return &moduleRegistry{
		loaded:  make(map[string]Value),
		loading: make(map[string]bool),
	}
}

// loadModule resolves path relative to fromPath, parses and executes it
// exactly once per canonical path, and returns its exports dict wrapped in a
// Module value (spec §4.J). Repeated imports of the same canonical path
// return the cached Module without re-running its top level.
func (rt *Runtime) loadModule(fromPath, path string) (Value, *Error) {
	if rt.ModuleLoader == nil {
		return Value{}, NewErrorKind(ErrPathNotAllowed, "no module loader configured")
	}
	canonical, rerr := rt.ModuleLoader.Resolve(fromPath, path)
	if rerr != nil {
		return Value{}, NewErrorKind(ErrFileNotFound, rerr.Error())
	}

	if mod, ok := rt.modules.loaded[canonical]; ok {
		return mod, nil
	}
	if rt.modules.loading[canonical] {
		return Value{}, NewErrorKind(ErrCircularImport, "circular import: "+canonical)
	}

	src, lerr := rt.ModuleLoader.Load(canonical)
	if lerr != nil {
		return Value{}, NewErrorKind(ErrFileNotFound, lerr.Error())
	}
	if rt.Parser == nil {
		return Value{}, NewErrorKind(ErrPathNotAllowed, "no source parser configured")
	}
	prog, perr := rt.Parser.Parse(src)
	if perr != nil {
		return Value{}, NewErrorKind(ErrPathNotAllowed, perr.Error())
	}

	rt.modules.loading[canonical] = true
	rt.modules.stack = append(rt.modules.stack, canonical)

	moduleEnv := NewEnvironment(rt.globalEnv)
	interp := NewInterpreter(rt)
	_, execErr := interp.evalProgramIn(prog, moduleEnv)

	rt.modules.stack = rt.modules.stack[:len(rt.modules.stack)-1]
	delete(rt.modules.loading, canonical)

	if execErr != nil {
		return Value{}, execErr
	}

	exports := NewDictObj()
	for name, c := range moduleEnv.vars {
		rt.DictInsert(exports, rt.MakeStr(name), c.value)
	}
	exportsVal := rt.heap.Alloc(TagDict, exports)
	modObj := &ModuleObj{Path: canonical, Exports: exportsVal}
	modVal := ModuleValue(rt.heap.Alloc(TagModule, modObj))

	rt.modules.loaded[canonical] = modVal
	return modVal, nil
}
