package runtime

// cell is a shared binding slot. Closures freeze an Environment by sharing
// the *Environment pointer (and therefore every cell reachable from it), so
// mutation through a captured binding writes the same cell the defining
// scope sees (spec §9 "Environment capture for closures").
type cell struct {
	value   Value
	mutable bool
}

// Environment is one frame in the parent chain; "the environment" of spec
// §3/§4.E is the chain from the current frame up through its parents. Carried
// forward from the teacher's runtime/enviroment.go Environment type, split
// into mutable cells so Freeze can be a pointer copy instead of a deep copy.
type Environment struct {
	parent *Environment
	vars   map[string]*cell
}

func NewEnvironment(parent *Environment) *Environment {
	return &Environment{parent: parent, vars: make(map[string]*cell)}
}

// Push creates a new child frame (spec §4.E `push`).
func (e *Environment) Push() *Environment { return NewEnvironment(e) }

// PopFrame returns to the enclosing frame (spec §4.E `pop`). The discarded
// frame becomes unreachable from here, but can still be kept alive by a
// closure that froze it earlier.
func (e *Environment) PopFrame() *Environment { return e.parent }

// Freeze returns a snapshot suitable for closure capture: a cheap handle
// copy (spec §4.E, §9). Frames are reference types in Go, so no explicit
// refcounting is needed; the snapshot and the live frame are the same
// object and observe each other's mutations.
func (e *Environment) Freeze() *Environment { return e }

func (e *Environment) Define(name string, v Value, mutable bool) {
	e.vars[name] = &cell{value: v, mutable: mutable}
}

// DefineWithMutability is the explicit-mutability spelling named in spec
// §4.E (`define_with_mutability`); Define already takes the flag, this is
// the alias the spec names so call sites can match the contract by name.
func (e *Environment) DefineWithMutability(name string, v Value, mutable bool) {
	e.Define(name, v, mutable)
}

func (e *Environment) resolveCell(name string) *cell {
	for env := e; env != nil; env = env.parent {
		if c, ok := env.vars[name]; ok {
			return c
		}
	}
	return nil
}

// Assign walks outward looking for an existing binding; returns false if
// undefined (spec §4.E) and a distinguishable error if the binding is
// immutable (spec §4.K "Cannot reassign immutable variable").
func (e *Environment) Assign(name string, v Value) (ok bool, immutable bool) {
	c := e.resolveCell(name)
	if c == nil {
		return false, false
	}
	if !c.mutable {
		return false, true
	}
	c.value = v
	return true, false
}

func (e *Environment) Get(name string) (Value, bool) {
	c := e.resolveCell(name)
	if c == nil {
		return Value{}, false
	}
	return c.value, true
}

// Take removes and returns a binding defined directly in this frame (not a
// parent), used by destructuring binds that want to move a value out of a
// throwaway pattern frame without cloning it (spec §4.E `take`).
func (e *Environment) Take(name string) (Value, bool) {
	c, ok := e.vars[name]
	if !ok {
		return Value{}, false
	}
	delete(e.vars, name)
	return c.value, true
}

// markRoots marks every binding reachable from this frame and its parents
// (spec §4.B root list: "every value in every environment frame currently
// in the stack").
func (e *Environment) markRoots(h *Heap) {
	for env := e; env != nil; env = env.parent {
		for _, c := range env.vars {
			h.mark(c.value)
		}
	}
}
