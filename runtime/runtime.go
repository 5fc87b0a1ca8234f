package runtime

import (
	"bytes"

	"github.com/dymsrun/dyms/ast"
)

const defaultRecursionLimit = 2048

// Runtime is the single-threaded execution context: one Heap, one set of
// interning/caching tables, one global Environment, and the capability
// traits injected at boot (spec §6). A Runtime is never shared across
// goroutines; concurrency, if wanted, means one Runtime per goroutine.
type Runtime struct {
	heap *Heap

	shapes       *shapeTable
	interning    *internTable
	shortStrings *shortStringCache

	smallIntStrings map[int64]Value

	globalEnv *Environment

	builderPool []*BuilderObj

	output bytes.Buffer

	callDepth      int
	recursionLimit int

	methodCache map[methodCacheKey]*FunctionObj

	structTypes map[string]*StructTypeInfo
	enumTypes   map[string]*EnumTypeInfo
	methods     map[string]*FunctionObj // "TypeName#methodName" -> unbound method function

	// activeFrames is the dynamic call stack of root providers: every
	// Environment/VM frame currently executing somewhere on the Go call
	// stack, pushed on entry and popped on return. Environment.markRoots
	// only walks lexical (closure) parents, never dynamic callers, so a
	// call nested several levels deep needs its own frame pushed here or
	// a GC safepoint inside it would see nothing but the global frame.
	activeFrames []rootProvider

	modules *moduleRegistry

	rngState uint64

	Clock        Clock
	FileSystem   FileSystem
	Rng          RngAlgorithm
	ModuleLoader ModuleLoader
	Frontend     Frontend
	Parser       SourceParser
}

type methodCacheKey struct {
	typeHash uint64
	method   string
}

// NewRuntime wires a fresh Runtime with the given capability traits (spec
// §6's injection points). Any of the five may be nil; callers that never
// exercise files/imports/time/rng don't need to provide a real one.
func NewRuntime(clock Clock, fs FileSystem, rng RngAlgorithm, loader ModuleLoader, frontend Frontend) *Runtime {
	rt := &Runtime{
		heap:            NewHeap(),
		shapes:          newShapeTable(),
		interning:       newInternTable(),
		shortStrings:    newShortStringCache(),
		smallIntStrings: make(map[int64]Value),
		recursionLimit:  defaultRecursionLimit,
		methodCache:     make(map[methodCacheKey]*FunctionObj),
		structTypes:     make(map[string]*StructTypeInfo),
		enumTypes:       make(map[string]*EnumTypeInfo),
		methods:         make(map[string]*FunctionObj),
		modules:         newModuleRegistry(),
		rngState:        0x9e3779b97f4a7c15,
		Clock:           clock,
		FileSystem:      fs,
		Rng:             rng,
		ModuleLoader:    loader,
		Frontend:        frontend,
	}
	rt.heap.RegisterSweeper(rt.shortStrings)
	rt.globalEnv = NewEnvironment(nil)
	rt.InstallBuiltins()
	return rt
}

func (c *shortStringCache) ClearOnSweep() { c.clear() }

// maybeCollect runs a GC cycle at a safepoint if the heap has grown past its
// threshold. Roots come from three places (spec §4.B root list): the global
// environment, the innermost lexically-active environment at this safepoint
// (env, which may be nil for safepoints that aren't environment-scoped), and
// every dynamically-active call frame recorded on rt.activeFrames — which
// covers nested calls env's own parent chain can't reach, since a call's
// Environment is parented on its closure's defining scope, not on whatever
// called it.
func (rt *Runtime) maybeCollect(env *Environment, extraRoots ...Value) {
	if !rt.heap.ShouldCollect() {
		return
	}
	roots := append([]Value(nil), extraRoots...)
	providers := make([]rootProvider, 0, len(rt.activeFrames)+2)
	providers = append(providers, rt.globalEnv)
	if env != nil {
		providers = append(providers, env)
	}
	providers = append(providers, rt.activeFrames...)
	rt.heap.Collect(roots, providers)
}

// pushRootFrame/popRootFrame bracket a dynamically-active call (invokeUser's
// fresh Environment, or a VM instance's frame stack) so a GC safepoint
// reached from a deeper, unrelated call can still find it.
func (rt *Runtime) pushRootFrame(p rootProvider) {
	rt.activeFrames = append(rt.activeFrames, p)
}

func (rt *Runtime) popRootFrame() {
	rt.activeFrames = rt.activeFrames[:len(rt.activeFrames)-1]
}

// WriteOutput appends to the program's captured stdout buffer (spec §6
// write_output), used by the `print`/`println` builtins so hosts can
// capture output instead of writing straight to os.Stdout.
func (rt *Runtime) WriteOutput(s string) {
	rt.output.WriteString(s)
}

// TakeOutput drains and returns everything written so far (spec §6
// take_output).
func (rt *Runtime) TakeOutput() string {
	s := rt.output.String()
	rt.output.Reset()
	return s
}

// BuiltinValue allocates fn as a builtin FunctionObj and returns it as a
// callable Value, for library packages (math, time, ...) building a
// namespace dict outside the runtime package.
func (rt *Runtime) BuiltinValue(name string, fn BuiltinFn) Value {
	obj := &FunctionObj{Kind: FuncBuiltin, Name: name, Builtin: fn}
	return FunctionValue(rt.heap.Alloc(TagFunction, obj))
}

// RegisterNamespace builds a dict from bindings and defines it as an
// immutable global under name, the way `import`'s module exports dict
// (modules.go) is exposed as a single value. Used to expose library
// packages such as math as `math.sqrt(x)`.
func (rt *Runtime) RegisterNamespace(name string, bindings map[string]Value) {
	d := NewDictObj()
	for k, v := range bindings {
		rt.dictInsertStrKey(d, k, v)
	}
	rt.globalEnv.Define(name, DictValue(rt.heap.Alloc(TagDict, d)), false)
}

// NextRandom advances the runtime-owned seed through the injected
// RngAlgorithm and returns the next word (spec §6 rand capability).
func (rt *Runtime) NextRandom() uint64 {
	return rt.Rng.NextU64(&rt.rngState)
}

// AcquireBuilder returns a pooled BuilderObj (spec §5 bounded builder pool),
// allocating a new one only when the pool is empty.
func (rt *Runtime) AcquireBuilder(capHint int) *BuilderObj {
	if n := len(rt.builderPool); n > 0 {
		b := rt.builderPool[n-1]
		rt.builderPool = rt.builderPool[:n-1]
		b.Reset(capHint)
		return b
	}
	return &BuilderObj{buf: make([]byte, 0, capHint)}
}

const builderPoolBound = 64

// ReleaseBuilder returns a BuilderObj to the pool once its content has been
// materialized into a Value, bounded so the pool itself can't grow without
// limit (spec §5).
func (rt *Runtime) ReleaseBuilder(b *BuilderObj) {
	if len(rt.builderPool) < builderPoolBound {
		rt.builderPool = append(rt.builderPool, b)
	}
}

// EnterCall increments the call-depth counter, returning RecursionLimitExceeded
// once the limit named in spec §4.H is crossed.
func (rt *Runtime) EnterCall() *Error {
	rt.callDepth++
	if rt.callDepth > rt.recursionLimit {
		rt.callDepth--
		return NewErrorKind(ErrRecursionLimitExceeded, "recursion limit exceeded")
	}
	return nil
}

func (rt *Runtime) ExitCall() { rt.callDepth-- }

// ExecProgram runs a parsed top-level Program through a HybridEngine (spec §6
// exec_program): compiled on the VM when a Frontend is wired and compiles it,
// tree-walked otherwise. It returns the program's result value.
func (rt *Runtime) ExecProgram(prog *ast.Program) (Value, *Error) {
	engine := NewHybridEngine(rt)
	return engine.Run(prog)
}

// ExecModule loads and runs a module by path through the ModuleLoader
// capability, returning its exports dict (spec §6 exec_module, §4.J).
func (rt *Runtime) ExecModule(path string) (Value, *Error) {
	return rt.loadModule("", path)
}

// ExecExecutable runs a compiled BytecodeFunction through the VM (spec §6
// exec_executable).
func (rt *Runtime) ExecExecutable(fn *BytecodeFunction) (Value, *Error) {
	vm := NewVM(rt)
	return vm.Run(fn)
}
