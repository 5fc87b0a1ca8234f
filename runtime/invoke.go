package runtime

// CallValue dispatches a Value known to hold a Function through whichever of
// the three invocation paths it wraps (spec §4.H "unified invocation
// protocol" — callers never need to branch on FuncKind themselves).
func (rt *Runtime) CallValue(fnVal Value, args []Value) (Value, *Error) {
	if fnVal.GetTag() != TagFunction {
		return Value{}, NewErrorKind(ErrNotCallable, fnVal.TypeName()+" is not callable")
	}
	fn := rt.heap.Get(fnVal.AsObjID()).payload.(*FunctionObj)
	return rt.callFunctionObj(fn, args)
}

func (rt *Runtime) callFunctionObj(fn *FunctionObj, args []Value) (Value, *Error) {
	switch fn.Kind {
	case FuncBuiltin:
		return fn.Builtin(rt, args)
	case FuncUser:
		return rt.invokeUser(fn.User, args)
	case FuncBytecode:
		vm := NewVM(rt)
		return vm.callTop(fn.Bytecode, args)
	default:
		return Value{}, NewErrorKind(ErrNotCallable, "function has no executable body")
	}
}

// invokeUser runs an AST-bodied closure through the tree-walking executor
// (spec §4.H steps 1-7):
//  1. enter call, enforcing the recursion limit
//  2. push a fresh Environment parented on the function's frozen closure env
//  3. bind parameters positionally, evaluating DefaultExprs lazily in that
//     new environment for any omitted trailing arguments
//  4. reject too few args (no default available) or too many
//  5. execute the body
//  6. a Return flow unwraps to its value; Break/Continue escaping the whole
//     body is a TopLevelBreakContinue error; Throw either already converted
//     to *Error by the body evaluation, or carried through flow.Value
//  7. exit call
func (rt *Runtime) invokeUser(fn *UserFunction, args []Value) (Value, *Error) {
	if err := rt.EnterCall(); err != nil {
		return Value{}, err
	}
	defer rt.ExitCall()

	if len(args) > len(fn.Params) {
		return Value{}, NewErrorKind(ErrArgumentCountMismatch,
			"too many arguments to "+fnLabel(fn.Name))
	}

	env := NewEnvironment(fn.Env)
	rt.pushRootFrame(env)
	defer rt.popRootFrame()
	for i, p := range fn.Params {
		if i < len(args) {
			env.Define(p.Name, args[i], true)
			continue
		}
		expr, ok := fn.DefaultExprs[p.Name]
		if !ok {
			return Value{}, NewErrorKind(ErrArgumentCountMismatch,
				"missing argument '"+p.Name+"' to "+fnLabel(fn.Name))
		}
		defVal, ferr := NewInterpreter(rt).evalExpr(expr, env)
		if ferr != nil {
			return Value{}, ferr
		}
		env.Define(p.Name, defVal, true)
	}

	interp := NewInterpreter(rt)
	flow, ferr := interp.evalBlock(fn.Body, env)
	if ferr != nil {
		return Value{}, ferr
	}
	switch flow.Kind {
	case FlowReturn:
		return flow.Value, nil
	case FlowNone:
		return UNIT, nil
	case FlowBreak, FlowContinue:
		return Value{}, NewErrorKind(ErrTopLevelBreakContinue, "break/continue outside a loop")
	case FlowThrow:
		return Value{}, NewThrownError(flow.Value, "uncaught exception: "+rt.stringify(flow.Value))
	default:
		return UNIT, nil
	}
}

// invokeBound calls a struct/enum method with receiver passed explicitly
// ahead of the caller-supplied arguments; both bindMethod's closure and
// invokeMethodIC call it (spec §4.I method dispatch).
func (rt *Runtime) invokeBound(fn *FunctionObj, receiver Value, args []Value) (Value, *Error) {
	full := append([]Value{receiver}, args...)
	switch fn.Kind {
	case FuncUser:
		u := fn.User
		if len(u.Params) == 0 || u.Params[0].Name != "self" {
			// method body doesn't declare an explicit self param: only pass
			// the trailing args, receiver reaches it via getMember lookups.
			return rt.invokeUser(u, args)
		}
		return rt.invokeUser(u, full)
	case FuncBuiltin:
		return fn.Builtin(rt, full)
	case FuncBytecode:
		vm := NewVM(rt)
		return vm.callTop(fn.Bytecode, full)
	default:
		return Value{}, NewErrorKind(ErrNotCallable, "method has no executable body")
	}
}

func fnLabel(name string) string {
	if name == "" {
		return "anonymous function"
	}
	return "'" + name + "'"
}
