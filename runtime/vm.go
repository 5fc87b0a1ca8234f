package runtime

import "math"

// tryHandler is one active try/catch/finally scope within a single frame
// (spec §4.K pending-exception-buffer semantics).
type tryHandler struct {
	catchIP    int // 0 means "no catch, finally-only"
	hasCatch   bool
	finallyIP  int
	hasFinally bool
	stackDepth int
}

type vmFrame struct {
	fn       *BytecodeFunction
	ip       int
	base     int
	locals   *LocalFrame
	handlers []tryHandler
	env      *Environment // non-nil only when fn.NeedsEnvFrame
}

// VM is the bytecode interpreter (spec §4.G/§4.H "bytecode VM" execution
// strategy). One VM belongs to exactly one Runtime invocation; it never
// outlives the call that created it.
type VM struct {
	rt     *Runtime
	stack  []Value
	sp     int
	frames []vmFrame
}

func NewVM(rt *Runtime) *VM {
	return &VM{
		rt:     rt,
		stack:  make([]Value, 1024),
		frames: make([]vmFrame, 0, 64),
	}
}

func (vm *VM) push(v Value) {
	if vm.sp >= len(vm.stack) {
		grown := make([]Value, len(vm.stack)*2)
		copy(grown, vm.stack)
		vm.stack = grown
	}
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() Value {
	vm.sp--
	v := vm.stack[vm.sp]
	vm.stack[vm.sp] = Value{}
	return v
}

func (vm *VM) peek() Value { return vm.stack[vm.sp-1] }

func (vm *VM) callBytecode(fn *BytecodeFunction, argc int) *Error {
	if err := vm.rt.EnterCall(); err != nil {
		return err
	}
	base := vm.sp - argc
	locals := NewLocalFrame(fn.LocalsCount)
	for i := 0; i < argc && i < fn.LocalsCount; i++ {
		locals.Set(i, vm.stack[base+i])
	}
	vm.sp = base
	var env *Environment
	if fn.NeedsEnvFrame {
		env = NewEnvironment(fn.CapturedEnv)
	}
	vm.frames = append(vm.frames, vmFrame{fn: fn, base: base, locals: locals, env: env})
	return nil
}

// Run drives the fetch-decode-execute loop for entry until the outermost
// frame returns, propagating thrown values through finally blocks per spec
// §4.K.
func (vm *VM) Run(entry *BytecodeFunction) (Value, *Error) {
	if err := vm.callBytecode(entry, 0); err != nil {
		return UNIT, err
	}
	vm.rt.pushRootFrame(vm)
	defer vm.rt.popRootFrame()
	return vm.runLoop()
}

// callTop invokes a compiled function with explicit Go-side arguments,
// pushing them as the callee's locals base before driving the same
// fetch-decode-execute loop Run uses. Used by invoke.go's CallValue /
// invokeBound so a FuncBytecode value is callable uniformly alongside
// FuncUser and FuncBuiltin (spec §4.H unified invocation protocol).
func (vm *VM) callTop(fn *BytecodeFunction, args []Value) (Value, *Error) {
	for _, a := range args {
		vm.push(a)
	}
	if err := vm.callBytecode(fn, len(args)); err != nil {
		return UNIT, err
	}
	vm.rt.pushRootFrame(vm)
	defer vm.rt.popRootFrame()
	return vm.runLoop()
}

// markRoots marks every value reachable from this VM's currently active
// frames: the shared operand stack, plus each frame's local slots and (for
// closures needing one) its own Environment. Wiring this as a rootProvider
// fixes the GC-rooting gap where a compiled function's local slot could
// hold the only live reference to a value that wasn't also sitting on the
// operand stack at the moment a safepoint tripped the collector.
func (vm *VM) markRoots(h *Heap) {
	for i := 0; i < vm.sp; i++ {
		h.mark(vm.stack[i])
	}
	for i := range vm.frames {
		fr := &vm.frames[i]
		if fr.locals != nil {
			fr.locals.markRoots(h)
		}
		if fr.env != nil {
			fr.env.markRoots(h)
		}
	}
}

func (vm *VM) runLoop() (Value, *Error) {
	for len(vm.frames) > 0 {
		fr := &vm.frames[len(vm.frames)-1]
		code := fr.fn.Chunk.Code
		consts := fr.fn.Chunk.Consts

		if fr.ip >= len(code) {
			result := UNIT
			if vm.sp > fr.base {
				result = vm.pop()
			}
			vm.popFrame(fr)
			if len(vm.frames) == 0 {
				return result, nil
			}
			vm.push(result)
			continue
		}

		op := OpCode(code[fr.ip])
		fr.ip++

		switch op {
		case OP_CONST:
			idx := code[fr.ip]
			fr.ip++
			vm.push(consts[idx])
		case OP_POP:
			vm.pop()
		case OP_DUP:
			vm.push(vm.peek())
		case OP_SWAP:
			a, b := vm.pop(), vm.pop()
			vm.push(a)
			vm.push(b)
		case OP_LOAD_TRUE:
			vm.push(TRUE)
		case OP_LOAD_FALSE:
			vm.push(FALSE)
		case OP_LOAD_UNIT:
			vm.push(UNIT)

		case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_MOD:
			r, l := vm.pop(), vm.pop()
			res, aerr := vm.rt.arith(op, l, r)
			if aerr != nil {
				if !vm.throwOrReturn(fr, vm.rt.errorValue(aerr)) {
					return UNIT, aerr
				}
				continue
			}
			vm.push(res)
		case OP_NEG:
			v := vm.pop()
			if v.IsInt() {
				vm.push(FromI64(-v.AsI64()))
			} else {
				vm.push(FromF64(-v.AsF64()))
			}
		case OP_NOT:
			v := vm.pop()
			vm.push(FromBool(!v.AsBool()))

		case OP_CMP_EQ:
			r, l := vm.pop(), vm.pop()
			vm.push(FromBool(vm.rt.Equal(l, r)))
		case OP_CMP_NE:
			r, l := vm.pop(), vm.pop()
			vm.push(FromBool(!vm.rt.Equal(l, r)))
		case OP_CMP_LT, OP_CMP_LE, OP_CMP_GT, OP_CMP_GE:
			r, l := vm.pop(), vm.pop()
			vm.push(FromBool(numericCompare(op, l, r)))

		case OP_AND:
			target := code[fr.ip]
			fr.ip++
			if !vm.peek().AsBool() {
				fr.ip = target
			} else {
				vm.pop()
			}
		case OP_OR:
			target := code[fr.ip]
			fr.ip++
			if vm.peek().AsBool() {
				fr.ip = target
			} else {
				vm.pop()
			}

		case OP_BUILDER_NEW:
			b := vm.rt.AcquireBuilder(32)
			vm.push(BuilderValue(vm.rt.heap.Alloc(TagBuilder, b)))
		case OP_BUILDER_APPEND:
			v := vm.pop()
			bv := vm.peek()
			b := vm.rt.heap.Get(bv.AsObjID()).payload.(*BuilderObj)
			b.WriteString(vm.rt.stringify(v))
		case OP_BUILDER_FINISH:
			bv := vm.pop()
			b := vm.rt.heap.Get(bv.AsObjID()).payload.(*BuilderObj)
			vm.push(vm.rt.MakeStr(b.String()))
			vm.rt.ReleaseBuilder(b)

		case OP_LOAD_GLOBAL:
			nameIdx := code[fr.ip]
			fr.ip++
			name := vm.rt.StrText(consts[nameIdx])
			v, ok := vm.rt.globalEnv.Get(name)
			if !ok {
				if !vm.throwOrReturn(fr, vm.rt.errorValue(NewErrorKind(ErrUndefinedIdentifier, "undefined identifier: "+name))) {
					return UNIT, NewErrorKind(ErrUndefinedIdentifier, "undefined identifier: "+name)
				}
				continue
			}
			vm.push(v)
		case OP_STORE_GLOBAL:
			nameIdx := code[fr.ip]
			fr.ip++
			name := vm.rt.StrText(consts[nameIdx])
			vm.rt.globalEnv.Assign(name, vm.peek())
		case OP_DEFINE_GLOBAL:
			nameIdx := code[fr.ip]
			fr.ip++
			name := vm.rt.StrText(consts[nameIdx])
			vm.rt.globalEnv.Define(name, vm.pop(), true)

		case OP_LOAD_LOCAL:
			slot := code[fr.ip]
			fr.ip++
			vm.push(fr.locals.Get(slot))
		case OP_STORE_LOCAL:
			slot := code[fr.ip]
			fr.ip++
			fr.locals.Set(slot, vm.peek())

		case OP_MAKE_LIST:
			n := code[fr.ip]
			fr.ip++
			elems := make([]Value, n)
			for i := n - 1; i >= 0; i-- {
				elems[i] = vm.pop()
			}
			vm.push(ListValue(vm.rt.heap.Alloc(TagList, &ListObj{Elems: elems})))
		case OP_MAKE_TUPLE:
			n := code[fr.ip]
			fr.ip++
			elems := make([]Value, n)
			for i := n - 1; i >= 0; i-- {
				elems[i] = vm.pop()
			}
			vm.push(TupleValue(vm.rt.heap.Alloc(TagTuple, &TupleObj{Elems: elems})))
		case OP_MAKE_SET:
			n := code[fr.ip]
			fr.ip++
			s := NewSetObj()
			vals := make([]Value, n)
			for i := n - 1; i >= 0; i-- {
				vals[i] = vm.pop()
			}
			for _, v := range vals {
				vm.rt.SetAdd(s, v)
			}
			vm.push(SetValue(vm.rt.heap.Alloc(TagSet, s)))
		case OP_MAKE_DICT:
			n := code[fr.ip]
			fr.ip++
			pairs := make([][2]Value, n)
			for i := n - 1; i >= 0; i-- {
				val := vm.pop()
				key := vm.pop()
				pairs[i] = [2]Value{key, val}
			}
			d := NewDictObj()
			for _, p := range pairs {
				vm.rt.DictInsert(d, p[0], p[1])
			}
			vm.push(DictValue(vm.rt.heap.Alloc(TagDict, d)))
		case OP_MAKE_RANGE:
			inclusive := code[fr.ip]
			fr.ip++
			end, start := vm.pop(), vm.pop()
			r := &RangeObj{Start: start.AsI64(), End: end.AsI64(), Inclusive: inclusive != 0}
			vm.push(RangeValue(vm.rt.heap.Alloc(TagRange, r)))

		case OP_GET_INDEX:
			idx, obj := vm.pop(), vm.pop()
			v, ierr := vm.rt.getIndex(obj, idx)
			if ierr != nil {
				if !vm.throwOrReturn(fr, vm.rt.errorValue(ierr)) {
					return UNIT, ierr
				}
				continue
			}
			vm.push(v)
		case OP_SET_INDEX:
			val, idx, obj := vm.pop(), vm.pop(), vm.pop()
			if ierr := vm.rt.setIndex(obj, idx, val); ierr != nil {
				if !vm.throwOrReturn(fr, vm.rt.errorValue(ierr)) {
					return UNIT, ierr
				}
				continue
			}
			vm.push(val)

		case OP_GET_MEMBER:
			nameIdx := code[fr.ip]
			fr.ip++
			name := vm.rt.StrText(consts[nameIdx])
			obj := vm.pop()
			v, merr := vm.rt.getMember(obj, name)
			if merr != nil {
				if !vm.throwOrReturn(fr, vm.rt.errorValue(merr)) {
					return UNIT, merr
				}
				continue
			}
			vm.push(v)
		case OP_GET_MEMBER_IC:
			nameIdx := code[fr.ip]
			slotIdx := code[fr.ip+1]
			fr.ip += 2
			name := vm.rt.StrText(consts[nameIdx])
			obj := vm.pop()
			slot := &fr.fn.Chunk.ICSlots[slotIdx]
			v, merr := vm.rt.getMemberCached(slot, obj, name)
			if merr != nil {
				if !vm.throwOrReturn(fr, vm.rt.errorValue(merr)) {
					return UNIT, merr
				}
				continue
			}
			vm.push(v)
		case OP_SET_MEMBER:
			nameIdx := code[fr.ip]
			fr.ip++
			name := vm.rt.StrText(consts[nameIdx])
			val, obj := vm.pop(), vm.pop()
			if merr := vm.rt.setMember(obj, name, val); merr != nil {
				if !vm.throwOrReturn(fr, vm.rt.errorValue(merr)) {
					return UNIT, merr
				}
				continue
			}
			vm.push(val)
		case OP_SET_MEMBER_IC:
			nameIdx := code[fr.ip]
			slotIdx := code[fr.ip+1]
			fr.ip += 2
			name := vm.rt.StrText(consts[nameIdx])
			val, obj := vm.pop(), vm.pop()
			slot := &fr.fn.Chunk.ICSlots[slotIdx]
			if merr := vm.rt.setMemberCached(slot, obj, name, val); merr != nil {
				if !vm.throwOrReturn(fr, vm.rt.errorValue(merr)) {
					return UNIT, merr
				}
				continue
			}
			vm.push(val)

		case OP_CALL:
			argc := code[fr.ip]
			fr.ip++
			callee := vm.stack[vm.sp-argc-1]
			if callee.GetTag() != TagFunction {
				cerr := NewErrorKind(ErrNotCallable, "value is not callable: "+callee.TypeName())
				if !vm.throwOrReturn(fr, vm.rt.errorValue(cerr)) {
					return UNIT, cerr
				}
				continue
			}
			fobj := vm.rt.heap.Get(callee.AsObjID()).payload.(*FunctionObj)
			args := make([]Value, argc)
			copy(args, vm.stack[vm.sp-argc:vm.sp])
			switch fobj.Kind {
			case FuncBuiltin:
				vm.sp -= argc + 1
				res, berr := fobj.Builtin(vm.rt, args)
				if berr != nil {
					if !vm.throwOrReturn(fr, vm.rt.errorValue(berr)) {
						return UNIT, berr
					}
					continue
				}
				vm.push(res)
			case FuncBytecode:
				vm.sp -= 1 // drop callee, keep args as the new frame's base
				copy(vm.stack[vm.sp-argc:vm.sp], args)
				if cerr := vm.callBytecode(fobj.Bytecode, argc); cerr != nil {
					if !vm.throwOrReturn(fr, vm.rt.errorValue(cerr)) {
						return UNIT, cerr
					}
					continue
				}
			case FuncUser:
				vm.sp -= argc + 1
				res, uerr := vm.rt.invokeUser(fobj.User, args)
				if uerr != nil {
					if !vm.throwOrReturn(fr, vm.rt.errorValue(uerr)) {
						return UNIT, uerr
					}
					continue
				}
				vm.push(res)
			}

		case OP_CALL_METHOD_IC:
			// Caches the unbound *FunctionObj keyed by the receiver's
			// TypeHash (invokeMethodIC/LookupMethodByHash), not a
			// bindMethod closure — a bound closure can't be shared across
			// receivers, but the unbound function can, since invokeBound
			// takes the receiver as an explicit argument.
			nameIdx := code[fr.ip]
			argc := code[fr.ip+1]
			slotIdx := code[fr.ip+2]
			fr.ip += 3
			args := make([]Value, argc)
			copy(args, vm.stack[vm.sp-argc:vm.sp])
			vm.sp -= argc
			recv := vm.pop()

			name := vm.rt.StrText(consts[nameIdx])
			slot := &fr.fn.Chunk.ICSlots[slotIdx]
			res, rerr := vm.rt.invokeMethodIC(slot, recv, name, args)
			if rerr != nil {
				if !vm.throwOrReturn(fr, vm.rt.errorValue(rerr)) {
					return UNIT, rerr
				}
				continue
			}
			vm.push(res)

		case OP_RET:
			result := vm.pop()
			vm.popFrame(fr)
			if len(vm.frames) == 0 {
				return result, nil
			}
			vm.push(result)
		case OP_RET_UNIT:
			vm.popFrame(fr)
			if len(vm.frames) == 0 {
				return UNIT, nil
			}
			vm.push(UNIT)

		case OP_JUMP:
			fr.ip = code[fr.ip]
		case OP_JUMP_IF_FALSE:
			target := code[fr.ip]
			fr.ip++
			if !vm.pop().AsBool() {
				fr.ip = target
			}
		case OP_JUMP_IF_TRUE:
			target := code[fr.ip]
			fr.ip++
			if vm.pop().AsBool() {
				fr.ip = target
			}

		case OP_TRY_PUSH:
			catchIP := code[fr.ip]
			finallyIP := code[fr.ip+1]
			fr.ip += 2
			h := tryHandler{stackDepth: vm.sp}
			if catchIP != 0 {
				h.hasCatch, h.catchIP = true, catchIP
			}
			if finallyIP != 0 {
				h.hasFinally, h.finallyIP = true, finallyIP
			}
			fr.handlers = append(fr.handlers, h)
		case OP_TRY_POP:
			if n := len(fr.handlers); n > 0 {
				fr.handlers = fr.handlers[:n-1]
			}
		case OP_THROW:
			thrown := vm.pop()
			if !vm.throwOrReturn(fr, thrown) {
				if e, ok := vm.valueAsError(thrown); ok {
					return UNIT, e
				}
				return UNIT, NewErrorKind(ErrUnexpectedControlFlow, "uncaught throw")
			}

		case OP_TYPE_NAME:
			v := vm.pop()
			vm.push(vm.rt.MakeStr(v.TypeName()))

		case OP_IMPORT:
			pathIdx := code[fr.ip]
			fr.ip++
			path := vm.rt.StrText(consts[pathIdx])
			mod, ierr := vm.rt.loadModule(fr.fn.Name, path)
			if ierr != nil {
				if !vm.throwOrReturn(fr, vm.rt.errorValue(ierr)) {
					return UNIT, ierr
				}
				continue
			}
			vm.push(mod)

		default:
			return UNIT, NewErrorKind(ErrUnexpectedControlFlow, "unimplemented opcode")
		}

		if vm.sp == fr.base && len(vm.frames) == 1 {
			// vm is already on rt.activeFrames (pushed by Run/callTop) and
			// its markRoots covers the operand stack and every frame's
			// locals/env itself, so no extra roots need passing here.
			vm.rt.maybeCollect(nil)
		}
	}
	if vm.sp > 0 {
		return vm.pop(), nil
	}
	return UNIT, nil
}

func (vm *VM) popFrame(fr *vmFrame) {
	vm.rt.ExitCall()
	vm.frames = vm.frames[:len(vm.frames)-1]
}

// throwOrReturn searches the current frame's handler stack for a scope that
// catches `thrown`. Returning true means execution continues inside this
// frame at the handler's ip (catch, or finally-then-rethrow groundwork);
// false means the caller must unwind to Go (no handler anywhere).
//
// Cross-frame propagation (an exception thrown inside a callee with no
// local handler) unwinds frames one at a time, running any finally blocks
// it passes through, until a handler is found or the VM itself returns the
// pending value as a Go error to its caller.
func (vm *VM) throwOrReturn(fr *vmFrame, thrown Value) bool {
	for {
		for len(fr.handlers) > 0 {
			h := fr.handlers[len(fr.handlers)-1]
			fr.handlers = fr.handlers[:len(fr.handlers)-1]
			vm.sp = h.stackDepth
			if h.hasCatch {
				vm.push(thrown)
				fr.ip = h.catchIP
				return true
			}
			if h.hasFinally {
				fr.ip = h.finallyIP
				return true
			}
		}
		if len(vm.frames) <= 1 {
			return false
		}
		vm.frames = vm.frames[:len(vm.frames)-1]
		vm.rt.ExitCall()
		fr = &vm.frames[len(vm.frames)-1]
	}
}

func (vm *VM) valueAsError(v Value) (*Error, bool) {
	if v.GetTag() == TagStr {
		return NewErrorKind(ErrUnexpectedControlFlow, vm.rt.StrText(v)), true
	}
	return NewErrorKind(ErrUnexpectedControlFlow, vm.rt.Pretty(v)), true
}

func numericCompare(op OpCode, l, r Value) bool {
	lf, rf := l.AsFloat64(), r.AsFloat64()
	switch op {
	case OP_CMP_LT:
		return lf < rf
	case OP_CMP_LE:
		return lf <= rf
	case OP_CMP_GT:
		return lf > rf
	default:
		return lf >= rf
	}
}

// arith implements the numeric/string-concat rules of spec §4.F: int+int
// stays int, any float operand widens the result to float, and `+` on
// strings concatenates.
func (rt *Runtime) arith(op OpCode, l, r Value) (Value, *Error) {
	if l.GetTag() == TagStr && op == OP_ADD {
		return rt.MakeStr(rt.StrText(l) + rt.stringify(r)), nil
	}
	if r.GetTag() == TagStr && op == OP_ADD {
		return rt.MakeStr(rt.stringify(l) + rt.StrText(r)), nil
	}
	if !l.IsNumber() || !r.IsNumber() {
		return Value{}, NewErrorKind(ErrTypeMismatch, "arithmetic requires numbers, got "+l.TypeName()+" and "+r.TypeName())
	}
	if l.IsInt() && r.IsInt() {
		li, ri := l.AsI64(), r.AsI64()
		switch op {
		case OP_ADD:
			return FromI64(li + ri), nil
		case OP_SUB:
			return FromI64(li - ri), nil
		case OP_MUL:
			return FromI64(li * ri), nil
		case OP_DIV:
			if ri == 0 {
				return Value{}, NewErrorKind(ErrDivisionByZero, "division by zero")
			}
			return FromI64(li / ri), nil
		case OP_MOD:
			if ri == 0 {
				return Value{}, NewErrorKind(ErrDivisionByZero, "modulo by zero")
			}
			return FromI64(li % ri), nil
		}
	}
	lf, rf := l.AsFloat64(), r.AsFloat64()
	switch op {
	case OP_ADD:
		return FromF64(lf + rf), nil
	case OP_SUB:
		return FromF64(lf - rf), nil
	case OP_MUL:
		return FromF64(lf * rf), nil
	case OP_DIV:
		if rf == 0 {
			return Value{}, NewErrorKind(ErrDivisionByZero, "division by zero")
		}
		return FromF64(lf / rf), nil
	case OP_MOD:
		return FromF64(math.Mod(lf, rf)), nil
	}
	return Value{}, NewErrorKind(ErrTypeMismatch, "unsupported arithmetic operator")
}

// errorValue boxes an internal *Error as a dict value so thrown/caught
// values in user code are ordinary dyms values, per spec §4.K ("the thrown
// value is any Value; built-in faults wrap themselves as a dict with kind
// and message fields").
func (rt *Runtime) errorValue(e *Error) Value {
	d := NewDictObj()
	rt.DictInsert(d, rt.MakeStr("kind"), rt.MakeStr(string(e.Kind)))
	rt.DictInsert(d, rt.MakeStr("message"), rt.MakeStr(e.Message))
	return DictValue(rt.heap.Alloc(TagDict, d))
}

func (op OpCode) String() string {
	names := map[OpCode]string{
		OP_CONST: "CONST", OP_POP: "POP", OP_DUP: "DUP", OP_SWAP: "SWAP",
		OP_LOAD_TRUE: "LOAD_TRUE", OP_LOAD_FALSE: "LOAD_FALSE", OP_LOAD_UNIT: "LOAD_UNIT",
		OP_ADD: "ADD", OP_SUB: "SUB", OP_MUL: "MUL", OP_DIV: "DIV", OP_MOD: "MOD",
		OP_NEG: "NEG", OP_NOT: "NOT",
		OP_CMP_EQ: "CMP_EQ", OP_CMP_NE: "CMP_NE", OP_CMP_LT: "CMP_LT",
		OP_CMP_LE: "CMP_LE", OP_CMP_GT: "CMP_GT", OP_CMP_GE: "CMP_GE",
		OP_AND: "AND", OP_OR: "OR",
		OP_BUILDER_NEW: "BUILDER_NEW", OP_BUILDER_APPEND: "BUILDER_APPEND", OP_BUILDER_FINISH: "BUILDER_FINISH",
		OP_LOAD_GLOBAL: "LOAD_GLOBAL", OP_STORE_GLOBAL: "STORE_GLOBAL", OP_DEFINE_GLOBAL: "DEFINE_GLOBAL",
		OP_LOAD_LOCAL: "LOAD_LOCAL", OP_STORE_LOCAL: "STORE_LOCAL",
		OP_MAKE_LIST: "MAKE_LIST", OP_MAKE_TUPLE: "MAKE_TUPLE", OP_MAKE_SET: "MAKE_SET",
		OP_MAKE_DICT: "MAKE_DICT", OP_MAKE_RANGE: "MAKE_RANGE",
		OP_GET_INDEX: "GET_INDEX", OP_SET_INDEX: "SET_INDEX",
		OP_GET_MEMBER: "GET_MEMBER", OP_SET_MEMBER: "SET_MEMBER",
		OP_GET_MEMBER_IC: "GET_MEMBER_IC", OP_SET_MEMBER_IC: "SET_MEMBER_IC",
		OP_CALL: "CALL", OP_CALL_METHOD_IC: "CALL_METHOD_IC", OP_RET: "RET", OP_RET_UNIT: "RET_UNIT",
		OP_JUMP: "JUMP", OP_JUMP_IF_FALSE: "JUMP_IF_FALSE", OP_JUMP_IF_TRUE: "JUMP_IF_TRUE",
		OP_MATCH_LITERAL: "MATCH_LITERAL", OP_MATCH_ENUM: "MATCH_ENUM", OP_MATCH_TUPLE: "MATCH_TUPLE",
		OP_ITER_INIT: "ITER_INIT", OP_ITER_NEXT: "ITER_NEXT",
		OP_TRY_PUSH: "TRY_PUSH", OP_TRY_POP: "TRY_POP", OP_THROW: "THROW",
		OP_MAKE_STRUCT: "MAKE_STRUCT", OP_MAKE_ENUM: "MAKE_ENUM",
		OP_TYPE_NAME: "TYPE_NAME", OP_IMPORT: "IMPORT",
	}
	if s, ok := names[op]; ok {
		return s
	}
	return "?"
}
