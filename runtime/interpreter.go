package runtime

import "github.com/dymsrun/dyms/ast"

// Interpreter is the tree-walking executor (spec §6 "the AST interpreter
// runs directly" when no Frontend is wired). It carries no per-run state of
// its own; every call threads its Environment explicitly, the way the
// teacher's original Evaluate(stmt, scope) did, generalized to a Flow-typed
// control-signal scheme for return/break/continue/throw. The bytecode VM
// does not use Flow; it keeps its own try-handler stack.
type Interpreter struct {
	rt *Runtime
}

func NewInterpreter(rt *Runtime) *Interpreter { return &Interpreter{rt: rt} }

// RunProgram executes a top-level program in the runtime's global
// environment (spec §6 exec_program).
func (interp *Interpreter) RunProgram(prog *ast.Program) (Value, *Error) {
	return interp.evalProgramIn(prog, interp.rt.globalEnv)
}

// evalProgramIn executes a program's statements in env in order, returning
// the value of the last expression statement (used both for the top-level
// program and for a freshly loaded module's body, per spec §4.J).
func (interp *Interpreter) evalProgramIn(prog *ast.Program, env *Environment) (Value, *Error) {
	last := UNIT
	for _, stmt := range prog.Body {
		flow, val, err := interp.evalStmt(stmt, env)
		if err != nil {
			return Value{}, err
		}
		if flow.Kind == FlowThrow {
			return Value{}, NewThrownError(flow.Value, "uncaught exception: "+interp.rt.stringify(flow.Value))
		}
		if flow.Kind != FlowNone {
			return Value{}, NewErrorKind(ErrTopLevelBreakContinue, "break/continue/return outside a function")
		}
		last = val
	}
	return last, nil
}

// evalBlock runs a block's statements in a child scope, short-circuiting on
// the first non-None Flow (spec §4.E block scoping).
func (interp *Interpreter) evalBlock(block *ast.BlockStatement, parent *Environment) (Flow, *Error) {
	env := parent.Push()
	for _, stmt := range block.Statements {
		flow, _, err := interp.evalStmt(stmt, env)
		if err != nil {
			return noFlow, err
		}
		if flow.Kind != FlowNone {
			return flow, nil
		}
	}
	return noFlow, nil
}

// evalStmt evaluates one statement, returning a Flow signal for non-local
// control (return/break/continue/throw) and, for expression statements, the
// produced Value (used as a block or program's trailing value).
func (interp *Interpreter) evalStmt(stmt ast.Stmt, env *Environment) (Flow, Value, *Error) {
	switch n := stmt.(type) {
	case *ast.VarDeclaration:
		val, err := interp.evalExpr(n.Value, env)
		if err != nil {
			return noFlow, Value{}, err
		}
		env.Define(n.Identifier, val, !n.Constant)
		return noFlow, val, nil

	case *ast.BlockStatement:
		flow, err := interp.evalBlock(n, env)
		return flow, UNIT, err

	case *ast.IfStatement:
		return interp.evalIf(n, env)

	case *ast.ForStatement:
		return interp.evalFor(n, env)

	case *ast.WhileStatement:
		return interp.evalWhile(n, env)

	case *ast.ReturnStatement:
		if n.Value == nil {
			return Flow{Kind: FlowReturn, Value: UNIT}, UNIT, nil
		}
		val, err := interp.evalExpr(n.Value, env)
		if err != nil {
			return noFlow, Value{}, err
		}
		return Flow{Kind: FlowReturn, Value: val}, UNIT, nil

	case *ast.BreakStatement:
		return Flow{Kind: FlowBreak}, UNIT, nil

	case *ast.ContinueStatement:
		return Flow{Kind: FlowContinue}, UNIT, nil

	case *ast.ThrowStatement:
		val, err := interp.evalExpr(n.Value, env)
		if err != nil {
			return noFlow, Value{}, err
		}
		return Flow{Kind: FlowThrow, Value: val}, UNIT, nil

	case *ast.TryStatement:
		return interp.evalTry(n, env)

	case *ast.ImportStatement:
		// Resolve against the module currently loading, if any.
		from := ""
		if st := interp.rt.modules.stack; len(st) > 0 {
			from = st[len(st)-1]
		}
		mod, err := interp.rt.loadModule(from, n.Path)
		if err != nil {
			return noFlow, Value{}, err
		}
		name := n.Alias
		if name == "" {
			name = n.Path
		}
		env.Define(name, mod, true)
		return noFlow, mod, nil

	case *ast.FunctionDeclaration:
		interp.defineFunctionDeclaration(n, env)
		return noFlow, UNIT, nil

	case *ast.StructDeclaration:
		names := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			names[i] = f.Name
		}
		interp.rt.RegisterStructType(n.Name, names)
		return noFlow, UNIT, nil

	case *ast.EnumDeclaration:
		variants := make([]EnumVariantInfo, len(n.Variants))
		for i, v := range n.Variants {
			variants[i] = EnumVariantInfo{Name: v.Name, Fields: v.Fields}
		}
		interp.rt.RegisterEnumType(n.Name, variants)
		return noFlow, UNIT, nil

	default:
		// every remaining Stmt also implements Expr (literals, calls, etc.)
		expr, ok := stmt.(ast.Expr)
		if !ok {
			return noFlow, Value{}, NewErrorKind(ErrUnexpectedControlFlow, "unhandled statement node")
		}
		val, err := interp.evalExpr(expr, env)
		return noFlow, val, err
	}
}

func (interp *Interpreter) defineFunctionDeclaration(n *ast.FunctionDeclaration, env *Environment) {
	params := make([]Param, len(n.Params))
	for i, p := range n.Params {
		params[i] = Param{Name: p.Name, TypeAnn: p.TypeAnn}
	}
	uf := &UserFunction{
		Name:          n.Name,
		Params:        params,
		Body:          n.Body,
		Env:           env.Freeze(),
		DefaultExprs:  n.Defaults,
		ReturnTypeAnn: n.ReturnTypeAnn,
	}
	fnObj := &FunctionObj{Kind: FuncUser, Name: n.Name, User: uf}
	fnVal := FunctionValue(interp.rt.heap.Alloc(TagFunction, fnObj))

	if n.Receiver != "" {
		interp.rt.RegisterMethod(n.Receiver, n.Name, fnObj)
		return
	}
	env.Define(n.Name, fnVal, true)
}

func (interp *Interpreter) evalIf(n *ast.IfStatement, env *Environment) (Flow, Value, *Error) {
	cond, err := interp.evalExpr(n.Condition, env)
	if err != nil {
		return noFlow, Value{}, err
	}
	if cond.AsBool() {
		flow, ferr := interp.evalBlock(n.Consequence, env)
		return flow, UNIT, ferr
	}
	if n.Alternative == nil {
		return noFlow, UNIT, nil
	}
	return interp.evalStmt(n.Alternative, env)
}

func (interp *Interpreter) evalWhile(n *ast.WhileStatement, env *Environment) (Flow, Value, *Error) {
	for {
		cond, err := interp.evalExpr(n.Condition, env)
		if err != nil {
			return noFlow, Value{}, err
		}
		if !cond.AsBool() {
			return noFlow, UNIT, nil
		}
		flow, ferr := interp.evalBlock(n.Body, env)
		if ferr != nil {
			return noFlow, Value{}, ferr
		}
		switch flow.Kind {
		case FlowBreak:
			return noFlow, UNIT, nil
		case FlowReturn, FlowThrow:
			return flow, UNIT, nil
		}
		interp.rt.maybeCollect(env)
	}
}

// evalFor drives foreach iteration over list/range/set (one binder) or dict
// (two binders, key and value) per spec §4.F.
func (interp *Interpreter) evalFor(n *ast.ForStatement, env *Environment) (Flow, Value, *Error) {
	iterVal, err := interp.evalExpr(n.Iter, env)
	if err != nil {
		return noFlow, Value{}, err
	}

	runBody := func(bind func(loopEnv *Environment)) (Flow, *Error) {
		loopEnv := env.Push()
		bind(loopEnv)
		flow, ferr := interp.evalBlock(n.Body, loopEnv)
		return flow, ferr
	}

	switch iterVal.GetTag() {
	case TagList:
		l := interp.rt.heap.Get(iterVal.AsObjID()).payload.(*ListObj)
		for _, elem := range l.Elems {
			flow, ferr := runBody(func(e *Environment) { e.Define(n.Binders[0], elem, true) })
			if ferr != nil {
				return noFlow, Value{}, ferr
			}
			if flow.Kind == FlowBreak {
				break
			}
			if flow.Kind == FlowReturn || flow.Kind == FlowThrow {
				return flow, UNIT, nil
			}
		}
	case TagSet:
		s := interp.rt.heap.Get(iterVal.AsObjID()).payload.(*SetObj)
		for _, elem := range interp.rt.SetItems(s) {
			flow, ferr := runBody(func(e *Environment) { e.Define(n.Binders[0], elem, true) })
			if ferr != nil {
				return noFlow, Value{}, ferr
			}
			if flow.Kind == FlowBreak {
				break
			}
			if flow.Kind == FlowReturn || flow.Kind == FlowThrow {
				return flow, UNIT, nil
			}
		}
	case TagRange:
		r := interp.rt.heap.Get(iterVal.AsObjID()).payload.(*RangeObj)
		step := r.step()
		i := r.Start
		for (step > 0 && (i < r.End || (r.Inclusive && i == r.End))) ||
			(step < 0 && (i > r.End || (r.Inclusive && i == r.End))) {
			flow, ferr := runBody(func(e *Environment) { e.Define(n.Binders[0], FromI64(i), true) })
			if ferr != nil {
				return noFlow, Value{}, ferr
			}
			if flow.Kind == FlowBreak {
				break
			}
			if flow.Kind == FlowReturn || flow.Kind == FlowThrow {
				return flow, UNIT, nil
			}
			i += step
		}
	case TagDict:
		d := interp.rt.heap.Get(iterVal.AsObjID()).payload.(*DictObj)
		keyName := n.Binders[0]
		valName := ""
		if len(n.Binders) > 1 {
			valName = n.Binders[1]
		}
		for _, k := range interp.rt.DictKeys(d) {
			v, _ := interp.rt.DictGet(d, k)
			flow, ferr := runBody(func(e *Environment) {
				e.Define(keyName, k, true)
				if valName != "" {
					e.Define(valName, v, true)
				}
			})
			if ferr != nil {
				return noFlow, Value{}, ferr
			}
			if flow.Kind == FlowBreak {
				break
			}
			if flow.Kind == FlowReturn || flow.Kind == FlowThrow {
				return flow, UNIT, nil
			}
		}
	default:
		return noFlow, Value{}, NewErrorKind(ErrInvalidIteratorType, "cannot iterate over "+iterVal.TypeName())
	}
	return noFlow, UNIT, nil
}

// evalTry implements try/catch/finally with a pending-exception buffer
// (spec §4.K): Finally always runs; if Catch ran and didn't re-throw, the
// pending exception is cleared, otherwise whatever is pending after Finally
// propagates.
func (interp *Interpreter) evalTry(n *ast.TryStatement, env *Environment) (Flow, Value, *Error) {
	flow, err := interp.evalBlock(n.TryBlock, env)
	if err != nil {
		return noFlow, Value{}, err
	}

	if flow.Kind == FlowThrow && n.CatchBlock != nil {
		catchEnv := env.Push()
		if n.ErrorVar != "" {
			catchEnv.Define(n.ErrorVar, flow.Value, true)
		}
		cflow, cerr := interp.evalBlock(n.CatchBlock, catchEnv)
		if cerr != nil {
			return noFlow, Value{}, cerr
		}
		flow = cflow
	}

	if n.FinallyBlock != nil {
		fflow, ferr := interp.evalBlock(n.FinallyBlock, env)
		if ferr != nil {
			return noFlow, Value{}, ferr
		}
		if fflow.Kind != FlowNone {
			// the finally block's own control effect takes precedence
			// (spec §4.K), discarding whatever was pending from try/catch.
			flow = fflow
		}
	}

	return flow, UNIT, nil
}

// evalExpr evaluates an expression node to a Value. Control-flow escapes
// (return/break/continue/throw) can only originate inside a block a
// statement owns (if/for/while/try bodies, function bodies); an expression
// occurring directly never produces a Flow itself, so callers that only
// need a Value (conditions, call arguments, match subjects) can call this
// directly.
func (interp *Interpreter) evalExpr(expr ast.Expr, env *Environment) (Value, *Error) {
	switch n := expr.(type) {
	case *ast.IntLiteral:
		return FromI64(n.Value), nil
	case *ast.FloatLiteral:
		return FromF64(n.Value), nil
	case *ast.BooleanLiteral:
		return FromBool(n.Value), nil
	case *ast.NullLiteral:
		return UNIT, nil
	case *ast.StringLiteral:
		return interp.evalStringLiteral(n, env)
	case *ast.Identifier:
		v, ok := env.Get(n.Symbol)
		if !ok {
			return Value{}, NewErrorAt(ErrUndefinedIdentifier, "undefined identifier: "+n.Symbol, n.Line, n.Column)
		}
		return v, nil
	case *ast.BinaryExpr:
		return interp.evalBinary(n, env)
	case *ast.UnaryExpr:
		return interp.evalUnary(n, env)
	case *ast.AssignmentExpr:
		return interp.evalAssignment(n, env)
	case *ast.VarDeclaration:
		val, err := interp.evalExpr(n.Value, env)
		if err != nil {
			return Value{}, err
		}
		env.Define(n.Identifier, val, !n.Constant)
		return val, nil
	case *ast.CallExpr:
		return interp.evalCall(n, env)
	case *ast.MemberExpr:
		obj, err := interp.evalExpr(n.Object, env)
		if err != nil {
			return Value{}, err
		}
		return interp.rt.getMember(obj, n.Property.Symbol)
	case *ast.IndexExpr:
		obj, err := interp.evalExpr(n.Object, env)
		if err != nil {
			return Value{}, err
		}
		idx, err := interp.evalExpr(n.Index, env)
		if err != nil {
			return Value{}, err
		}
		return interp.rt.getIndex(obj, idx)
	case *ast.ArrayLiteral:
		elems := make([]Value, len(n.Elements))
		for i, e := range n.Elements {
			v, err := interp.evalExpr(e, env)
			if err != nil {
				return Value{}, err
			}
			elems[i] = v
		}
		return ListValue(interp.rt.heap.Alloc(TagList, &ListObj{Elems: elems})), nil
	case *ast.TupleLiteral:
		elems := make([]Value, len(n.Elements))
		for i, e := range n.Elements {
			v, err := interp.evalExpr(e, env)
			if err != nil {
				return Value{}, err
			}
			elems[i] = v
		}
		return TupleValue(interp.rt.heap.Alloc(TagTuple, &TupleObj{Elems: elems})), nil
	case *ast.SetLiteral:
		s := NewSetObj()
		for _, e := range n.Elements {
			v, err := interp.evalExpr(e, env)
			if err != nil {
				return Value{}, err
			}
			interp.rt.SetAdd(s, v)
		}
		return SetValue(interp.rt.heap.Alloc(TagSet, s)), nil
	case *ast.RangeExpr:
		start, err := interp.evalExpr(n.Start, env)
		if err != nil {
			return Value{}, err
		}
		end, err := interp.evalExpr(n.End, env)
		if err != nil {
			return Value{}, err
		}
		r := &RangeObj{Start: start.AsI64(), End: end.AsI64(), Inclusive: n.Inclusive}
		return RangeValue(interp.rt.heap.Alloc(TagRange, r)), nil
	case *ast.MapLiteral:
		d := NewDictObj()
		for _, prop := range n.Properties {
			k, err := interp.evalExpr(prop.Key, env)
			if err != nil {
				return Value{}, err
			}
			v, err := interp.evalExpr(prop.Value, env)
			if err != nil {
				return Value{}, err
			}
			if derr := interp.rt.DictInsert(d, k, v); derr != nil {
				return Value{}, derr
			}
		}
		return DictValue(interp.rt.heap.Alloc(TagDict, d)), nil
	case *ast.StructLiteral:
		return interp.evalStructLiteral(n, env)
	case *ast.EnumConstructExpr:
		return interp.evalEnumConstruct(n, env)
	case *ast.MatchExpr:
		return interp.evalMatch(n, env)
	case *ast.FunctionExpression:
		params := make([]Param, len(n.Params))
		for i, p := range n.Params {
			params[i] = Param{Name: p.Name, TypeAnn: p.TypeAnn}
		}
		closureEnv := env.Freeze()
		if n.Name != "" {
			// give a named function expression its own frame so self-
			// reference (for recursion) doesn't leak the name into the
			// enclosing scope.
			closureEnv = closureEnv.Push()
		}
		uf := &UserFunction{
			Name: n.Name, Params: params, Body: n.Body,
			Env: closureEnv, DefaultExprs: n.Defaults, ReturnTypeAnn: n.ReturnTypeAnn,
		}
		fnObj := &FunctionObj{Kind: FuncUser, Name: n.Name, User: uf}
		fnVal := FunctionValue(interp.rt.heap.Alloc(TagFunction, fnObj))
		if n.Name != "" {
			closureEnv.Define(n.Name, fnVal, true)
		}
		return fnVal, nil
	default:
		return Value{}, NewErrorKind(ErrUnexpectedControlFlow, "unhandled expression node")
	}
}

func (interp *Interpreter) evalStringLiteral(n *ast.StringLiteral, env *Environment) (Value, *Error) {
	if plain, ok := n.Plain(); ok {
		return interp.rt.MakeStr(plain), nil
	}
	b := interp.rt.AcquireBuilder(32)
	for i, part := range n.Parts {
		b.WriteString(part)
		if i < len(n.Exprs) {
			v, err := interp.evalExpr(n.Exprs[i], env)
			if err != nil {
				interp.rt.ReleaseBuilder(b)
				return Value{}, err
			}
			b.WriteString(interp.rt.stringify(v))
		}
	}
	s := interp.rt.MakeStr(b.String())
	interp.rt.ReleaseBuilder(b)
	return s, nil
}

func (interp *Interpreter) evalStructLiteral(n *ast.StructLiteral, env *Environment) (Value, *Error) {
	info, ok := interp.rt.structTypes[n.Name]
	if !ok {
		return Value{}, NewErrorKind(ErrUnknownStruct, "unknown struct type: "+n.Name)
	}
	values := make([]Value, len(info.FieldNames))
	for _, prop := range n.Fields {
		ident, ok := prop.Key.(*ast.Identifier)
		if !ok {
			return Value{}, NewErrorKind(ErrUnknownMember, "struct literal field key must be an identifier")
		}
		v, err := interp.evalExpr(prop.Value, env)
		if err != nil {
			return Value{}, err
		}
		idx := -1
		for i, fname := range info.FieldNames {
			if fname == ident.Symbol {
				idx = i
				break
			}
		}
		if idx == -1 {
			return Value{}, NewErrorKind(ErrUnknownMember, "no field '"+ident.Symbol+"' on "+n.Name)
		}
		values[idx] = v
	}
	obj := &StructObj{TypeName: n.Name, TypeHash: info.TypeHash, FieldNames: info.FieldNames, FieldValues: values}
	return StructValue(interp.rt.heap.Alloc(TagStruct, obj)), nil
}

func (interp *Interpreter) evalEnumConstruct(n *ast.EnumConstructExpr, env *Environment) (Value, *Error) {
	enumInfo, ok := interp.rt.enumTypes[n.TypeName]
	if !ok {
		return Value{}, NewErrorKind(ErrUnknownStruct, "unknown enum type: "+n.TypeName)
	}
	variant, ok := enumInfo.Variants[n.VariantName]
	if !ok {
		return Value{}, NewErrorKind(ErrUnknownEnumVariant, "unknown variant "+n.VariantName+" on "+n.TypeName)
	}
	if len(n.Args) != len(variant.Fields) {
		return Value{}, NewErrorKind(ErrArgumentCountMismatch, "wrong arity constructing "+n.TypeName+"#"+n.VariantName)
	}
	obj := &EnumObj{TypeName: n.TypeName, VariantName: n.VariantName}
	if len(n.Args) == 1 {
		v, err := interp.evalExpr(n.Args[0], env)
		if err != nil {
			return Value{}, err
		}
		obj.HasFast = true
		obj.FastPayload = v
	} else if len(n.Args) > 1 {
		payload := make([]Value, len(n.Args))
		for i, a := range n.Args {
			v, err := interp.evalExpr(a, env)
			if err != nil {
				return Value{}, err
			}
			payload[i] = v
		}
		obj.Payload = payload
	}
	return EnumValue(interp.rt.heap.Alloc(TagEnum, obj)), nil
}

func (interp *Interpreter) evalUnary(n *ast.UnaryExpr, env *Environment) (Value, *Error) {
	switch n.Operator {
	case "++", "--":
		ident, ok := n.Operand.(*ast.Identifier)
		if !ok {
			return Value{}, NewErrorKind(ErrInvalidAssignmentTarget, n.Operator+" requires an identifier operand")
		}
		cur, ok := env.Get(ident.Symbol)
		if !ok {
			return Value{}, NewErrorKind(ErrUndefinedIdentifier, "undefined identifier: "+ident.Symbol)
		}
		delta := int64(1)
		if n.Operator == "--" {
			delta = -1
		}
		next, aerr := interp.rt.arith(OP_ADD, cur, FromI64(delta))
		if aerr != nil {
			return Value{}, aerr
		}
		if ok, immutable := env.Assign(ident.Symbol, next); !ok {
			if immutable {
				return Value{}, NewErrorKind(ErrImmutableReassignment, "cannot reassign immutable variable '"+ident.Symbol+"'")
			}
			return Value{}, NewErrorKind(ErrUndefinedIdentifier, "undefined identifier: "+ident.Symbol)
		}
		if n.Prefix {
			return next, nil
		}
		return cur, nil
	default:
		v, err := interp.evalExpr(n.Operand, env)
		if err != nil {
			return Value{}, err
		}
		switch n.Operator {
		case "-":
			if v.IsInt() {
				return FromI64(-v.AsI64()), nil
			}
			return FromF64(-v.AsF64()), nil
		case "!":
			return FromBool(!v.AsBool()), nil
		default:
			return Value{}, NewErrorKind(ErrUnexpectedControlFlow, "unknown unary operator "+n.Operator)
		}
	}
}

var binaryOpcode = map[string]OpCode{
	"+": OP_ADD, "-": OP_SUB, "*": OP_MUL, "/": OP_DIV, "%": OP_MOD,
	"<": OP_CMP_LT, "<=": OP_CMP_LE, ">": OP_CMP_GT, ">=": OP_CMP_GE,
}

func (interp *Interpreter) evalBinary(n *ast.BinaryExpr, env *Environment) (Value, *Error) {
	if n.Operator == "&&" {
		l, err := interp.evalExpr(n.Left, env)
		if err != nil {
			return Value{}, err
		}
		if !l.AsBool() {
			return l, nil
		}
		return interp.evalExpr(n.Right, env)
	}
	if n.Operator == "||" {
		l, err := interp.evalExpr(n.Left, env)
		if err != nil {
			return Value{}, err
		}
		if l.AsBool() {
			return l, nil
		}
		return interp.evalExpr(n.Right, env)
	}

	l, err := interp.evalExpr(n.Left, env)
	if err != nil {
		return Value{}, err
	}
	r, err := interp.evalExpr(n.Right, env)
	if err != nil {
		return Value{}, err
	}

	switch n.Operator {
	case "==":
		return FromBool(interp.rt.Equal(l, r)), nil
	case "!=":
		return FromBool(!interp.rt.Equal(l, r)), nil
	}
	if op, ok := binaryOpcode[n.Operator]; ok {
		switch op {
		case OP_CMP_LT, OP_CMP_LE, OP_CMP_GT, OP_CMP_GE:
			return FromBool(numericCompare(op, l, r)), nil
		default:
			return interp.rt.arith(op, l, r)
		}
	}
	return Value{}, NewErrorAt(ErrUnexpectedControlFlow, "unknown binary operator "+n.Operator, n.Line, n.Column)
}

func (interp *Interpreter) evalAssignment(n *ast.AssignmentExpr, env *Environment) (Value, *Error) {
	newVal, err := interp.evalExpr(n.Value, env)
	if err != nil {
		return Value{}, err
	}

	if n.Operator != "" {
		cur, cerr := interp.evalExpr(n.Assignee, env)
		if cerr != nil {
			return Value{}, cerr
		}
		op, ok := binaryOpcode[n.Operator[:len(n.Operator)-1]]
		if !ok {
			return Value{}, NewErrorKind(ErrUnexpectedControlFlow, "unknown compound operator "+n.Operator)
		}
		newVal, cerr = interp.rt.arith(op, cur, newVal)
		if cerr != nil {
			return Value{}, cerr
		}
	}

	switch target := n.Assignee.(type) {
	case *ast.Identifier:
		ok, immutable := env.Assign(target.Symbol, newVal)
		if !ok {
			if immutable {
				return Value{}, NewErrorAt(ErrImmutableReassignment, "cannot reassign immutable variable '"+target.Symbol+"'", n.Line, n.Column)
			}
			return Value{}, NewErrorAt(ErrUndefinedIdentifier, "undefined identifier: "+target.Symbol, n.Line, n.Column)
		}
		return newVal, nil
	case *ast.MemberExpr:
		obj, err := interp.evalExpr(target.Object, env)
		if err != nil {
			return Value{}, err
		}
		if serr := interp.rt.setMember(obj, target.Property.Symbol, newVal); serr != nil {
			return Value{}, serr
		}
		return newVal, nil
	case *ast.IndexExpr:
		obj, err := interp.evalExpr(target.Object, env)
		if err != nil {
			return Value{}, err
		}
		idx, err := interp.evalExpr(target.Index, env)
		if err != nil {
			return Value{}, err
		}
		if serr := interp.rt.setIndex(obj, idx, newVal); serr != nil {
			return Value{}, serr
		}
		return newVal, nil
	default:
		return Value{}, NewErrorAt(ErrInvalidAssignmentTarget, "invalid assignment target", n.Line, n.Column)
	}
}

func (interp *Interpreter) evalCall(n *ast.CallExpr, env *Environment) (Value, *Error) {
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := interp.evalExpr(a, env)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	callee, err := interp.evalExpr(n.Callee, env)
	if err != nil {
		return Value{}, err
	}
	v, cerr := interp.rt.CallValue(callee, args)
	if cerr != nil && cerr.Line == 0 {
		cerr.Line, cerr.Column = n.Line, n.Column
	}
	return v, cerr
}
