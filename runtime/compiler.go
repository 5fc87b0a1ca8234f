package runtime

import "github.com/dymsrun/dyms/ast"

// Compiler is the Frontend implementation (spec §6): AST to bytecode. It
// only handles the subset of the language that maps cleanly onto flat
// local/global slots — no closures capturing an enclosing function's
// locals, no struct/enum declarations, no match/try. Compile returns an
// error for anything outside that subset, and HybridEngine falls back to
// the tree-walking Interpreter for the whole program (spec §6 "when
// [compilation] is absent, the AST interpreter runs directly" — generalized
// here to "when compilation doesn't apply to this program").
type Compiler struct {
	rt *Runtime
}

func NewCompiler(rt *Runtime) *Compiler { return &Compiler{rt: rt} }

// compileScope is one function body's worth of local-slot bookkeeping.
type compileScope struct {
	chunk       *Chunk
	locals      map[string]int
	localsMax   int
	isTopLevel  bool
	tempCounter int
}

func newCompileScope(isTop bool) *compileScope {
	return &compileScope{chunk: NewChunk(), locals: map[string]int{}, isTopLevel: isTop}
}

func (s *compileScope) ensureLocal(name string) int {
	if slot, ok := s.locals[name]; ok {
		return slot
	}
	slot := s.localsMax
	s.locals[name] = slot
	s.localsMax++
	return slot
}

// unsupportedErr marks a node outside the compiled subset; satisfies the
// `error` interface Frontend.Compile expects.
type unsupportedErr struct{ what string }

func (u *unsupportedErr) Error() string { return "cannot compile: " + u.what }

// Compile implements the Frontend capability (spec §6 exec_executable).
func (c *Compiler) Compile(module interface{}) (*BytecodeFunction, error) {
	prog, ok := module.(*ast.Program)
	if !ok {
		return nil, &unsupportedErr{"module is not a *ast.Program"}
	}
	s := newCompileScope(true)
	for _, stmt := range prog.Body {
		if err := c.compileStmt(s, stmt); err != nil {
			return nil, err
		}
	}
	s.chunk.emit(0, OP_LOAD_UNIT)
	s.chunk.emit(0, OP_RET)
	return &BytecodeFunction{Name: "<main>", Chunk: s.chunk, LocalsCount: s.localsMax}, nil
}

// emitDefineStmt binds the value already on top of the stack to name as a
// statement: OP_DEFINE_GLOBAL consumes it, but OP_STORE_LOCAL only peeks, so
// the local path needs its own trailing pop.
func (c *Compiler) emitDefineStmt(s *compileScope, name string) {
	if s.isTopLevel {
		s.chunk.emit(0, OP_DEFINE_GLOBAL, c.nameConst(s, name))
		return
	}
	slot := s.ensureLocal(name)
	s.chunk.emit(0, OP_STORE_LOCAL, slot)
	s.chunk.emit(0, OP_POP)
}

func (c *Compiler) compileBlock(s *compileScope, b *ast.BlockStatement) error {
	for _, stmt := range b.Statements {
		if err := c.compileStmt(s, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) nameConst(s *compileScope, name string) int {
	return c.rt.addConst(s.chunk, c.rt.MakeStr(name), name)
}

func (c *Compiler) compileStmt(s *compileScope, stmt ast.Stmt) error {
	switch n := stmt.(type) {
	case *ast.VarDeclaration:
		if err := c.compileExpr(s, n.Value); err != nil {
			return err
		}
		c.emitDefineStmt(s, n.Identifier)
		return nil

	case *ast.BlockStatement:
		return c.compileBlock(s, n)

	case *ast.IfStatement:
		if err := c.compileExpr(s, n.Condition); err != nil {
			return err
		}
		jfalse := s.chunk.emit(0, OP_JUMP_IF_FALSE, -1)
		if err := c.compileBlock(s, n.Consequence); err != nil {
			return err
		}
		jend := s.chunk.emit(0, OP_JUMP, -1)
		s.chunk.patchOperand(jfalse+1, len(s.chunk.Code))
		if n.Alternative != nil {
			if err := c.compileStmt(s, n.Alternative); err != nil {
				return err
			}
		}
		s.chunk.patchOperand(jend+1, len(s.chunk.Code))
		return nil

	case *ast.WhileStatement:
		start := len(s.chunk.Code)
		if err := c.compileExpr(s, n.Condition); err != nil {
			return err
		}
		jfalse := s.chunk.emit(0, OP_JUMP_IF_FALSE, -1)
		if err := c.compileBlock(s, n.Body); err != nil {
			return err
		}
		s.chunk.emit(0, OP_JUMP, start)
		s.chunk.patchOperand(jfalse+1, len(s.chunk.Code))
		return nil

	case *ast.ForStatement:
		return c.compileFor(s, n)

	case *ast.ReturnStatement:
		if n.Value == nil {
			s.chunk.emit(0, OP_RET_UNIT)
			return nil
		}
		if err := c.compileExpr(s, n.Value); err != nil {
			return err
		}
		s.chunk.emit(0, OP_RET)
		return nil

	case *ast.FunctionDeclaration:
		if n.Receiver != "" {
			return &unsupportedErr{"struct methods"}
		}
		fn, err := c.compileFunction(n.Name, n.Params, n.Body)
		if err != nil {
			return err
		}
		obj := &FunctionObj{Kind: FuncBytecode, Name: n.Name, Bytecode: fn}
		idx := c.rt.addConst(s.chunk, FunctionValue(c.rt.heap.Alloc(TagFunction, obj)), "")
		s.chunk.emit(0, OP_CONST, idx)
		c.emitDefineStmt(s, n.Name)
		return nil

	case *ast.BreakStatement, *ast.ContinueStatement:
		return &unsupportedErr{"break/continue"}
	case *ast.TryStatement:
		return &unsupportedErr{"try/catch/finally"}
	case *ast.ThrowStatement:
		return &unsupportedErr{"throw"}
	case *ast.ImportStatement:
		return &unsupportedErr{"import"}
	case *ast.StructDeclaration:
		return &unsupportedErr{"struct declarations"}
	case *ast.EnumDeclaration:
		return &unsupportedErr{"enum declarations"}

	default:
		expr, ok := stmt.(ast.Expr)
		if !ok {
			return &unsupportedErr{"unknown statement node"}
		}
		if err := c.compileExpr(s, expr); err != nil {
			return err
		}
		s.chunk.emit(0, OP_POP)
		return nil
	}
}

// compileFor only supports the common "range over a single binder" shape;
// dict/set/list foreach and break/continue inside a loop body fall back to
// the interpreter via the ForStatement's own body containing an unsupported
// node (break/continue), or by this function itself for multi-binder forms
// and non-range iterables.
func (c *Compiler) compileFor(s *compileScope, n *ast.ForStatement) error {
	if len(n.Binders) != 1 {
		return &unsupportedErr{"multi-binder foreach"}
	}
	rangeExpr, ok := n.Iter.(*ast.RangeExpr)
	if !ok {
		return &unsupportedErr{"foreach over non-range iterable"}
	}
	s.tempCounter++
	endSlot := s.ensureLocal(tempSlotName("for_end", s.tempCounter))

	slot := s.ensureLocal(n.Binders[0])
	if err := c.compileExpr(s, rangeExpr.Start); err != nil {
		return err
	}
	s.chunk.emit(0, OP_STORE_LOCAL, slot)
	s.chunk.emit(0, OP_POP)

	if err := c.compileExpr(s, rangeExpr.End); err != nil {
		return err
	}
	s.chunk.emit(0, OP_STORE_LOCAL, endSlot)
	s.chunk.emit(0, OP_POP)

	start := len(s.chunk.Code)
	s.chunk.emit(0, OP_LOAD_LOCAL, slot)
	s.chunk.emit(0, OP_LOAD_LOCAL, endSlot)
	if rangeExpr.Inclusive {
		s.chunk.emit(0, OP_CMP_LE)
	} else {
		s.chunk.emit(0, OP_CMP_LT)
	}
	jfalse := s.chunk.emit(0, OP_JUMP_IF_FALSE, -1)

	if err := c.compileBlock(s, n.Body); err != nil {
		return err
	}

	s.chunk.emit(0, OP_LOAD_LOCAL, slot)
	oneIdx := c.rt.addConst(s.chunk, FromI64(1), "")
	s.chunk.emit(0, OP_CONST, oneIdx)
	s.chunk.emit(0, OP_ADD)
	s.chunk.emit(0, OP_STORE_LOCAL, slot)
	s.chunk.emit(0, OP_POP)
	s.chunk.emit(0, OP_JUMP, start)
	s.chunk.patchOperand(jfalse+1, len(s.chunk.Code))
	return nil
}

func tempSlotName(tag string, n int) string {
	return "$" + tag + "#" + formatInt(int64(n))
}

func (c *Compiler) compileFunction(name string, params []ast.Param, body *ast.BlockStatement) (*BytecodeFunction, error) {
	inner := newCompileScope(false)
	ps := make([]Param, len(params))
	for i, p := range params {
		slot := inner.ensureLocal(p.Name)
		ps[i] = Param{Name: p.Name, TypeAnn: p.TypeAnn}
		_ = slot
	}
	if err := c.compileBlock(inner, body); err != nil {
		return nil, err
	}
	inner.chunk.emit(0, OP_LOAD_UNIT)
	inner.chunk.emit(0, OP_RET)
	return &BytecodeFunction{Name: name, Params: ps, Chunk: inner.chunk, LocalsCount: inner.localsMax}, nil
}

var compileBinaryOp = map[string]OpCode{
	"+": OP_ADD, "-": OP_SUB, "*": OP_MUL, "/": OP_DIV, "%": OP_MOD,
	"==": OP_CMP_EQ, "!=": OP_CMP_NE,
	"<": OP_CMP_LT, "<=": OP_CMP_LE, ">": OP_CMP_GT, ">=": OP_CMP_GE,
}

func (c *Compiler) compileExpr(s *compileScope, expr ast.Expr) error {
	switch n := expr.(type) {
	case *ast.IntLiteral:
		idx := c.rt.addConst(s.chunk, FromI64(n.Value), "")
		s.chunk.emit(0, OP_CONST, idx)
	case *ast.FloatLiteral:
		idx := c.rt.addConst(s.chunk, FromF64(n.Value), "")
		s.chunk.emit(0, OP_CONST, idx)
	case *ast.BooleanLiteral:
		if n.Value {
			s.chunk.emit(0, OP_LOAD_TRUE)
		} else {
			s.chunk.emit(0, OP_LOAD_FALSE)
		}
	case *ast.NullLiteral:
		s.chunk.emit(0, OP_LOAD_UNIT)
	case *ast.StringLiteral:
		plain, ok := n.Plain()
		if !ok {
			return &unsupportedErr{"interpolated string"}
		}
		idx := c.rt.addConst(s.chunk, c.rt.MakeStr(plain), plain)
		s.chunk.emit(0, OP_CONST, idx)
	case *ast.Identifier:
		if slot, ok := s.locals[n.Symbol]; ok {
			s.chunk.emit(0, OP_LOAD_LOCAL, slot)
		} else {
			s.chunk.emit(0, OP_LOAD_GLOBAL, c.nameConst(s, n.Symbol))
		}
	case *ast.UnaryExpr:
		if n.Operator == "++" || n.Operator == "--" {
			return &unsupportedErr{"++/-- operator"}
		}
		if err := c.compileExpr(s, n.Operand); err != nil {
			return err
		}
		switch n.Operator {
		case "-":
			s.chunk.emit(0, OP_NEG)
		case "!":
			s.chunk.emit(0, OP_NOT)
		default:
			return &unsupportedErr{"unary operator " + n.Operator}
		}
	case *ast.BinaryExpr:
		if n.Operator == "&&" || n.Operator == "||" {
			if err := c.compileExpr(s, n.Left); err != nil {
				return err
			}
			var op OpCode
			if n.Operator == "&&" {
				op = OP_AND
			} else {
				op = OP_OR
			}
			jidx := s.chunk.emit(0, op, -1)
			if err := c.compileExpr(s, n.Right); err != nil {
				return err
			}
			s.chunk.patchOperand(jidx+1, len(s.chunk.Code))
			return nil
		}
		if err := c.compileExpr(s, n.Left); err != nil {
			return err
		}
		if err := c.compileExpr(s, n.Right); err != nil {
			return err
		}
		op, ok := compileBinaryOp[n.Operator]
		if !ok {
			return &unsupportedErr{"binary operator " + n.Operator}
		}
		s.chunk.emit(0, op)
	case *ast.AssignmentExpr:
		return c.compileAssignment(s, n)
	case *ast.CallExpr:
		if member, ok := n.Callee.(*ast.MemberExpr); ok {
			if err := c.compileExpr(s, member.Object); err != nil {
				return err
			}
			for _, a := range n.Args {
				if err := c.compileExpr(s, a); err != nil {
					return err
				}
			}
			slot := s.chunk.newICSlot(ICMethod)
			s.chunk.emit(0, OP_CALL_METHOD_IC, c.nameConst(s, member.Property.Symbol), len(n.Args), slot)
			return nil
		}
		if err := c.compileExpr(s, n.Callee); err != nil {
			return err
		}
		for _, a := range n.Args {
			if err := c.compileExpr(s, a); err != nil {
				return err
			}
		}
		s.chunk.emit(0, OP_CALL, len(n.Args))
	case *ast.MemberExpr:
		if err := c.compileExpr(s, n.Object); err != nil {
			return err
		}
		slot := s.chunk.newICSlot(ICStructField)
		s.chunk.emit(0, OP_GET_MEMBER_IC, c.nameConst(s, n.Property.Symbol), slot)
	case *ast.IndexExpr:
		if err := c.compileExpr(s, n.Object); err != nil {
			return err
		}
		if err := c.compileExpr(s, n.Index); err != nil {
			return err
		}
		s.chunk.emit(0, OP_GET_INDEX)
	case *ast.ArrayLiteral:
		for _, el := range n.Elements {
			if err := c.compileExpr(s, el); err != nil {
				return err
			}
		}
		s.chunk.emit(0, OP_MAKE_LIST, len(n.Elements))
	case *ast.TupleLiteral:
		for _, el := range n.Elements {
			if err := c.compileExpr(s, el); err != nil {
				return err
			}
		}
		s.chunk.emit(0, OP_MAKE_TUPLE, len(n.Elements))
	case *ast.SetLiteral:
		for _, el := range n.Elements {
			if err := c.compileExpr(s, el); err != nil {
				return err
			}
		}
		s.chunk.emit(0, OP_MAKE_SET, len(n.Elements))
	case *ast.RangeExpr:
		if err := c.compileExpr(s, n.Start); err != nil {
			return err
		}
		if err := c.compileExpr(s, n.End); err != nil {
			return err
		}
		incl := 0
		if n.Inclusive {
			incl = 1
		}
		s.chunk.emit(0, OP_MAKE_RANGE, incl)
	case *ast.MapLiteral:
		for _, p := range n.Properties {
			if err := c.compileExpr(s, p.Key); err != nil {
				return err
			}
			if err := c.compileExpr(s, p.Value); err != nil {
				return err
			}
		}
		s.chunk.emit(0, OP_MAKE_DICT, len(n.Properties))
	case *ast.VarDeclaration:
		// as an expression (not reached through compileStmt's own case),
		// the declared value itself is the result.
		if err := c.compileExpr(s, n.Value); err != nil {
			return err
		}
		if s.isTopLevel {
			s.chunk.emit(0, OP_DUP)
			s.chunk.emit(0, OP_DEFINE_GLOBAL, c.nameConst(s, n.Identifier))
		} else {
			slot := s.ensureLocal(n.Identifier)
			s.chunk.emit(0, OP_STORE_LOCAL, slot)
		}
	default:
		return &unsupportedErr{"expression node"}
	}
	return nil
}

// compileAssignment leaves the assigned value on top of the stack, so it
// can be used both as a statement (default compileStmt case pops it) and
// nested inside another expression.
func (c *Compiler) compileAssignment(s *compileScope, n *ast.AssignmentExpr) error {
	// Member/index targets need their object (and index) pushed *before*
	// the value, since OP_SET_MEMBER/OP_SET_INDEX pop value last-pushed
	// first. Compound assignment on those targets would need the object
	// pushed twice (once to read the current value, once to write back),
	// so it's left to the interpreter.
	switch target := n.Assignee.(type) {
	case *ast.Identifier:
		if err := c.compileAssignValue(s, n); err != nil {
			return err
		}
		if slot, ok := s.locals[target.Symbol]; ok {
			s.chunk.emit(0, OP_STORE_LOCAL, slot)
		} else {
			s.chunk.emit(0, OP_STORE_GLOBAL, c.nameConst(s, target.Symbol))
		}
		return nil
	case *ast.MemberExpr:
		if n.Operator != "" {
			return &unsupportedErr{"compound assignment to a member target"}
		}
		if err := c.compileExpr(s, target.Object); err != nil {
			return err
		}
		if err := c.compileExpr(s, n.Value); err != nil {
			return err
		}
		slot := s.chunk.newICSlot(ICShapeField)
		s.chunk.emit(0, OP_SET_MEMBER_IC, c.nameConst(s, target.Property.Symbol), slot)
		return nil
	case *ast.IndexExpr:
		if n.Operator != "" {
			return &unsupportedErr{"compound assignment to an index target"}
		}
		if err := c.compileExpr(s, target.Object); err != nil {
			return err
		}
		if err := c.compileExpr(s, target.Index); err != nil {
			return err
		}
		if err := c.compileExpr(s, n.Value); err != nil {
			return err
		}
		s.chunk.emit(0, OP_SET_INDEX)
		return nil
	default:
		return &unsupportedErr{"assignment target"}
	}
}

// compileAssignValue computes the value to store for an identifier
// target, applying the compound operator against the target's current
// value when one is present.
func (c *Compiler) compileAssignValue(s *compileScope, n *ast.AssignmentExpr) error {
	if n.Operator == "" {
		return c.compileExpr(s, n.Value)
	}
	if err := c.compileExpr(s, n.Assignee); err != nil {
		return err
	}
	if err := c.compileExpr(s, n.Value); err != nil {
		return err
	}
	op, ok := compileBinaryOp[n.Operator[:len(n.Operator)-1]]
	if !ok {
		return &unsupportedErr{"compound operator " + n.Operator}
	}
	s.chunk.emit(0, op)
	return nil
}
