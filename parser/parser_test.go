package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dymsrun/dyms/ast"
	"github.com/dymsrun/dyms/parser"
)

func parseOne(t *testing.T, src string) ast.Stmt {
	t.Helper()
	prog, err := parser.ParseSource(src)
	require.Nil(t, err, "%v", err)
	require.Len(t, prog.Body, 1)
	return prog.Body[0]
}

func TestParse_VarDeclaration(t *testing.T) {
	stmt := parseOne(t, `let x = 1 + 2`)
	decl, ok := stmt.(*ast.VarDeclaration)
	require.True(t, ok)
	assert.Equal(t, "x", decl.Identifier)
	assert.False(t, decl.Constant)
	bin, ok := decl.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Operator)
}

func TestParse_ConstDeclaration(t *testing.T) {
	stmt := parseOne(t, `const PI = 3.14`)
	decl, ok := stmt.(*ast.VarDeclaration)
	require.True(t, ok)
	assert.True(t, decl.Constant)
}

func TestParse_IfElse(t *testing.T) {
	stmt := parseOne(t, `if x { 1 } else { 2 }`)
	ifStmt, ok := stmt.(*ast.IfStatement)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Alternative)
}

func TestParse_ForWithTupleBinders(t *testing.T) {
	stmt := parseOne(t, `for (k, v) in d { }`)
	forStmt, ok := stmt.(*ast.ForStatement)
	require.True(t, ok)
	assert.Equal(t, []string{"k", "v"}, forStmt.Binders)
}

func TestParse_FunctionDeclaration(t *testing.T) {
	stmt := parseOne(t, `func add(a, b) { return a + b }`)
	fn, ok := stmt.(*ast.FunctionDeclaration)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	assert.Equal(t, "", fn.Receiver)
	assert.Len(t, fn.Params, 2)
}

func TestParse_StructMethodDeclaration(t *testing.T) {
	stmt := parseOne(t, `func Point.length(self) { return 0 }`)
	fn, ok := stmt.(*ast.FunctionDeclaration)
	require.True(t, ok)
	assert.Equal(t, "Point", fn.Receiver)
	assert.Equal(t, "length", fn.Name)
}

func TestParse_AnonymousFunctionExpression(t *testing.T) {
	stmt := parseOne(t, `let f = func(x) { return x }`)
	decl := stmt.(*ast.VarDeclaration)
	_, ok := decl.Value.(*ast.FunctionExpression)
	require.True(t, ok, "anonymous func must parse as FunctionExpression, not FunctionDeclaration")
}

func TestParse_StructDeclaration(t *testing.T) {
	stmt := parseOne(t, `struct Point { x, y: Int }`)
	s, ok := stmt.(*ast.StructDeclaration)
	require.True(t, ok)
	assert.Equal(t, "Point", s.Name)
	require.Len(t, s.Fields, 2)
	assert.Equal(t, "Int", s.Fields[1].TypeAnn)
}

func TestParse_EnumDeclaration(t *testing.T) {
	stmt := parseOne(t, `enum Shape { Circle(radius), Square(side), Empty }`)
	e, ok := stmt.(*ast.EnumDeclaration)
	require.True(t, ok)
	require.Len(t, e.Variants, 3)
	assert.Equal(t, []string{"radius"}, e.Variants[0].Fields)
	assert.Empty(t, e.Variants[2].Fields)
}

func TestParse_EnumConstructExpr(t *testing.T) {
	stmt := parseOne(t, `Shape#Circle(5)`)
	construct, ok := stmt.(*ast.EnumConstructExpr)
	require.True(t, ok)
	assert.Equal(t, "Shape", construct.TypeName)
	assert.Equal(t, "Circle", construct.VariantName)
	require.Len(t, construct.Args, 1)
}

func TestParse_StructLiteral(t *testing.T) {
	stmt := parseOne(t, `Point { x: 1, y: 2 }`)
	lit, ok := stmt.(*ast.StructLiteral)
	require.True(t, ok)
	assert.Equal(t, "Point", lit.Name)
	require.Len(t, lit.Fields, 2)
}

func TestParse_StructLiteralSuppressedInIfCondition(t *testing.T) {
	// `if Point { ... }` must parse Point as the condition identifier, not a
	// struct literal swallowing the consequence block.
	stmt := parseOne(t, `if Point { 1 }`)
	ifStmt, ok := stmt.(*ast.IfStatement)
	require.True(t, ok)
	_, isIdent := ifStmt.Condition.(*ast.Identifier)
	assert.True(t, isIdent)
	require.Len(t, ifStmt.Consequence.Statements, 1)
}

func TestParse_MatchExprWithGuardAndEnumPattern(t *testing.T) {
	stmt := parseOne(t, `match shape {
		Shape#Circle(r) if r > 0 => 1,
		_ => 0,
	}`)
	m, ok := stmt.(*ast.MatchExpr)
	require.True(t, ok)
	require.Len(t, m.Arms, 2)
	assert.Equal(t, ast.PatternEnum, m.Arms[0].Pattern.Kind)
	assert.NotNil(t, m.Arms[0].Guard)
	assert.Equal(t, ast.PatternWildcard, m.Arms[1].Pattern.Kind)
}

func TestParse_MatchExprStructPatternWithLeadingTypeName(t *testing.T) {
	stmt := parseOne(t, `match p {
		Point { x, y } => x,
	}`)
	m, ok := stmt.(*ast.MatchExpr)
	require.True(t, ok)
	require.Len(t, m.Arms, 1)
	pat := m.Arms[0].Pattern
	assert.Equal(t, ast.PatternStruct, pat.Kind)
	assert.Equal(t, []string{"x", "y"}, pat.FieldNames)
}

func TestParse_RangeExpr(t *testing.T) {
	stmt := parseOne(t, `0..n`)
	r, ok := stmt.(*ast.RangeExpr)
	require.True(t, ok)
	assert.False(t, r.Inclusive)
}

func TestParse_InclusiveRangeExpr(t *testing.T) {
	stmt := parseOne(t, `0..=n`)
	r, ok := stmt.(*ast.RangeExpr)
	require.True(t, ok)
	assert.True(t, r.Inclusive)
}

func TestParse_CompoundAssignment(t *testing.T) {
	stmt := parseOne(t, `x += 1`)
	a, ok := stmt.(*ast.AssignmentExpr)
	require.True(t, ok)
	assert.Equal(t, "+=", a.Operator)
}

func TestParse_InvalidAssignmentTarget(t *testing.T) {
	_, err := parser.ParseSource(`1 + 1 = 2`)
	require.NotNil(t, err)
}

func TestParse_StringInterpolation(t *testing.T) {
	stmt := parseOne(t, `"hello ${name}!"`)
	s, ok := stmt.(*ast.StringLiteral)
	require.True(t, ok)
	require.Len(t, s.Parts, 2)
	require.Len(t, s.Exprs, 1)
	_, isIdent := s.Exprs[0].(*ast.Identifier)
	assert.True(t, isIdent)
}

func TestParse_TryCatchFinally(t *testing.T) {
	stmt := parseOne(t, `try { throw 1 } catch (e) { } finally { }`)
	tryStmt, ok := stmt.(*ast.TryStatement)
	require.True(t, ok)
	assert.Equal(t, "e", tryStmt.ErrorVar)
	assert.NotNil(t, tryStmt.CatchBlock)
	assert.NotNil(t, tryStmt.FinallyBlock)
}

func TestParse_TupleLiteral(t *testing.T) {
	stmt := parseOne(t, `(1, 2, 3)`)
	tup, ok := stmt.(*ast.TupleLiteral)
	require.True(t, ok)
	assert.Len(t, tup.Elements, 3)
}

func TestParse_ParenthesizedExprIsNotATuple(t *testing.T) {
	stmt := parseOne(t, `(1 + 2)`)
	_, ok := stmt.(*ast.BinaryExpr)
	assert.True(t, ok)
}

func TestParse_MapLiteral(t *testing.T) {
	// A bare `{` at statement position always starts a block statement, so
	// map/set literals are exercised here as a var declaration's value.
	stmt := parseOne(t, `let m = { "a": 1, "b": 2 }`)
	decl := stmt.(*ast.VarDeclaration)
	m, ok := decl.Value.(*ast.MapLiteral)
	require.True(t, ok)
	assert.Len(t, m.Properties, 2)
}

func TestParse_SetLiteral(t *testing.T) {
	stmt := parseOne(t, `let s = { 1, 2, 3 }`)
	decl := stmt.(*ast.VarDeclaration)
	s, ok := decl.Value.(*ast.SetLiteral)
	require.True(t, ok)
	assert.Len(t, s.Elements, 3)
}

func TestParse_ImportWithAlias(t *testing.T) {
	stmt := parseOne(t, `import "math/geo" as geo`)
	imp, ok := stmt.(*ast.ImportStatement)
	require.True(t, ok)
	assert.Equal(t, "math/geo", imp.Path)
	assert.Equal(t, "geo", imp.Alias)
}

func TestParse_OperatorPrecedence(t *testing.T) {
	stmt := parseOne(t, `1 + 2 * 3`)
	bin, ok := stmt.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Operator)
	_, rightIsMul := bin.Right.(*ast.BinaryExpr)
	assert.True(t, rightIsMul)
}

func TestParse_LogicalOperatorPrecedence(t *testing.T) {
	// `a || b && c` must parse as `a || (b && c)`, not left-to-right.
	stmt := parseOne(t, `a || b && c`)
	bin, ok := stmt.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "||", bin.Operator)
	right, ok := bin.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "&&", right.Operator)
}
