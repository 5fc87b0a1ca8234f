package runtime

import (
	"testing"

	"github.com/dymsrun/dyms/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// defineGlobalUserFn builds a FunctionObj/UserFunction for body, closes over
// rt.globalEnv (so callers resolve it and each other by plain identifier),
// and binds it under name in the global environment.
func defineGlobalUserFn(rt *Runtime, name string, params []Param, body *ast.BlockStatement) {
	uf := &UserFunction{Name: name, Params: params, Body: body, Env: rt.globalEnv}
	fnObj := &FunctionObj{Kind: FuncUser, Name: name, User: uf}
	fnVal := FunctionValue(rt.heap.Alloc(TagFunction, fnObj))
	rt.globalEnv.Define(name, fnVal, true)
}

func ident(s string) *ast.Identifier { return &ast.Identifier{Symbol: s} }

// TestInvoke_NestedCallLocalSurvivesGC builds three nested user functions
// (outer -> middle -> innermost), each invocation pushing its own
// Environment onto rt.activeFrames. innermost binds a list to a local `v`,
// then loops long enough to cross the GC threshold before returning it.
// Only rt.activeFrames (not rt.globalEnv, which has no knowledge of any of
// these call-local bindings) keeps `v` reachable while the loop runs.
func TestInvoke_NestedCallLocalSurvivesGC(t *testing.T) {
	rt := NewRuntime(nil, nil, nil, nil, nil)

	loopBound := int64(defaultGCThreshold + 200)

	innermostBody := &ast.BlockStatement{Statements: []ast.Stmt{
		&ast.VarDeclaration{Identifier: "v", Value: &ast.ArrayLiteral{}},
		&ast.VarDeclaration{Identifier: "i", Value: &ast.IntLiteral{Value: 0}},
		&ast.WhileStatement{
			Condition: &ast.BinaryExpr{Left: ident("i"), Right: &ast.IntLiteral{Value: loopBound}, Operator: "<"},
			Body: &ast.BlockStatement{Statements: []ast.Stmt{
				&ast.AssignmentExpr{Assignee: ident("i"), Value: &ast.BinaryExpr{Left: ident("i"), Right: &ast.IntLiteral{Value: 1}, Operator: "+"}},
				&ast.ArrayLiteral{}, // pure garbage allocation, pushes the heap over threshold
			}},
		},
		&ast.ReturnStatement{Value: ident("v")},
	}}
	defineGlobalUserFn(rt, "innermost", nil, innermostBody)

	middleBody := &ast.BlockStatement{Statements: []ast.Stmt{
		&ast.ReturnStatement{Value: &ast.CallExpr{Callee: ident("innermost")}},
	}}
	defineGlobalUserFn(rt, "middle", nil, middleBody)

	outerBody := &ast.BlockStatement{Statements: []ast.Stmt{
		&ast.ReturnStatement{Value: &ast.CallExpr{Callee: ident("middle")}},
	}}
	defineGlobalUserFn(rt, "outer", nil, outerBody)

	outerVal, ok := rt.globalEnv.Get("outer")
	require.True(t, ok)

	result, err := rt.CallValue(outerVal, nil)
	require.Nil(t, err)
	require.Equal(t, TagList, result.GetTag())

	obj := rt.heap.Get(result.AsObjID())
	assert.True(t, obj.live, "a list reachable only through a nested call's local Environment (3 frames deep) must survive a GC safepoint inside the innermost frame's while loop")
}
