package runtime

import (
	"testing"

	"github.com/dymsrun/dyms/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeStruct(rt *Runtime, typeName string, fields map[string]Value) Value {
	names := make([]string, 0, len(fields))
	for n := range fields {
		names = append(names, n)
	}
	info := rt.RegisterStructType(typeName, names)
	vals := make([]Value, len(names))
	for i, n := range names {
		vals[i] = fields[n]
	}
	s := &StructObj{TypeName: typeName, TypeHash: info.TypeHash, FieldNames: names, FieldValues: vals}
	return StructValue(rt.heap.Alloc(TagStruct, s))
}

// greetBody is `return self.name` as hand-built AST, the body of the
// "greet" method used to exercise OP_CALL_METHOD_IC's cross-receiver cache.
func greetBody() *ast.BlockStatement {
	return &ast.BlockStatement{Statements: []ast.Stmt{
		&ast.ReturnStatement{Value: &ast.MemberExpr{Object: ident("self"), Property: &ast.Identifier{Symbol: "name"}}},
	}}
}

func TestIC_GetMemberCached_MonomorphicHit(t *testing.T) {
	rt := NewRuntime(nil, nil, nil, nil, nil)
	recv := makeStruct(rt, "Point", map[string]Value{"x": FromI64(1)})

	slot := &ICSlot{}
	v, err := rt.getMemberCached(slot, recv, "x")
	require.Nil(t, err)
	assert.Equal(t, int64(1), v.AsI64())
	assert.Equal(t, ICStructField, slot.Kind, "a miss on a struct field must populate the slot")
	assert.Equal(t, "x", slot.fieldName)

	// Second read on the same type hits the cached offset directly.
	v2, err2 := rt.getMemberCached(slot, recv, "x")
	require.Nil(t, err2)
	assert.Equal(t, int64(1), v2.AsI64())
}

func TestIC_GetMemberCached_PolymorphicSiteRevalidates(t *testing.T) {
	rt := NewRuntime(nil, nil, nil, nil, nil)
	a := makeStruct(rt, "Point", map[string]Value{"x": FromI64(1)})
	b := makeStruct(rt, "Named", map[string]Value{"x": FromI64(2)})

	slot := &ICSlot{}
	_, err := rt.getMemberCached(slot, a, "x")
	require.Nil(t, err)
	seenAfterA := slot.seenVersion

	v, err2 := rt.getMemberCached(slot, b, "x")
	require.Nil(t, err2)
	assert.Equal(t, int64(2), v.AsI64())
	assert.NotEqual(t, seenAfterA, slot.seenVersion, "a call site seeing a different type must refresh the cached TypeHash, not trust the stale one")
}

func TestIC_SetMemberCached_WritesThroughCache(t *testing.T) {
	rt := NewRuntime(nil, nil, nil, nil, nil)
	recv := makeStruct(rt, "Counter", map[string]Value{"n": FromI64(0)})

	slot := &ICSlot{}
	require.Nil(t, rt.setMemberCached(slot, recv, "n", FromI64(1)))
	require.Nil(t, rt.setMemberCached(slot, recv, "n", FromI64(2)))

	v, err := rt.getMember(recv, "n")
	require.Nil(t, err)
	assert.Equal(t, int64(2), v.AsI64())
}

// TestIC_InvokeMethodIC_CachesUnboundFunctionAcrossReceivers verifies the
// call-site cache holds one *FunctionObj shared by two distinct instances of
// the same struct type, since invokeBound takes the receiver explicitly
// rather than via a per-instance bound closure.
func TestIC_InvokeMethodIC_CachesUnboundFunctionAcrossReceivers(t *testing.T) {
	rt := NewRuntime(nil, nil, nil, nil, nil)
	rt.RegisterStructType("Greeter", []string{"name"})

	uf := &UserFunction{
		Name:   "greet",
		Params: []Param{{Name: "self"}},
		Body:   greetBody(),
		Env:    rt.globalEnv,
	}
	fnObj := &FunctionObj{Kind: FuncUser, Name: "greet", User: uf}
	rt.RegisterMethod("Greeter", "greet", fnObj)

	a := makeStruct(rt, "Greeter", map[string]Value{"name": rt.MakeStr("a")})
	b := makeStruct(rt, "Greeter", map[string]Value{"name": rt.MakeStr("b")})

	slot := &ICSlot{}
	r1, err1 := rt.invokeMethodIC(slot, a, "greet", nil)
	require.Nil(t, err1)
	assert.Equal(t, "a", rt.StrText(r1))
	assert.Equal(t, fnObj, slot.methodFn, "a miss populates the slot with the unbound FunctionObj")

	r2, err2 := rt.invokeMethodIC(slot, b, "greet", nil)
	require.Nil(t, err2)
	assert.Equal(t, "b", rt.StrText(r2), "the cached unbound function must still read the correct receiver's field on a second, different instance")
	assert.Same(t, fnObj, slot.methodFn, "the cache entry must not have been rebuilt for the second receiver of the same type")
}
