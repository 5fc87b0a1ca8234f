package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildLocalSlotGCProbe builds a single bytecode function that allocates
// many heap lists one at a time, storing (and overwriting) local slot 0 each
// time, plus a second slot holding a list built on the very first iteration.
// Only the second slot's list is reachable past the first overwrite; a VM
// that doesn't root local slots would sweep it out from under the running
// frame the moment the GC threshold trips mid-loop.
func buildLocalSlotGCProbe(iterations int) *BytecodeFunction {
	chunk := NewChunk()
	// slot 0: throwaway list, rewritten every iteration.
	// slot 1: the list built on iteration 0, kept until the end.
	for i := 0; i < iterations; i++ {
		chunk.emit(1, OP_MAKE_LIST, 0)
		chunk.emit(1, OP_STORE_LOCAL, 0)
		chunk.emit(1, OP_POP)
		if i == 0 {
			chunk.emit(1, OP_MAKE_LIST, 0)
			chunk.emit(1, OP_STORE_LOCAL, 1)
			chunk.emit(1, OP_POP)
		}
	}
	chunk.emit(1, OP_LOAD_LOCAL, 1)
	chunk.emit(1, OP_RET)
	return &BytecodeFunction{Name: "probe", Chunk: chunk, LocalsCount: 2}
}

func TestVM_LocalSlotSurvivesGCSafepoint(t *testing.T) {
	rt := NewRuntime(nil, nil, nil, nil, nil)
	fn := buildLocalSlotGCProbe(defaultGCThreshold + 200)

	vm := NewVM(rt)
	result, err := vm.callTop(fn, nil)
	require.Nil(t, err)

	require.Equal(t, TagList, result.GetTag())
	obj := rt.heap.Get(result.AsObjID())
	assert.True(t, obj.live, "list rooted only via a compiled function's local slot must survive a GC safepoint mid-loop")
}

func TestVM_MarkRootsCoversMultipleFrames(t *testing.T) {
	// outer calls inner; inner returns a freshly built list that outer then
	// stores into its own local slot 0 before returning it. While inner is
	// executing, outer's frame (locals empty at that point) and inner's
	// frame must both be walked by VM.markRoots without either frame's
	// in-flight state corrupting the other.
	innerChunk := NewChunk()
	innerChunk.emit(1, OP_MAKE_LIST, 0)
	innerChunk.emit(1, OP_RET)
	inner := &BytecodeFunction{Name: "inner", Chunk: innerChunk, LocalsCount: 0}

	rt := NewRuntime(nil, nil, nil, nil, nil)
	innerObj := rt.heap.Alloc(TagFunction, &FunctionObj{Kind: FuncBytecode, Name: "inner", Bytecode: inner})

	outerChunk := NewChunk()
	fnConst := rt.addConst(outerChunk, FunctionValue(innerObj), "")
	outerChunk.emit(1, OP_CONST, fnConst)
	outerChunk.emit(1, OP_CALL, 0)
	outerChunk.emit(1, OP_STORE_LOCAL, 0)
	outerChunk.emit(1, OP_RET)
	outer := &BytecodeFunction{Name: "outer", Chunk: outerChunk, LocalsCount: 1}

	vm := NewVM(rt)
	result, err := vm.callTop(outer, nil)
	require.Nil(t, err)
	assert.Equal(t, TagList, result.GetTag())
	assert.True(t, rt.heap.Get(result.AsObjID()).live)
}
