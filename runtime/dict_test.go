package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDict_GetMemberCached_ShapedHit(t *testing.T) {
	rt := NewRuntime(nil, nil, nil, nil, nil)
	d := rt.NewDictObjWithShape([]string{"a", "b"}, []Value{FromI64(1), FromI64(2)})
	recv := DictValue(rt.heap.Alloc(TagDict, d))

	slot := &ICSlot{}
	v, err := rt.getMemberCached(slot, recv, "b")
	require.Nil(t, err)
	assert.Equal(t, int64(2), v.AsI64())
	assert.Equal(t, ICShapeField, slot.Kind)
	assert.Same(t, d.shape, slot.seenShape)

	v2, err2 := rt.getMemberCached(slot, recv, "b")
	require.Nil(t, err2)
	assert.Equal(t, int64(2), v2.AsI64())
}

func TestDict_SetMemberCached_ShapeExtendingWriteInvalidatesCache(t *testing.T) {
	rt := NewRuntime(nil, nil, nil, nil, nil)
	d := rt.NewDictObjWithShape([]string{"a"}, []Value{FromI64(1)})
	recv := DictValue(rt.heap.Alloc(TagDict, d))

	slot := &ICSlot{}
	v, err := rt.getMemberCached(slot, recv, "a") // warms the cache reading "a"
	require.Nil(t, err)
	assert.Equal(t, int64(1), v.AsI64())
	oldShape := d.shape

	// Writing a brand-new field name extends the shape (hidden-class
	// transition); the dict's *ShapeObj pointer changes, so a stale slot
	// keyed to the old shape must not be trusted for the new field.
	require.Nil(t, rt.setMemberCached(slot, recv, "c", FromI64(3)))
	assert.NotSame(t, oldShape, d.shape, "adding a new string key must extend the dict's shape")

	v2, err2 := rt.getMember(recv, "c")
	require.Nil(t, err2)
	assert.Equal(t, int64(3), v2.AsI64())

	// Re-reading "a" after the shape changed must still see the right
	// value even though the cache slot was last validated against the
	// old shape.
	slot2 := &ICSlot{}
	v3, err3 := rt.getMemberCached(slot2, recv, "a")
	require.Nil(t, err3)
	assert.Equal(t, int64(1), v3.AsI64())
}

func TestDict_GetMemberCached_HashedMapFallback(t *testing.T) {
	// A dict with no shape (built via plain inserts of a non-string key
	// first) falls through getMemberCached to the generic getMember path
	// every time; the slot is left as the "checked, not cacheable" marker.
	rt := NewRuntime(nil, nil, nil, nil, nil)
	d := NewDictObj()
	require.Nil(t, rt.DictInsert(d, FromI64(5000), rt.MakeStr("far")))
	require.Nil(t, rt.DictInsert(d, rt.MakeStr("k"), FromI64(9)))
	recv := DictValue(rt.heap.Alloc(TagDict, d))

	slot := &ICSlot{}
	v, err := rt.getMemberCached(slot, recv, "k")
	require.Nil(t, err)
	assert.Equal(t, int64(9), v.AsI64())
	assert.False(t, d.hasShape)
}
