package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeRootProvider marks exactly the values it was built with, standing in
// for *Environment/*VM in isolation.
type fakeRootProvider struct{ roots []Value }

func (f *fakeRootProvider) markRoots(h *Heap) {
	for _, v := range f.roots {
		h.mark(v)
	}
}

func TestHeap_CollectMarksFromRootProvider(t *testing.T) {
	h := NewHeap()
	id := h.Alloc(TagList, &ListObj{})
	v := ListValue(id)

	h.Collect(nil, []rootProvider{&fakeRootProvider{roots: []Value{v}}})

	assert.True(t, h.Get(id).live, "object reachable only through a rootProvider must survive")
}

func TestHeap_CollectSweepsWithoutAnyRoot(t *testing.T) {
	h := NewHeap()
	id := h.Alloc(TagList, &ListObj{})

	h.Collect(nil, nil)

	assert.False(t, h.Get(id).live, "object with no root anywhere must be swept")
}

func TestHeap_CollectResetsMarksBeforeRemarking(t *testing.T) {
	// A value marked by a provider on one cycle must not stay "marked" into
	// the next cycle if nothing roots it there.
	h := NewHeap()
	id := h.Alloc(TagList, &ListObj{})
	v := ListValue(id)

	h.Collect(nil, []rootProvider{&fakeRootProvider{roots: []Value{v}}})
	assert.True(t, h.Get(id).live)

	h.Collect(nil, nil)
	assert.False(t, h.Get(id).live, "stale mark bit from a prior cycle must not keep an unrooted object alive")
}

func TestHeap_CollectMarksChildrenTransitively(t *testing.T) {
	h := NewHeap()
	innerId := h.Alloc(TagList, &ListObj{})
	outer := &ListObj{Elems: []Value{ListValue(innerId)}}
	outerId := h.Alloc(TagList, outer)

	h.Collect(nil, []rootProvider{&fakeRootProvider{roots: []Value{ListValue(outerId)}}})

	assert.True(t, h.Get(outerId).live)
	assert.True(t, h.Get(innerId).live, "a value reachable only through a rooted container's children must survive")
}

func TestHeap_PushPopTempRoot(t *testing.T) {
	h := NewHeap()
	id := h.Alloc(TagList, &ListObj{})
	h.PushTempRoot(ListValue(id))

	h.Collect(nil, nil)
	assert.True(t, h.Get(id).live, "a temp root must survive a collection while pushed")

	h.PopTempRoot()
	h.Collect(nil, nil)
	assert.False(t, h.Get(id).live, "popping the temp root must let the next collection sweep it")
}
