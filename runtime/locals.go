package runtime

// LocalFrame is the index-addressable slot vector for one function
// invocation (spec §4.E "Local slots apply only inside function calls").
// Pre-analyzed functions (fast_param_indices / a stable name->index map)
// read and write slots directly by index; functions without pre-analyzed
// indices fall back to nameIndex.
type LocalFrame struct {
	slots     []Value
	nameIndex map[string]int
}

func NewLocalFrame(size int) *LocalFrame {
	return &LocalFrame{slots: make([]Value, size)}
}

func (lf *LocalFrame) Get(i int) Value    { return lf.slots[i] }
func (lf *LocalFrame) Set(i int, v Value) { lf.slots[i] = v }
func (lf *LocalFrame) Len() int           { return len(lf.slots) }

// DefineByName appends a slot and records its name for the slow
// (non-pre-analyzed) path.
func (lf *LocalFrame) DefineByName(name string, v Value) int {
	idx := len(lf.slots)
	lf.slots = append(lf.slots, v)
	if lf.nameIndex == nil {
		lf.nameIndex = make(map[string]int)
	}
	lf.nameIndex[name] = idx
	return idx
}

func (lf *LocalFrame) IndexOf(name string) (int, bool) {
	i, ok := lf.nameIndex[name]
	return i, ok
}

func (lf *LocalFrame) markRoots(h *Heap) {
	for _, v := range lf.slots {
		h.mark(v)
	}
}
