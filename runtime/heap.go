package runtime

// ManagedObject is a single slab slot. `payload` holds one of the heap
// variant structs below (StrObj, ListObj, DictObj, ...); `tag` names which
// one so that Value.GetTag() always agrees with the slab entry it points
// at (spec §3 invariant 1).
type ManagedObject struct {
	tag     Tag
	payload interface{}
	marked  bool
	live    bool
}

// Sweepable is implemented by caches that hold ObjectIds and must be
// invalidated whenever a sweep runs, since sweep can free ids those caches
// still remember (spec §4.B "clears auxiliary caches that could hold stale
// ids").
type Sweepable interface {
	ClearOnSweep()
}

// Heap is the single arena backing every dyms value that isn't an
// immediate. It is owned exclusively by one Runtime; spec §5 forbids
// cross-thread sharing.
type Heap struct {
	objects []ManagedObject
	free    []ObjectId

	threshold  int
	growFactor float64

	sweepers []Sweepable

	// gcRoots holds values that are "in flight": allocated but not yet
	// reachable from any durable structure (spec §4.B root list, last
	// bullet). Opcodes that allocate and then immediately push to the
	// operand stack don't need this; it exists for helper code that
	// allocates across several steps before the result reaches the stack.
	gcRoots []Value

	collections int
}

const (
	defaultGCThreshold = 1024
	defaultGrowFactor  = 2.0
)

func NewHeap() *Heap {
	return &Heap{
		objects:    make([]ManagedObject, 0, 256),
		threshold:  defaultGCThreshold,
		growFactor: defaultGrowFactor,
	}
}

func (h *Heap) RegisterSweeper(s Sweepable) { h.sweepers = append(h.sweepers, s) }

// PushTempRoot registers a value that must survive a collection before it
// reaches a durable location (e.g. a partially built list during a builtin
// call). PopTempRoot must be called once the value becomes reachable
// through normal means or is discarded.
func (h *Heap) PushTempRoot(v Value) {
	if v.IsHeapRef() {
		h.gcRoots = append(h.gcRoots, v)
	}
}

func (h *Heap) PopTempRoot() {
	if len(h.gcRoots) > 0 {
		h.gcRoots = h.gcRoots[:len(h.gcRoots)-1]
	}
}

// Alloc appends a new object (or reuses a freed slot) and returns its id.
// Allocation itself cannot fail (spec §4.B "out-of-memory is a hard
// process-level error, not a recoverable condition").
func (h *Heap) Alloc(tag Tag, payload interface{}) ObjectId {
	if n := len(h.free); n > 0 {
		id := h.free[n-1]
		h.free = h.free[:n-1]
		h.objects[id] = ManagedObject{tag: tag, payload: payload, live: true}
		return id
	}
	id := ObjectId(len(h.objects))
	h.objects = append(h.objects, ManagedObject{tag: tag, payload: payload, live: true})
	return id
}

func (h *Heap) Get(id ObjectId) *ManagedObject { return &h.objects[int(id)] }

func (h *Heap) LiveCount() int {
	n := 0
	for i := range h.objects {
		if h.objects[i].live {
			n++
		}
	}
	return n
}

// ShouldCollect reports whether the live set has crossed the dynamic
// threshold; callers invoke this only at safepoints between opcodes.
func (h *Heap) ShouldCollect() bool { return h.LiveCount() > h.threshold }

// rootProvider is anything that can mark the values it's keeping alive.
// *Environment walks its frame chain upward through parents; *VM marks
// every frame (operand stack, locals, lexical env) currently live inside
// it. Collect takes a slice of these so a safepoint can hand it every
// frame actually on the Go call stack at that moment, not just the
// innermost one.
type rootProvider interface {
	markRoots(h *Heap)
}

// Collect runs one mark-and-sweep cycle over the given root values plus
// every supplied rootProvider (environment frames, VM frames, local-slot
// frames) and the heap's own temp-root vector. Marks are reset before any
// of these run, so callers can gather roots however is convenient without
// worrying about ordering against the reset.
func (h *Heap) Collect(roots []Value, providers []rootProvider) {
	h.collections++
	for i := range h.objects {
		h.objects[i].marked = false
	}
	for _, r := range roots {
		h.mark(r)
	}
	for _, p := range providers {
		if p != nil {
			p.markRoots(h)
		}
	}
	for _, r := range h.gcRoots {
		h.mark(r)
	}
	h.sweep()
	for _, s := range h.sweepers {
		s.ClearOnSweep()
	}
	if h.LiveCount() > h.threshold {
		h.threshold = int(float64(h.LiveCount()+1) * h.growFactor)
	}
}

func (h *Heap) mark(v Value) {
	if !v.IsHeapRef() {
		return
	}
	id := v.AsObjID()
	if int(id) >= len(h.objects) {
		return
	}
	obj := &h.objects[id]
	if !obj.live || obj.marked {
		return
	}
	obj.marked = true
	h.markChildren(obj)
}

// markChildren walks the references carried by each heap variant. Shape
// has no value children (spec §4.B marking note).
func (h *Heap) markChildren(obj *ManagedObject) {
	switch p := obj.payload.(type) {
	case *ListObj:
		for _, e := range p.Elems {
			h.mark(e)
		}
	case *TupleObj:
		for _, e := range p.Elems {
			h.mark(e)
		}
	case *DictObj:
		p.markChildren(h)
	case *SetObj:
		p.Dict.markChildren(h)
	case *StructObj:
		for _, e := range p.FieldValues {
			h.mark(e)
		}
	case *EnumObj:
		if p.HasFast {
			h.mark(p.FastPayload)
		}
		for _, e := range p.Payload {
			h.mark(e)
		}
	case *FunctionObj:
		if p.User != nil && p.User.Env != nil {
			p.User.Env.markRoots(h)
		}
		if p.Bytecode != nil && p.Bytecode.CapturedEnv != nil {
			p.Bytecode.CapturedEnv.markRoots(h)
		}
	case *ModuleObj:
		h.mark(DictValue(p.Exports))
	case *BuilderObj:
		// raw bytes only, no Value children
	case *StrObj, *RangeObj, *ShapeObj, *FileObj:
		// no Value children
	}
}

func (h *Heap) sweep() {
	for i := range h.objects {
		obj := &h.objects[i]
		if !obj.live {
			continue
		}
		if !obj.marked {
			obj.live = false
			obj.payload = nil
			h.free = append(h.free, ObjectId(i))
		}
	}
}
