package runtime

import "strings"

// ShapeObj is an interned hidden class: an immutable ordered mapping from
// string field name to a fixed offset in a dict's prop_values vector or a
// struct's field_values array. Two dicts (or struct instances of the same
// type) built from the same field-name sequence share a ShapeObj, which is
// what lets the IC cache an offset instead of a hash lookup (spec §3, §4.G).
type ShapeObj struct {
	key     string
	Names   []string
	Offsets map[string]int
}

func newShape(names []string) *ShapeObj {
	offsets := make(map[string]int, len(names))
	for i, n := range names {
		offsets[n] = i
	}
	return &ShapeObj{
		key:     strings.Join(names, "\x00"),
		Names:   append([]string(nil), names...),
		Offsets: offsets,
	}
}

// shapeTable interns ShapeObj instances by their exact field-name sequence.
type shapeTable struct {
	byKey map[string]ObjectId
}

func newShapeTable() *shapeTable { return &shapeTable{byKey: make(map[string]ObjectId)} }

// Intern returns the id of the canonical shape for the given ordered field
// names, allocating a new ShapeObj on first use.
func (rt *Runtime) internShape(names []string) (ObjectId, *ShapeObj) {
	key := strings.Join(names, "\x00")
	if id, ok := rt.shapes.byKey[key]; ok {
		return id, rt.heap.Get(id).payload.(*ShapeObj)
	}
	s := newShape(names)
	id := rt.heap.Alloc(TagShape, s)
	rt.shapes.byKey[key] = id
	return id, s
}

// extend returns the shape for appending one more field name to an
// existing shape's field sequence (used when a dict adds a new
// string key while still shape-compatible).
func (rt *Runtime) extendShape(base *ShapeObj, name string) (ObjectId, *ShapeObj) {
	names := append(append([]string(nil), base.Names...), name)
	return rt.internShape(names)
}
