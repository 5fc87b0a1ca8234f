package runtime

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/dolthub/swiss"
)

// smallIntKeyBound is the tunable bound named but not mandated by spec §4.C
// (Open Question 2, resolved in SPEC_FULL.md §9).
const smallIntKeyBound = 1024

// dictKeyKind discriminates a DictKey's payload.
type dictKeyKind uint8

const (
	dkInt dictKeyKind = iota
	dkStr
)

// DictKey is the hashed-map region's key type. String keys compare by
// content (spec §4.C "String keys are compared by content via the owning
// string object") rather than by ObjectId, since the short-string cache is
// bounded and can hold two distinct StrObj with identical content.
type DictKey struct {
	kind dictKeyKind
	i    int64
	s    string
}

func IntKey(i int64) DictKey    { return DictKey{kind: dkInt, i: i} }
func StrKey(s string) DictKey   { return DictKey{kind: dkStr, s: s} }
func (k DictKey) IsStr() bool   { return k.kind == dkStr }
func (k DictKey) StrVal() string { return k.s }
func (k DictKey) IntVal() int64  { return k.i }

// KeyHash is the siphash-derived hash recorded in IC slots (spec §4.G
// key_hash) and is independent of the swiss table's own internal hashing.
func (k DictKey) KeyHash() uint64 {
	if k.kind == dkStr {
		return hashString(k.s)
	}
	return uint64(k.i)
}

// DictObj is the spec §3/§4.C hybrid dictionary: a dense vector for small
// non-negative integer keys, an optional shape-indexed property vector, and
// a hashed map for everything else, all sharing one monotone version
// counter.
type DictObj struct {
	elements    []Value
	elementsSet []bool

	hasShape bool
	shapeID  ObjectId
	shape    *ShapeObj
	propVals []Value

	m         *swiss.Map[DictKey, Value]
	mapOrder  []DictKey // insertion order, for order-preserving iteration

	ver uint64
}

func NewDictObj() *DictObj {
	return &DictObj{m: swiss.NewMap[DictKey, Value](8)}
}

// NewDictObjWithShape builds a dict that adopts shape `names` up front —
// the path taken by a `{ "a": 1, "b": 2 }`-style literal with only string
// keys (spec §3 "A dict adopts a shape only when it is mapping purely
// string keys with no integer-addressed slots yet").
func (rt *Runtime) NewDictObjWithShape(names []string, values []Value) *DictObj {
	_, shape := rt.internShape(names)
	d := NewDictObj()
	d.hasShape = true
	d.shape = shape
	d.propVals = append([]Value(nil), values...)
	d.ver++
	return d
}

func (d *DictObj) Version() uint64 { return d.ver }

func (d *DictObj) markChildren(h *Heap) {
	for i, present := range d.elementsSet {
		if present {
			h.mark(d.elements[i])
		}
	}
	for _, v := range d.propVals {
		h.mark(v)
	}
	if d.m != nil {
		d.m.Iter(func(k DictKey, v Value) bool {
			h.mark(v)
			return false
		})
	}
}

// Insert implements spec §4.C insertion: small non-negative int keys go
// dense, string keys consult the shape, everything else falls to the
// hashed map. Every write increments ver.
func (rt *Runtime) DictInsert(d *DictObj, key Value, val Value) *Error {
	switch key.GetTag() {
	case TagInt:
		i := key.AsI64()
		if i >= 0 && i < smallIntKeyBound {
			idx := int(i)
			if idx >= len(d.elements) {
				grown := make([]Value, idx+1)
				copy(grown, d.elements)
				d.elements = grown
				growSet := make([]bool, idx+1)
				copy(growSet, d.elementsSet)
				d.elementsSet = growSet
			}
			d.elements[idx] = val
			d.elementsSet[idx] = true
			d.ver++
			return nil
		}
		rt.dictMapPut(d, IntKey(i), val)
		return nil
	case TagStr:
		s := rt.StrText(key)
		rt.dictInsertStrKey(d, s, val)
		return nil
	default:
		return NewErrorKind(ErrDictKeyRequired, "dict keys must be int or string, got "+key.TypeName())
	}
}

func (rt *Runtime) dictInsertStrKey(d *DictObj, s string, val Value) {
	if d.hasShape {
		if off, ok := d.shape.Offsets[s]; ok {
			d.propVals[off] = val
			d.ver++
			return
		}
		// Extend the shape's field sequence (hidden-class transition). See
		// DESIGN.md for why this always extends rather than sometimes
		// promoting to the hashed map.
		_, newShape := rt.extendShape(d.shape, s)
		d.shape = newShape
		d.propVals = append(d.propVals, val)
		d.ver++
		return
	}
	rt.dictMapPut(d, StrKey(s), val)
}

func (rt *Runtime) dictMapPut(d *DictObj, key DictKey, val Value) {
	if _, existed := d.m.Get(key); !existed {
		d.mapOrder = append(d.mapOrder, key)
	}
	d.m.Put(key, val)
	d.ver++
}

// Get implements spec §4.C lookup.
func (rt *Runtime) DictGet(d *DictObj, key Value) (Value, bool) {
	switch key.GetTag() {
	case TagInt:
		i := key.AsI64()
		if i >= 0 && i < smallIntKeyBound {
			idx := int(i)
			if idx < len(d.elementsSet) && d.elementsSet[idx] {
				return d.elements[idx], true
			}
			return Value{}, false
		}
		return d.m.Get(IntKey(i))
	case TagStr:
		s := rt.StrText(key)
		if d.hasShape {
			if off, ok := d.shape.Offsets[s]; ok {
				return d.propVals[off], true
			}
		}
		return d.m.Get(StrKey(s))
	default:
		return Value{}, false
	}
}

func (rt *Runtime) DictGetStr(d *DictObj, s string) (Value, bool) {
	if d.hasShape {
		if off, ok := d.shape.Offsets[s]; ok {
			return d.propVals[off], true
		}
	}
	return d.m.Get(StrKey(s))
}

// DictLen counts live entries across all three regions.
func (rt *Runtime) DictLen(d *DictObj) int {
	n := 0
	for _, present := range d.elementsSet {
		if present {
			n++
		}
	}
	if d.hasShape {
		n += len(d.propVals)
	}
	n += d.m.Count()
	return n
}

// DictKeys returns key values in the order spec §4.C describes: dense
// element keys in ascending index order, then shape keys in offset order,
// then hashed-map keys in insertion order.
func (rt *Runtime) DictKeys(d *DictObj) []Value {
	keys := make([]Value, 0, rt.DictLen(d))
	for i, present := range d.elementsSet {
		if present {
			keys = append(keys, FromI64(int64(i)))
		}
	}
	if d.hasShape {
		for _, name := range d.shape.Names {
			keys = append(keys, rt.MakeStr(name))
		}
	}
	for _, k := range d.mapOrder {
		if _, ok := d.m.Get(k); !ok {
			continue
		}
		if k.IsStr() {
			keys = append(keys, rt.MakeStr(k.StrVal()))
		} else {
			keys = append(keys, FromI64(k.IntVal()))
		}
	}
	return keys
}

func (rt *Runtime) DictValues(d *DictObj) []Value {
	keys := rt.DictKeys(d)
	vals := make([]Value, 0, len(keys))
	for _, k := range keys {
		v, _ := rt.DictGet(d, k)
		vals = append(vals, v)
	}
	return vals
}

func (rt *Runtime) DictMerge(dst, src *DictObj) {
	for i, present := range src.elementsSet {
		if present {
			rt.DictInsert(dst, FromI64(int64(i)), src.elements[i])
		}
	}
	if src.hasShape {
		for _, name := range src.shape.Names {
			v, _ := rt.DictGetStr(src, name)
			rt.dictInsertStrKey(dst, name, v)
		}
	}
	for _, k := range src.mapOrder {
		v, ok := src.m.Get(k)
		if !ok {
			continue
		}
		rt.dictMapPut(dst, k, v)
	}
}

// SetObj is a dict-keyed map to unit (spec §3).
type SetObj struct {
	Dict *DictObj
}

func NewSetObj() *SetObj { return &SetObj{Dict: NewDictObj()} }

func (rt *Runtime) SetAdd(s *SetObj, key Value)        { rt.DictInsert(s.Dict, key, UNIT) }
func (rt *Runtime) SetContains(s *SetObj, key Value) bool {
	_, ok := rt.DictGet(s.Dict, key)
	return ok
}
func (rt *Runtime) SetItems(s *SetObj) []Value { return rt.DictKeys(s.Dict) }

// used to keep golang.org/x/exp wired even where maps/slices aren't the hot
// path. Nothing in the package calls it; pretty.go sorts keys locally.
func sortedStringKeys(m map[string]Value) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
