package runtime

import (
	"strconv"

	"github.com/dchest/siphash"
)

// inlineStringBound is the tunable bound named but not mandated by spec §4.D
// (Open Question 3, resolved in SPEC_FULL.md §9).
const inlineStringBound = 22

// Text is a string's storage: inline when it fits in inlineStringBound
// bytes, heap-shared (a plain Go string, itself immutable and GC-managed,
// standing in for the spec's "reference-counted String") otherwise.
type Text struct {
	small    [inlineStringBound]byte
	smallLen int8 // -1 means "use shared"
	shared   string
}

func NewText(s string) Text {
	if len(s) <= inlineStringBound {
		var t Text
		copy(t.small[:], s)
		t.smallLen = int8(len(s))
		return t
	}
	return Text{smallLen: -1, shared: s}
}

func (t Text) String() string {
	if t.smallLen >= 0 {
		return string(t.small[:t.smallLen])
	}
	return t.shared
}

func (t Text) Len() int {
	if t.smallLen >= 0 {
		return int(t.smallLen)
	}
	return len(t.shared)
}

// StrObj is the heap representation of Value{tag: TagStr}.
type StrObj struct {
	Text Text
	hash uint64
	hset bool
}

// siphashKey0/1 are the fixed keys used across the runtime for content
// hashing of strings (dict keys, shape interning, IC key hashes) — grounded
// on SnellerInc-sneller's vm/interphash.go use of dchest/siphash.
const (
	siphashKey0 uint64 = 0x646f6d61696e2070
	siphashKey1 uint64 = 0x7079746861646570
)

func hashString(s string) uint64 {
	return siphash.Hash64(siphashKey0, siphashKey1, []byte(s))
}

func (s *StrObj) Hash() uint64 {
	if !s.hset {
		s.hash = hashString(s.Text.String())
		s.hset = true
	}
	return s.hash
}

// internTable deduplicates strings longer than the inline bound so that two
// equal long strings share one StrObj, making pointer-equal comparisons
// cheap for the common case of repeated literals/imports.
type internTable struct {
	byContent map[string]ObjectId
}

func newInternTable() *internTable {
	return &internTable{byContent: make(map[string]ObjectId)}
}

// shortStringCacheBound limits the population of the duplicate-avoidance
// cache for strings produced by splits/repeated literals (spec §4.D).
const shortStringCacheBound = 4096

type shortStringCache struct {
	byContent map[string]Value
}

func newShortStringCache() *shortStringCache {
	return &shortStringCache{byContent: make(map[string]Value)}
}

func (c *shortStringCache) get(s string) (Value, bool) {
	if len(s) > 64 {
		return Value{}, false
	}
	v, ok := c.byContent[s]
	return v, ok
}

func (c *shortStringCache) put(s string, v Value) {
	if len(s) > 64 || len(c.byContent) >= shortStringCacheBound {
		return
	}
	c.byContent[s] = v
}

func (c *shortStringCache) clear() { c.byContent = make(map[string]Value) }

// smallIntStringBound is the population of the small-integer-to-string
// cache (spec §4.D: "small integers 0..99_999").
const smallIntStringBound = 100_000

// MakeStr allocates (or reuses, via interning/short-string cache) a Value
// for the given Go string content.
func (rt *Runtime) MakeStr(s string) Value {
	if len(s) <= inlineStringBound {
		if v, ok := rt.shortStrings.get(s); ok {
			return v
		}
		id := rt.heap.Alloc(TagStr, &StrObj{Text: NewText(s)})
		v := StrValue(id)
		rt.shortStrings.put(s, v)
		return v
	}
	if id, ok := rt.interning.byContent[s]; ok {
		return StrValue(id)
	}
	id := rt.heap.Alloc(TagStr, &StrObj{Text: NewText(s)})
	rt.interning.byContent[s] = id
	return StrValue(id)
}

// MakeIntStr implements the small-int-to-string cache: O(1) without
// allocation for 0..99_999, falling back to MakeStr otherwise.
func (rt *Runtime) MakeIntStr(i int64) Value {
	if i >= 0 && i < smallIntStringBound {
		if v, ok := rt.smallIntStrings[i]; ok {
			return v
		}
		v := rt.MakeStr(formatInt(i))
		rt.smallIntStrings[i] = v
		return v
	}
	return rt.MakeStr(formatInt(i))
}

func (rt *Runtime) StrText(v Value) string {
	obj := rt.heap.Get(v.AsObjID()).payload.(*StrObj)
	return obj.Text.String()
}

func (rt *Runtime) StrHash(v Value) uint64 {
	obj := rt.heap.Get(v.AsObjID()).payload.(*StrObj)
	return obj.Hash()
}

func formatInt(i int64) string { return strconv.FormatInt(i, 10) }
