package runtime

import "strconv"

// stringify renders a Value the way string interpolation and `+` string
// concatenation do (spec §4.F): unquoted, with unit stringifying as "null"
// per the Open Question resolution in SPEC_FULL.md §9.
func (rt *Runtime) stringify(v Value) string {
	switch v.GetTag() {
	case TagUnit:
		return "null"
	case TagStr:
		return rt.StrText(v)
	case TagInt:
		return formatInt(v.AsI64())
	case TagFloat:
		return strconv.FormatFloat(v.AsF64(), 'g', -1, 64)
	case TagBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	default:
		return rt.Pretty(v)
	}
}

// getMember implements spec §4.F/§4.I member access: struct fields and
// user-defined methods resolve first, then each container's builtin method
// table.
func (rt *Runtime) getMember(obj Value, name string) (Value, *Error) {
	switch obj.GetTag() {
	case TagStruct:
		s := rt.heap.Get(obj.AsObjID()).payload.(*StructObj)
		if off, ok := s.FieldOffset(name); ok {
			return s.FieldValues[off], nil
		}
		if fn, ok := rt.LookupMethodByHash(s.TypeHash, name); ok {
			return rt.bindMethod(fn, obj), nil
		}
		return Value{}, NewErrorKind(ErrUnknownMember, "no field or method '"+name+"' on "+s.TypeName)
	case TagEnum:
		e := rt.heap.Get(obj.AsObjID()).payload.(*EnumObj)
		if fn, ok := rt.LookupMethodByHash(hashString(e.TypeName), name); ok {
			return rt.bindMethod(fn, obj), nil
		}
		return rt.builtinEnumMember(e, name, obj)
	case TagDict:
		d := rt.heap.Get(obj.AsObjID()).payload.(*DictObj)
		if v, ok := rt.DictGetStr(d, name); ok {
			return v, nil
		}
		return rt.builtinDictMember(name, obj)
	case TagList:
		return rt.builtinListMember(name, obj)
	case TagSet:
		return rt.builtinSetMember(name, obj)
	case TagStr:
		return rt.builtinStrMember(name, obj)
	case TagRange:
		return rt.builtinRangeMember(name, obj)
	case TagFile:
		return rt.builtinFileMember(name, obj)
	case TagModule:
		m := rt.heap.Get(obj.AsObjID()).payload.(*ModuleObj)
		exports := rt.heap.Get(m.Exports).payload.(*DictObj)
		if v, ok := rt.DictGetStr(exports, name); ok {
			return v, nil
		}
		return Value{}, NewErrorKind(ErrUnknownMember, "module has no export '"+name+"'")
	default:
		return Value{}, NewErrorKind(ErrInvalidMemberAccess, "cannot access member '"+name+"' on "+obj.TypeName())
	}
}

// bindMethod wraps a user-defined method as a zero-extra-arg closure over
// the receiver, so `obj.method(args...)` can run as an ordinary member
// lookup followed by a call (spec §4.I dispatch, §4.H invocation protocol
// unified); compiled method calls go through invokeMethodIC instead.
func (rt *Runtime) bindMethod(fn *FunctionObj, receiver Value) Value {
	bound := &FunctionObj{Kind: FuncBuiltin, Name: fn.Name, Builtin: func(rt *Runtime, args []Value) (Value, *Error) {
		return rt.invokeBound(fn, receiver, args)
	}}
	return FunctionValue(rt.heap.Alloc(TagFunction, bound))
}

func (rt *Runtime) setMember(obj Value, name string, val Value) *Error {
	switch obj.GetTag() {
	case TagStruct:
		s := rt.heap.Get(obj.AsObjID()).payload.(*StructObj)
		off, ok := s.FieldOffset(name)
		if !ok {
			return NewErrorKind(ErrUnknownMember, "no field '"+name+"' on "+s.TypeName)
		}
		s.FieldValues[off] = val
		return nil
	case TagDict:
		d := rt.heap.Get(obj.AsObjID()).payload.(*DictObj)
		rt.dictInsertStrKey(d, name, val)
		return nil
	default:
		return NewErrorKind(ErrInvalidMemberAccess, "cannot set member '"+name+"' on "+obj.TypeName())
	}
}

func (rt *Runtime) getIndex(obj, idx Value) (Value, *Error) {
	switch obj.GetTag() {
	case TagList:
		if !idx.IsInt() {
			return Value{}, NewErrorKind(ErrListIndexRequired, "list index must be an int")
		}
		l := rt.heap.Get(obj.AsObjID()).payload.(*ListObj)
		i := idx.AsI64()
		if i < 0 || i >= int64(len(l.Elems)) {
			return Value{}, NewErrorKind(ErrIndexOutOfRange, "list index out of range")
		}
		return l.Elems[i], nil
	case TagTuple:
		if !idx.IsInt() {
			return Value{}, NewErrorKind(ErrListIndexRequired, "tuple index must be an int")
		}
		t := rt.heap.Get(obj.AsObjID()).payload.(*TupleObj)
		i := idx.AsI64()
		if i < 0 || i >= int64(len(t.Elems)) {
			return Value{}, NewErrorKind(ErrIndexOutOfRange, "tuple index out of range")
		}
		return t.Elems[i], nil
	case TagDict:
		d := rt.heap.Get(obj.AsObjID()).payload.(*DictObj)
		v, ok := rt.DictGet(d, idx)
		if !ok {
			return Value{}, NewErrorKind(ErrKeyNotFound, "key not found: "+rt.Pretty(idx))
		}
		return v, nil
	case TagStr:
		if !idx.IsInt() {
			return Value{}, NewErrorKind(ErrListIndexRequired, "string index must be an int")
		}
		s := rt.StrText(obj)
		i := idx.AsI64()
		if i < 0 || i >= int64(len(s)) {
			return Value{}, NewErrorKind(ErrIndexOutOfRange, "string index out of range")
		}
		return rt.MakeStr(string(s[i])), nil
	case TagRange:
		r := rt.heap.Get(obj.AsObjID()).payload.(*RangeObj)
		i := idx.AsI64()
		if i < 0 || i >= r.Len() {
			return Value{}, NewErrorKind(ErrIndexOutOfRange, "range index out of range")
		}
		return FromI64(r.Start + i*r.step()), nil
	default:
		return Value{}, NewErrorKind(ErrInvalidIndexAccess, "cannot index "+obj.TypeName())
	}
}

func (rt *Runtime) setIndex(obj, idx, val Value) *Error {
	switch obj.GetTag() {
	case TagList:
		if !idx.IsInt() {
			return NewErrorKind(ErrListIndexRequired, "list index must be an int")
		}
		l := rt.heap.Get(obj.AsObjID()).payload.(*ListObj)
		i := idx.AsI64()
		if i < 0 || i >= int64(len(l.Elems)) {
			return NewErrorKind(ErrIndexOutOfRange, "list index out of range")
		}
		l.Elems[i] = val
		return nil
	case TagDict:
		d := rt.heap.Get(obj.AsObjID()).payload.(*DictObj)
		return rt.DictInsert(d, idx, val)
	default:
		return NewErrorKind(ErrInvalidIndexAccess, "cannot index-assign "+obj.TypeName())
	}
}

// typeHashOf returns the receiver's TypeHash for struct/enum values, the
// key inline caches validate a cached offset/function against (spec §4.G).
// Enums don't carry a precomputed TypeHash field (unlike StructObj), so the
// type name is rehashed; method dispatch, not field access, is the only
// enum IC path and the hash is only taken on a cache miss.
func (rt *Runtime) typeHashOf(v Value) (uint64, bool) {
	switch v.GetTag() {
	case TagStruct:
		return rt.heap.Get(v.AsObjID()).payload.(*StructObj).TypeHash, true
	case TagEnum:
		return hashString(rt.heap.Get(v.AsObjID()).payload.(*EnumObj).TypeName), true
	default:
		return 0, false
	}
}

// getMemberCached is OP_GET_MEMBER_IC's fast path: a monomorphic struct
// field access validates the cached offset against the receiver's TypeHash
// and skips StructObj.FieldOffset's linear scan; a shaped dict validates
// the cached offset against the ShapeObj pointer it was taken from (shapes
// are interned, so identity is the correct "has this dict's layout
// changed" check). Anything else, or a cache miss, falls through to the
// slow getMember path, populating the slot for next time.
func (rt *Runtime) getMemberCached(slot *ICSlot, obj Value, name string) (Value, *Error) {
	switch obj.GetTag() {
	case TagStruct:
		s := rt.heap.Get(obj.AsObjID()).payload.(*StructObj)
		if slot.Kind == ICStructField && slot.seenVersion == s.TypeHash && slot.fieldName == name {
			return s.FieldValues[slot.offset], nil
		}
		if off, ok := s.FieldOffset(name); ok {
			slot.Kind, slot.seenVersion, slot.fieldName, slot.offset = ICStructField, s.TypeHash, name, off
			return s.FieldValues[off], nil
		}
	case TagDict:
		d := rt.heap.Get(obj.AsObjID()).payload.(*DictObj)
		if !d.hasShape {
			break
		}
		if slot.Kind == ICShapeField && slot.seenShape == d.shape && slot.fieldName == name {
			return d.propVals[slot.offset], nil
		}
		if off, ok := d.shape.Offsets[name]; ok {
			slot.Kind, slot.seenShape, slot.fieldName, slot.offset = ICShapeField, d.shape, name, off
			return d.propVals[off], nil
		}
	}
	return rt.getMember(obj, name)
}

// setMemberCached is OP_SET_MEMBER_IC's fast path, mirroring
// getMemberCached for writes. Dict writes always go through
// dictInsertStrKey (the only place that keeps shape/version bookkeeping
// correct across a shape transition); the cache is then refreshed from the
// dict's post-write shape so a shape-extending write invalidates stale
// entries for other fields the way DictObj.ver already signals to readers.
func (rt *Runtime) setMemberCached(slot *ICSlot, obj Value, name string, val Value) *Error {
	switch obj.GetTag() {
	case TagStruct:
		s := rt.heap.Get(obj.AsObjID()).payload.(*StructObj)
		if slot.Kind == ICStructField && slot.seenVersion == s.TypeHash && slot.fieldName == name {
			s.FieldValues[slot.offset] = val
			return nil
		}
		off, ok := s.FieldOffset(name)
		if !ok {
			return NewErrorKind(ErrUnknownMember, "no field '"+name+"' on "+s.TypeName)
		}
		slot.Kind, slot.seenVersion, slot.fieldName, slot.offset = ICStructField, s.TypeHash, name, off
		s.FieldValues[off] = val
		return nil
	case TagDict:
		d := rt.heap.Get(obj.AsObjID()).payload.(*DictObj)
		if slot.Kind == ICShapeField && slot.seenShape == d.shape && d.hasShape && slot.fieldName == name {
			d.propVals[slot.offset] = val
			d.ver++
			return nil
		}
		rt.dictInsertStrKey(d, name, val)
		// A non-shaped (hashed-map) dict member has no stable offset to
		// cache; ICDictMember marks the slot as "checked, not cacheable"
		// rather than leaving a stale ICShapeField entry behind.
		slot.Kind, slot.seenShape, slot.fieldName = ICDictMember, nil, ""
		if d.hasShape {
			if off, ok := d.shape.Offsets[name]; ok {
				slot.Kind, slot.seenShape, slot.fieldName, slot.offset = ICShapeField, d.shape, name, off
			}
		}
		return nil
	default:
		return rt.setMember(obj, name, val)
	}
}

// callMember is the generic (uncached) "resolve then call" path shared by
// OP_CALL_METHOD_IC's cache-miss fallback and any receiver kind an inline
// cache doesn't apply to (lists, dicts without the method, a callable
// stored in a plain field, ...).
func (rt *Runtime) callMember(obj Value, name string, args []Value) (Value, *Error) {
	member, merr := rt.getMember(obj, name)
	if merr != nil {
		return Value{}, merr
	}
	if member.GetTag() != TagFunction {
		return Value{}, NewErrorKind(ErrNotCallable, "member '"+name+"' is not callable")
	}
	fn := rt.heap.Get(member.AsObjID()).payload.(*FunctionObj)
	return rt.callFunctionObj(fn, args)
}

// invokeMethodIC is OP_CALL_METHOD_IC's fast path (spec §4.G/§4.I): for a
// struct or enum receiver whose TypeHash matches what this call site last
// saw, the cached unbound *FunctionObj is invoked directly via
// invokeBound, bypassing both the method-table lookup and bindMethod's
// per-call bound-closure allocation (bindMethod itself can't be cached
// across receivers since it closes over one specific instance; the
// unbound function LookupMethodByHash returns has no such problem).
func (rt *Runtime) invokeMethodIC(slot *ICSlot, recv Value, name string, args []Value) (Value, *Error) {
	typeHash, ok := rt.typeHashOf(recv)
	if !ok {
		return rt.callMember(recv, name, args)
	}
	if slot.Kind == ICMethod && slot.seenVersion == typeHash && slot.fieldName == name && slot.methodFn != nil {
		return rt.invokeBound(slot.methodFn, recv, args)
	}
	if fn, ok := rt.LookupMethodByHash(typeHash, name); ok {
		slot.Kind, slot.seenVersion, slot.fieldName, slot.methodFn = ICMethod, typeHash, name, fn
		return rt.invokeBound(fn, recv, args)
	}
	return rt.callMember(recv, name, args)
}
