package runtime

// Equal implements spec §3 "Equality on immediates is structural; on
// references, pointer-equal implies equal, otherwise a recursive structural
// comparison is performed (cycles broken by a visited-set)."
func (rt *Runtime) Equal(a, b Value) bool {
	return rt.equalVisited(a, b, make(map[[2]ObjectId]bool))
}

func (rt *Runtime) equalVisited(a, b Value, visited map[[2]ObjectId]bool) bool {
	// Numeric widening: int<->float compare numerically but bool/unit/number
	// stay distinct (spec §4.F "Equality widens int↔float numerically but
	// distinguishes bool, unit, and number").
	if a.IsNumber() && b.IsNumber() {
		if a.IsInt() && b.IsInt() {
			return a.AsI64() == b.AsI64()
		}
		return a.AsFloat64() == b.AsFloat64()
	}
	if a.GetTag() != b.GetTag() {
		return false
	}
	switch a.GetTag() {
	case TagBool:
		return a.AsBool() == b.AsBool()
	case TagUnit:
		return true
	}
	if !a.IsHeapRef() {
		return a == b
	}
	idA, idB := a.AsObjID(), b.AsObjID()
	if idA == idB {
		return true
	}
	key := [2]ObjectId{idA, idB}
	if idA > idB {
		key = [2]ObjectId{idB, idA}
	}
	if visited[key] {
		return true // already comparing this pair further up the recursion
	}
	visited[key] = true

	objA := rt.heap.Get(idA).payload
	objB := rt.heap.Get(idB).payload
	switch pa := objA.(type) {
	case *StrObj:
		pb := objB.(*StrObj)
		return pa.Text.String() == pb.Text.String()
	case *ListObj:
		pb := objB.(*ListObj)
		if len(pa.Elems) != len(pb.Elems) {
			return false
		}
		for i := range pa.Elems {
			if !rt.equalVisited(pa.Elems[i], pb.Elems[i], visited) {
				return false
			}
		}
		return true
	case *TupleObj:
		pb := objB.(*TupleObj)
		if len(pa.Elems) != len(pb.Elems) {
			return false
		}
		for i := range pa.Elems {
			if !rt.equalVisited(pa.Elems[i], pb.Elems[i], visited) {
				return false
			}
		}
		return true
	case *RangeObj:
		pb := objB.(*RangeObj)
		return *pa == *pb
	case *DictObj:
		pb := objB.(*DictObj)
		if rt.DictLen(pa) != rt.DictLen(pb) {
			return false
		}
		for _, k := range rt.DictKeys(pa) {
			va, _ := rt.DictGet(pa, k)
			vb, ok := rt.DictGet(pb, k)
			if !ok || !rt.equalVisited(va, vb, visited) {
				return false
			}
		}
		return true
	case *SetObj:
		pb := objB.(*SetObj)
		return rt.equalDictPayload(pa.Dict, pb.Dict, visited)
	case *StructObj:
		pb := objB.(*StructObj)
		if pa.TypeHash != pb.TypeHash {
			return false
		}
		for i := range pa.FieldValues {
			if !rt.equalVisited(pa.FieldValues[i], pb.FieldValues[i], visited) {
				return false
			}
		}
		return true
	case *EnumObj:
		pb := objB.(*EnumObj)
		if pa.TypeName != pb.TypeName || pa.VariantName != pb.VariantName || pa.Arity() != pb.Arity() {
			return false
		}
		for i := 0; i < pa.Arity(); i++ {
			if !rt.equalVisited(pa.PayloadAt(i), pb.PayloadAt(i), visited) {
				return false
			}
		}
		return true
	default:
		// Functions, modules, shapes, builders, files: reference identity
		// only (already excluded above since idA == idB returned early).
		return false
	}
}

func (rt *Runtime) equalDictPayload(a, b *DictObj, visited map[[2]ObjectId]bool) bool {
	if rt.DictLen(a) != rt.DictLen(b) {
		return false
	}
	for _, k := range rt.DictKeys(a) {
		va, _ := rt.DictGet(a, k)
		vb, ok := rt.DictGet(b, k)
		if !ok || !rt.equalVisited(va, vb, visited) {
			return false
		}
	}
	return true
}
