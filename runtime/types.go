package runtime

// StructTypeInfo is the registered shape of a declared struct type (spec §3
// "struct declarations introduce a named record type"). TypeHash is the
// content hash of the type name, used as the fast comparison key for method
// dispatch and inline caches (spec §4.G/§4.I).
type StructTypeInfo struct {
	Name       string
	TypeHash   uint64
	FieldNames []string
}

// EnumTypeInfo is the registered variant table of a declared enum type.
type EnumTypeInfo struct {
	Name     string
	TypeHash uint64
	Variants map[string]EnumVariantInfo
}

type EnumVariantInfo struct {
	Name   string
	Fields []string
}

func (rt *Runtime) RegisterStructType(name string, fieldNames []string) *StructTypeInfo {
	info := &StructTypeInfo{Name: name, TypeHash: hashString(name), FieldNames: fieldNames}
	rt.structTypes[name] = info
	return info
}

func (rt *Runtime) RegisterEnumType(name string, variants []EnumVariantInfo) *EnumTypeInfo {
	vm := make(map[string]EnumVariantInfo, len(variants))
	for _, v := range variants {
		vm[v.Name] = v
	}
	info := &EnumTypeInfo{Name: name, TypeHash: hashString(name), Variants: vm}
	rt.enumTypes[name] = info
	return info
}

// methodKey mangles a receiver type and method name into the registry key
// (spec §4.I "struct method name mangling: TypeName#methodName").
func methodKey(typeName, methodName string) string { return typeName + "#" + methodName }

func (rt *Runtime) RegisterMethod(typeName, methodName string, fn *FunctionObj) {
	rt.methods[methodKey(typeName, methodName)] = fn
	rt.methodCache[methodCacheKey{typeHash: hashString(typeName), method: methodName}] = fn
}

func (rt *Runtime) LookupMethod(typeName, methodName string) (*FunctionObj, bool) {
	fn, ok := rt.methods[methodKey(typeName, methodName)]
	return fn, ok
}

// LookupMethodByHash is the hash-keyed twin of LookupMethod (spec §4.G/§4.I):
// a struct or enum instance already carries its TypeHash, so the
// OP_CALL_METHOD_IC fast path and getMember's struct/enum branches can
// resolve a method without rebuilding the "TypeName#methodName" string key
// on every call.
func (rt *Runtime) LookupMethodByHash(typeHash uint64, methodName string) (*FunctionObj, bool) {
	fn, ok := rt.methodCache[methodCacheKey{typeHash: typeHash, method: methodName}]
	return fn, ok
}
