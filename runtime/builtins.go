package runtime

import "strings"

// InstallBuiltins binds the global free functions (spec §4.F environment
// root) into the runtime's global environment. Grounded on the teacher's
// init()-registered systemout/println/printf/logln/pretty/prettyml family,
// generalized to route all output through WriteOutput instead of directly
// at os.Stdout (spec §6 capability boundary).
func (rt *Runtime) InstallBuiltins() {
	def := func(name string, fn BuiltinFn) {
		obj := &FunctionObj{Kind: FuncBuiltin, Name: name, Builtin: fn}
		rt.globalEnv.Define(name, FunctionValue(rt.heap.Alloc(TagFunction, obj)), false)
	}

	def("print", func(rt *Runtime, args []Value) (Value, *Error) {
		rt.WriteOutput(joinStringified(rt, args, ""))
		return UNIT, nil
	})
	def("println", func(rt *Runtime, args []Value) (Value, *Error) {
		rt.WriteOutput(joinStringified(rt, args, " ") + "\n")
		return UNIT, nil
	})
	def("printf", func(rt *Runtime, args []Value) (Value, *Error) {
		if len(args) == 0 {
			return UNIT, nil
		}
		rt.WriteOutput(formatTemplate(rt, rt.StrText(args[0]), args[1:]))
		return UNIT, nil
	})
	def("pretty", func(rt *Runtime, args []Value) (Value, *Error) {
		if len(args) == 0 {
			return UNIT, nil
		}
		return rt.MakeStr(rt.Pretty(args[0])), nil
	})
	def("prettyml", func(rt *Runtime, args []Value) (Value, *Error) {
		if len(args) == 0 {
			return UNIT, nil
		}
		return rt.MakeStr(rt.PrettyMultiline(args[0])), nil
	})
	def("printlnml", func(rt *Runtime, args []Value) (Value, *Error) {
		if len(args) == 0 {
			return UNIT, nil
		}
		rt.WriteOutput(rt.PrettyMultiline(args[0]) + "\n")
		return UNIT, nil
	})
	def("typeName", func(rt *Runtime, args []Value) (Value, *Error) {
		if len(args) == 0 {
			return rt.MakeStr("Unit"), nil
		}
		return rt.MakeStr(args[0].TypeName()), nil
	})
}

func joinStringified(rt *Runtime, args []Value, sep string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = rt.stringify(a)
	}
	return strings.Join(parts, sep)
}

// formatTemplate substitutes `{}` placeholders in order, the way the
// teacher's printf builtin worked, generalized over the full Value set via
// stringify instead of a Number/String/Bool-only switch.
func formatTemplate(rt *Runtime, template string, args []Value) string {
	var b strings.Builder
	argi := 0
	for i := 0; i < len(template); i++ {
		if template[i] == '{' && i+1 < len(template) && template[i+1] == '}' && argi < len(args) {
			b.WriteString(rt.stringify(args[argi]))
			argi++
			i++
			continue
		}
		b.WriteByte(template[i])
	}
	return b.String()
}

// builtinListMember classifies a method/property name against the list
// MethodKind family (spec §4.I): length, add/push, pop, contains, items.
func (rt *Runtime) builtinListMember(name string, recv Value) (Value, *Error) {
	l := rt.heap.Get(recv.AsObjID()).payload.(*ListObj)
	switch name {
	case "length":
		return FromI64(int64(len(l.Elems))), nil
	case "add", "push":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			l.Elems = append(l.Elems, args...)
			return recv, nil
		}), nil
	case "pop":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			if len(l.Elems) == 0 {
				return Value{}, NewErrorKind(ErrIndexOutOfRange, "pop from empty list")
			}
			last := l.Elems[len(l.Elems)-1]
			l.Elems = l.Elems[:len(l.Elems)-1]
			return last, nil
		}), nil
	case "contains":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			for _, e := range l.Elems {
				if rt.Equal(e, args[0]) {
					return TRUE, nil
				}
			}
			return FALSE, nil
		}), nil
	case "items":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			return recv, nil
		}), nil
	default:
		return Value{}, NewErrorKind(ErrUnknownMember, "unknown list method '"+name+"'")
	}
}

func (rt *Runtime) builtinSetMember(name string, recv Value) (Value, *Error) {
	s := rt.heap.Get(recv.AsObjID()).payload.(*SetObj)
	switch name {
	case "length":
		return FromI64(int64(rt.DictLen(s.Dict))), nil
	case "add":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			rt.SetAdd(s, args[0])
			return recv, nil
		}), nil
	case "contains":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			return FromBool(rt.SetContains(s, args[0])), nil
		}), nil
	case "items":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			items := rt.SetItems(s)
			return ListValue(rt.heap.Alloc(TagList, &ListObj{Elems: items})), nil
		}), nil
	default:
		return Value{}, NewErrorKind(ErrUnknownMember, "unknown set method '"+name+"'")
	}
}

// builtinDictMember covers length/get/insert/merge/keys/values/items/contains
// (spec §4.I builtin dict MethodKind family).
func (rt *Runtime) builtinDictMember(name string, recv Value) (Value, *Error) {
	d := rt.heap.Get(recv.AsObjID()).payload.(*DictObj)
	switch name {
	case "length":
		return FromI64(int64(rt.DictLen(d))), nil
	case "keys":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			return ListValue(rt.heap.Alloc(TagList, &ListObj{Elems: rt.DictKeys(d)})), nil
		}), nil
	case "values":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			return ListValue(rt.heap.Alloc(TagList, &ListObj{Elems: rt.DictValues(d)})), nil
		}), nil
	case "items":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			keys := rt.DictKeys(d)
			pairs := make([]Value, len(keys))
			for i, k := range keys {
				v, _ := rt.DictGet(d, k)
				pairs[i] = TupleValue(rt.heap.Alloc(TagTuple, &TupleObj{Elems: []Value{k, v}}))
			}
			return ListValue(rt.heap.Alloc(TagList, &ListObj{Elems: pairs})), nil
		}), nil
	case "get":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			v, ok := rt.DictGet(d, args[0])
			if !ok {
				if len(args) > 1 {
					return args[1], nil
				}
				return UNIT, nil
			}
			return v, nil
		}), nil
	case "insert":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			if err := rt.DictInsert(d, args[0], args[1]); err != nil {
				return Value{}, err
			}
			return recv, nil
		}), nil
	case "contains":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			_, ok := rt.DictGet(d, args[0])
			return FromBool(ok), nil
		}), nil
	case "merge":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			other := rt.heap.Get(args[0].AsObjID()).payload.(*DictObj)
			rt.DictMerge(d, other)
			return recv, nil
		}), nil
	default:
		return Value{}, NewErrorKind(ErrUnknownMember, "unknown dict method '"+name+"'")
	}
}

// builtinStrMember covers length/split/contains (spec §4.I builtin text
// MethodKind family).
func (rt *Runtime) builtinStrMember(name string, recv Value) (Value, *Error) {
	text := rt.StrText(recv)
	switch name {
	case "length":
		return FromI64(int64(len(text))), nil
	case "split":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			sep := " "
			if len(args) > 0 {
				sep = rt.StrText(args[0])
			}
			parts := strings.Split(text, sep)
			elems := make([]Value, len(parts))
			for i, p := range parts {
				elems[i] = rt.MakeStr(p)
			}
			return ListValue(rt.heap.Alloc(TagList, &ListObj{Elems: elems})), nil
		}), nil
	case "contains":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			return FromBool(strings.Contains(text, rt.StrText(args[0]))), nil
		}), nil
	case "upper":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			return rt.MakeStr(strings.ToUpper(text)), nil
		}), nil
	case "lower":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			return rt.MakeStr(strings.ToLower(text)), nil
		}), nil
	case "trim":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			return rt.MakeStr(strings.TrimSpace(text)), nil
		}), nil
	default:
		return Value{}, NewErrorKind(ErrUnknownMember, "unknown string method '"+name+"'")
	}
}

func (rt *Runtime) builtinRangeMember(name string, recv Value) (Value, *Error) {
	r := rt.heap.Get(recv.AsObjID()).payload.(*RangeObj)
	switch name {
	case "length":
		return FromI64(r.Len()), nil
	case "contains":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			i := args[0].AsI64()
			if r.step() > 0 {
				return FromBool(i >= r.Start && (i < r.End || (r.Inclusive && i == r.End))), nil
			}
			return FromBool(i <= r.Start && (i > r.End || (r.Inclusive && i == r.End))), nil
		}), nil
	default:
		return Value{}, NewErrorKind(ErrUnknownMember, "unknown range method '"+name+"'")
	}
}

// builtinFileMember covers read/close (spec §4.I builtin file MethodKind
// family), reached only through the FileSystem capability.
func (rt *Runtime) builtinFileMember(name string, recv Value) (Value, *Error) {
	f := rt.heap.Get(recv.AsObjID()).payload.(*FileObj)
	switch name {
	case "read":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			if f.closed {
				return Value{}, NewErrorKind(ErrFileNotFound, "read from closed file")
			}
			if rt.FileSystem == nil {
				return Value{}, NewErrorKind(ErrPathNotAllowed, "no filesystem capability configured")
			}
			text, err := rt.FileSystem.ReadToString(f.path)
			if err != nil {
				return Value{}, NewErrorKind(ErrFileNotFound, err.Error())
			}
			return rt.MakeStr(text), nil
		}), nil
	case "close":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			f.closed = true
			if f.handle != nil {
				f.handle.Close()
			}
			return UNIT, nil
		}), nil
	default:
		return Value{}, NewErrorKind(ErrUnknownMember, "unknown file method '"+name+"'")
	}
}

// builtinEnumMember covers the Option-style has/none convenience methods
// (spec §9 OptionSome specialization) alongside the common variantName/
// payload accessors every enum instance gets for free.
func (rt *Runtime) builtinEnumMember(e *EnumObj, name string, recv Value) (Value, *Error) {
	switch name {
	case "variantName":
		return rt.MakeStr(e.VariantName), nil
	case "has":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			return FromBool(e.VariantName == "some"), nil
		}), nil
	case "none":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			return FromBool(e.VariantName == "none"), nil
		}), nil
	case "unwrap":
		return rt.bindBuiltinMethod(name, recv, func(rt *Runtime, args []Value) (Value, *Error) {
			if e.Arity() == 0 {
				return Value{}, NewErrorKind(ErrUnsupportedMethod, "unwrap on a payload-less variant")
			}
			return e.PayloadAt(0), nil
		}), nil
	default:
		return Value{}, NewErrorKind(ErrUnknownMember, "unknown enum method '"+name+"'")
	}
}

// bindBuiltinMethod wraps a builtin method body as a zero-arg-to-the-caller
// closure over its receiver, mirroring bindMethod's shape for user methods
// so GET_MEMBER + CALL works uniformly across both (spec §4.I).
func (rt *Runtime) bindBuiltinMethod(name string, recv Value, fn BuiltinFn) Value {
	obj := &FunctionObj{Kind: FuncBuiltin, Name: name, Builtin: fn}
	return FunctionValue(rt.heap.Alloc(TagFunction, obj))
}
