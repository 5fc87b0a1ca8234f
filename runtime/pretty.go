package runtime

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Pretty formats a Value as a single-line string (spec §4.F stringification
// rules, used by the `pretty` builtin and in error messages).
func (rt *Runtime) Pretty(v Value) string {
	switch v.GetTag() {
	case TagUnit:
		return "null"
	case TagInt:
		return formatInt(v.AsI64())
	case TagFloat:
		return fmt.Sprintf("%v", v.AsF64())
	case TagBool:
		return fmt.Sprintf("%v", v.AsBool())
	case TagStr:
		return fmt.Sprintf("%q", rt.StrText(v))
	case TagFunction:
		return "[function]"
	case TagList:
		l := rt.heap.Get(v.AsObjID()).payload.(*ListObj)
		parts := make([]string, len(l.Elems))
		for i, el := range l.Elems {
			parts[i] = rt.Pretty(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case TagTuple:
		t := rt.heap.Get(v.AsObjID()).payload.(*TupleObj)
		parts := make([]string, len(t.Elems))
		for i, el := range t.Elems {
			parts[i] = rt.Pretty(el)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case TagSet:
		s := rt.heap.Get(v.AsObjID()).payload.(*SetObj)
		items := rt.SetItems(s)
		parts := make([]string, len(items))
		for i, el := range items {
			parts[i] = rt.Pretty(el)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case TagDict:
		d := rt.heap.Get(v.AsObjID()).payload.(*DictObj)
		keys := rt.DictKeys(d)
		parts := make([]string, len(keys))
		for i, k := range keys {
			val, _ := rt.DictGet(d, k)
			parts[i] = fmt.Sprintf("%s: %s", rt.Pretty(k), rt.Pretty(val))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case TagRange:
		r := rt.heap.Get(v.AsObjID()).payload.(*RangeObj)
		op := ".."
		if r.Inclusive {
			op = "..="
		}
		return fmt.Sprintf("%d%s%d", r.Start, op, r.End)
	case TagStruct:
		s := rt.heap.Get(v.AsObjID()).payload.(*StructObj)
		parts := make([]string, len(s.FieldNames))
		for i, n := range s.FieldNames {
			parts[i] = fmt.Sprintf("%s: %s", n, rt.Pretty(s.FieldValues[i]))
		}
		return fmt.Sprintf("%s { %s }", s.TypeName, strings.Join(parts, ", "))
	case TagEnum:
		e := rt.heap.Get(v.AsObjID()).payload.(*EnumObj)
		if e.Arity() == 0 {
			return fmt.Sprintf("%s#%s", e.TypeName, e.VariantName)
		}
		parts := make([]string, e.Arity())
		for i := 0; i < e.Arity(); i++ {
			parts[i] = rt.Pretty(e.PayloadAt(i))
		}
		return fmt.Sprintf("%s#%s(%s)", e.TypeName, e.VariantName, strings.Join(parts, ", "))
	default:
		return "<" + v.TypeName() + ">"
	}
}

// PrettyMultiline formats a Value as an indented multi-line tree, used by the
// `prettyml`/`printlnml` builtins.
func (rt *Runtime) PrettyMultiline(v Value) string {
	return rt.prettyML(v, 0)
}

func (rt *Runtime) prettyML(v Value, indent int) string {
	pad := strings.Repeat("  ", indent)
	switch v.GetTag() {
	case TagList:
		l := rt.heap.Get(v.AsObjID()).payload.(*ListObj)
		if len(l.Elems) == 0 {
			return pad + "[]"
		}
		var b strings.Builder
		b.WriteString(pad + "[\n")
		for i, el := range l.Elems {
			b.WriteString(rt.prettyML(el, indent+1))
			if i < len(l.Elems)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(pad + "]")
		return b.String()
	case TagDict:
		d := rt.heap.Get(v.AsObjID()).payload.(*DictObj)
		keys := rt.DictKeys(d)
		if len(keys) == 0 {
			return pad + "{}"
		}
		sortedKeys := make([]string, len(keys))
		for i, k := range keys {
			sortedKeys[i] = rt.Pretty(k)
		}
		slices.Sort(sortedKeys)
		var b strings.Builder
		b.WriteString(pad + "{\n")
		for i, k := range keys {
			val, _ := rt.DictGet(d, k)
			b.WriteString(strings.Repeat("  ", indent+1))
			b.WriteString(rt.Pretty(k) + ": ")
			b.WriteString(strings.TrimLeft(rt.prettyML(val, indent+1), " "))
			if i < len(keys)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(pad + "}")
		return b.String()
	default:
		return pad + rt.Pretty(v)
	}
}

// Unescape replaces the lexer's escape sequences with literal characters. The
// lexer does its own escape handling while scanning string literals and does
// not call this.
func Unescape(s string) string {
	replacer := strings.NewReplacer(`\r\n`, "\r\n", `\n`, "\n", `\t`, "\t", `\\`, "\\", `\"`, "\"", "\\$", "$")
	return replacer.Replace(s)
}
