package runtime

import "github.com/dymsrun/dyms/ast"

// matchPattern attempts to destructure subject against pat, defining any
// bindings it introduces directly into env (spec §4.F/§5 match semantics).
// Bindings from a pattern that ultimately fails to match must not leak, so
// callers try each arm in a child Environment and discard it on failure.
func (interp *Interpreter) matchPattern(pat ast.Pattern, subject Value, env *Environment) (bool, *Error) {
	switch pat.Kind {
	case ast.PatternWildcard:
		return true, nil

	case ast.PatternBinding:
		env.Define(pat.Name, subject, true)
		return true, nil

	case ast.PatternLiteral:
		lit, err := interp.evalExpr(pat.Literal, env)
		if err != nil {
			return false, err
		}
		return interp.rt.Equal(lit, subject), nil

	case ast.PatternTuple:
		if subject.GetTag() != TagTuple {
			return false, nil
		}
		t := interp.rt.heap.Get(subject.AsObjID()).payload.(*TupleObj)
		if len(t.Elems) != len(pat.SubPatterns) {
			return false, nil
		}
		for i, sub := range pat.SubPatterns {
			ok, err := interp.matchPattern(sub, t.Elems[i], env)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	case ast.PatternEnum:
		if subject.GetTag() != TagEnum {
			return false, nil
		}
		e := interp.rt.heap.Get(subject.AsObjID()).payload.(*EnumObj)
		if e.TypeName != pat.TypeName || e.VariantName != pat.VariantName {
			return false, nil
		}
		if e.Arity() != len(pat.SubPatterns) {
			return false, nil
		}
		for i, sub := range pat.SubPatterns {
			ok, err := interp.matchPattern(sub, e.PayloadAt(i), env)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	case ast.PatternStruct:
		if subject.GetTag() != TagStruct {
			return false, nil
		}
		s := interp.rt.heap.Get(subject.AsObjID()).payload.(*StructObj)
		if pat.TypeName != "" && s.TypeName != pat.TypeName {
			return false, nil
		}
		for i, name := range pat.FieldNames {
			off, ok := s.FieldOffset(name)
			if !ok {
				return false, nil
			}
			matched, err := interp.matchPattern(pat.SubPatterns[i], s.FieldValues[off], env)
			if err != nil || !matched {
				return false, err
			}
		}
		return true, nil

	default:
		return false, nil
	}
}

// evalMatch evaluates a MatchExpr, trying each arm in order (spec §4.F):
// the first pattern that destructures the subject and whose guard (if any)
// is truthy wins. An arm's bindings are scoped to its own child environment,
// including the guard and the body.
func (interp *Interpreter) evalMatch(m *ast.MatchExpr, env *Environment) (Value, *Error) {
	subject, err := interp.evalExpr(m.Subject, env)
	if err != nil {
		return Value{}, err
	}
	for _, arm := range m.Arms {
		armEnv := env.Push()
		ok, merr := interp.matchPattern(arm.Pattern, subject, armEnv)
		if merr != nil {
			return Value{}, merr
		}
		if !ok {
			continue
		}
		if arm.Guard != nil {
			guardVal, gerr := interp.evalExpr(arm.Guard, armEnv)
			if gerr != nil {
				return Value{}, gerr
			}
			if !guardVal.AsBool() {
				continue
			}
		}
		return interp.evalExpr(arm.Body, armEnv)
	}
	return Value{}, NewErrorKind(ErrUnexpectedControlFlow, "no match arm matched the value")
}
