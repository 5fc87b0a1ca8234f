package runtime

import (
	"os"

	"github.com/dymsrun/dyms/ast"
)

// ListObj is an ordered, growable sequence (spec §3).
type ListObj struct {
	Elems []Value
}

// TupleObj is an immutable sequence, allocated once and never mutated
// thereafter (spec §3 Lifecycles).
type TupleObj struct {
	Elems []Value
}

// RangeObj is the half-open or inclusive integer range produced by `a..b`
// / `a..=b` (spec §4.F foreach semantics).
type RangeObj struct {
	Start, End int64
	Inclusive  bool
}

func (r *RangeObj) step() int64 {
	if r.End >= r.Start {
		return 1
	}
	return -1
}

// Len returns the number of values the range yields.
func (r *RangeObj) Len() int64 {
	step := r.step()
	n := (r.End - r.Start) / step
	if r.Inclusive {
		n++
	}
	if n < 0 {
		return 0
	}
	return n
}

// StructObj is a struct instance: parallel field-name/field-value arrays
// whose offsets are stable for the instance's lifetime (spec §3).
type StructObj struct {
	TypeName    string
	TypeHash    uint64
	FieldNames  []string
	FieldValues []Value
}

func (s *StructObj) FieldOffset(name string) (int, bool) {
	for i, n := range s.FieldNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// EnumObj is an enum instance. FastPayload avoids a slice allocation for the
// common single-payload case (e.g. Option#some), per SPEC_FULL.md §5's
// OptionSome specialization carried over from the Rust original.
type EnumObj struct {
	TypeName    string
	VariantName string
	HasFast     bool
	FastPayload Value
	Payload     []Value
}

func (e *EnumObj) Arity() int {
	if e.HasFast {
		return 1
	}
	return len(e.Payload)
}

func (e *EnumObj) PayloadAt(i int) Value {
	if e.HasFast {
		return e.FastPayload
	}
	return e.Payload[i]
}

// FuncKind discriminates the three function representations named in spec
// §3/§4.H.
type FuncKind uint8

const (
	FuncBuiltin FuncKind = iota
	FuncUser
	FuncBytecode
)

type BuiltinFn func(rt *Runtime, args []Value) (Value, *Error)

// UserFunction is an AST-bodied closure: teacher's runtime/value.go
// UserFunction, generalized to carry a type-checked parameter list and a
// frozen Environment.
type UserFunction struct {
	Name          string
	Params        []Param
	Body          *ast.BlockStatement
	Env           *Environment
	DefaultExprs  map[string]ast.Expr // name -> default-value expression, evaluated lazily for omitted args
	ReturnTypeAnn string
}

type Param struct {
	Name    string
	TypeAnn string
}

// BytecodeFunction is a compiled function: teacher's VMFunction, generalized
// with the fast-path fields spec §4.H names.
type BytecodeFunction struct {
	Name             string
	Params           []Param
	Chunk            *Chunk
	LocalsCount      int
	NeedsEnvFrame    bool
	FastParamIndices []int // len(Params); index into the local-slot vector
	CapturedEnv      *Environment
	ReturnTypeAnn    string
}

// FunctionObj is the heap wrapper unifying all three invocation paths
// behind one Value tag (spec §3 "Function — one of Builtin/User/Bytecode").
type FunctionObj struct {
	Kind     FuncKind
	Name     string
	Builtin  BuiltinFn
	User     *UserFunction
	Bytecode *BytecodeFunction
}

// ModuleObj exposes a Dict-valued exports table (spec §4.J).
type ModuleObj struct {
	Path    string
	Exports ObjectId // a DictObj
}

// BuilderObj is the mutable string buffer used by interpolation (spec §3,
// §4.F). Pooled with bounded population/capacity (spec §5).
type BuilderObj struct {
	buf []byte
}

func (b *BuilderObj) Reset(capHint int) {
	if cap(b.buf) < capHint {
		b.buf = make([]byte, 0, capHint)
	} else {
		b.buf = b.buf[:0]
	}
}

func (b *BuilderObj) WriteString(s string) { b.buf = append(b.buf, s...) }
func (b *BuilderObj) String() string       { return string(b.buf) }

// FileObj wraps an OS file handle reached only through the FileSystem
// capability (spec §6); the core never opens files directly except through
// this thin wrapper used by the `file` builtin method family.
type FileObj struct {
	handle *os.File
	path   string
	closed bool
}
