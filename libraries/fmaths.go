package libraries

import (
	"math"

	"github.com/dymsrun/dyms/runtime"
)

// RegisterMath exposes the math namespace (pow, sqrt, trig, the gamma and
// factorial extras, and the usual constants) as a single `math` dict,
// grounded on the teacher's pattern of grouping a library's bindings
// behind one registration call rather than polluting the free-function
// namespace InstallBuiltins owns.
func RegisterMath(rt *runtime.Runtime) {
	bindings := map[string]runtime.Value{}

	unary := func(name string, f func(float64) float64) {
		bindings[name] = rt.BuiltinValue(name, func(rt *runtime.Runtime, args []runtime.Value) (runtime.Value, *runtime.Error) {
			if len(args) < 1 || !args[0].IsNumber() {
				return runtime.Value{}, runtime.NewErrorKind(runtime.ErrTypeMismatch, "math."+name+" requires a numeric argument")
			}
			return runtime.FromF64(f(args[0].AsFloat64())), nil
		})
	}
	binary := func(name string, f func(a, b float64) float64) {
		bindings[name] = rt.BuiltinValue(name, func(rt *runtime.Runtime, args []runtime.Value) (runtime.Value, *runtime.Error) {
			if len(args) < 2 || !args[0].IsNumber() || !args[1].IsNumber() {
				return runtime.Value{}, runtime.NewErrorKind(runtime.ErrTypeMismatch, "math."+name+" requires two numeric arguments")
			}
			return runtime.FromF64(f(args[0].AsFloat64(), args[1].AsFloat64())), nil
		})
	}

	binary("pow", math.Pow)
	unary("sqrt", math.Sqrt)
	unary("cbrt", math.Cbrt)
	unary("log", math.Log)
	unary("log10", math.Log10)
	unary("log2", math.Log2)
	unary("exp", math.Exp)
	unary("exp2", math.Exp2)
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tan", math.Tan)
	unary("asin", math.Asin)
	unary("acos", math.Acos)
	unary("atan", math.Atan)
	binary("atan2", math.Atan2)
	unary("sinh", math.Sinh)
	unary("cosh", math.Cosh)
	unary("tanh", math.Tanh)
	unary("abs", math.Abs)
	unary("ceil", math.Ceil)
	unary("floor", math.Floor)
	unary("round", math.Round)
	unary("gamma", math.Gamma)

	bindings["min"] = rt.BuiltinValue("min", func(rt *runtime.Runtime, args []runtime.Value) (runtime.Value, *runtime.Error) {
		if len(args) < 2 {
			return runtime.Value{}, runtime.NewErrorKind(runtime.ErrArgumentCountMismatch, "math.min requires at least 2 arguments")
		}
		best := math.Inf(1)
		for _, a := range args {
			if !a.IsNumber() {
				return runtime.Value{}, runtime.NewErrorKind(runtime.ErrTypeMismatch, "math.min requires numeric arguments")
			}
			if v := a.AsFloat64(); v < best {
				best = v
			}
		}
		return runtime.FromF64(best), nil
	})
	bindings["max"] = rt.BuiltinValue("max", func(rt *runtime.Runtime, args []runtime.Value) (runtime.Value, *runtime.Error) {
		if len(args) < 2 {
			return runtime.Value{}, runtime.NewErrorKind(runtime.ErrArgumentCountMismatch, "math.max requires at least 2 arguments")
		}
		best := math.Inf(-1)
		for _, a := range args {
			if !a.IsNumber() {
				return runtime.Value{}, runtime.NewErrorKind(runtime.ErrTypeMismatch, "math.max requires numeric arguments")
			}
			if v := a.AsFloat64(); v > best {
				best = v
			}
		}
		return runtime.FromF64(best), nil
	})
	bindings["factorial"] = rt.BuiltinValue("factorial", func(rt *runtime.Runtime, args []runtime.Value) (runtime.Value, *runtime.Error) {
		if len(args) < 1 || !args[0].IsInt() {
			return runtime.Value{}, runtime.NewErrorKind(runtime.ErrTypeMismatch, "math.factorial requires an integer argument")
		}
		n := args[0].AsI64()
		if n < 0 {
			return runtime.Value{}, runtime.NewErrorKind(runtime.ErrTypeMismatch, "math.factorial requires a non-negative integer")
		}
		result := int64(1)
		for i := int64(2); i <= n; i++ {
			result *= i
		}
		return runtime.FromI64(result), nil
	})

	bindings["pi"] = runtime.FromF64(math.Pi)
	bindings["e"] = runtime.FromF64(math.E)
	bindings["phi"] = runtime.FromF64(1.618033988749894)
	bindings["sqrt2"] = runtime.FromF64(math.Sqrt2)
	bindings["ln2"] = runtime.FromF64(math.Ln2)
	bindings["ln10"] = runtime.FromF64(math.Ln10)

	rt.RegisterNamespace("math", bindings)
}
