package libraries

import "github.com/dymsrun/dyms/runtime"

// RegisterRand exposes the `rand` namespace over the runtime's injected
// RngAlgorithm: int(lo, hi) for an inclusive integer range and float() for
// a [0, 1) draw, both derived from the same 64-bit word so seeding the
// runtime with a fixed algorithm makes a program's random draws
// reproducible end to end.
func RegisterRand(rt *runtime.Runtime) {
	bindings := map[string]runtime.Value{}

	bindings["float"] = rt.BuiltinValue("float", func(rt *runtime.Runtime, args []runtime.Value) (runtime.Value, *runtime.Error) {
		word := rt.NextRandom()
		return runtime.FromF64(float64(word>>11) / (1 << 53)), nil
	})
	bindings["int"] = rt.BuiltinValue("int", func(rt *runtime.Runtime, args []runtime.Value) (runtime.Value, *runtime.Error) {
		if len(args) < 2 || !args[0].IsInt() || !args[1].IsInt() {
			return runtime.Value{}, runtime.NewErrorKind(runtime.ErrTypeMismatch, "rand.int requires two integer arguments (lo, hi)")
		}
		lo, hi := args[0].AsI64(), args[1].AsI64()
		if hi < lo {
			return runtime.Value{}, runtime.NewErrorKind(runtime.ErrTypeMismatch, "rand.int requires lo <= hi")
		}
		span := uint64(hi-lo) + 1
		return runtime.FromI64(lo + int64(rt.NextRandom()%span)), nil
	})
	bindings["bool"] = rt.BuiltinValue("bool", func(rt *runtime.Runtime, args []runtime.Value) (runtime.Value, *runtime.Error) {
		return runtime.FromBool(rt.NextRandom()&1 == 1), nil
	})

	rt.RegisterNamespace("rand", bindings)
}
