package libraries

import (
	"time"

	"github.com/dymsrun/dyms/runtime"
)

// SystemClock is the single OS-backed implementation of runtime.Clock
// (capabilities.go): wall-clock readings come straight from time.Now,
// monotonic readings are measured from process start so they can never
// run backwards under a wall-clock adjustment.
type SystemClock struct {
	start time.Time
}

// NewSystemClock wires a SystemClock against the current instant; pass the
// result as the Clock argument to runtime.NewRuntime.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) UnixSecs() int64   { return time.Now().Unix() }
func (c *SystemClock) UnixMillis() int64 { return time.Now().UnixMilli() }
func (c *SystemClock) MonoMicros() int64 { return time.Since(c.start).Microseconds() }
func (c *SystemClock) MonoNanos() int64  { return time.Since(c.start).Nanoseconds() }

// RegisterTime exposes the `time` namespace (now/millis/monotonic
// readings and sleep) over the runtime's injected Clock capability rather
// than calling the os time package directly, so a host embedding the
// runtime with a fake Clock gets deterministic behavior for free.
func RegisterTime(rt *runtime.Runtime) {
	bindings := map[string]runtime.Value{}

	bindings["now"] = rt.BuiltinValue("now", func(rt *runtime.Runtime, args []runtime.Value) (runtime.Value, *runtime.Error) {
		return runtime.FromI64(rt.Clock.UnixSecs()), nil
	})
	bindings["millis"] = rt.BuiltinValue("millis", func(rt *runtime.Runtime, args []runtime.Value) (runtime.Value, *runtime.Error) {
		return runtime.FromI64(rt.Clock.UnixMillis()), nil
	})
	bindings["monoMicros"] = rt.BuiltinValue("monoMicros", func(rt *runtime.Runtime, args []runtime.Value) (runtime.Value, *runtime.Error) {
		return runtime.FromI64(rt.Clock.MonoMicros()), nil
	})
	bindings["monoNanos"] = rt.BuiltinValue("monoNanos", func(rt *runtime.Runtime, args []runtime.Value) (runtime.Value, *runtime.Error) {
		return runtime.FromI64(rt.Clock.MonoNanos()), nil
	})
	bindings["sleep"] = rt.BuiltinValue("sleep", func(rt *runtime.Runtime, args []runtime.Value) (runtime.Value, *runtime.Error) {
		if len(args) < 1 || !args[0].IsNumber() {
			return runtime.Value{}, runtime.NewErrorKind(runtime.ErrTypeMismatch, "time.sleep requires a numeric argument (seconds)")
		}
		time.Sleep(time.Duration(args[0].AsFloat64() * float64(time.Second)))
		return runtime.UNIT, nil
	})

	rt.RegisterNamespace("time", bindings)
}
