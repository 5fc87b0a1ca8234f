package runtime_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dymsrun/dyms/parser"
	"github.com/dymsrun/dyms/runtime"
)

func run(t *testing.T, rt *runtime.Runtime, src string) runtime.Value {
	t.Helper()
	prog, perr := parser.ParseSource(src)
	require.Nil(t, perr, "%v", perr)
	v, err := rt.ExecProgram(prog)
	require.Nil(t, err, "%v", err)
	return v
}

func TestE2E_Fibonacci(t *testing.T) {
	rt := runtime.NewRuntime(nil, nil, nil, nil, nil)
	v := run(t, rt, `
		func fib(n) {
			if n < 2 { return n }
			return fib(n - 1) + fib(n - 2)
		}
		fib(12)
	`)
	assert.Equal(t, int64(144), v.AsI64())
}

func TestE2E_MapOfLists(t *testing.T) {
	rt := runtime.NewRuntime(nil, nil, nil, nil, nil)
	v := run(t, rt, `
		let groups = {}
		let names = ["ann", "al", "bo", "bea"]
		for n in names {
			let key = n[0]
			if !groups.contains(key) {
				groups.insert(key, [])
			}
			groups.get(key).push(n)
		}
		groups.get("a").length
	`)
	assert.Equal(t, int64(2), v.AsI64())
}

func TestE2E_PatternMatch(t *testing.T) {
	rt := runtime.NewRuntime(nil, nil, nil, nil, nil)
	v := run(t, rt, `
		enum Shape { Circle(radius), Square(side) }
		func area(s) {
			return match s {
				Shape#Circle(r) if r > 0 => r * r * 3,
				Shape#Circle(r) => 0,
				Shape#Square(side) => side * side,
				_ => -1,
			}
		}
		area(Shape#Square(4))
	`)
	assert.Equal(t, int64(16), v.AsI64())
}

func TestE2E_StringInterpolation(t *testing.T) {
	rt := runtime.NewRuntime(nil, nil, nil, nil, nil)
	v := run(t, rt, `
		let name = "world"
		let n = 3
		"hello ${name}, x${n + 1}!"
	`)
	assert.Equal(t, "hello world, x4!", rt.StrText(v))
}

func TestE2E_StructMethod(t *testing.T) {
	rt := runtime.NewRuntime(nil, nil, nil, nil, nil)
	v := run(t, rt, `
		struct Point { x, y }
		func Point.dist2(self) {
			return self.x * self.x + self.y * self.y
		}
		let p = Point { x: 3, y: 4 }
		p.dist2()
	`)
	assert.Equal(t, int64(25), v.AsI64())
}

// fixedSourceLoader serves real dyms source for two modules that import each
// other, driving the same cycle-detection path a real file-backed loader
// would hit on a genuine circular import (spec §4.J).
type fixedSourceLoader struct{ sources map[string]string }

func (l *fixedSourceLoader) Resolve(base, path string) (string, error) { return path, nil }
func (l *fixedSourceLoader) Load(canonical string) (string, error) {
	src, ok := l.sources[canonical]
	if !ok {
		return "", errors.New("no source for " + canonical)
	}
	return src, nil
}

func TestE2E_ImportCycleIsReportedNotHung(t *testing.T) {
	rt := runtime.NewRuntime(nil, nil, nil, &fixedSourceLoader{sources: map[string]string{
		"a.dyms": `import "b.dyms" as b`,
		"b.dyms": `import "a.dyms" as a`,
	}}, nil)
	rt.Parser = parser.NewRuntimeParser()

	_, err := rt.ExecModule("a.dyms")
	require.NotNil(t, err, "a importing b importing a must surface as an error, not recurse forever")
}
