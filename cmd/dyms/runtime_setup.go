package main

import (
	"github.com/dymsrun/dyms/libraries"
	"github.com/dymsrun/dyms/parser"
	"github.com/dymsrun/dyms/runtime"
)

// newRuntime wires a Runtime with the OS-backed capabilities and the
// standard library namespaces (math, time, rand), the assembly every
// subcommand needs before it can run or compile a script.
func newRuntime() *runtime.Runtime {
	fs := libraries.NewOSFileSystem()
	rt := runtime.NewRuntime(
		libraries.NewSystemClock(),
		fs,
		libraries.NewSplitMix64(),
		libraries.NewPathModuleLoader(fs),
		nil,
	)
	rt.Parser = parser.NewRuntimeParser()
	rt.Frontend = runtime.NewCompiler(rt)

	libraries.RegisterMath(rt)
	libraries.RegisterTime(rt)
	libraries.RegisterRand(rt)

	return rt
}
