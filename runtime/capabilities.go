package runtime

import "github.com/dymsrun/dyms/ast"

// Clock is the time capability injected at boot (spec §6). A single
// OS-backed implementation lives in the libraries package; the core only
// ever sees this interface.
type Clock interface {
	UnixSecs() int64
	UnixMillis() int64
	MonoMicros() int64
	MonoNanos() int64
}

// FileStat is the narrow metadata surface the core needs from a file.
type FileStat struct {
	Size  int64
	IsDir bool
}

// FileSystem is the file capability injected at boot (spec §6).
type FileSystem interface {
	Metadata(path string) (FileStat, error)
	ReadToString(path string) (string, error)
	Stat(path string) (FileStat, error)
	Canonicalize(path string) (string, error)
}

// RngAlgorithm is a pure function over a runtime-owned seed (spec §6).
type RngAlgorithm interface {
	NextU64(state *uint64) uint64
}

// ModuleLoader resolves and loads module source text (spec §6, §4.J).
type ModuleLoader interface {
	Resolve(base, path string) (string, error)
	Load(canonicalPath string) (string, error)
}

// Frontend maps an AST Module to Bytecode; when absent, the AST
// interpreter runs directly (spec §6).
type Frontend interface {
	Compile(module interface{}) (*BytecodeFunction, error)
}

// SourceParser turns loaded module source text into a Program. Kept as a
// capability rather than a direct import of the parser package, since the
// parser package itself imports runtime for *Error and ast types.
type SourceParser interface {
	Parse(src string) (*ast.Program, error)
}
