package libraries

import "path/filepath"

// PathModuleLoader resolves import paths relative to the importing file's
// directory (an empty base, as for imports from the top-level program,
// resolves against the working directory) and loads source text straight off disk through the injected
// FileSystem, the way the teacher's interpreter read script files before
// running them.
type PathModuleLoader struct {
	fs *OSFileSystem
}

func NewPathModuleLoader(fs *OSFileSystem) *PathModuleLoader {
	return &PathModuleLoader{fs: fs}
}

func (l *PathModuleLoader) Resolve(base, path string) (string, error) {
	if filepath.IsAbs(path) {
		return l.fs.Canonicalize(path)
	}
	dir := filepath.Dir(base)
	return l.fs.Canonicalize(filepath.Join(dir, path))
}

func (l *PathModuleLoader) Load(canonicalPath string) (string, error) {
	return l.fs.ReadToString(canonicalPath)
}
