package libraries

import (
	"os"
	"path/filepath"

	"github.com/dymsrun/dyms/runtime"
)

// OSFileSystem is the single OS-backed implementation of runtime.FileSystem
// (capabilities.go), used for the `file` builtins and module resolution.
type OSFileSystem struct{}

func NewOSFileSystem() *OSFileSystem { return &OSFileSystem{} }

func (OSFileSystem) Metadata(path string) (runtime.FileStat, error) {
	info, err := os.Stat(path)
	if err != nil {
		return runtime.FileStat{}, err
	}
	return runtime.FileStat{Size: info.Size(), IsDir: info.IsDir()}, nil
}

func (fs OSFileSystem) Stat(path string) (runtime.FileStat, error) {
	return fs.Metadata(path)
}

func (OSFileSystem) ReadToString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (OSFileSystem) Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
