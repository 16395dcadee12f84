// Package fs provides filesystem abstractions for inspecting a root either
// through the native filesystem module or through the portable os package.
package fs

import (
	"errors"
	"time"

	"github.com/CageChen/nativefs/internal/nativefs"
)

// ErrNotLink is returned by Readlink when the path is not a symbolic link.
var ErrNotLink = errors.New("not a symbolic link")

// FileInfo holds file metadata. LocalFS leaves Created and Accessed zero.
type FileInfo struct {
	Name     string        `json:"name"`
	IsDir    bool          `json:"isDir"`
	Size     int64         `json:"size"`
	ModTime  time.Time     `json:"modTime"`
	Created  time.Time     `json:"created"`
	Accessed time.Time     `json:"accessed"`
	Attrs    nativefs.Attr `json:"attrs"`
}

// DirEntry represents a single directory entry.
type DirEntry struct {
	Name  string        `json:"name"`
	IsDir bool          `json:"isDir"`
	Attrs nativefs.Attr `json:"attrs"`
}

// FileSystem abstracts read-only metadata access below a root so callers
// can work with either the native module or the local filesystem. Paths
// are relative to the root and use forward slashes.
type FileSystem interface {
	Stat(path string) (FileInfo, error)
	ReadDir(path string) ([]DirEntry, error)
	// Readlink returns the final target of the link at path.
	Readlink(path string) (string, error)
	// Name identifies the backend: "native" or "local".
	Name() string
}

// Select returns a native-backed FileSystem when m has a loaded binding and
// a LocalFS otherwise.
func Select(m *nativefs.Module, root string) FileSystem {
	if b, err := m.Instance(); err == nil {
		return NewNativeFS(b, root)
	}
	return NewLocalFS(root)
}

func fromPathInfo(p nativefs.PathInfo) FileInfo {
	return FileInfo{
		Name:     p.Name,
		IsDir:    p.IsDir(),
		Size:     p.Size,
		ModTime:  p.Modified,
		Created:  p.Created,
		Accessed: p.Accessed,
		Attrs:    p.Attrs,
	}
}

// Selector returns a function choosing the FileSystem for a root via Select.
func Selector(m *nativefs.Module) func(root string) FileSystem {
	return func(root string) FileSystem { return Select(m, root) }
}
