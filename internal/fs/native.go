package fs

import (
	"os"
	"strings"

	"github.com/CageChen/nativefs/internal/nativefs"
)

// NativeFS implements FileSystem over a loaded native binding. Absent
// results from the binding surface as os.ErrNotExist or ErrNotLink.
type NativeFS struct {
	b    *nativefs.Binding
	root string
}

// NewNativeFS creates a NativeFS rooted at the given native directory.
func NewNativeFS(b *nativefs.Binding, root string) *NativeFS {
	return &NativeFS{b: b, root: nativefs.Normalize(root)}
}

// Name implements FileSystem.
func (n *NativeFS) Name() string { return "native" }

func (n *NativeFS) abs(path string) string {
	path = strings.Trim(nativefs.Normalize(path), nativefs.Separator)
	if path == "" || path == "." {
		return n.root
	}
	return strings.TrimRight(n.root, nativefs.Separator) + nativefs.Separator + path
}

// Stat returns metadata for the entry at the given path relative to the root.
func (n *NativeFS) Stat(path string) (FileInfo, error) {
	p := n.abs(path)
	info, ok := n.b.GetInfo(p)
	if !ok {
		return FileInfo{}, &os.PathError{Op: "stat", Path: p, Err: os.ErrNotExist}
	}
	return fromPathInfo(info), nil
}

// ReadDir lists the immediate children of the directory at the given path relative to the root.
func (n *NativeFS) ReadDir(path string) ([]DirEntry, error) {
	p := n.abs(path)
	children, ok := n.b.ListChildren(p)
	if !ok {
		return nil, &os.PathError{Op: "readdir", Path: p, Err: os.ErrNotExist}
	}
	result := make([]DirEntry, len(children))
	for i, c := range children {
		result[i] = DirEntry{Name: c.Name, IsDir: c.IsDir(), Attrs: c.Attrs}
	}
	return result, nil
}

// Readlink returns the final target of the link at path.
func (n *NativeFS) Readlink(path string) (string, error) {
	p := n.abs(path)
	if target, ok := n.b.ResolveSymLink(p); ok {
		return target, nil
	}
	if info, ok := n.b.GetInfo(p); ok && !info.IsSymlink() {
		return "", &os.PathError{Op: "readlink", Path: p, Err: ErrNotLink}
	}
	return "", &os.PathError{Op: "readlink", Path: p, Err: os.ErrNotExist}
}
