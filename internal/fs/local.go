package fs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/CageChen/nativefs/internal/nativefs"
)

// LocalFS implements FileSystem using the os package. It does not follow a
// symlink named by Stat or ReadDir.
type LocalFS struct {
	root string
}

// NewLocalFS creates a LocalFS rooted at the given directory.
func NewLocalFS(root string) *LocalFS {
	return &LocalFS{root: root}
}

// Name implements FileSystem.
func (l *LocalFS) Name() string { return "local" }

func (l *LocalFS) abs(path string) string {
	if path == "" || path == "." {
		return l.root
	}
	return filepath.Join(l.root, filepath.FromSlash(path))
}

// Stat returns metadata for the entry at the given path relative to the root.
func (l *LocalFS) Stat(path string) (FileInfo, error) {
	info, err := os.Lstat(l.abs(path))
	if err != nil {
		return FileInfo{}, err
	}
	fi := FileInfo{
		Name:    info.Name(),
		IsDir:   info.IsDir(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Attrs:   attrsFromMode(info.Name(), info.Mode()),
	}
	if fi.IsDir {
		fi.Size = 0
	}
	return fi, nil
}

// ReadDir lists the immediate children of the directory at the given path relative to the root.
func (l *LocalFS) ReadDir(path string) ([]DirEntry, error) {
	entries, err := os.ReadDir(l.abs(path))
	if err != nil {
		return nil, err
	}
	result := make([]DirEntry, len(entries))
	for i, e := range entries {
		result[i] = DirEntry{
			Name:  e.Name(),
			IsDir: e.IsDir(),
			Attrs: attrsFromMode(e.Name(), e.Type()),
		}
	}
	return result, nil
}

// Readlink resolves the whole link chain starting at path.
func (l *LocalFS) Readlink(path string) (string, error) {
	p := l.abs(path)
	info, err := os.Lstat(p)
	if err != nil {
		return "", err
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return "", &os.PathError{Op: "readlink", Path: p, Err: ErrNotLink}
	}
	return filepath.EvalSymlinks(p)
}

func attrsFromMode(name string, mode os.FileMode) nativefs.Attr {
	var a nativefs.Attr
	if mode.IsDir() {
		a |= nativefs.AttrDirectory
	}
	if mode&os.ModeSymlink != 0 {
		a |= nativefs.AttrSymlink
	}
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		a |= nativefs.AttrHidden
	}
	if mode.Perm() != 0 && mode.Perm()&0o222 == 0 {
		a |= nativefs.AttrReadOnly
	}
	if mode&(os.ModeDevice|os.ModeNamedPipe|os.ModeSocket|os.ModeCharDevice) != 0 {
		a |= nativefs.AttrSpecial
	}
	return a
}
