// Package nativefstest provides an in-memory native library and helpers
// for building loaded nativefs Modules in tests on any OS.
package nativefstest

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/CageChen/nativefs/internal/layout"
	"github.com/CageChen/nativefs/internal/logging"
	"github.com/CageChen/nativefs/internal/nativefs"
)

// WindowsPlatform is a supported platform used to drive the loader.
var WindowsPlatform = nativefs.Platform{OS: "windows", Arch: "amd64", Version: "10.0.19045"}

// maxLinkHops bounds symlink resolution, mirroring the usual OS limit.
const maxLinkHops = 40

type memEntry struct {
	info   nativefs.PathInfo
	target string
}

// MemLibrary is an in-memory nativefs.Library. Paths use the native
// separator and are compared case-sensitively.
type MemLibrary struct {
	mu      sync.RWMutex
	entries map[string]*memEntry

	// InitErr is returned from InitIDs when set.
	InitErr error

	initCalls atomic.Int32
	calls     atomic.Int64
}

// NewMemLibrary returns an empty library.
func NewMemLibrary() *MemLibrary {
	return &MemLibrary{entries: make(map[string]*memEntry)}
}

// clean trims trailing separators. Lookups do not translate forward
// slashes: a path containing one is absent, as it is for the native module.
func clean(path string) string {
	if len(path) > 3 {
		path = strings.TrimRight(path, nativefs.Separator)
	}
	return path
}

func base(path string) string {
	if i := strings.LastIndex(path, nativefs.Separator); i >= 0 {
		return path[i+1:]
	}
	return path
}

func parent(path string) string {
	i := strings.LastIndex(path, nativefs.Separator)
	if i < 0 {
		return ""
	}
	if i == 2 && path[1] == ':' {
		return path[:3]
	}
	return path[:i]
}

func (l *MemLibrary) put(path string, e *memEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	path = clean(strings.ReplaceAll(path, "/", nativefs.Separator))
	e.info.Name = base(path)
	if e.info.Modified.IsZero() {
		now := time.Now()
		e.info.Created, e.info.Accessed, e.info.Modified = now, now, now
	}
	l.entries[path] = e
}

// AddDir registers a directory.
func (l *MemLibrary) AddDir(path string) {
	l.put(path, &memEntry{info: nativefs.PathInfo{Attrs: nativefs.AttrDirectory}})
}

// AddFile registers a regular file of the given size.
func (l *MemLibrary) AddFile(path string, size int64, attrs nativefs.Attr) {
	l.put(path, &memEntry{info: nativefs.PathInfo{Size: size, Attrs: attrs}})
}

// AddSymlink registers a link at path pointing to target.
func (l *MemLibrary) AddSymlink(path, target string) {
	l.put(path, &memEntry{info: nativefs.PathInfo{Attrs: nativefs.AttrSymlink}, target: clean(strings.ReplaceAll(target, "/", nativefs.Separator))})
}

// InitCalls reports how many times InitIDs ran.
func (l *MemLibrary) InitCalls() int { return int(l.initCalls.Load()) }

// Calls reports how many data calls the library served.
func (l *MemLibrary) Calls() int64 { return l.calls.Load() }

// InitIDs implements nativefs.Library.
func (l *MemLibrary) InitIDs() error {
	l.initCalls.Add(1)
	return l.InitErr
}

// GetInfo implements nativefs.Library. Links are reported, not followed.
func (l *MemLibrary) GetInfo(path string) (nativefs.PathInfo, bool) {
	l.calls.Add(1)
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[clean(path)]
	if !ok {
		return nativefs.PathInfo{}, false
	}
	return e.info, true
}

// ResolveSymLink implements nativefs.Library and follows the whole chain.
func (l *MemLibrary) ResolveSymLink(path string) (string, bool) {
	l.calls.Add(1)
	l.mu.RLock()
	defer l.mu.RUnlock()
	cur := clean(path)
	e, ok := l.entries[cur]
	if !ok || !e.info.IsSymlink() {
		return "", false
	}
	for i := 0; i < maxLinkHops; i++ {
		cur = e.target
		e, ok = l.entries[cur]
		if !ok {
			return "", false
		}
		if !e.info.IsSymlink() {
			return cur, true
		}
	}
	return "", false
}

// ListChildren implements nativefs.Library.
func (l *MemLibrary) ListChildren(path string) ([]nativefs.PathInfo, bool) {
	l.calls.Add(1)
	l.mu.RLock()
	defer l.mu.RUnlock()
	dir := clean(path)
	e, ok := l.entries[dir]
	if !ok || !e.info.IsDir() {
		return nil, false
	}
	var out []nativefs.PathInfo
	for p, child := range l.entries {
		if p != dir && parent(p) == dir {
			out = append(out, child.info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, true
}

// Opener returns an opener that always yields lib.
func Opener(lib nativefs.Library) nativefs.Opener {
	return func(string) (nativefs.Library, error) { return lib, nil }
}

// InstallLayout creates a temporary installation with the native module
// placed in its bin directory and returns the layout.
func InstallLayout(t testing.TB) layout.Dirs {
	t.Helper()
	home := t.TempDir()
	dirs := layout.Dirs{
		BinPath:  filepath.Join(home, "bin"),
		HomePath: home,
	}
	if err := os.MkdirAll(dirs.BinPath, 0o755); err != nil {
		t.Fatal(err)
	}
	lib := filepath.Join(dirs.BinPath, nativefs.LibraryName(WindowsPlatform))
	if err := os.WriteFile(lib, []byte("MZ"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dirs
}

// LoadedModule returns a Module that loads lib from a temporary layout.
func LoadedModule(t testing.TB, lib nativefs.Library, opts ...nativefs.Option) *nativefs.Module {
	t.Helper()
	base := []nativefs.Option{
		nativefs.WithPlatform(WindowsPlatform),
		nativefs.WithOpener(Opener(lib)),
		nativefs.WithLogger(logging.NewLoggerTo(testWriter{t}, "TEST")),
	}
	return nativefs.NewModule(InstallLayout(t), append(base, opts...)...)
}

// UnavailableModule returns a Module on an unsupported platform.
func UnavailableModule(t testing.TB) *nativefs.Module {
	t.Helper()
	return nativefs.NewModule(layout.Dirs{},
		nativefs.WithPlatform(nativefs.Platform{OS: "plan9", Arch: "386"}),
		nativefs.WithLogger(logging.NewLoggerTo(testWriter{t}, "TEST")),
	)
}

type testWriter struct{ t testing.TB }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
