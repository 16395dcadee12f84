package nativefs

import (
	"strings"
	"time"

	"github.com/CageChen/nativefs/internal/logging"
)

// Separator is the path separator the native module expects.
const Separator = `\`

// Binding is the call surface of a loaded native module. It is safe for
// concurrent use; calls are independent reads with no snapshot guarantees
// across calls.
type Binding struct {
	lib    Library
	path   string
	logger *logging.Logger
}

// Path returns the file the native module was loaded from.
func (b *Binding) Path() string { return b.path }

// Normalize converts forward slashes to the native separator.
func Normalize(path string) string {
	return strings.ReplaceAll(path, "/", Separator)
}

// GetInfo returns the metadata of path, or ok=false if it does not exist.
func (b *Binding) GetInfo(path string) (PathInfo, bool) {
	path = Normalize(path)
	if !b.logger.IsDebugEnabled() {
		return b.lib.GetInfo(path)
	}
	start := time.Now()
	info, ok := b.lib.GetInfo(path)
	b.logger.Debug("getInfo(%s): %d mks", path, time.Since(start).Microseconds())
	return info, ok
}

// ResolveSymLink returns the final target of the link chain starting at
// path, or ok=false if path is not a link or cannot be resolved.
func (b *Binding) ResolveSymLink(path string) (string, bool) {
	path = Normalize(path)
	if !b.logger.IsDebugEnabled() {
		return b.lib.ResolveSymLink(path)
	}
	start := time.Now()
	target, ok := b.lib.ResolveSymLink(path)
	b.logger.Debug("resolveSymLink(%s): %d mks", path, time.Since(start).Microseconds())
	return target, ok
}

// ListChildren returns the entries of the directory at path, or ok=false
// if path is not a directory or cannot be read. An empty directory yields
// an empty, non-nil slice.
func (b *Binding) ListChildren(path string) ([]PathInfo, bool) {
	path = Normalize(path)
	if !b.logger.IsDebugEnabled() {
		return b.list(path)
	}
	start := time.Now()
	children, ok := b.list(path)
	b.logger.Debug("list(%s): %d children, %d mks", path, len(children), time.Since(start).Microseconds())
	return children, ok
}

func (b *Binding) list(path string) ([]PathInfo, bool) {
	children, ok := b.lib.ListChildren(path)
	if !ok {
		return nil, false
	}
	if children == nil {
		children = []PathInfo{}
	}
	return children, true
}
