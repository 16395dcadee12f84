package nativefs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedPlatform indicates the running OS or OS version has no
	// native filesystem module. It silently disables the binding.
	ErrUnsupportedPlatform = errors.New("native filesystem is not supported on this platform")

	// ErrLibraryNotFound indicates none of the candidate paths exists.
	ErrLibraryNotFound = errors.New("native filesystem library is missing")

	// ErrNotLoaded is the illegal-state error returned when the binding is
	// requested although it is not available. It signals a caller bug.
	ErrNotLoaded = errors.New("native filesystem is not loaded")
)

// Operation names used in LoadError.
const (
	OpLoad = "load" // mapping the library into the process
	OpInit = "init" // native identifier initialization
)

// LoadError wraps a failure to bring up a located native library.
type LoadError struct {
	Op   string // OpLoad or OpInit
	Path string // Library path
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("%s native library %s failed: %v", e.Op, e.Path, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// NotFoundError records where the loader looked for the library.
type NotFoundError struct {
	Library  string   // File name searched for
	Searched []string // Candidate paths, in search order
	Dir      string   // Primary search location
	Listing  []string // Content of Dir, nil if it could not be read
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	content := "<unreadable>"
	if e.Listing != nil {
		content = "[" + strings.Join(e.Listing, ", ") + "]"
	}
	return fmt.Sprintf("%s %s (searched=[%s] path=%s content=%s)",
		ErrLibraryNotFound, e.Library, strings.Join(e.Searched, ", "), e.Dir, content)
}

// Is reports ErrLibraryNotFound as the error's kind.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrLibraryNotFound
}

// panicError converts a recovered panic value into an error.
func panicError(v interface{}) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", v)
}
