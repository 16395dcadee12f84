package nativefs

// Library is the call surface of a loaded native module. Implementations
// receive paths already normalized to the native separator and report
// absence with ok=false rather than an error.
type Library interface {
	// InitIDs performs the one-time native identifier initialization.
	InitIDs() error
	GetInfo(path string) (PathInfo, bool)
	ResolveSymLink(path string) (string, bool)
	ListChildren(path string) ([]PathInfo, bool)
}

// Opener maps the native module at path into the process.
type Opener func(path string) (Library, error)
