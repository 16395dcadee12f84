package nativefs

import (
	"sync"

	"github.com/CageChen/nativefs/internal/layout"
)

var (
	defaultModule *Module
	defaultOnce   sync.Once
)

// InitDefault configures the process-wide Module. Only the first call of
// InitDefault or Default has an effect; the returned Module is the one in
// use either way.
func InitDefault(dirs layout.Dirs, opts ...Option) *Module {
	defaultOnce.Do(func() {
		defaultModule = NewModule(dirs, opts...)
	})
	return defaultModule
}

// Default returns the process-wide Module, configured from the default
// installation layout unless InitDefault ran first.
func Default() *Module {
	defaultOnce.Do(func() {
		defaultModule = NewModule(layout.Default())
	})
	return defaultModule
}

// IsAvailable reports whether the process-wide binding is usable.
func IsAvailable() bool {
	return Default().IsAvailable()
}

// Instance returns the process-wide binding or an ErrNotLoaded error.
func Instance() (*Binding, error) {
	return Default().Instance()
}
