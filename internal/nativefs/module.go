// Package nativefs binds an optional, platform-specific native filesystem
// module. The module is searched for in the installation layout, loaded at
// most once per Module, and exposed through a small synchronous call
// surface. Every environmental failure disables the binding instead of
// failing the process; only asking for an unavailable binding is an error.
package nativefs

import (
	"fmt"
	"sync"

	"github.com/CageChen/nativefs/internal/layout"
	"github.com/CageChen/nativefs/internal/logging"
)

// loadResult is the terminal state of a load attempt: loaded or unavailable.
type loadResult interface {
	isLoadResult()
}

type loaded struct {
	lib  Library
	path string
}

type unavailable struct {
	reason error
}

func (loaded) isLoadResult()      {}
func (unavailable) isLoadResult() {}

// Status is a diagnostics snapshot of a Module.
type Status struct {
	Available  bool        `json:"available"`
	Platform   string      `json:"platform"`
	Library    string      `json:"library"`
	Dirs       layout.Dirs `json:"dirs"`
	Candidates []string    `json:"candidates"`
	LoadedFrom string      `json:"loadedFrom,omitempty"`
	Err        error       `json:"-"`
	Reason     string      `json:"reason,omitempty"`
}

// Module owns the binding state. The first accessor call runs the load
// protocol; every later call observes its outcome.
type Module struct {
	dirs     layout.Dirs
	platform Platform
	open     Opener
	exists   func(path string) bool
	list     func(dir string) ([]string, error)
	logger   *logging.Logger

	once       sync.Once
	candidates []string
	result     loadResult
	binding    *Binding
}

// Option configures a Module.
type Option func(*Module)

// WithPlatform overrides platform detection.
func WithPlatform(p Platform) Option {
	return func(m *Module) { m.platform = p }
}

// WithOpener replaces the native library opener.
func WithOpener(o Opener) Option {
	return func(m *Module) { m.open = o }
}

// WithExists replaces the candidate existence probe.
func WithExists(fn func(path string) bool) Option {
	return func(m *Module) { m.exists = fn }
}

// WithLister replaces the directory lister used for diagnostics.
func WithLister(fn func(dir string) ([]string, error)) Option {
	return func(m *Module) { m.list = fn }
}

// WithLogger sets the logger used for load diagnostics and call timing.
func WithLogger(l *logging.Logger) Option {
	return func(m *Module) { m.logger = l }
}

// NewModule creates an unloaded Module searching the given layout.
func NewModule(dirs layout.Dirs, opts ...Option) *Module {
	m := &Module{
		dirs:     dirs,
		platform: DetectPlatform(),
		open:     defaultOpener,
		exists:   fileExists,
		list:     dirNames,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logging.GetLogger().WithPrefix("nativefs")
	}
	return m
}

func (m *Module) ensure() {
	m.once.Do(func() {
		m.result = m.load()
		if l, ok := m.result.(loaded); ok {
			m.binding = &Binding{lib: l.lib, path: l.path, logger: m.logger}
		}
	})
}

func (m *Module) load() loadResult {
	if !Supported(m.platform) {
		m.logger.Debug("Native filesystem not supported on %s", m.platform)
		return unavailable{reason: fmt.Errorf("%w: %s", ErrUnsupportedPlatform, m.platform)}
	}

	m.candidates = Candidates(m.dirs, m.platform)
	path, err := m.locate()
	if err != nil {
		m.logger.Error("Failed to load native filesystem for %s: %v", m.platform.OS, err)
		return unavailable{reason: err}
	}

	m.logger.Debug("Loading %s", path)
	lib, err := m.openLibrary(path)
	if err != nil {
		m.logger.Error("Failed to load native filesystem for %s: %v", m.platform.OS, err)
		return unavailable{reason: err}
	}

	if err := initLibrary(lib, path); err != nil {
		m.logger.Error("Failed to initialize native filesystem for %s: %v", m.platform.OS, err)
		return unavailable{reason: err}
	}

	m.logger.Info("Native filesystem for %s is operational (%s)", m.platform.OS, path)
	return loaded{lib: lib, path: path}
}

// locate returns the first existing candidate.
func (m *Module) locate() (string, error) {
	for _, c := range m.candidates {
		m.logger.Trace("Probing %s", c)
		if m.exists(c) {
			return c, nil
		}
	}

	nf := &NotFoundError{
		Library:  LibraryName(m.platform),
		Searched: append([]string(nil), m.candidates...),
		Dir:      m.dirs.BinPath,
	}
	if m.dirs.BinPath != "" {
		if names, err := m.list(m.dirs.BinPath); err == nil {
			nf.Listing = names
			if nf.Listing == nil {
				nf.Listing = []string{}
			}
		}
	}
	return "", nf
}

func (m *Module) openLibrary(path string) (lib Library, err error) {
	defer func() {
		if r := recover(); r != nil {
			lib, err = nil, &LoadError{Op: OpLoad, Path: path, Err: panicError(r)}
		}
	}()
	lib, err = m.open(path)
	if err != nil {
		return nil, &LoadError{Op: OpLoad, Path: path, Err: err}
	}
	if lib == nil {
		return nil, &LoadError{Op: OpLoad, Path: path, Err: fmt.Errorf("opener returned no library")}
	}
	return lib, nil
}

func initLibrary(lib Library, path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &LoadError{Op: OpInit, Path: path, Err: panicError(r)}
		}
	}()
	if err := lib.InitIDs(); err != nil {
		return &LoadError{Op: OpInit, Path: path, Err: err}
	}
	return nil
}

// IsAvailable reports whether the native module is loaded and initialized.
func (m *Module) IsAvailable() bool {
	m.ensure()
	return m.binding != nil
}

// Instance returns the binding, or an error matching ErrNotLoaded when
// IsAvailable is false.
func (m *Module) Instance() (*Binding, error) {
	m.ensure()
	if m.binding == nil {
		return nil, fmt.Errorf("%w for %s", ErrNotLoaded, m.platform.OS)
	}
	return m.binding, nil
}

// MustInstance is like Instance but panics when the binding is unavailable.
func (m *Module) MustInstance() *Binding {
	b, err := m.Instance()
	if err != nil {
		panic(err)
	}
	return b
}

// Status reports the outcome of the load attempt.
func (m *Module) Status() Status {
	m.ensure()
	s := Status{
		Platform:   m.platform.String(),
		Library:    LibraryName(m.platform),
		Dirs:       m.dirs,
		Candidates: append([]string(nil), m.candidates...),
	}
	switch r := m.result.(type) {
	case loaded:
		s.Available = true
		s.LoadedFrom = r.path
	case unavailable:
		s.Err = r.reason
		s.Reason = r.reason.Error()
	}
	return s
}
