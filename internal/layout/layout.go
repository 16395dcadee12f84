// Package layout resolves the installation directories the native
// filesystem loader searches: the install "bin" directory, the home
// directory, and the home of the running binary.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment overrides, checked before configuration values.
const (
	EnvBin  = "NATIVEFS_BIN"
	EnvHome = "NATIVEFS_HOME"
)

// Dirs holds the installation-layout directories.
type Dirs struct {
	BinPath    string `json:"binPath"`
	HomePath   string `json:"homePath"`
	ModuleHome string `json:"moduleHome"`
}

// executable is swapped in tests.
var executable = os.Executable

// ModuleHome returns the parent of the directory holding the running
// executable, i.e. "<home>" for "<home>/bin/nativefs".
func ModuleHome() (string, error) {
	exe, err := executable()
	if err != nil {
		return "", fmt.Errorf("resolving executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(filepath.Dir(exe)), nil
}

// Resolve builds Dirs from configured values. For each directory the
// environment override wins, then the configured value, then a default
// derived from the executable location. When the executable cannot be
// located, ModuleHome and the derived defaults stay empty.
func Resolve(binPath, homePath string) (Dirs, error) {
	moduleHome, err := ModuleHome()
	if err != nil {
		moduleHome = ""
	}

	home := firstNonEmpty(os.Getenv(EnvHome), homePath, moduleHome)
	bin := firstNonEmpty(os.Getenv(EnvBin), binPath)
	if bin == "" && home != "" {
		bin = filepath.Join(home, "bin")
	}

	home, err = absOrEmpty(home)
	if err != nil {
		return Dirs{}, fmt.Errorf("resolving home path: %w", err)
	}
	bin, err = absOrEmpty(bin)
	if err != nil {
		return Dirs{}, fmt.Errorf("resolving bin path: %w", err)
	}

	return Dirs{
		BinPath:    bin,
		HomePath:   home,
		ModuleHome: moduleHome,
	}, nil
}

func absOrEmpty(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	return filepath.Abs(p)
}

// Default resolves Dirs without configuration. Failures leave the affected
// entries empty; the loader skips empty entries.
func Default() Dirs {
	d, err := Resolve("", "")
	if err != nil {
		return Dirs{
			BinPath:  os.Getenv(EnvBin),
			HomePath: os.Getenv(EnvHome),
		}
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
