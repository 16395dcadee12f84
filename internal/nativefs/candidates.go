package nativefs

import (
	"os"
	"path/filepath"

	"github.com/CageChen/nativefs/internal/layout"
)

// Candidates returns the locations searched for the native module, in
// search order. Entries whose base directory is unknown are skipped.
func Candidates(dirs layout.Dirs, p Platform) []string {
	lib := LibraryName(p)
	sub := platformDir(p)

	var out []string
	if dirs.BinPath != "" {
		out = append(out, filepath.Join(dirs.BinPath, lib))
	}
	if dirs.HomePath != "" {
		out = append(out,
			filepath.Join(dirs.HomePath, "community", "bin", sub, lib),
			filepath.Join(dirs.HomePath, "bin", sub, lib),
		)
	}
	if dirs.ModuleHome != "" {
		out = append(out, filepath.Join(dirs.ModuleHome, "bin", lib))
	}
	return out
}

// fileExists is the default existence probe.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// dirNames is the default directory lister used for diagnostics.
func dirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}
