package nativefs

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Platform identifies the running OS, architecture and OS version.
type Platform struct {
	OS      string
	Arch    string
	Version string
}

// String renders the platform as "os/arch version".
func (p Platform) String() string {
	if p.Version == "" {
		return p.OS + "/" + p.Arch
	}
	return fmt.Sprintf("%s/%s %s", p.OS, p.Arch, p.Version)
}

// supportTable maps an OS to the version range that ships a native module.
// Windows 2000 (NT 5.0) is the oldest release the module targets.
var supportTable = map[string]string{
	"windows": ">= 5.0",
}

// platformDirs names the per-OS subdirectory under a "bin" directory.
var platformDirs = map[string]string{
	"windows": "win",
}

// Supported reports whether a native module exists for p.
func Supported(p Platform) bool {
	constraint, ok := supportTable[p.OS]
	if !ok {
		return false
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false
	}
	v, err := semver.NewVersion(strings.TrimPrefix(p.Version, "v"))
	if err != nil {
		return false
	}
	return c.Check(v)
}

// Is64Bit reports whether the architecture uses the 64-bit module variant.
func (p Platform) Is64Bit() bool {
	switch p.Arch {
	case "amd64", "arm64", "loong64", "mips64", "mips64le", "ppc64", "ppc64le", "riscv64", "s390x":
		return true
	}
	return false
}

// LibraryName returns the file name of the native module for p.
func LibraryName(p Platform) string {
	ext := ".so"
	if p.OS == "windows" {
		ext = ".dll"
	}
	if p.Is64Bit() {
		return "nativefs64" + ext
	}
	return "nativefs32" + ext
}

// platformDir returns the per-OS directory name, or the OS name itself.
func platformDir(p Platform) string {
	if d, ok := platformDirs[p.OS]; ok {
		return d
	}
	return p.OS
}
