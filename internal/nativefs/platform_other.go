//go:build !windows

package nativefs

import "runtime"

// DetectPlatform reports the running OS. No version is probed because no
// native module exists for these systems.
func DetectPlatform() Platform {
	return Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
}
