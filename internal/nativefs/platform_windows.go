//go:build windows

package nativefs

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/windows"
)

// DetectPlatform reports the running Windows kernel version.
func DetectPlatform() Platform {
	p := Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
	if v := windows.RtlGetVersion(); v != nil {
		p.Version = fmt.Sprintf("%d.%d.%d", v.MajorVersion, v.MinorVersion, v.BuildNumber)
	}
	return p
}
