//go:build windows

package nativefs

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Exported entry points of nativefs{32,64}.dll. All take NUL-terminated
// UTF-16 paths:
//
//	int32 nfs_init_ids(void)                                    0 on success
//	int32 nfs_get_info(path, nfs_info *out)                     1 found, 0 absent
//	int32 nfs_resolve_symlink(path, wchar *buf, uint32 cap)     target length, 0 absent
//	int32 nfs_list_children(path, nfs_info *buf, uint32 cap)    child count, -1 absent
//
// When the returned length or count exceeds cap, nothing beyond cap was
// written and the caller retries with a larger buffer.
const (
	procInitIDs        = "nfs_init_ids"
	procGetInfo        = "nfs_get_info"
	procResolveSymLink = "nfs_resolve_symlink"
	procListChildren   = "nfs_list_children"
)

// Attribute bits of nfs_info.attributes (Win32 FILE_ATTRIBUTE_* values).
const (
	fileAttrReadOnly     = 0x0001
	fileAttrHidden       = 0x0002
	fileAttrDirectory    = 0x0010
	fileAttrDevice       = 0x0040
	fileAttrReparsePoint = 0x0400
)

// nativeInfo mirrors struct nfs_info. Timestamps are FILETIME values.
type nativeInfo struct {
	Name       [windows.MAX_PATH]uint16
	Attributes uint32
	_          uint32
	Size       int64
	Created    int64
	Accessed   int64
	Modified   int64
}

type dllLibrary struct {
	dll            *windows.DLL
	initIDs        *windows.Proc
	getInfo        *windows.Proc
	resolveSymLink *windows.Proc
	listChildren   *windows.Proc
}

// defaultOpener loads the DLL and binds every entry point. A DLL missing
// any of them is released and rejected.
func defaultOpener(path string) (Library, error) {
	dll, err := windows.LoadDLL(path)
	if err != nil {
		return nil, err
	}

	lib := &dllLibrary{dll: dll}
	procs := []struct {
		name string
		dst  **windows.Proc
	}{
		{procInitIDs, &lib.initIDs},
		{procGetInfo, &lib.getInfo},
		{procResolveSymLink, &lib.resolveSymLink},
		{procListChildren, &lib.listChildren},
	}
	for _, p := range procs {
		proc, err := dll.FindProc(p.name)
		if err != nil {
			_ = dll.Release()
			return nil, err
		}
		*p.dst = proc
	}
	return lib, nil
}

func (l *dllLibrary) InitIDs() error {
	r, _, _ := l.initIDs.Call()
	if rc := int32(r); rc != 0 {
		return fmt.Errorf("%s returned %d", procInitIDs, rc)
	}
	return nil
}

func (l *dllLibrary) GetInfo(path string) (PathInfo, bool) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return PathInfo{}, false
	}
	var rec nativeInfo
	r, _, _ := l.getInfo.Call(uintptr(unsafe.Pointer(p)), uintptr(unsafe.Pointer(&rec)))
	if int32(r) != 1 {
		return PathInfo{}, false
	}
	return rec.toPathInfo(), true
}

func (l *dllLibrary) ResolveSymLink(path string) (string, bool) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return "", false
	}
	buf := make([]uint16, windows.MAX_PATH)
	for {
		r, _, _ := l.resolveSymLink.Call(
			uintptr(unsafe.Pointer(p)),
			uintptr(unsafe.Pointer(&buf[0])),
			uintptr(len(buf)),
		)
		n := int(int32(r))
		if n <= 0 {
			return "", false
		}
		if n < len(buf) {
			return windows.UTF16ToString(buf[:n]), true
		}
		buf = make([]uint16, n+1)
	}
}

func (l *dllLibrary) ListChildren(path string) ([]PathInfo, bool) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, false
	}
	buf := make([]nativeInfo, 64)
	for {
		r, _, _ := l.listChildren.Call(
			uintptr(unsafe.Pointer(p)),
			uintptr(unsafe.Pointer(&buf[0])),
			uintptr(len(buf)),
		)
		n := int(int32(r))
		if n < 0 {
			return nil, false
		}
		if n <= len(buf) {
			out := make([]PathInfo, n)
			for i := 0; i < n; i++ {
				out[i] = buf[i].toPathInfo()
			}
			return out, true
		}
		buf = make([]nativeInfo, n)
	}
}

func (r *nativeInfo) toPathInfo() PathInfo {
	return PathInfo{
		Name:     windows.UTF16ToString(r.Name[:]),
		Size:     r.Size,
		Created:  filetimeToTime(r.Created),
		Accessed: filetimeToTime(r.Accessed),
		Modified: filetimeToTime(r.Modified),
		Attrs:    attrsFromWindows(r.Attributes),
	}
}

func filetimeToTime(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	ft := windows.Filetime{LowDateTime: uint32(v), HighDateTime: uint32(uint64(v) >> 32)}
	return time.Unix(0, ft.Nanoseconds())
}

func attrsFromWindows(a uint32) Attr {
	var out Attr
	if a&fileAttrDirectory != 0 {
		out |= AttrDirectory
	}
	if a&fileAttrHidden != 0 {
		out |= AttrHidden
	}
	if a&fileAttrReparsePoint != 0 {
		out |= AttrSymlink
	}
	if a&fileAttrReadOnly != 0 {
		out |= AttrReadOnly
	}
	if a&fileAttrDevice != 0 {
		out |= AttrSpecial
	}
	return out
}
