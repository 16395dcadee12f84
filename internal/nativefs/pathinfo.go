package nativefs

import (
	"fmt"
	"strings"
	"time"
)

// Attr is the set of attribute flags of a filesystem entry.
type Attr uint32

// Attribute flags reported by the native layer.
const (
	AttrDirectory Attr = 1 << iota
	AttrHidden
	AttrSymlink
	AttrReadOnly
	AttrSpecial // device or other non-regular entry
)

var attrNames = []struct {
	flag Attr
	name string
}{
	{AttrDirectory, "dir"},
	{AttrHidden, "hidden"},
	{AttrSymlink, "symlink"},
	{AttrReadOnly, "readonly"},
	{AttrSpecial, "special"},
}

// Has reports whether every flag in f is set.
func (a Attr) Has(f Attr) bool { return a&f == f }

// String lists the set flags, e.g. "dir|hidden".
func (a Attr) String() string {
	var parts []string
	for _, n := range attrNames {
		if a.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "|")
}

// MarshalText renders the flags in their String form.
func (a Attr) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses the String form.
func (a *Attr) UnmarshalText(text []byte) error {
	*a = 0
	s := string(text)
	if s == "-" || s == "" {
		return nil
	}
	for _, part := range strings.Split(s, "|") {
		found := false
		for _, n := range attrNames {
			if n.name == part {
				*a |= n.flag
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown attribute %q", part)
		}
	}
	return nil
}

// PathInfo describes one filesystem entry as reported by the native layer.
type PathInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Created  time.Time `json:"created"`
	Accessed time.Time `json:"accessed"`
	Modified time.Time `json:"modified"`
	Attrs    Attr      `json:"attrs"`
}

// IsDir reports whether the entry is a directory.
func (p PathInfo) IsDir() bool { return p.Attrs.Has(AttrDirectory) }

// IsSymlink reports whether the entry is a symbolic link or reparse point.
func (p PathInfo) IsSymlink() bool { return p.Attrs.Has(AttrSymlink) }

// IsHidden reports whether the entry carries the hidden attribute.
func (p PathInfo) IsHidden() bool { return p.Attrs.Has(AttrHidden) }
