//go:build !windows

package nativefs

// defaultOpener has nothing to load outside Windows. The loader never
// reaches it there because Supported rejects the platform first.
func defaultOpener(string) (Library, error) {
	return nil, ErrUnsupportedPlatform
}
