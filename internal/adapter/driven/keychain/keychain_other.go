//go:build !darwin

package keychain

// NewSystemStore returns a FileStore rooted at fallbackDir on non-darwin
// platforms, where the macOS Keychain is not available.
func NewSystemStore(fallbackDir string) *FileStore {
	return NewFileStore(fallbackDir)
}
