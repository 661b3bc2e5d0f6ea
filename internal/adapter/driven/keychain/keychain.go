// Package keychain implements the protected secret store that holds the
// vault's master key.
//
// On macOS entries are generic passwords in the login Keychain with:
//   - Service: the configured service name (default "com.passvault")
//   - Account: the configured account name (default "master-key")
//   - Label: "passvault: <account>" (for Keychain Access.app visibility)
//
// Entries are scoped with kSecAttrAccessibleWhenUnlockedThisDeviceOnly and
// are never synced to iCloud. Other platforms fall back to FileStore.
package keychain

import "github.com/ericfisherdev/passvault/internal/domain/port/driven"

// Compile-time interface satisfaction checks.
var (
	_ driven.SecretStore = (*MemoryStore)(nil)
	_ driven.SecretStore = (*FileStore)(nil)
)
