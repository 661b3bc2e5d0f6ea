package driven

import "errors"

// Sentinel errors returned by SecretStore implementations.
var (
	// ErrSecretExists indicates an entry already exists for the service/account pair.
	ErrSecretExists = errors.New("secret already exists")

	// ErrSecretNotFound indicates no entry exists for the service/account pair.
	ErrSecretNotFound = errors.New("secret not found")
)

// SecretStore defines the driven port for the platform-protected secret
// store that holds the master key. Entries are addressed by a fixed
// (service, account) pair. Add never overwrites, so two processes racing to
// create the same entry cannot both succeed.
type SecretStore interface {
	Add(service, account string, data []byte) error
	Read(service, account string) ([]byte, error)
}

// StatusCoder is implemented by SecretStore errors that carry a platform
// status code (for example a keychain OSStatus).
type StatusCoder interface {
	StatusCode() int
}
