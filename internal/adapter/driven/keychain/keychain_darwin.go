//go:build darwin

package keychain

import (
	"errors"
	"fmt"

	gokeychain "github.com/keybase/go-keychain"

	"github.com/ericfisherdev/passvault/internal/domain/port/driven"
)

var _ driven.SecretStore = (*SystemStore)(nil)

// SystemStore stores secrets in the macOS Keychain.
type SystemStore struct{}

// NewSystemStore returns the Keychain-backed store. The fallback directory
// used on other platforms is ignored.
func NewSystemStore(_ string) *SystemStore {
	return &SystemStore{}
}

// Add creates a new Keychain item. It fails with driven.ErrSecretExists if an
// item with the same service and account is already present.
func (s *SystemStore) Add(service, account string, data []byte) error {
	item := gokeychain.NewGenericPassword(
		service,
		account,
		fmt.Sprintf("passvault: %s", account),
		data,
		"",
	)
	item.SetSynchronizable(gokeychain.SynchronizableNo)
	item.SetAccessible(gokeychain.AccessibleWhenUnlockedThisDeviceOnly)

	if err := gokeychain.AddItem(item); err != nil {
		if errors.Is(err, gokeychain.ErrorDuplicateItem) {
			return fmt.Errorf("keychain add %s/%s: %w", service, account, driven.ErrSecretExists)
		}
		return wrapStatus(fmt.Sprintf("keychain add %s/%s", service, account), err)
	}
	return nil
}

// Read returns the data stored for service and account.
func (s *SystemStore) Read(service, account string) ([]byte, error) {
	data, err := gokeychain.GetGenericPassword(service, account, "", "")
	if err != nil {
		if errors.Is(err, gokeychain.ErrorItemNotFound) {
			return nil, fmt.Errorf("keychain read %s/%s: %w", service, account, driven.ErrSecretNotFound)
		}
		return nil, wrapStatus(fmt.Sprintf("keychain read %s/%s", service, account), err)
	}
	// GetGenericPassword returns nil data, not an error, for a missing item.
	if data == nil {
		return nil, fmt.Errorf("keychain read %s/%s: %w", service, account, driven.ErrSecretNotFound)
	}
	return data, nil
}

// statusError carries the Keychain OSStatus alongside the wrapped error.
type statusError struct {
	op     string
	status int
	err    error
}

func (e *statusError) Error() string   { return fmt.Sprintf("%s: %v", e.op, e.err) }
func (e *statusError) Unwrap() error   { return e.err }
func (e *statusError) StatusCode() int { return e.status }

func wrapStatus(op string, err error) error {
	var kerr gokeychain.Error
	if errors.As(err, &kerr) {
		return &statusError{op: op, status: int(kerr), err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
