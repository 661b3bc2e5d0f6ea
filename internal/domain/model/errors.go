package model

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ErrNotFound indicates no credential matches the requested account name and
// username. It is a precondition failure, not an invariant violation.
var ErrNotFound = errors.New("credential not found")

// Cipher failures. ErrMalformedEnvelope and ErrAuthenticationFailed mean the
// stored data is corrupt or was sealed with another key; retrying cannot help.
var (
	ErrSealFailed           = errors.New("seal failed")
	ErrMalformedEnvelope    = errors.New("malformed envelope")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidEncoding      = errors.New("decrypted data is not valid UTF-8")
)

// Key store failures.
var (
	ErrKeyStoreWrite = errors.New("key store write failed")
	ErrMalformedKey  = errors.New("malformed master key")
)

// ErrStore is matched by every *StoreError.
var ErrStore = errors.New("credential store failure")

// ValidationError reports an empty required field. Message is safe to show
// to the user and never contains the submitted value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// KeyStoreError wraps a rejected write to the protected secret store. Status
// carries the platform status code when the store reports one, 0 otherwise.
type KeyStoreError struct {
	Op     string
	Status int
	Err    error
}

func (e *KeyStoreError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("key store %s failed (status %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("key store %s failed: %v", e.Op, e.Err)
}

func (e *KeyStoreError) Unwrap() error {
	return e.Err
}

func (e *KeyStoreError) Is(target error) bool {
	return target == ErrKeyStoreWrite && e.Op == "write"
}

// StoreError wraps a failure of the durable credential store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("credential store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// IsCorruption reports whether err means a stored envelope cannot be opened
// with the current key, either because it was tampered with or because it was
// sealed under a different key.
func IsCorruption(err error) bool {
	return errors.Is(err, ErrMalformedEnvelope) || errors.Is(err, ErrAuthenticationFailed)
}
