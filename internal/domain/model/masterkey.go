package model

import "log/slog"

// MasterKeySize is the length of the master key in bytes (AES-256).
const MasterKeySize = 32

const redacted = "[REDACTED]"

// MasterKey is the process-wide symmetric key that seals every stored
// password. Its formatting methods never print the key material.
type MasterKey [MasterKeySize]byte

// MasterKeyFromBytes copies b into a MasterKey. It returns ErrMalformedKey if
// b is not exactly MasterKeySize bytes long.
func MasterKeyFromBytes(b []byte) (MasterKey, error) {
	var k MasterKey
	if len(b) != MasterKeySize {
		return k, ErrMalformedKey
	}
	copy(k[:], b)
	return k, nil
}

// Bytes returns a copy of the raw key material.
func (k MasterKey) Bytes() []byte {
	b := make([]byte, MasterKeySize)
	copy(b, k[:])
	return b
}

// IsZero reports whether the key is all zero bytes, i.e. unset.
func (k MasterKey) IsZero() bool {
	return k == MasterKey{}
}

func (k MasterKey) String() string { return redacted }
func (k MasterKey) GoString() string { return redacted }
func (k MasterKey) LogValue() slog.Value { return slog.StringValue(redacted) }

// MarshalText keeps the key out of JSON and other text encodings.
func (k MasterKey) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}
