// Package crypto seals and opens credential passwords with AES-256-GCM.
//
// An envelope is a single self-describing blob:
//
//	nonce (12 bytes) || ciphertext || tag (16 bytes)
//
// Every Seal draws a fresh random nonce, so sealing the same plaintext twice
// never yields the same envelope.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/ericfisherdev/passvault/internal/domain/model"
)

// Envelope layout sizes.
const (
	NonceSize = 12
	TagSize   = 16
	Overhead  = NonceSize + TagSize
)

// randReader is the nonce source. Tests swap it to simulate RNG failure.
var randReader io.Reader = rand.Reader

// Seal encrypts the UTF-8 bytes of plaintext under key. Empty plaintext is
// valid and produces an Overhead-byte envelope.
func Seal(plaintext string, key model.MasterKey) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrSealFailed, err)
	}

	nonce := make([]byte, NonceSize, NonceSize+len(plaintext)+TagSize)
	if _, err := io.ReadFull(randReader, nonce); err != nil {
		return nil, fmt.Errorf("%w: rand nonce: %v", model.ErrSealFailed, err)
	}

	// Seal appends to nonce, producing nonce || ciphertext || tag.
	return gcm.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

// Open verifies and decrypts an envelope produced by Seal.
func Open(envelope []byte, key model.MasterKey) (string, error) {
	if len(envelope) < Overhead {
		return "", fmt.Errorf("%w: %d bytes, need at least %d", model.ErrMalformedEnvelope, len(envelope), Overhead)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce, ciphertext := envelope[:NonceSize], envelope[NonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", model.ErrAuthenticationFailed
	}

	if !utf8.Valid(plaintext) {
		Zero(plaintext)
		return "", model.ErrInvalidEncoding
	}
	return string(plaintext), nil
}

func newGCM(key model.MasterKey) (cipher.AEAD, error) {
	if key.IsZero() {
		return nil, fmt.Errorf("%w: key is unset", model.ErrMalformedKey)
	}
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}

// Zero overwrites b with zeros.
func Zero(b []byte) {
	clear(b)
}
