package application

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/passvault/internal/crypto"
	"github.com/ericfisherdev/passvault/internal/domain/model"
	"github.com/ericfisherdev/passvault/internal/domain/port/driven"
)

// KeyProvider hands out the master key for a single seal or open call.
type KeyProvider interface {
	GetOrCreateKey() (model.MasterKey, error)
}

// Compile-time interface satisfaction check.
var _ KeyProvider = (*KeyStore)(nil)

// KeyStore owns the vault's master key. The key lives in a protected
// SecretStore under one fixed (service, account) pair; it is generated once
// on first use and never rotated or deleted here.
type KeyStore struct {
	mu      sync.Mutex
	secrets driven.SecretStore
	service string
	account string
	random  io.Reader
	logger  *slog.Logger

	cached model.MasterKey
	loaded bool
}

// NewKeyStore creates a KeyStore that keeps its key in secrets under the given
// service and account identifiers.
func NewKeyStore(secrets driven.SecretStore, service, account string, logger *slog.Logger) *KeyStore {
	return &KeyStore{
		secrets: secrets,
		service: service,
		account: account,
		random:  rand.Reader,
		logger:  logger,
	}
}

// GetOrCreateKey returns the stored master key, generating and saving a new
// random one if none exists yet. Concurrent callers in this process are
// serialized. If another process saves a key between our read and our write,
// the duplicate-entry failure is benign: the winner's key is re-read and used.
func (s *KeyStore) GetOrCreateKey() (model.MasterKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.cached, nil
	}

	key, ok, err := s.loadKey()
	if err != nil {
		return model.MasterKey{}, err
	}
	if ok {
		s.remember(key)
		return key, nil
	}

	if _, err := io.ReadFull(s.random, key[:]); err != nil {
		return model.MasterKey{}, fmt.Errorf("generate master key: %w", err)
	}

	if err := s.saveKey(key); err != nil {
		if !errors.Is(err, driven.ErrSecretExists) {
			return model.MasterKey{}, err
		}

		s.logger.Info("master key created concurrently, using existing key",
			"service", s.service,
			"account", s.account,
		)
		key, ok, err = s.loadKey()
		if err != nil {
			return model.MasterKey{}, err
		}
		if !ok {
			return model.MasterKey{}, fmt.Errorf("master key missing after duplicate write: %w", driven.ErrSecretNotFound)
		}
		s.remember(key)
		return key, nil
	}

	s.logger.Info("master key generated", "service", s.service, "account", s.account)
	s.remember(key)
	return key, nil
}

// SaveKey writes key to the protected store. It fails with a
// *model.KeyStoreError if the store rejects the write, including when an
// entry already exists.
func (s *KeyStore) SaveKey(key model.MasterKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveKey(key)
}

// LoadKey reads the master key from the protected store. A missing entry is
// reported as ok == false with a nil error.
func (s *KeyStore) LoadKey() (key model.MasterKey, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadKey()
}

func (s *KeyStore) saveKey(key model.MasterKey) error {
	raw := key.Bytes()
	defer crypto.Zero(raw)

	if err := s.secrets.Add(s.service, s.account, raw); err != nil {
		return &model.KeyStoreError{Op: "write", Status: statusCode(err), Err: err}
	}
	return nil
}

func (s *KeyStore) loadKey() (model.MasterKey, bool, error) {
	raw, err := s.secrets.Read(s.service, s.account)
	if errors.Is(err, driven.ErrSecretNotFound) {
		return model.MasterKey{}, false, nil
	}
	if err != nil {
		return model.MasterKey{}, false, &model.KeyStoreError{Op: "read", Status: statusCode(err), Err: err}
	}
	defer crypto.Zero(raw)

	key, err := model.MasterKeyFromBytes(raw)
	if err != nil {
		return model.MasterKey{}, false, fmt.Errorf("%w: stored entry is %d bytes, want %d",
			model.ErrMalformedKey, len(raw), model.MasterKeySize)
	}
	if key.IsZero() {
		return model.MasterKey{}, false, fmt.Errorf("%w: stored entry is all zero bytes", model.ErrMalformedKey)
	}
	return key, true, nil
}

func (s *KeyStore) remember(key model.MasterKey) {
	s.cached = key
	s.loaded = true
}

func statusCode(err error) int {
	var sc driven.StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}
