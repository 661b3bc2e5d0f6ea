package keychain

import (
	"fmt"
	"sync"

	"github.com/ericfisherdev/passvault/internal/domain/port/driven"
)

// MemoryStore is an in-memory implementation of driven.SecretStore for testing.
type MemoryStore struct {
	mu      sync.RWMutex
	secrets map[string][]byte
}

// NewMemoryStore creates a new in-memory secret store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{secrets: make(map[string][]byte)}
}

func (s *MemoryStore) Add(service, account string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := service + "/" + account
	if _, ok := s.secrets[k]; ok {
		return fmt.Errorf("%w: %s", driven.ErrSecretExists, k)
	}
	s.secrets[k] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Read(service, account string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k := service + "/" + account
	v, ok := s.secrets[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s", driven.ErrSecretNotFound, k)
	}
	return append([]byte(nil), v...), nil
}
