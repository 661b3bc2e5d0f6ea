package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfisherdev/passvault/internal/crypto"
	"github.com/ericfisherdev/passvault/internal/domain/model"
	"github.com/ericfisherdev/passvault/internal/domain/port/driven"
)

// VaultStatus summarizes whether the stored credentials can be read back.
type VaultStatus string

const (
	// VaultStatusEmpty means nothing is stored yet.
	VaultStatusEmpty VaultStatus = "empty"
	// VaultStatusHealthy means every stored password decrypts.
	VaultStatusHealthy VaultStatus = "healthy"
	// VaultStatusDegraded means some stored passwords fail to decrypt.
	VaultStatusDegraded VaultStatus = "degraded"
	// VaultStatusKeyMissing means credentials exist but no master key does.
	VaultStatusKeyMissing VaultStatus = "key_missing"
)

// KeyLoader reads the master key without creating one.
type KeyLoader interface {
	LoadKey() (model.MasterKey, bool, error)
}

// VaultHealth is the result of a full integrity pass.
type VaultHealth struct {
	Status      VaultStatus
	Credentials int
	KeyPresent  bool
	Unreadable  []model.Credential
}

// HealthService opens every stored envelope to report records that no longer
// decrypt. It never creates a key and never returns plaintext.
type HealthService struct {
	keys  KeyLoader
	store driven.CredentialStore
}

// NewHealthService creates a new HealthService with the required dependencies.
func NewHealthService(keys KeyLoader, store driven.CredentialStore) *HealthService {
	return &HealthService{
		keys:  keys,
		store: store,
	}
}

// Check walks the vault once. Key store and database failures are returned as
// errors; records that fail to open are collected in Unreadable.
func (s *HealthService) Check(ctx context.Context) (*VaultHealth, error) {
	key, ok, err := s.keys.LoadKey()
	if err != nil {
		return nil, fmt.Errorf("check vault: %w", err)
	}

	health := &VaultHealth{KeyPresent: ok}
	for cred, err := range s.store.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("check vault: %w", err)
		}
		health.Credentials++
		if !ok {
			continue
		}
		if _, err := crypto.Open(cred.EncryptedPassword, key); err != nil {
			if !model.IsCorruption(err) && !errors.Is(err, model.ErrInvalidEncoding) {
				return nil, fmt.Errorf("check vault: %w", err)
			}
			health.Unreadable = append(health.Unreadable, cred)
		}
	}

	health.Status = computeVaultStatus(health.Credentials, ok, len(health.Unreadable))
	return health, nil
}

// computeVaultStatus folds the counts of one pass into a single status.
// Priority: key missing > degraded > healthy; an empty vault is always empty.
func computeVaultStatus(total int, keyPresent bool, unreadable int) VaultStatus {
	switch {
	case total == 0:
		return VaultStatusEmpty
	case !keyPresent:
		return VaultStatusKeyMissing
	case unreadable > 0:
		return VaultStatusDegraded
	default:
		return VaultStatusHealthy
	}
}
