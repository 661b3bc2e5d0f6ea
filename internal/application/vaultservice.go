package application

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/passvault/internal/crypto"
	"github.com/ericfisherdev/passvault/internal/domain/model"
	"github.com/ericfisherdev/passvault/internal/domain/port/driven"
)

// VaultService is the credential vault: add, list, find, edit, delete and
// reveal over encrypted records. It borrows the master key from a
// KeyProvider for each seal or open and never keeps it.
//
// Mutating and lookup operations run one at a time so an Edit's
// find-then-update cannot interleave with another write.
type VaultService struct {
	mu     sync.Mutex
	keys   KeyProvider
	store  driven.CredentialStore
	logger *slog.Logger
}

// NewVaultService creates a VaultService with the required dependencies.
func NewVaultService(keys KeyProvider, store driven.CredentialStore, logger *slog.Logger) *VaultService {
	return &VaultService{
		keys:   keys,
		store:  store,
		logger: logger,
	}
}

// Add validates the fields, seals the password and stores a new credential.
// Nothing is written if validation, key retrieval or sealing fails.
func (s *VaultService) Add(ctx context.Context, accountName, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := model.ValidateInput(accountName, username, password); err != nil {
		return err
	}

	envelope, err := s.seal(password)
	if err != nil {
		return fmt.Errorf("add credential: %w", err)
	}

	id, err := s.store.Insert(ctx, model.Credential{
		AccountName:       accountName,
		Username:          username,
		EncryptedPassword: envelope,
	})
	if err != nil {
		return fmt.Errorf("add credential: %w", err)
	}

	s.logger.Info("credential added", "id", id, "account_name", accountName)
	return nil
}

// List returns every credential ordered by account name (case-sensitive,
// byte order). The sequence is lazy and can be ranged over repeatedly; each
// pass reads the store afresh.
func (s *VaultService) List(ctx context.Context) iter.Seq2[model.Credential, error] {
	return s.store.List(ctx)
}

// Find returns the credential stored under accountName and username, or nil
// if there is none. If duplicates exist the oldest one is returned.
func (s *VaultService) Find(ctx context.Context, accountName, username string) (*model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, err := s.store.FindFirst(ctx, accountName, username)
	if err != nil {
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return cred, nil
}

// Edit replaces account name, username and password of the credential
// currently stored under oldAccountName and oldUsername. The password is
// re-sealed under a fresh nonce and all three fields are saved together.
// Returns model.ErrNotFound if no credential matches.
func (s *VaultService) Edit(ctx context.Context, oldAccountName, oldUsername, newAccountName, newUsername, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := model.ValidateInput(newAccountName, newUsername, newPassword); err != nil {
		return err
	}

	existing, err := s.store.FindFirst(ctx, oldAccountName, oldUsername)
	if err != nil {
		return fmt.Errorf("edit credential: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("edit credential %q/%q: %w", oldAccountName, oldUsername, model.ErrNotFound)
	}

	envelope, err := s.seal(newPassword)
	if err != nil {
		return fmt.Errorf("edit credential: %w", err)
	}

	updated := *existing
	updated.AccountName = newAccountName
	updated.Username = newUsername
	updated.EncryptedPassword = envelope

	if err := s.store.Update(ctx, updated); err != nil {
		return fmt.Errorf("edit credential: %w", err)
	}

	s.logger.Info("credential updated", "id", existing.ID, "account_name", newAccountName)
	return nil
}

// Delete removes every credential stored under accountName and username.
// Deleting a credential that does not exist succeeds.
func (s *VaultService) Delete(ctx context.Context, accountName, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.store.DeleteMatching(ctx, accountName, username)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}

	if removed > 1 {
		s.logger.Warn("deleted duplicate credentials", "account_name", accountName, "count", removed)
	} else {
		s.logger.Info("credential deleted", "account_name", accountName, "count", removed)
	}
	return nil
}

// Reveal decrypts the credential's password. The plaintext is returned to
// the caller only and never cached.
func (s *VaultService) Reveal(cred model.Credential) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.keys.GetOrCreateKey()
	if err != nil {
		return "", fmt.Errorf("reveal credential: %w", err)
	}

	plaintext, err := crypto.Open(cred.EncryptedPassword, key)
	if err != nil {
		if model.IsCorruption(err) {
			s.logger.Error("stored password cannot be opened", "credential", cred, "error", err)
		}
		return "", fmt.Errorf("reveal credential %d: %w", cred.ID, err)
	}
	return plaintext, nil
}

// Count returns the number of stored credentials.
func (s *VaultService) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count credentials: %w", err)
	}
	return n, nil
}

func (s *VaultService) seal(password string) ([]byte, error) {
	key, err := s.keys.GetOrCreateKey()
	if err != nil {
		return nil, err
	}
	return crypto.Seal(password, key)
}
