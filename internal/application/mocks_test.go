package application_test

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/ericfisherdev/passvault/internal/domain/model"
	"github.com/ericfisherdev/passvault/internal/domain/port/driven"
)

// --- Mock implementations ---

// mockCredentialStore is an in-memory CredentialStore. Setting failWith makes
// every call fail with a *model.StoreError wrapping it.
type mockCredentialStore struct {
	mu       sync.Mutex
	nextID   int64
	rows     []model.Credential
	failWith error
	inserts  int
	updates  int
}

var _ driven.CredentialStore = (*mockCredentialStore)(nil)

func newMockCredentialStore() *mockCredentialStore {
	return &mockCredentialStore{}
}

func (m *mockCredentialStore) fail(op string) error {
	if m.failWith == nil {
		return nil
	}
	return &model.StoreError{Op: op, Err: m.failWith}
}

func (m *mockCredentialStore) Insert(_ context.Context, cred model.Credential) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("insert"); err != nil {
		return 0, err
	}
	m.inserts++
	m.nextID++
	cred.ID = m.nextID
	m.rows = append(m.rows, cred)
	return cred.ID, nil
}

func (m *mockCredentialStore) Update(_ context.Context, cred model.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("update"); err != nil {
		return err
	}
	m.updates++
	for i := range m.rows {
		if m.rows[i].ID == cred.ID {
			m.rows[i] = cred
			return nil
		}
	}
	return fmt.Errorf("update credential %d: %w", cred.ID, model.ErrNotFound)
}

func (m *mockCredentialStore) FindFirst(_ context.Context, accountName, username string) (*model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("find"); err != nil {
		return nil, err
	}
	for _, r := range m.rows {
		if r.AccountName == accountName && r.Username == username {
			c := r
			c.EncryptedPassword = slices.Clone(r.EncryptedPassword)
			return &c, nil
		}
	}
	return nil, nil
}

func (m *mockCredentialStore) List(_ context.Context) iter.Seq2[model.Credential, error] {
	return func(yield func(model.Credential, error) bool) {
		m.mu.Lock()
		if err := m.fail("list"); err != nil {
			m.mu.Unlock()
			yield(model.Credential{}, err)
			return
		}
		snapshot := slices.Clone(m.rows)
		m.mu.Unlock()

		slices.SortStableFunc(snapshot, func(a, b model.Credential) int {
			return cmp.Or(
				cmp.Compare(a.AccountName, b.AccountName),
				cmp.Compare(a.Username, b.Username),
				cmp.Compare(a.ID, b.ID),
			)
		})
		for _, c := range snapshot {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func (m *mockCredentialStore) DeleteMatching(_ context.Context, accountName, username string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("delete"); err != nil {
		return 0, err
	}
	before := len(m.rows)
	m.rows = slices.DeleteFunc(m.rows, func(r model.Credential) bool {
		return r.AccountName == accountName && r.Username == username
	})
	return int64(before - len(m.rows)), nil
}

func (m *mockCredentialStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("count"); err != nil {
		return 0, err
	}
	return len(m.rows), nil
}

// mockKeyProvider returns a fixed key or a fixed error.
type mockKeyProvider struct {
	key   model.MasterKey
	err   error
	calls int
}

func (m *mockKeyProvider) GetOrCreateKey() (model.MasterKey, error) {
	m.calls++
	return m.key, m.err
}

// racingSecretStore reports the entry as missing on the first read, then
// rejects our write as a duplicate because another process won the race.
type racingSecretStore struct {
	mu        sync.Mutex
	winnerKey []byte
	reads     int
	adds      int
	lostWrite bool
}

func (s *racingSecretStore) Add(_, _ string, _ []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adds++
	s.lostWrite = true
	return fmt.Errorf("keychain add: %w", driven.ErrSecretExists)
}

func (s *racingSecretStore) Read(_, _ string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if !s.lostWrite {
		return nil, driven.ErrSecretNotFound
	}
	return slices.Clone(s.winnerKey), nil
}

// statusSecretStore rejects every write with a platform status code.
type statusSecretStore struct {
	status int
}

type statusErr struct{ code int }

func (e statusErr) Error() string   { return fmt.Sprintf("OSStatus %d", e.code) }
func (e statusErr) StatusCode() int { return e.code }

func (s *statusSecretStore) Add(_, _ string, _ []byte) error {
	return statusErr{code: s.status}
}

func (s *statusSecretStore) Read(_, _ string) ([]byte, error) {
	return nil, driven.ErrSecretNotFound
}

// brokenSecretStore fails every read.
type brokenSecretStore struct{}

func (brokenSecretStore) Add(_, _ string, _ []byte) error {
	return errors.New("keychain locked")
}

func (brokenSecretStore) Read(_, _ string) ([]byte, error) {
	return nil, errors.New("keychain locked")
}
