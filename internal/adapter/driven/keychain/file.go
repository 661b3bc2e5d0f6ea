package keychain

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ericfisherdev/passvault/internal/domain/port/driven"
)

// FileStore keeps each secret in its own 0600 file under a 0700 directory.
// It is the fallback where no OS keychain is available; protection relies on
// file permissions only.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir. The directory is created
// lazily on the first Add.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Add writes data for service and account. The entry appears atomically and
// complete: data is written to a temp file and hard-linked into place, which
// fails if another writer already created the entry.
func (s *FileStore) Add(service, account string, data []byte) error {
	path, err := s.path(service, account)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create secret dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp secret: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // The link, not the temp file, is the entry.

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp secret: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp secret: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp secret: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp secret: %w", err)
	}

	if err := os.Link(tmpPath, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("file store add %s/%s: %w", service, account, driven.ErrSecretExists)
		}
		return fmt.Errorf("file store add %s/%s: %w", service, account, err)
	}
	return nil
}

// Read returns the data stored for service and account.
func (s *FileStore) Read(service, account string) ([]byte, error) {
	path, err := s.path(service, account)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file store read %s/%s: %w", service, account, driven.ErrSecretNotFound)
		}
		return nil, fmt.Errorf("file store read %s/%s: %w", service, account, err)
	}
	return data, nil
}

// path maps service and account to <dir>/<service>/<account>, rejecting
// names that would escape the store directory.
func (s *FileStore) path(service, account string) (string, error) {
	for _, part := range []string{service, account} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", fmt.Errorf("invalid secret name %q", part)
		}
	}
	return filepath.Join(s.dir, service, account), nil
}
