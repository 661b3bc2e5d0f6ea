package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/ericfisherdev/passvault/internal/domain/model"
	"github.com/ericfisherdev/passvault/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port interface.
// It stores envelopes exactly as given; sealing and opening happen above it.
type CredentialRepo struct {
	db  *DB
	now func() time.Time
}

// NewCredentialRepo creates a new CredentialRepo backed by the given DB.
func NewCredentialRepo(db *DB) *CredentialRepo {
	return &CredentialRepo{db: db, now: time.Now}
}

const credentialColumns = `id, account_name, username, encrypted_password, created_at, updated_at`

// Insert stores a new credential in a single statement and returns its ID.
func (r *CredentialRepo) Insert(ctx context.Context, cred model.Credential) (int64, error) {
	if err := cred.Validate(); err != nil {
		return 0, err
	}

	const query = `
		INSERT INTO credentials (account_name, username, encrypted_password, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	ts := formatTime(r.now())
	result, err := r.db.Writer.ExecContext(ctx, query,
		cred.AccountName, cred.Username, cred.EncryptedPassword, ts, ts,
	)
	if err != nil {
		return 0, storeErr("insert credential", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, storeErr("read inserted credential id", err)
	}
	return id, nil
}

// Update overwrites account name, username and envelope of the credential
// with cred.ID. All three fields change in one statement or none do.
func (r *CredentialRepo) Update(ctx context.Context, cred model.Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}

	const query = `
		UPDATE credentials
		SET account_name = ?, username = ?, encrypted_password = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Writer.ExecContext(ctx, query,
		cred.AccountName, cred.Username, cred.EncryptedPassword, formatTime(r.now()), cred.ID,
	)
	if err != nil {
		return storeErr(fmt.Sprintf("update credential %d", cred.ID), err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("check rows affected", err)
	}
	if rows == 0 {
		return fmt.Errorf("update credential %d: %w", cred.ID, model.ErrNotFound)
	}
	return nil
}

// FindFirst returns the oldest credential matching accountName and username
// exactly. Returns nil, nil if none matches.
func (r *CredentialRepo) FindFirst(ctx context.Context, accountName, username string) (*model.Credential, error) {
	const query = `SELECT ` + credentialColumns + ` FROM credentials
		WHERE account_name = ? AND username = ?
		ORDER BY id
		LIMIT 1`

	cred, err := scanCredential(r.db.Reader.QueryRowContext(ctx, query, accountName, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find credential", err)
	}
	return cred, nil
}

// List yields all credentials ordered by account name, username and ID using
// SQLite's binary (case-sensitive) collation. The query runs when iteration
// starts, so each range sees the current contents.
func (r *CredentialRepo) List(ctx context.Context) iter.Seq2[model.Credential, error] {
	const query = `SELECT ` + credentialColumns + ` FROM credentials
		ORDER BY account_name, username, id`

	return func(yield func(model.Credential, error) bool) {
		rows, err := r.db.Reader.QueryContext(ctx, query)
		if err != nil {
			yield(model.Credential{}, storeErr("list credentials", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			cred, err := scanCredential(rows)
			if err != nil {
				yield(model.Credential{}, storeErr("scan credential", err))
				return
			}
			if !yield(*cred, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(model.Credential{}, storeErr("iterate credentials", err))
		}
	}
}

// DeleteMatching removes every credential matching accountName and username.
// Deleting nothing is not an error.
func (r *CredentialRepo) DeleteMatching(ctx context.Context, accountName, username string) (int64, error) {
	const query = `DELETE FROM credentials WHERE account_name = ? AND username = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, accountName, username)
	if err != nil {
		return 0, storeErr("delete credentials", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, storeErr("check rows affected", err)
	}
	return rows, nil
}

// Count returns the number of stored credentials.
func (r *CredentialRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&n); err != nil {
		return 0, storeErr("count credentials", err)
	}
	return n, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCredential(s scanner) (*model.Credential, error) {
	var cred model.Credential
	var createdAt, updatedAt string

	err := s.Scan(&cred.ID, &cred.AccountName, &cred.Username, &cred.EncryptedPassword, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	cred.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	cred.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &cred, nil
}

func storeErr(op string, err error) error {
	return &model.StoreError{Op: op, Err: err}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
