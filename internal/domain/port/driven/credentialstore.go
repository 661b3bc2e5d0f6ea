package driven

import (
	"context"
	"iter"

	"github.com/ericfisherdev/passvault/internal/domain/model"
)

// CredentialStore defines the driven port for durable credential persistence.
// The store never sees plaintext passwords; EncryptedPassword is opaque to it.
// Failures are returned as *model.StoreError.
type CredentialStore interface {
	// Insert persists a new record in a single atomic write and returns its ID.
	Insert(ctx context.Context, cred model.Credential) (int64, error)

	// Update overwrites account name, username and envelope of the record with
	// cred.ID in one atomic write. Returns model.ErrNotFound if no row has that ID.
	Update(ctx context.Context, cred model.Credential) error

	// FindFirst returns the oldest record matching both fields exactly.
	// Returns (nil, nil) if nothing matches.
	FindFirst(ctx context.Context, accountName, username string) (*model.Credential, error)

	// List yields every record ordered by account name, then username, then ID.
	// Each range over the returned sequence runs a fresh query.
	List(ctx context.Context) iter.Seq2[model.Credential, error]

	// DeleteMatching removes every record matching both fields and reports how
	// many were removed. Zero matches is not an error.
	DeleteMatching(ctx context.Context, accountName, username string) (int64, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
}
