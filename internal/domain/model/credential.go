package model

import (
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"
)

// Credential is a stored account login. The password is kept only as an
// authenticated-encryption envelope; plaintext never lives on this type.
// AccountName and Username together form the lookup key.
type Credential struct {
	ID                int64
	AccountName       string
	Username          string
	EncryptedPassword []byte
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate reports whether the record satisfies the persistence invariant:
// non-blank account name and username and a non-empty envelope.
func (c Credential) Validate() error {
	if err := ValidateIdentity(c.AccountName, c.Username); err != nil {
		return err
	}
	if len(c.EncryptedPassword) == 0 {
		return &ValidationError{Field: FieldPassword, Message: "encrypted password must not be empty"}
	}
	return nil
}

// LogValue keeps the envelope out of structured logs.
func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("id", c.ID),
		slog.String("account_name", c.AccountName),
		slog.String("username", c.Username),
	)
}

// Field names reported by ValidationError.
const (
	FieldAccountName = "account_name"
	FieldUsername    = "username"
	FieldPassword    = "password"
)

// ValidateIdentity checks the account name and username in the order a user
// fills them in. Surrounding whitespace does not count as content.
func ValidateIdentity(accountName, username string) error {
	if strings.TrimSpace(accountName) == "" {
		return &ValidationError{Field: FieldAccountName, Message: "Account name should not be empty"}
	}
	if strings.TrimSpace(username) == "" {
		return &ValidationError{Field: FieldUsername, Message: "Username/email should not be empty"}
	}
	if !utf8.ValidString(accountName) {
		return &ValidationError{Field: FieldAccountName, Message: "Account name contains invalid characters"}
	}
	if !utf8.ValidString(username) {
		return &ValidationError{Field: FieldUsername, Message: "Username/email contains invalid characters"}
	}
	return nil
}

// ValidateInput checks all three user-supplied fields. The password is not
// trimmed since leading or trailing spaces may be intentional. Every field
// must be valid UTF-8 so a sealed password always opens back to the same text.
func ValidateInput(accountName, username, password string) error {
	if err := ValidateIdentity(accountName, username); err != nil {
		return err
	}
	if password == "" {
		return &ValidationError{Field: FieldPassword, Message: "Password should not be empty"}
	}
	if !utf8.ValidString(password) {
		return &ValidationError{Field: FieldPassword, Message: "Password contains invalid characters"}
	}
	return nil
}
