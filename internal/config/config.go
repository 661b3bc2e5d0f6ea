// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Defaults for the protected key store entry.
const (
	DefaultKeychainService = "com.passvault"
	DefaultKeychainAccount = "master-key"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath          string
	KeychainService string
	KeychainAccount string
	KeyDir          string
	LogLevel        slog.Level
}

// Load reads configuration from environment variables and returns a validated Config.
// All variables are optional: PASSVAULT_DB_PATH (<config dir>/passvault/vault.db),
// PASSVAULT_KEYCHAIN_SERVICE (com.passvault), PASSVAULT_KEYCHAIN_ACCOUNT (master-key),
// PASSVAULT_KEY_DIR (<config dir>/passvault/keys, used where no OS keychain exists),
// PASSVAULT_LOG_LEVEL (warn).
func Load() (*Config, error) {
	dbPath, err := pathFromEnv("PASSVAULT_DB_PATH", "vault.db")
	if err != nil {
		return nil, err
	}

	service := DefaultKeychainService
	if v, ok := os.LookupEnv("PASSVAULT_KEYCHAIN_SERVICE"); ok {
		service = strings.TrimSpace(v)
		if service == "" {
			return nil, errors.New("PASSVAULT_KEYCHAIN_SERVICE must not be empty")
		}
	}

	account := DefaultKeychainAccount
	if v, ok := os.LookupEnv("PASSVAULT_KEYCHAIN_ACCOUNT"); ok {
		account = strings.TrimSpace(v)
		if account == "" {
			return nil, errors.New("PASSVAULT_KEYCHAIN_ACCOUNT must not be empty")
		}
	}

	keyDir, err := pathFromEnv("PASSVAULT_KEY_DIR", "keys")
	if err != nil {
		return nil, err
	}

	logLevel := slog.LevelWarn
	if v, ok := os.LookupEnv("PASSVAULT_LOG_LEVEL"); ok && v != "" {
		if err := logLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("PASSVAULT_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	return &Config{
		DBPath:          dbPath,
		KeychainService: service,
		KeychainAccount: account,
		KeyDir:          keyDir,
		LogLevel:        logLevel,
	}, nil
}

// pathFromEnv returns the value of key, or <user config dir>/passvault/<name>
// when key is unset or empty. The config dir is only looked up when needed.
func pathFromEnv(key, name string) (string, error) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s not set and user config dir unavailable: %w", key, err)
	}
	return filepath.Join(dir, "passvault", name), nil
}
