package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ericfisherdev/passvault/internal/adapter/driven/keychain"
	sqliteadapter "github.com/ericfisherdev/passvault/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/passvault/internal/adapter/driving/cli"
	"github.com/ericfisherdev/passvault/internal/application"
	"github.com/ericfisherdev/passvault/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Debug("config loaded",
		"db_path", cfg.DBPath,
		"keychain_service", cfg.KeychainService,
		"keychain_account", cfg.KeychainAccount,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Open database and apply migrations.
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o700); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	logger.Debug("database opened", "path", db.Path())

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	version, dirty, err := sqliteadapter.SchemaVersion(db.Writer)
	if err != nil {
		return err
	}
	logger.Debug("migrations complete", "schema_version", version, "dirty", dirty)

	// 3. Wire adapters and services.
	secrets := keychain.NewSystemStore(cfg.KeyDir)
	keys := application.NewKeyStore(secrets, cfg.KeychainService, cfg.KeychainAccount, logger)
	credentialStore := sqliteadapter.NewCredentialRepo(db)
	vault := application.NewVaultService(keys, credentialStore, logger)
	health := application.NewHealthService(keys, credentialStore)

	// 4. Dispatch the command line.
	root := cli.NewRootCommand(vault, health, cli.TerminalPrompt(os.Stdin, os.Stderr))
	return root.ExecuteContext(ctx)
}
