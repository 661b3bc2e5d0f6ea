package application_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/passvault/internal/adapter/driven/keychain"
	"github.com/ericfisherdev/passvault/internal/application"
	"github.com/ericfisherdev/passvault/internal/domain/model"
	"github.com/ericfisherdev/passvault/internal/domain/port/driven"
)

const (
	testService = "com.passvault.test"
	testAccount = "master-key"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestKeyStore_GetOrCreateKey_Idempotent(t *testing.T) {
	secrets := keychain.NewMemoryStore()
	ks := application.NewKeyStore(secrets, testService, testAccount, discardLogger())

	first, err := ks.GetOrCreateKey()
	require.NoError(t, err)
	assert.False(t, first.IsZero())

	second, err := ks.GetOrCreateKey()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestKeyStore_GetOrCreateKey_PersistsAcrossInstances(t *testing.T) {
	secrets := keychain.NewMemoryStore()

	first, err := application.NewKeyStore(secrets, testService, testAccount, discardLogger()).GetOrCreateKey()
	require.NoError(t, err)

	// A new process sees the key saved by the previous one.
	second, err := application.NewKeyStore(secrets, testService, testAccount, discardLogger()).GetOrCreateKey()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stored, err := secrets.Read(testService, testAccount)
	require.NoError(t, err)
	assert.Equal(t, first.Bytes(), stored)
}

func TestKeyStore_GetOrCreateKey_ConcurrentCallersShareOneKey(t *testing.T) {
	secrets := keychain.NewMemoryStore()
	ks := application.NewKeyStore(secrets, testService, testAccount, discardLogger())

	const callers = 32
	keys := make([]model.MasterKey, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k, err := ks.GetOrCreateKey()
			assert.NoError(t, err)
			keys[i] = k
		}()
	}
	wg.Wait()

	for _, k := range keys[1:] {
		assert.Equal(t, keys[0], k)
	}
}

func TestKeyStore_GetOrCreateKey_SeparateInstancesRaceToCreate(t *testing.T) {
	secrets := keychain.NewMemoryStore()

	const processes = 8
	keys := make([]model.MasterKey, processes)
	var wg sync.WaitGroup
	for i := range processes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ks := application.NewKeyStore(secrets, testService, testAccount, discardLogger())
			k, err := ks.GetOrCreateKey()
			assert.NoError(t, err)
			keys[i] = k
		}()
	}
	wg.Wait()

	stored, err := secrets.Read(testService, testAccount)
	require.NoError(t, err)
	for _, k := range keys {
		assert.Equal(t, stored, k.Bytes(), "every instance must end up with the stored key")
	}
}

func TestKeyStore_GetOrCreateKey_LostRaceUsesWinnersKey(t *testing.T) {
	winner := bytes.Repeat([]byte{0x42}, model.MasterKeySize)
	secrets := &racingSecretStore{winnerKey: winner}

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	ks := application.NewKeyStore(secrets, testService, testAccount, logger)

	key, err := ks.GetOrCreateKey()
	require.NoError(t, err)
	assert.Equal(t, winner, key.Bytes())
	assert.Equal(t, 1, secrets.adds)
	assert.Equal(t, 2, secrets.reads)
	assert.Contains(t, logs.String(), "created concurrently")
}

func TestKeyStore_LoadKey_Absent(t *testing.T) {
	ks := application.NewKeyStore(keychain.NewMemoryStore(), testService, testAccount, discardLogger())

	key, ok, err := ks.LoadKey()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, key.IsZero())
}

func TestKeyStore_LoadKey_WrongLength(t *testing.T) {
	secrets := keychain.NewMemoryStore()
	require.NoError(t, secrets.Add(testService, testAccount, []byte("short")))
	ks := application.NewKeyStore(secrets, testService, testAccount, discardLogger())

	_, _, err := ks.LoadKey()
	require.ErrorIs(t, err, model.ErrMalformedKey)

	// A corrupt entry is never silently replaced with a new key.
	_, err = ks.GetOrCreateKey()
	assert.ErrorIs(t, err, model.ErrMalformedKey)
}

func TestKeyStore_LoadKey_AllZeroRejected(t *testing.T) {
	secrets := keychain.NewMemoryStore()
	require.NoError(t, secrets.Add(testService, testAccount, make([]byte, model.MasterKeySize)))
	ks := application.NewKeyStore(secrets, testService, testAccount, discardLogger())

	_, ok, err := ks.LoadKey()
	require.ErrorIs(t, err, model.ErrMalformedKey)
	assert.False(t, ok)

	svc := application.NewVaultService(ks, newMockCredentialStore(), discardLogger())
	err = svc.Add(context.Background(), "Gmail", "me", "pw")
	assert.ErrorIs(t, err, model.ErrMalformedKey)
}

func TestKeyStore_SaveKey_Duplicate(t *testing.T) {
	secrets := keychain.NewMemoryStore()
	ks := application.NewKeyStore(secrets, testService, testAccount, discardLogger())

	var k model.MasterKey
	k[0] = 1
	require.NoError(t, ks.SaveKey(k))

	err := ks.SaveKey(k)
	require.ErrorIs(t, err, model.ErrKeyStoreWrite)
	assert.ErrorIs(t, err, driven.ErrSecretExists)

	var kse *model.KeyStoreError
	require.True(t, errors.As(err, &kse))
	assert.Equal(t, "write", kse.Op)
}

func TestKeyStore_SaveKey_CarriesStatusCode(t *testing.T) {
	ks := application.NewKeyStore(&statusSecretStore{status: -25308}, testService, testAccount, discardLogger())

	_, err := ks.GetOrCreateKey()
	require.ErrorIs(t, err, model.ErrKeyStoreWrite)

	var kse *model.KeyStoreError
	require.True(t, errors.As(err, &kse))
	assert.Equal(t, -25308, kse.Status)
	assert.Contains(t, err.Error(), "-25308")
}

func TestKeyStore_ReadFailure(t *testing.T) {
	ks := application.NewKeyStore(brokenSecretStore{}, testService, testAccount, discardLogger())

	_, err := ks.GetOrCreateKey()
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrKeyStoreWrite, "a read failure is not a write failure")

	var kse *model.KeyStoreError
	require.True(t, errors.As(err, &kse))
	assert.Equal(t, "read", kse.Op)
}

func TestKeyStore_NeverLogsKeyMaterial(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ks := application.NewKeyStore(keychain.NewMemoryStore(), testService, testAccount, logger)

	key, err := ks.GetOrCreateKey()
	require.NoError(t, err)

	assert.NotContains(t, logs.String(), string(key.Bytes()))
	assert.Contains(t, logs.String(), "master key generated")
}
