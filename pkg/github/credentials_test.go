package github

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	apperrors "github.com/duynguyendang/maya/pkg/common/errors"
)

func TestCredentialsMemory(t *testing.T) {
	creds := NewCredentials(nil)
	assert.False(t, creds.HasToken())

	require.NoError(t, creds.SetToken("  ghp_abc  "))
	assert.True(t, creds.HasToken())
	assert.Equal(t, "ghp_abc", creds.Token())

	err := creds.SetToken("   ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, "ghp_abc", creds.Token())

	require.NoError(t, creds.Clear())
	assert.False(t, creds.HasToken())
}

func TestCredentialsFallBackToStore(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save("persisted"))

	creds := NewCredentials(store)
	assert.Equal(t, "persisted", creds.Token())
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store := NewKeyringStore()
	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	creds := NewCredentials(store)
	require.NoError(t, creds.SetToken("ghp_keychain"))

	// A fresh cache over the same keychain sees the saved token.
	again := NewCredentials(NewKeyringStore())
	assert.Equal(t, "ghp_keychain", again.Token())

	require.NoError(t, again.Clear())
	require.NoError(t, again.Clear())
	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestFallbackStoreWithoutKeychain(t *testing.T) {
	keyring.MockInitWithError(errors.New("no secret service"))
	t.Cleanup(keyring.MockInit)

	creds := NewCredentials(NewFallbackStore(NewKeyringStore(), zerolog.Nop()))
	assert.False(t, creds.HasToken())

	require.NoError(t, creds.SetToken("ghp_headless"))
	assert.Equal(t, "ghp_headless", creds.Token())

	require.NoError(t, creds.Clear())
	assert.False(t, creds.HasToken())
}

func TestFallbackStoreUsesKeychainWhenAvailable(t *testing.T) {
	keyring.MockInit()

	store := NewFallbackStore(NewKeyringStore(), zerolog.Nop())
	require.NoError(t, store.Save("ghp_keychain"))

	token, err := NewKeyringStore().Load()
	require.NoError(t, err)
	assert.Equal(t, "ghp_keychain", token)
	require.NoError(t, store.Delete())
}
