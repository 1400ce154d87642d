package github

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/zalando/go-keyring"

	apperrors "github.com/duynguyendang/maya/pkg/common/errors"
)

const (
	// KeyringService is the OS keychain service identifier.
	KeyringService = "maya"

	// KeyringAccount holds the GitHub personal access token.
	KeyringAccount = "github_token"
)

// ErrAuthRequired is returned by write operations when no token is configured.
var ErrAuthRequired = fmt.Errorf("a GitHub token is required for this operation: %w", apperrors.ErrUnauthorized)

// TokenStore persists the GitHub token between runs.
// Load returns an empty string and no error when nothing is stored.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Delete() error
}

// MemoryStore keeps the token for the life of the process only.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// KeyringStore keeps the token in the OS keychain.
type KeyringStore struct {
	service string
	account string
}

func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: KeyringService, account: KeyringAccount}
}

func (k *KeyringStore) Load() (string, error) {
	token, err := keyring.Get(k.service, k.account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token from keychain: %w", err)
	}
	return token, nil
}

func (k *KeyringStore) Save(token string) error {
	if err := keyring.Set(k.service, k.account, token); err != nil {
		return fmt.Errorf("store token in keychain: %w", err)
	}
	return nil
}

func (k *KeyringStore) Delete() error {
	err := keyring.Delete(k.service, k.account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete token from keychain: %w", err)
	}
	return nil
}

// FallbackStore keeps the token in primary and drops to memory once primary
// fails, as happens with the keychain on a headless host.
type FallbackStore struct {
	primary TokenStore
	memory  *MemoryStore
	logger  zerolog.Logger

	mu     sync.Mutex
	failed bool
}

func NewFallbackStore(primary TokenStore, logger zerolog.Logger) *FallbackStore {
	return &FallbackStore{primary: primary, memory: NewMemoryStore(), logger: logger}
}

func (f *FallbackStore) degraded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failed
}

func (f *FallbackStore) degrade(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.failed {
		f.logger.Warn().Err(err).Str("op", op).Msg("token store unavailable, keeping the token in memory")
	}
	f.failed = true
}

func (f *FallbackStore) Load() (string, error) {
	if !f.degraded() {
		token, err := f.primary.Load()
		if err == nil {
			return token, nil
		}
		f.degrade("load", err)
	}
	return f.memory.Load()
}

func (f *FallbackStore) Save(token string) error {
	if !f.degraded() {
		err := f.primary.Save(token)
		if err == nil {
			return nil
		}
		f.degrade("save", err)
	}
	return f.memory.Save(token)
}

func (f *FallbackStore) Delete() error {
	if !f.degraded() {
		if err := f.primary.Delete(); err != nil {
			f.degrade("delete", err)
		}
	}
	return f.memory.Delete()
}

// Credentials caches the token in memory and falls back to its store on a miss.
type Credentials struct {
	mu    sync.RWMutex
	store TokenStore
	token string
}

// NewCredentials wraps store; a nil store means memory only.
func NewCredentials(store TokenStore) *Credentials {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Credentials{store: store}
}

// Token returns the cached token, loading it from the store when the cache is empty.
// A store read failure is treated as "no token".
func (c *Credentials) Token() string {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		return token
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token
	}
	stored, err := c.store.Load()
	if err != nil {
		return ""
	}
	c.token = stored
	return c.token
}

func (c *Credentials) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("empty token: %w", apperrors.ErrInvalidInput)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Save(token); err != nil {
		return err
	}
	c.token = token
	return nil
}

func (c *Credentials) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	return c.store.Delete()
}

func (c *Credentials) HasToken() bool {
	return c.Token() != ""
}
