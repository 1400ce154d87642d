package manager

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/duynguyendang/maya/internal/metrics"
	apperrors "github.com/duynguyendang/maya/pkg/common/errors"
	"github.com/duynguyendang/maya/pkg/service/ai"
)

const (
	DefaultMaxSessions = 256
	DefaultSessionTTL  = 30 * time.Minute
)

// SessionManager holds the chat sessions of the HTTP front end. Idle sessions
// expire after the TTL; the least recently used are dropped beyond the size limit.
type SessionManager struct {
	greeting string
	sessions *expirable.LRU[string, *ai.Session]
	mu       sync.Mutex
}

// NewSessionManager creates a manager whose sessions open with greeting.
func NewSessionManager(greeting string, maxSessions int, ttl time.Duration) *SessionManager {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	cache := expirable.NewLRU[string, *ai.Session](maxSessions, func(string, *ai.Session) {
		metrics.ActiveSessions.Dec()
	}, ttl)

	return &SessionManager{
		greeting: greeting,
		sessions: cache,
	}
}

// Create starts a new session with a random ID.
func (sm *SessionManager) Create() *ai.Session {
	sess := ai.NewSession(uuid.NewString(), sm.greeting)
	sm.sessions.Add(sess.ID, sess)
	metrics.ActiveSessions.Inc()
	return sess
}

// Get returns a live session and pushes back its expiry.
func (sm *SessionManager) Get(id string) (*ai.Session, error) {
	// Fast path
	sess, ok := sm.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, apperrors.ErrNotFound)
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	// Re-check under lock so a concurrent Delete is not undone.
	if _, ok := sm.sessions.Peek(id); ok {
		sm.sessions.Add(id, sess)
	}
	return sess, nil
}

// Delete ends a session. Deleting an unknown ID is an error.
func (sm *SessionManager) Delete(id string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if !sm.sessions.Remove(id) {
		return fmt.Errorf("session %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (sm *SessionManager) Greeting() string { return sm.greeting }

func (sm *SessionManager) Len() int {
	return sm.sessions.Len()
}

// CloseAll drops every session.
func (sm *SessionManager) CloseAll() {
	sm.sessions.Purge()
}
