package ai

import (
	"fmt"
	"sync"
	"time"

	apperrors "github.com/duynguyendang/maya/pkg/common/errors"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message of a conversation.
type Turn struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// ErrBusy is returned when a session already has a message in flight.
var ErrBusy = fmt.Errorf("a message is already being processed for this session: %w", apperrors.ErrConflict)

// Session is one conversation. It is owned by the caller and safe for concurrent use;
// at most one Send runs against it at a time.
type Session struct {
	ID string

	mu       sync.Mutex
	greeting string
	turns    []Turn
	busy     bool
}

// NewSession starts a conversation seeded with the persona greeting as the first model turn.
func NewSession(id, greeting string) *Session {
	s := &Session{ID: id, greeting: greeting}
	s.seed()
	return s
}

func (s *Session) seed() {
	s.turns = s.turns[:0]
	if s.greeting != "" {
		s.turns = append(s.turns, Turn{Role: RoleModel, Text: s.greeting, At: time.Now()})
	}
}

// Reset drops everything but the greeting.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seed()
}

func (s *Session) Greeting() string {
	return s.greeting
}

// History returns a copy of the turns so far.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

func (s *Session) acquire() ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return nil, ErrBusy
	}
	s.busy = true
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out, nil
}

func (s *Session) release(turns ...Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turns...)
	s.busy = false
}
