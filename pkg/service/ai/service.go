// Package ai runs the Maya chat persona against a generative model and extracts
// the files embedded in its replies.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/duynguyendang/maya/pkg/attach"
	apperrors "github.com/duynguyendang/maya/pkg/common/errors"
	"github.com/duynguyendang/maya/pkg/extract"
)

// ChatModel generates the next model turn given the prior conversation.
type ChatModel interface {
	Name() string
	Generate(ctx context.Context, history []Turn, message string) (string, error)
}

// Reply is the model's answer plus the files found in it.
type Reply struct {
	Text  string                  `json:"response"`
	Files []extract.ExtractedFile `json:"files"`
}

// Observer receives one call per Send; used for metrics.
type Observer func(provider string, err error, elapsed time.Duration, files []extract.ExtractedFile)

type ChatService struct {
	model    ChatModel
	logger   zerolog.Logger
	observer Observer
}

func NewChatService(model ChatModel, logger zerolog.Logger) *ChatService {
	return &ChatService{
		model:  model,
		logger: logger.With().Str("component", "chat").Str("provider", model.Name()).Logger(),
	}
}

// WithObserver registers fn to be called after every Send.
func (s *ChatService) WithObserver(fn Observer) *ChatService {
	s.observer = fn
	return s
}

func (s *ChatService) Model() ChatModel { return s.model }

// Send delivers message (plus any attachments) to the model. The session history
// grows only when the model answers.
func (s *ChatService) Send(ctx context.Context, sess *Session, message string, attachments []attach.Attachment) (*Reply, error) {
	if strings.TrimSpace(message) == "" && len(attachments) == 0 {
		return nil, fmt.Errorf("message is empty: %w", apperrors.ErrInvalidInput)
	}

	history, err := sess.acquire()
	if err != nil {
		return nil, err
	}

	prompt := message + attach.FormatForPrompt(attachments)
	start := time.Now()
	text, err := s.model.Generate(ctx, history, prompt)
	elapsed := time.Since(start)

	if err != nil {
		sess.release()
		s.logger.Error().Err(err).Str("session", sess.ID).Dur("elapsed", elapsed).Msg("generation failed")
		s.observe(err, elapsed, nil)
		return nil, err
	}

	now := time.Now()
	sess.release(
		Turn{Role: RoleUser, Text: prompt, At: start},
		Turn{Role: RoleModel, Text: text, At: now},
	)

	files := extract.Extract(text)
	s.logger.Info().
		Str("session", sess.ID).
		Int("files", len(files)).
		Int("chars", len(text)).
		Dur("elapsed", elapsed).
		Msg("reply received")
	s.observe(nil, elapsed, files)

	return &Reply{Text: text, Files: files}, nil
}

func (s *ChatService) observe(err error, elapsed time.Duration, files []extract.ExtractedFile) {
	if s.observer != nil {
		s.observer(s.model.Name(), err, elapsed, files)
	}
}
