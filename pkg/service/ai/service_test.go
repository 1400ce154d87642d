package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/duynguyendang/maya/pkg/attach"
	apperrors "github.com/duynguyendang/maya/pkg/common/errors"
	"github.com/duynguyendang/maya/pkg/extract"
)

type MockModel struct {
	mock.Mock
}

func (m *MockModel) Name() string { return "mock" }

func (m *MockModel) Generate(ctx context.Context, history []Turn, message string) (string, error) {
	args := m.Called(ctx, history, message)
	return args.String(0), args.Error(1)
}

func TestSendAppendsTurnsAndExtractsFiles(t *testing.T) {
	model := new(MockModel)
	reply := "Aquí tienes:\n```filename:app.py\nprint('hola')\n```"
	model.On("Generate", mock.Anything, mock.MatchedBy(func(h []Turn) bool {
		return len(h) == 1 && h[0].Role == RoleModel
	}), "crea un script").Return(reply, nil)

	var observed []extract.ExtractedFile
	svc := NewChatService(model, zerolog.Nop()).WithObserver(func(provider string, err error, _ time.Duration, files []extract.ExtractedFile) {
		assert.Equal(t, "mock", provider)
		assert.NoError(t, err)
		observed = files
	})
	sess := NewSession("s1", "¡Hola!")

	out, err := svc.Send(context.Background(), sess, "crea un script", nil)
	require.NoError(t, err)
	assert.Equal(t, reply, out.Text)
	require.Len(t, out.Files, 1)
	assert.Equal(t, "app.py", out.Files[0].Name)
	assert.Equal(t, "python", out.Files[0].Language)
	assert.Equal(t, out.Files, observed)

	history := sess.History()
	require.Len(t, history, 3)
	assert.Equal(t, RoleUser, history[1].Role)
	assert.Equal(t, "crea un script", history[1].Text)
	assert.Equal(t, RoleModel, history[2].Role)
	model.AssertExpectations(t)
}

func TestSendWithAttachments(t *testing.T) {
	model := new(MockModel)
	files := []attach.Attachment{{Name: "main.go", Content: "package main"}}
	want := "revisa esto" + attach.FormatForPrompt(files)
	model.On("Generate", mock.Anything, mock.Anything, want).Return("ok", nil)

	svc := NewChatService(model, zerolog.Nop())
	out, err := svc.Send(context.Background(), NewSession("s", ""), "revisa esto", files)
	require.NoError(t, err)
	assert.Empty(t, out.Files)
	model.AssertExpectations(t)
}

func TestSendFailureLeavesHistoryUntouched(t *testing.T) {
	model := new(MockModel)
	model.On("Generate", mock.Anything, mock.Anything, "hola").
		Return("", fmt.Errorf("quota: %w", apperrors.ErrRateLimited))

	svc := NewChatService(model, zerolog.Nop())
	sess := NewSession("s", "greeting")

	_, err := svc.Send(context.Background(), sess, "hola", nil)
	assert.ErrorIs(t, err, apperrors.ErrRateLimited)
	assert.Equal(t, 1, sess.Len())

	// The session is usable again after a failure.
	model.ExpectedCalls = nil
	model.On("Generate", mock.Anything, mock.Anything, "hola").Return("hey", nil)
	_, err = svc.Send(context.Background(), sess, "hola", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, sess.Len())
}

func TestSendRejectsBlankMessage(t *testing.T) {
	svc := NewChatService(new(MockModel), zerolog.Nop())
	_, err := svc.Send(context.Background(), NewSession("s", ""), "   ", nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

type blockingModel struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingModel) Name() string { return "blocking" }

func (b *blockingModel) Generate(ctx context.Context, _ []Turn, _ string) (string, error) {
	close(b.started)
	<-b.release
	return "done", nil
}

func TestSendRejectsConcurrentSend(t *testing.T) {
	model := &blockingModel{started: make(chan struct{}), release: make(chan struct{})}
	svc := NewChatService(model, zerolog.Nop())
	sess := NewSession("s", "")

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = svc.Send(context.Background(), sess, "uno", nil)
	}()

	<-model.started
	_, err := svc.Send(context.Background(), sess, "dos", nil)
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	close(model.release)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Equal(t, 2, sess.Len())
}

func TestSessionReset(t *testing.T) {
	sess := NewSession("s", "hola")
	sess.release(Turn{Role: RoleUser, Text: "a"}, Turn{Role: RoleModel, Text: "b"})
	require.Equal(t, 3, sess.Len())

	sess.Reset()
	history := sess.History()
	require.Len(t, history, 1)
	assert.Equal(t, "hola", history[0].Text)

	history[0].Text = "mutated"
	assert.Equal(t, "hola", sess.History()[0].Text)

	empty := NewSession("e", "")
	assert.Equal(t, 0, empty.Len())
}

func TestToGeminiHistorySkipsLeadingModelTurns(t *testing.T) {
	out := toGeminiHistory([]Turn{
		{Role: RoleModel, Text: "greeting"},
		{Role: RoleUser, Text: "hi"},
		{Role: RoleModel, Text: "hello"},
	})
	require.Len(t, out, 2)
	assert.Equal(t, "user", out[0].Role)
	assert.Equal(t, "model", out[1].Role)
}

func TestClassifyGeminiError(t *testing.T) {
	assert.ErrorIs(t, classifyGeminiError(errors.New("boom")), apperrors.ErrUpstream)
	assert.ErrorIs(t, classifyGeminiError(context.Canceled), context.Canceled)
}
