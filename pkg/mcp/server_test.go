package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynguyendang/maya/internal/manager"
	"github.com/duynguyendang/maya/pkg/service/ai"
)

type echoModel struct{}

func (echoModel) Name() string { return "echo" }

func (echoModel) Generate(_ context.Context, _ []ai.Turn, message string) (string, error) {
	return "```go:echo.go\n// " + message + "\n```", nil
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func newServer() *MCPServer {
	chat := ai.NewChatService(echoModel{}, zerolog.Nop())
	sessions := manager.NewSessionManager("Hola", 8, time.Minute)
	return NewMCPServer(chat, sessions, nil, zerolog.Nop())
}

func TestExtractFilesTool(t *testing.T) {
	ms := newServer()

	res, err := ms.handleExtractFiles(context.Background(), call(map[string]any{
		"text": "Mira:\n```python:app.py\nprint(1)\n```",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var out extractResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	require.Len(t, out.Files, 1)
	assert.Equal(t, "app.py", out.Files[0].Name)
	assert.Equal(t, "python", out.Files[0].Language)
	require.Len(t, out.Cards, 1)
	assert.Equal(t, "🐍", out.Cards[0].Icon)
}

func TestExtractFilesToolRequiresText(t *testing.T) {
	res, err := newServer().handleExtractFiles(context.Background(), call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestFilenameTools(t *testing.T) {
	ms := newServer()
	ctx := context.Background()

	res, err := ms.handleSanitizeFilename(ctx, call(map[string]any{"name": "my file?.py"}))
	require.NoError(t, err)
	assert.Equal(t, "my_file_.py", resultText(t, res))

	res, err = ms.handleValidateFilename(ctx, call(map[string]any{"name": "ok.py"}))
	require.NoError(t, err)
	assert.Equal(t, "true", resultText(t, res))

	res, err = ms.handleValidateFilename(ctx, call(map[string]any{"name": "a:b.py"}))
	require.NoError(t, err)
	assert.Equal(t, "false", resultText(t, res))
}

func TestCleanSpeechTextTool(t *testing.T) {
	res, err := newServer().handleCleanSpeechText(context.Background(), call(map[string]any{
		"text": "# Hola\n**mundo**",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Hola mundo", resultText(t, res))
}

func TestChatTool(t *testing.T) {
	ms := newServer()
	ctx := context.Background()

	res, err := ms.handleChat(ctx, call(map[string]any{"message": "hola"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out chatResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.NotEmpty(t, out.SessionID)
	require.Len(t, out.Files, 1)
	assert.Equal(t, "// hola", out.Files[0].Content)

	res, err = ms.handleChat(ctx, call(map[string]any{"message": "otra", "session_id": out.SessionID}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	sess, err := ms.sessions.Get(out.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 5, sess.Len())

	res, err = ms.handleChat(ctx, call(map[string]any{"message": "x", "session_id": "missing"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestLanguagesResource(t *testing.T) {
	var req mcp.ReadResourceRequest
	req.Params.URI = languagesURI

	contents, err := newServer().handleLanguages(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	tc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	var langs map[string]string
	require.NoError(t, json.Unmarshal([]byte(tc.Text), &langs))
	assert.Equal(t, "python", langs["py"])
}

func TestBuildListsTools(t *testing.T) {
	s := newServer().Build("test")

	resp := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	for _, name := range []string{"extract_files", "sanitize_filename", "validate_filename", "clean_speech_text", "chat"} {
		assert.Contains(t, string(data), `"`+name+`"`)
	}
}

func TestServeAnswersUntilInputEnds(t *testing.T) {
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n")
	var out strings.Builder

	require.NoError(t, newServer().Serve(context.Background(), "test", in, &out))
	assert.Contains(t, out.String(), `"extract_files"`)
}
