package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/duynguyendang/maya/internal/manager"
	"github.com/duynguyendang/maya/pkg/extract"
	"github.com/duynguyendang/maya/pkg/service/ai"
	"github.com/duynguyendang/maya/pkg/speech"
	"github.com/duynguyendang/maya/pkg/syntax"
)

const languagesURI = "maya://languages"

// MCPServer exposes the extraction helpers, and optionally the chat, as MCP tools.
type MCPServer struct {
	chat     *ai.ChatService
	sessions *manager.SessionManager
	checker  *syntax.Checker
	logger   zerolog.Logger
}

// NewMCPServer builds the tool handlers. chat and sessions may be nil, in which
// case the chat tool is not offered.
func NewMCPServer(chat *ai.ChatService, sessions *manager.SessionManager, checker *syntax.Checker, logger zerolog.Logger) *MCPServer {
	return &MCPServer{chat: chat, sessions: sessions, checker: checker, logger: logger}
}

// Build registers resources and tools on a new mcp-go server.
func (ms *MCPServer) Build(version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Maya",
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	s.AddResource(
		mcp.NewResource(
			languagesURI,
			"Languages",
			mcp.WithResourceDescription("File extension to language table used to label extracted files"),
			mcp.WithMIMEType("application/json"),
		),
		ms.handleLanguages,
	)

	s.AddTool(
		mcp.NewTool(
			"extract_files",
			mcp.WithDescription("Extract the files embedded as ```lang:filename fenced blocks in a markdown text."),
			mcp.WithString("text", mcp.Required(), mcp.Description("Markdown text, typically a model reply")),
		),
		ms.handleExtractFiles,
	)

	s.AddTool(
		mcp.NewTool(
			"sanitize_filename",
			mcp.WithDescription("Replace characters that are unsafe in filenames with underscores and cap the length."),
			mcp.WithString("name", mcp.Required(), mcp.Description("The filename to sanitize")),
		),
		ms.handleSanitizeFilename,
	)

	s.AddTool(
		mcp.NewTool(
			"validate_filename",
			mcp.WithDescription("Report whether a filename is safe to write as-is."),
			mcp.WithString("name", mcp.Required(), mcp.Description("The filename to check")),
		),
		ms.handleValidateFilename,
	)

	s.AddTool(
		mcp.NewTool(
			"clean_speech_text",
			mcp.WithDescription("Strip markdown and code from text so it can be read aloud."),
			mcp.WithString("text", mcp.Required(), mcp.Description("Markdown text")),
		),
		ms.handleCleanSpeechText,
	)

	if ms.chat != nil && ms.sessions != nil {
		s.AddTool(
			mcp.NewTool(
				"chat",
				mcp.WithDescription("Send a message to Maya and get the reply plus any extracted files."),
				mcp.WithString("message", mcp.Required(), mcp.Description("The message to send")),
				mcp.WithString("session_id", mcp.Description("Session to continue; omitted starts a new one")),
			),
			ms.handleChat,
		)
	}

	return s
}

// Run serves MCP on stdio until the client disconnects or ctx is done.
func Run(ctx context.Context, ms *MCPServer, version string) error {
	return ms.Serve(ctx, version, os.Stdin, os.Stdout)
}

// Serve speaks line-delimited JSON-RPC over in and out.
func (ms *MCPServer) Serve(ctx context.Context, version string, in io.Reader, out io.Writer) error {
	ms.logger.Info().Msg("Starting MCP server on Stdio")
	err := server.NewStdioServer(ms.Build(version)).Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (ms *MCPServer) handleLanguages(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(extract.Languages(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal languages: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

type extractResult struct {
	Files []extract.ExtractedFile `json:"files"`
	Cards []extract.Card          `json:"cards"`
}

func (ms *MCPServer) handleExtractFiles(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, ok := request.GetArguments()["text"].(string)
	if !ok {
		return mcp.NewToolResultError("text argument required"), nil
	}
	files := extract.Extract(text)
	return ms.filesResult(extractResult{Files: files, Cards: ms.cards(files)})
}

func (ms *MCPServer) handleSanitizeFilename(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, ok := request.GetArguments()["name"].(string)
	if !ok {
		return mcp.NewToolResultError("name argument required"), nil
	}
	return mcp.NewToolResultText(extract.SanitizeFilename(name)), nil
}

func (ms *MCPServer) handleValidateFilename(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, ok := request.GetArguments()["name"].(string)
	if !ok {
		return mcp.NewToolResultError("name argument required"), nil
	}
	return mcp.NewToolResultText(strconv.FormatBool(extract.IsValidFilename(name))), nil
}

func (ms *MCPServer) handleCleanSpeechText(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, ok := request.GetArguments()["text"].(string)
	if !ok {
		return mcp.NewToolResultError("text argument required"), nil
	}
	return mcp.NewToolResultText(speech.CleanText(text)), nil
}

type chatResult struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
	extractResult
}

func (ms *MCPServer) handleChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	message, ok := args["message"].(string)
	if !ok {
		return mcp.NewToolResultError("message argument required"), nil
	}

	var sess *ai.Session
	if id, _ := args["session_id"].(string); id != "" {
		found, err := ms.sessions.Get(id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		sess = found
	} else {
		sess = ms.sessions.Create()
	}

	reply, err := ms.chat.Send(ctx, sess, message, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chat failed: %v", err)), nil
	}
	return ms.filesResult(chatResult{
		SessionID:     sess.ID,
		Response:      reply.Text,
		extractResult: extractResult{Files: reply.Files, Cards: ms.cards(reply.Files)},
	})
}

func (ms *MCPServer) cards(files []extract.ExtractedFile) []extract.Card {
	cards := extract.Cards(files)
	if ms.checker != nil {
		ms.checker.Annotate(files, cards)
	}
	return cards
}

func (ms *MCPServer) filesResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to marshal result"), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
