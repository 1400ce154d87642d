package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	apperrors "github.com/duynguyendang/maya/pkg/common/errors"
)

const DefaultOpenAIModel = "gpt-4o"

// OpenAIModel talks to any OpenAI-compatible chat completions endpoint.
type OpenAIModel struct {
	client *openai.Client
	model  string
	system string
	prompt *Prompt
	logger zerolog.Logger
}

// NewOpenAIModel creates a model; baseURL may be empty for the public API.
func NewOpenAIModel(apiKey, baseURL, model string, prompt *Prompt, system string, logger zerolog.Logger) (*OpenAIModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not found: %w", apperrors.ErrUnauthorized)
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIModel{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		system: system,
		prompt: prompt,
		logger: logger.With().Str("component", "openai").Str("model", model).Logger(),
	}, nil
}

func (o *OpenAIModel) Name() string { return "openai" }

func (o *OpenAIModel) Generate(ctx context.Context, history []Turn, message string) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if o.system != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: o.system})
	}
	for _, t := range history {
		role := openai.ChatMessageRoleUser
		if t.Role == RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: t.Text})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})

	req := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: msgs,
	}
	if o.prompt != nil {
		req.Temperature = o.prompt.Config.Temperature
		req.TopP = o.prompt.Config.TopP
		req.MaxTokens = int(o.prompt.Config.MaxOutputTokens)
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		o.logger.Warn().Err(err).Msg("openai request failed")
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI API: %w", apperrors.ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	if status == 0 {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("OpenAI API error: %v: %w", err, apperrors.ErrUpstream)
	}
	if status >= 500 {
		return fmt.Errorf("OpenAI API error %d: %w", status, apperrors.ErrUpstream)
	}
	return apperrors.FromStatus(status, "OpenAI API error: %v", err)
}
