package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	apperrors "github.com/duynguyendang/maya/pkg/common/errors"
)

const DefaultGeminiModel = "gemini-2.0-flash-exp"

var harmCategories = []genai.HarmCategory{
	genai.HarmCategoryHarassment,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryDangerousContent,
}

type GeminiModel struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
	logger zerolog.Logger
}

// NewGeminiModel builds a Gemini-backed ChatModel. system is sent as the system
// instruction; generation settings come from the prompt frontmatter.
func NewGeminiModel(ctx context.Context, apiKey, modelName string, prompt *Prompt, system string, logger zerolog.Logger, opts ...option.ClientOption) (*GeminiModel, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not found: %w", apperrors.ErrUnauthorized)
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if modelName == "" {
		modelName = prompt.Config.Model
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(prompt.Config.Temperature)
	model.SetTopK(prompt.Config.TopK)
	model.SetTopP(prompt.Config.TopP)
	model.SetMaxOutputTokens(prompt.Config.MaxOutputTokens)
	for _, c := range harmCategories {
		model.SafetySettings = append(model.SafetySettings, &genai.SafetySetting{
			Category:  c,
			Threshold: genai.HarmBlockNone,
		})
	}
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	return &GeminiModel{
		client: client,
		model:  model,
		name:   modelName,
		logger: logger.With().Str("component", "gemini").Str("model", modelName).Logger(),
	}, nil
}

func (g *GeminiModel) Name() string { return "gemini" }

func (g *GeminiModel) Close() error {
	return g.client.Close()
}

func (g *GeminiModel) Generate(ctx context.Context, history []Turn, message string) (string, error) {
	cs := g.model.StartChat()
	cs.History = toGeminiHistory(history)

	resp, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		g.logger.Warn().Err(err).Msg("gemini request failed")
		return "", classifyGeminiError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates: %w", apperrors.ErrUpstream)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}

// toGeminiHistory converts turns, skipping leading model turns since a chat must open with the user.
func toGeminiHistory(turns []Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		if len(out) == 0 && t.Role == RoleModel {
			continue
		}
		out = append(out, &genai.Content{
			Role:  string(t.Role),
			Parts: []genai.Part{genai.Text(t.Text)},
		})
	}
	return out
}

func classifyGeminiError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 429:
			return apperrors.FromStatus(gerr.Code, "gemini request limit exceeded, wait a moment and try again")
		case 401, 403:
			return apperrors.FromStatus(gerr.Code, "gemini rejected the API key")
		default:
			return fmt.Errorf("gemini %d: %s: %w", gerr.Code, gerr.Message, apperrors.ErrUpstream)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("gemini request failed: %v: %w", err, apperrors.ErrUpstream)
}
