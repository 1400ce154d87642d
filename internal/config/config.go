// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/duynguyendang/maya/pkg/common/errors"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	TokenStoreMemory  = "memory"
	TokenStoreKeyring = "keyring"
)

// Config holds configuration for every front end.
type Config struct {
	// Provider selects the chat backend: "gemini" or "openai".
	Provider string

	GeminiAPIKey string
	GeminiModel  string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string

	GitHubUsername string
	GitHubToken    string
	// TokenStore is where a GitHub token set at runtime is kept: "memory" or "keyring".
	TokenStore string

	// PromptPath overrides the built-in persona prompt.
	PromptPath string

	Port      string
	LogLevel  string
	LogFormat string

	SessionTTL  time.Duration
	MaxSessions int

	// MaxAttachmentMB caps the size of each attached file.
	MaxAttachmentMB int
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Provider:        ProviderGemini,
		GeminiModel:     "gemini-2.0-flash-exp",
		OpenAIModel:     "gpt-4o",
		GitHubUsername:  "Luisnefelibato",
		TokenStore:      TokenStoreKeyring,
		Port:            "8080",
		LogLevel:        "info",
		LogFormat:       "console",
		SessionTTL:      30 * time.Minute,
		MaxSessions:     256,
		MaxAttachmentMB: 5,
	}
}

// Load reads .env (when present) and then the process environment over the defaults.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv; unset keys keep their defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	str("LLM_PROVIDER", &cfg.Provider)
	str("GEMINI_API_KEY", &cfg.GeminiAPIKey)
	str("GEMINI_MODEL", &cfg.GeminiModel)
	str("OPENAI_API_KEY", &cfg.OpenAIAPIKey)
	str("OPENAI_MODEL", &cfg.OpenAIModel)
	str("OPENAI_BASE_URL", &cfg.OpenAIBaseURL)
	str("ELEVENLABS_API_KEY", &cfg.ElevenLabsAPIKey)
	str("ELEVENLABS_VOICE_ID", &cfg.ElevenLabsVoiceID)
	str("GITHUB_USERNAME", &cfg.GitHubUsername)
	str("GITHUB_TOKEN", &cfg.GitHubToken)
	str("MAYA_TOKEN_STORE", &cfg.TokenStore)
	str("MAYA_PROMPT", &cfg.PromptPath)
	str("PORT", &cfg.Port)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)

	cfg.Provider = strings.ToLower(cfg.Provider)
	cfg.TokenStore = strings.ToLower(cfg.TokenStore)

	if v := getenv("MAYA_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("MAYA_SESSION_TTL %q: %w", v, apperrors.ErrInvalidInput)
		}
		cfg.SessionTTL = d
	}
	if err := positiveInt(getenv, "MAYA_MAX_SESSIONS", &cfg.MaxSessions); err != nil {
		return cfg, err
	}
	if err := positiveInt(getenv, "MAYA_MAX_ATTACHMENT_MB", &cfg.MaxAttachmentMB); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func positiveInt(getenv func(string) string, key string, dst *int) error {
	v := getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fmt.Errorf("%s %q: %w", key, v, apperrors.ErrInvalidInput)
	}
	*dst = n
	return nil
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("LLM_PROVIDER %q (want gemini or openai): %w", c.Provider, apperrors.ErrInvalidInput)
	}
	switch c.TokenStore {
	case TokenStoreMemory, TokenStoreKeyring:
	default:
		return fmt.Errorf("MAYA_TOKEN_STORE %q (want memory or keyring): %w", c.TokenStore, apperrors.ErrInvalidInput)
	}
	return nil
}
