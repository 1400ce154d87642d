package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/duynguyendang/maya/pkg/common/errors"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "gemini-2.0-flash-exp", cfg.GeminiModel)
	assert.Equal(t, "Luisnefelibato", cfg.GitHubUsername)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"LLM_PROVIDER":      "OpenAI",
		"OPENAI_API_KEY":    "sk",
		"GITHUB_USERNAME":   "octocat",
		"MAYA_TOKEN_STORE":  "memory",
		"PORT":              "9090",
		"MAYA_SESSION_TTL":  "5m",
		"MAYA_MAX_SESSIONS": "10",
	}))
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "sk", cfg.OpenAIAPIKey)
	assert.Equal(t, "octocat", cfg.GitHubUsername)
	assert.Equal(t, TokenStoreMemory, cfg.TokenStore)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.MaxSessions)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	bad := []map[string]string{
		{"LLM_PROVIDER": "claude"},
		{"MAYA_TOKEN_STORE": "disk"},
		{"MAYA_SESSION_TTL": "soon"},
		{"MAYA_MAX_SESSIONS": "-1"},
		{"MAYA_MAX_ATTACHMENT_MB": "zero"},
	}
	for _, m := range bad {
		_, err := FromEnv(envMap(m))
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, m)
	}
}
