package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/duynguyendang/maya/pkg/common/errors"
)

const (
	ElevenLabsAPIEndpoint  = "https://api.elevenlabs.io/v1"
	ElevenLabsDefaultVoice = "21m00Tcm4TlvDq8ikWAM"
	ElevenLabsDefaultModel = "eleven_multilingual_v2"
)

// ErrEmptySpeech is returned when nothing speakable is left after cleaning.
var ErrEmptySpeech = fmt.Errorf("no text to synthesize: %w", apperrors.ErrInvalidInput)

// ErrNoAPIKey is returned by every call when the client has no key.
var ErrNoAPIKey = fmt.Errorf("ElevenLabs API key not set: %w", apperrors.ErrUnauthorized)

type ElevenLabsConfig struct {
	APIKey          string  `json:"api_key"`
	VoiceID         string  `json:"voice_id"`
	ModelID         string  `json:"model_id"`
	Stability       float64 `json:"stability"`
	Similarity      float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	SpeakerBoost    bool    `json:"use_speaker_boost"`
	Endpoint        string  `json:"endpoint"`
	RequestTimeoutS int     `json:"request_timeout_s"`
}

func DefaultElevenLabsConfig() *ElevenLabsConfig {
	return &ElevenLabsConfig{
		VoiceID:         ElevenLabsDefaultVoice,
		ModelID:         ElevenLabsDefaultModel,
		Stability:       0.5,
		Similarity:      0.75,
		Style:           0.5,
		SpeakerBoost:    true,
		Endpoint:        ElevenLabsAPIEndpoint,
		RequestTimeoutS: 30,
	}
}

// Voice is the subset of the ElevenLabs voice record the app shows.
type Voice struct {
	VoiceID     string            `json:"voice_id"`
	Name        string            `json:"name"`
	Category    string            `json:"category,omitempty"`
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	PreviewURL  string            `json:"preview_url,omitempty"`
}

type ElevenLabs struct {
	config *ElevenLabsConfig
	logger zerolog.Logger
	client *http.Client
}

func NewElevenLabs(logger zerolog.Logger, config *ElevenLabsConfig) *ElevenLabs {
	if config == nil {
		config = DefaultElevenLabsConfig()
	}
	if config.Endpoint == "" {
		config.Endpoint = ElevenLabsAPIEndpoint
	}
	if config.VoiceID == "" {
		config.VoiceID = ElevenLabsDefaultVoice
	}
	if config.ModelID == "" {
		config.ModelID = ElevenLabsDefaultModel
	}
	timeout := time.Duration(config.RequestTimeoutS) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &ElevenLabs{
		config: config,
		logger: logger.With().Str("component", "elevenlabs").Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

func (e *ElevenLabs) IsAvailable() bool {
	return e.config.APIKey != ""
}

// Synthesize cleans text and returns MP3 audio for it.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if !e.IsAvailable() {
		return nil, ErrNoAPIKey
	}
	cleaned := CleanText(text)
	if cleaned == "" {
		return nil, ErrEmptySpeech
	}

	start := time.Now()
	payload := map[string]any{
		"text":     cleaned,
		"model_id": e.config.ModelID,
		"voice_settings": map[string]any{
			"stability":         e.config.Stability,
			"similarity_boost":  e.config.Similarity,
			"style":             e.config.Style,
			"use_speaker_boost": e.config.SpeakerBoost,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", e.config.Endpoint, e.config.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	audio, err := e.do(req)
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("voice", e.config.VoiceID).
		Int("chars", len(cleaned)).
		Int("audioBytes", len(audio)).
		Dur("elapsed", time.Since(start)).
		Msg("speech synthesized")
	return audio, nil
}

func (e *ElevenLabs) ListVoices(ctx context.Context) ([]Voice, error) {
	if !e.IsAvailable() {
		return nil, ErrNoAPIKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.config.Endpoint+"/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	body, err := e.do(req)
	if err != nil {
		return nil, err
	}

	var out struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode voices: %w", err)
	}
	return out.Voices, nil
}

// CurrentVoice describes the configured voice.
func (e *ElevenLabs) CurrentVoice(ctx context.Context) (*Voice, error) {
	if !e.IsAvailable() {
		return nil, ErrNoAPIKey
	}
	url := fmt.Sprintf("%s/voices/%s", e.config.Endpoint, e.config.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	body, err := e.do(req)
	if err != nil {
		return nil, err
	}

	var v Voice
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decode voice: %w", err)
	}
	return &v, nil
}

func (e *ElevenLabs) do(req *http.Request) ([]byte, error) {
	req.Header.Set("xi-api-key", e.config.APIKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w: %v", apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		e.logger.Warn().Int("status", resp.StatusCode).Str("path", req.URL.Path).Msg("elevenlabs request failed")
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return nil, apperrors.FromStatus(resp.StatusCode, "invalid ElevenLabs API key")
		case http.StatusTooManyRequests:
			return nil, apperrors.FromStatus(resp.StatusCode, "ElevenLabs rate limit exceeded")
		default:
			return nil, apperrors.FromStatus(resp.StatusCode, "ElevenLabs API error %d: %s", resp.StatusCode, string(body))
		}
	}
	return body, nil
}
