package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/duynguyendang/maya/internal/config"
	"github.com/duynguyendang/maya/internal/logging"
	"github.com/duynguyendang/maya/internal/manager"
	"github.com/duynguyendang/maya/internal/metrics"
	"github.com/duynguyendang/maya/pkg/github"
	"github.com/duynguyendang/maya/pkg/service/ai"
	"github.com/duynguyendang/maya/pkg/speech"
	"github.com/duynguyendang/maya/pkg/syntax"
)

// app holds the collaborators shared by every subcommand.
type app struct {
	cfg     config.Config
	logger  zerolog.Logger
	prompt  *ai.Prompt
	chat    *ai.ChatService
	github  *github.Client
	speaker *speech.ElevenLabs
	checker *syntax.Checker
	closers []io.Closer
}

func loadConfig() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	return cfg, logging.Setup(cfg.LogLevel, cfg.LogFormat), nil
}

func loadPrompt(cfg config.Config) (*ai.Prompt, error) {
	if cfg.PromptPath == "" {
		return ai.DefaultPrompt(), nil
	}
	return ai.LoadPrompt(cfg.PromptPath)
}

// newApp wires the chat model and its collaborators. withModel is false for
// commands that only need extraction.
func newApp(ctx context.Context, withModel bool) (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, checker: syntax.NewChecker()}

	if a.prompt, err = loadPrompt(cfg); err != nil {
		return nil, fmt.Errorf("failed to load prompt: %w", err)
	}

	a.github = github.NewClient(newCredentials(cfg, logger),
		github.WithUsername(cfg.GitHubUsername),
		github.WithLogger(logger),
	)

	if cfg.ElevenLabsAPIKey != "" {
		el := speech.DefaultElevenLabsConfig()
		el.APIKey = cfg.ElevenLabsAPIKey
		if cfg.ElevenLabsVoiceID != "" {
			el.VoiceID = cfg.ElevenLabsVoiceID
		}
		a.speaker = speech.NewElevenLabs(logger, el)
	}

	if !withModel {
		return a, nil
	}

	system, err := a.prompt.Execute(ai.PromptData{GitHubUser: cfg.GitHubUsername})
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}

	var model ai.ChatModel
	switch cfg.Provider {
	case config.ProviderOpenAI:
		model, err = ai.NewOpenAIModel(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, a.prompt, system, logger)
	default:
		var gm *ai.GeminiModel
		gm, err = ai.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, a.prompt, system, logger)
		if err == nil {
			a.closers = append(a.closers, gm)
			model = gm
		}
	}
	if err != nil {
		return nil, err
	}

	a.chat = ai.NewChatService(model, logger).WithObserver(metrics.ObserveChat)
	logger.Info().Str("provider", model.Name()).Msg("chat model ready")
	return a, nil
}

// newCredentials picks the token store. A token from the environment is kept
// in memory so it never lands in the keyring.
func newCredentials(cfg config.Config, logger zerolog.Logger) *github.Credentials {
	if cfg.GitHubToken != "" {
		creds := github.NewCredentials(github.NewMemoryStore())
		if err := creds.SetToken(cfg.GitHubToken); err != nil {
			logger.Warn().Err(err).Msg("ignoring GITHUB_TOKEN")
		}
		return creds
	}
	if cfg.TokenStore == config.TokenStoreKeyring {
		return github.NewCredentials(github.NewFallbackStore(github.NewKeyringStore(), logger))
	}
	return github.NewCredentials(github.NewMemoryStore())
}

func (a *app) greeting() string {
	return a.prompt.Config.Greeting
}

func (a *app) sessions() *manager.SessionManager {
	return manager.NewSessionManager(a.greeting(), a.cfg.MaxSessions, a.cfg.SessionTTL)
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("close failed")
		}
	}
	a.checker.Close()
}
