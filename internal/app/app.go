// Package app wires configuration into collaborators and services.
package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/baxromumarov/wordwise/internal/ai"
	"github.com/baxromumarov/wordwise/internal/api"
	"github.com/baxromumarov/wordwise/internal/config"
	"github.com/baxromumarov/wordwise/internal/content"
	"github.com/baxromumarov/wordwise/internal/core"
	"github.com/baxromumarov/wordwise/internal/dictionary"
	"github.com/baxromumarov/wordwise/internal/httpx"
	"github.com/baxromumarov/wordwise/internal/observability"
	"github.com/baxromumarov/wordwise/internal/phonetic"
)

// Dictionary requests are spaced per host; the public API is shared.
const (
	dictionaryEvery = 100 * time.Millisecond
	dictionaryBurst = 5
)

type Services struct {
	Lookup     *core.LookupService
	Vocabulary *core.VocabularyService
	Quiz       *core.QuizService
	Fetch      *core.FetchService
}

type App struct {
	Cfg        *config.Config
	Log        *slog.Logger
	Dictionary *dictionary.Client
	AI         ai.Client
	Pages      *content.Fetcher
	Services   Services
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	transcriber, err := phonetic.Load(cfg.Phonetic.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("init phonetic lexicon: %w", err)
	}

	polite := httpx.NewPoliteClient(httpx.PoliteOptions{
		UserAgent:     cfg.Dictionary.UserAgent,
		Timeout:       cfg.Dictionary.Timeout(),
		MaxAttempts:   cfg.Dictionary.MaxRetries,
		RespectRobots: cfg.Dictionary.RespectRobots,
		Every:         dictionaryEvery,
		Burst:         dictionaryBurst,
	})
	dict := dictionary.NewClient(cfg.Dictionary.BaseURL, polite, transcriber, log)

	fetcher := httpx.NewCollyFetcher(httpx.FetcherOptions{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.Fetch.Timeout(),
		MinDelay:  cfg.Fetch.MinDelay(),
	})
	pages := content.NewFetcher(fetcher)

	aiClient := ai.NewClient(cfg.AI, log)

	return &App{
		Cfg:        cfg,
		Log:        log,
		Dictionary: dict,
		AI:         aiClient,
		Pages:      pages,
		Services: Services{
			Lookup:     core.NewLookupService(dict, log),
			Vocabulary: core.NewVocabularyService(aiClient, dict, 0, log),
			Quiz:       core.NewQuizService(aiClient, log),
			Fetch:      core.NewFetchService(pages, log),
		},
	}, nil
}

// Tracing maps the tracing section of cfg onto exporter settings. version is
// reported as service.version.
func Tracing(cfg *config.Config, version string) observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     version,
		Insecure:    cfg.Tracing.Insecure,
	}
}

// Handler returns the HTTP API for the app's services.
func (a *App) Handler() http.Handler {
	srv := api.NewServer(api.Options{
		AllowedOrigins: a.Cfg.Security.AllowedOrigins,
		Logger:         a.Log,
	}, api.Services{
		Lookup:     a.Services.Lookup,
		Vocabulary: a.Services.Vocabulary,
		Quiz:       a.Services.Quiz,
		Fetch:      a.Services.Fetch,
	})
	return srv.Router()
}
