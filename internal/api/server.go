package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/baxromumarov/wordwise/internal/ai"
	"github.com/baxromumarov/wordwise/internal/core"
	"github.com/baxromumarov/wordwise/internal/dictionary"
)

type Lookuper interface {
	Lookup(ctx context.Context, raw string) (string, []dictionary.Entry, error)
}

type VocabularyExtractor interface {
	Extract(ctx context.Context, text string) ([]core.VocabEntry, error)
}

type QuizGenerator interface {
	Generate(ctx context.Context, inputs []core.QuizWordInput) ([]ai.QuizQuestion, error)
}

type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*core.FetchResult, error)
}

// Services are the domain operations exposed over HTTP.
type Services struct {
	Lookup     Lookuper
	Vocabulary VocabularyExtractor
	Quiz       QuizGenerator
	Fetch      PageFetcher
}

type Options struct {
	AllowedOrigins []string
	Logger         *slog.Logger
}

type Server struct {
	router *chi.Mux
	svc    Services
	log    *slog.Logger
}

func NewServer(opts Options, svc Services) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	s := &Server{
		router: chi.NewRouter(),
		svc:    svc,
		log:    opts.Logger,
	}

	s.setupRoutes(opts)
	return s
}

func (s *Server) setupRoutes(opts Options) {
	s.router.Use(middleware.RealIP)
	s.router.Use(requestID)
	s.router.Use(tracing)
	s.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(s.log.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
	}))

	s.router.Get("/", s.handleHealth)
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/stats", s.handleStats)
	s.router.Get("/lookup/{word}", s.handleLookup)
	s.router.Post("/vocab/extract_text", s.handleExtractVocabulary)
	s.router.Post("/practice/quiz", s.handleQuiz)
	s.router.Post("/web/fetch", s.handleFetch)
}

func (s *Server) Router() http.Handler {
	return s.router
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		response = []byte(`{"error":"failed to encode response","detail":"failed to encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// respondError writes {"error": msg, "detail": msg}.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message, "detail": message})
}
