package ai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/baxromumarov/wordwise/internal/config"
)

// ErrMalformedOutput means the model answered but the answer did not match
// the requested JSON shape.
var ErrMalformedOutput = errors.New("malformed model output")

type Client interface {
	ExtractVocabulary(ctx context.Context, text string) ([]VocabItem, error)
	GenerateQuiz(ctx context.Context, words []QuizWord) ([]QuizQuestion, error)
}

// NewClient picks a client from cfg.Provider. An empty provider selects
// Gemini when API keys are configured and the mock otherwise.
func NewClient(cfg config.AIConfig, log *slog.Logger) Client {
	if log == nil {
		log = slog.Default()
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		if len(cfg.APIKeys) > 0 {
			provider = "gemini"
		} else {
			provider = "mock"
		}
	}

	switch provider {
	case "gemini":
		if len(cfg.APIKeys) == 0 {
			log.Warn("ai provider is gemini but GEMINI_MODEL_API_KEY is not set, falling back to mock")
			return NewMockClient()
		}
		log.Info("using gemini client", "model", cfg.ModelName, "key_count", len(cfg.APIKeys))
		return NewGeminiClient(GeminiOptions{
			BaseURL:         cfg.BaseURL,
			Model:           cfg.ModelName,
			APIKeys:         cfg.APIKeys,
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxOutputTokens,
			MaxPromptWidth:  cfg.MaxPromptWidth,
			Timeout:         cfg.Timeout(),
		}, log)
	default:
		log.Info("using mock ai client (set GEMINI_MODEL_API_KEY for real output)")
		return NewMockClient()
	}
}

// VocabItem is one word the model picked from a text.
type VocabItem struct {
	Word         string `json:"word"`
	PartOfSpeech string `json:"partOfSpeech"`
	Definition   string `json:"definition"`
	Example      string `json:"example"`
}

// QuizWord is the input for one quiz question.
type QuizWord struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
	Example    string `json:"example"`
}

type QuizQuestion struct {
	Word             string   `json:"word"`
	Definition       string   `json:"definition"`
	Question         string   `json:"question"`
	Options          []string `json:"options"`
	CorrectOptionIdx int      `json:"correct_option_idx"`
}
