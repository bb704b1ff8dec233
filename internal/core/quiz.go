package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/baxromumarov/wordwise/internal/ai"
	"github.com/baxromumarov/wordwise/internal/observability"
)

// QuizWordInput is one requested quiz word. Nil fields were absent from
// the request.
type QuizWordInput struct {
	Word       *string `json:"word"`
	Definition *string `json:"definition"`
	Example    *string `json:"example"`
}

type QuizService struct {
	ai  ai.Client
	log *slog.Logger
}

func NewQuizService(client ai.Client, log *slog.Logger) *QuizService {
	if log == nil {
		log = slog.Default()
	}
	return &QuizService{ai: client, log: log}
}

// Generate builds one question per word. An answer that fails validation
// yields an empty list, not an error.
func (s *QuizService) Generate(ctx context.Context, inputs []QuizWordInput) ([]ai.QuizQuestion, error) {
	if len(inputs) == 0 {
		return nil, invalid("Word list is empty")
	}
	words := make([]ai.QuizWord, 0, len(inputs))
	for _, in := range inputs {
		if in.Word == nil || in.Definition == nil || in.Example == nil {
			return nil, invalid("Each word entry must contain word, definition, and example")
		}
		words = append(words, ai.QuizWord{Word: *in.Word, Definition: *in.Definition, Example: *in.Example})
	}

	observability.IncQuizGenerated()
	questions, err := s.ai.GenerateQuiz(ctx, words)
	if err != nil {
		if errors.Is(err, ai.ErrMalformedOutput) {
			err = fmt.Errorf("generate quiz: %w: %w", ErrMalformedUpstreamResponse, err)
			s.log.WarnContext(ctx, "discarding quiz answer", "error", err, "words", len(words))
			return []ai.QuizQuestion{}, nil
		}
		return nil, fmt.Errorf("generate quiz: %w: %w", ErrUpstreamUnavailable, err)
	}
	if questions == nil {
		questions = []ai.QuizQuestion{}
	}
	return questions, nil
}
