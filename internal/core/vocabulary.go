package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/baxromumarov/wordwise/internal/ai"
	"github.com/baxromumarov/wordwise/internal/dictionary"
	"github.com/baxromumarov/wordwise/internal/observability"
)

const (
	minVocabTextLen        = 10
	defaultEnrichmentLimit = 4
)

// PhoneticSource supplies pronunciations for extracted words.
// *dictionary.Client implements it.
type PhoneticSource interface {
	Phonetics(ctx context.Context, word string) (dictionary.Phonetic, error)
}

// VocabEntry is an extracted word enriched with its pronunciation.
type VocabEntry struct {
	Word         string              `json:"word"`
	Phonetic     dictionary.Phonetic `json:"phonetic"`
	PartOfSpeech string              `json:"partOfSpeech"`
	Definition   string              `json:"definition"`
	Example      string              `json:"example"`
}

type VocabularyService struct {
	ai       ai.Client
	phonetic PhoneticSource
	limit    int
	log      *slog.Logger
}

// NewVocabularyService enriches at most limit words concurrently; limit < 1
// uses a small default.
func NewVocabularyService(client ai.Client, phonetic PhoneticSource, limit int, log *slog.Logger) *VocabularyService {
	if limit < 1 {
		limit = defaultEnrichmentLimit
	}
	if log == nil {
		log = slog.Default()
	}
	return &VocabularyService{ai: client, phonetic: phonetic, limit: limit, log: log}
}

// Extract returns study words picked from text, in model order. An answer
// the model got wrong yields an empty list, not an error.
func (s *VocabularyService) Extract(ctx context.Context, text string) ([]VocabEntry, error) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minVocabTextLen {
		return nil, invalid("Text is too short or empty")
	}

	observability.IncVocabExtraction()
	items, err := s.ai.ExtractVocabulary(ctx, text)
	if err != nil {
		if errors.Is(err, ai.ErrMalformedOutput) {
			err = fmt.Errorf("extract vocabulary: %w: %w", ErrMalformedUpstreamResponse, err)
			s.log.WarnContext(ctx, "discarding vocabulary answer", "error", err)
			return []VocabEntry{}, nil
		}
		return nil, fmt.Errorf("extract vocabulary: %w: %w", ErrUpstreamUnavailable, err)
	}

	return s.enrich(ctx, items)
}

func (s *VocabularyService) enrich(ctx context.Context, items []ai.VocabItem) ([]VocabEntry, error) {
	out := make([]VocabEntry, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for i, item := range items {
		out[i] = VocabEntry{
			Word:         item.Word,
			PartOfSpeech: item.PartOfSpeech,
			Definition:   item.Definition,
			Example:      item.Example,
		}
		g.Go(func() error {
			p, err := s.phonetic.Phonetics(gctx, item.Word)
			if err != nil {
				s.log.DebugContext(gctx, "phonetic lookup failed, using fallback", "word", item.Word, "error", err)
			}
			out[i].Phonetic = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
