package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/baxromumarov/wordwise/internal/dictionary"
	"github.com/baxromumarov/wordwise/internal/observability"
	"github.com/baxromumarov/wordwise/internal/textutil"
)

// Dictionary looks words up. *dictionary.Client implements it.
type Dictionary interface {
	Lookup(ctx context.Context, word string) ([]dictionary.Entry, error)
}

type LookupService struct {
	dict Dictionary
	log  *slog.Logger
}

func NewLookupService(dict Dictionary, log *slog.Logger) *LookupService {
	if log == nil {
		log = slog.Default()
	}
	return &LookupService{dict: dict, log: log}
}

// Lookup normalizes raw and looks the result up. It returns the normalized
// word alongside the entries so callers can report what was searched.
func (s *LookupService) Lookup(ctx context.Context, raw string) (string, []dictionary.Entry, error) {
	word, ok := textutil.NormalizeWord(raw)
	if !ok {
		return "", nil, invalid("Invalid word provided")
	}

	observability.IncLookup()
	entries, err := s.dict.Lookup(ctx, word)
	switch {
	case err == nil:
		return word, entries, nil
	case errors.Is(err, dictionary.ErrNotFound):
		return word, nil, fmt.Errorf("lookup %q: %w", word, ErrNotFound)
	default:
		s.log.WarnContext(ctx, "dictionary lookup failed", "word", word, "error", err)
		return word, nil, fmt.Errorf("lookup %q: %w: %w", word, ErrUpstreamUnavailable, err)
	}
}
