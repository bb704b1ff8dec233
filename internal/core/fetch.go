package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/baxromumarov/wordwise/internal/content"
	"github.com/baxromumarov/wordwise/internal/textutil"
	"github.com/baxromumarov/wordwise/internal/urlutil"
)

// PageFetcher downloads and extracts one page. *content.Fetcher implements it.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*content.Page, error)
}

type FetchResult struct {
	URL               string `json:"url"`
	Title             string `json:"title"`
	Markdown          string `json:"markdown"`
	ProcessedMarkdown string `json:"processed_markdown"`
	HTML              string `json:"html"`
}

type FetchService struct {
	pages PageFetcher
	log   *slog.Logger
}

func NewFetchService(pages PageFetcher, log *slog.Logger) *FetchService {
	if log == nil {
		log = slog.Default()
	}
	return &FetchService{pages: pages, log: log}
}

// Fetch retrieves rawURL and adds a sanitized copy of its markdown.
func (s *FetchService) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if err := urlutil.ValidateFetchURL(rawURL); err != nil {
		return nil, invalid("Invalid URL: %v", err)
	}

	page, err := s.pages.Fetch(ctx, rawURL)
	if err != nil {
		s.log.WarnContext(ctx, "page fetch failed", "url", rawURL, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	return &FetchResult{
		URL:               rawURL,
		Title:             page.Title,
		Markdown:          page.Markdown,
		ProcessedMarkdown: textutil.SanitizeMarkdown(page.Markdown),
		HTML:              page.HTML,
	}, nil
}
