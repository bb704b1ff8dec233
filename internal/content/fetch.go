// Package content turns a fetched web page into a title, raw HTML and markdown.
package content

import (
	"context"
	"fmt"
	"time"

	"github.com/baxromumarov/wordwise/internal/httpx"
	"github.com/baxromumarov/wordwise/internal/observability"
	"github.com/baxromumarov/wordwise/internal/urlutil"
	"go.opentelemetry.io/otel/attribute"
)

type Page struct {
	URL      string
	Title    string
	HTML     string
	Markdown string
}

// PageSource downloads one page. *httpx.CollyFetcher implements it.
type PageSource interface {
	FetchPage(ctx context.Context, rawURL string) (*httpx.Page, error)
}

type Fetcher struct {
	source PageSource
}

func NewFetcher(source PageSource) *Fetcher {
	return &Fetcher{source: source}
}

// Fetch downloads rawURL and extracts its content. The returned Page keeps
// rawURL as given, even when the request was redirected.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	attrs := []attribute.KeyValue{attribute.String("url.full", rawURL)}
	if canonical, host, err := urlutil.Normalize(rawURL); err == nil {
		attrs = append(attrs, attribute.String("url.canonical", canonical), attribute.String("server.address", host))
	}
	ctx, span := observability.StartUpstreamSpan(ctx, observability.UpstreamWeb, "fetch", attrs...)

	start := time.Now()
	raw, err := f.source.FetchPage(ctx, rawURL)
	observability.ObserveUpstream(observability.UpstreamWeb, time.Since(start))
	if err != nil {
		observability.IncError(observability.ClassifyFetchError(err), "content")
		observability.EndSpan(span, err)
		return nil, err
	}

	page, err := Extract(raw.FinalURL, raw.Body, raw.ContentType)
	if err != nil {
		observability.IncError(observability.ErrorParsing, "content")
		observability.EndSpan(span, err)
		return nil, fmt.Errorf("extract %s: %w", rawURL, err)
	}
	page.URL = rawURL

	observability.IncPageFetched(urlutil.Host(raw.FinalURL))
	span.SetAttributes(attribute.Int("http.response.status_code", raw.Status))
	observability.EndSpan(span, nil)
	return page, nil
}
