// Package dictionary talks to a dictionaryapi.dev compatible service and
// reshapes its records into a stable form.
package dictionary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/baxromumarov/wordwise/internal/httpx"
	"github.com/baxromumarov/wordwise/internal/observability"
	"github.com/baxromumarov/wordwise/internal/phonetic"
)

// ErrNotFound means the dictionary has no usable entry for the word.
var ErrNotFound = errors.New("word not found")

const maxBodyBytes = 4 << 20

// Doer executes HTTP requests. *httpx.PoliteClient implements it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

type Client struct {
	doer        Doer
	urlTemplate string
	transcriber phonetic.Transcriber
	log         *slog.Logger
}

// NewClient builds a client for urlTemplate, which must contain "{word}".
// A nil transcriber disables the phonetic fallback.
func NewClient(urlTemplate string, doer Doer, tr phonetic.Transcriber, log *slog.Logger) *Client {
	if tr == nil {
		tr = phonetic.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		doer:        doer,
		urlTemplate: urlTemplate,
		transcriber: tr,
		log:         log,
	}
}

// Lookup returns every entry the dictionary holds for word. For each entry
// the phonetic is the first pronunciation with text, with its audio; when
// none has text the transcriber supplies one.
func (c *Client) Lookup(ctx context.Context, word string) ([]Entry, error) {
	raws, err := c.fetch(ctx, word, "lookup")
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(raws))
	for _, raw := range raws {
		entries = append(entries, c.reshape(raw, word))
	}
	return entries, nil
}

// Phonetics returns the pronunciation used for vocabulary items: the
// top-level phonetic of the first entry, overridden by the first
// pronunciation that has audio. The result is usable even when err is
// non-nil, since the transcriber fills in missing text.
func (c *Client) Phonetics(ctx context.Context, word string) (Phonetic, error) {
	var p Phonetic
	raws, err := c.fetch(ctx, word, "phonetics")
	if err == nil {
		first := raws[0]
		p.Text = first.Phonetic
		for _, ph := range first.Phonetics {
			if ph.Audio == "" {
				continue
			}
			p.Audio = ph.Audio
			if ph.Text != "" {
				p.Text = ph.Text
			}
			break
		}
	}
	if p.Text == "" {
		p.Text = c.transcribe(word)
	}
	return p, err
}

func (c *Client) reshape(raw rawEntry, word string) Entry {
	e := Entry{
		Word:     raw.Word,
		Meanings: make([]Meaning, 0, len(raw.Meanings)),
	}
	if e.Word == "" {
		e.Word = word
	}
	for _, ph := range raw.Phonetics {
		if ph.Text != "" {
			e.Phonetic = Phonetic{Text: ph.Text, Audio: ph.Audio}
			break
		}
	}
	if e.Phonetic.Text == "" {
		e.Phonetic.Text = c.transcribe(word)
	}
	for _, m := range raw.Meanings {
		meaning := Meaning{
			PartOfSpeech: m.PartOfSpeech,
			Definitions:  make([]Definition, 0, len(m.Definitions)),
		}
		for _, d := range m.Definitions {
			meaning.Definitions = append(meaning.Definitions, Definition(d))
		}
		e.Meanings = append(e.Meanings, meaning)
	}
	return e
}

func (c *Client) transcribe(word string) string {
	observability.ObserveUpstream(observability.UpstreamPhonetic, 0)
	return c.transcriber.Transcribe(word)
}

func (c *Client) fetch(ctx context.Context, word, op string) (_ []rawEntry, err error) {
	ctx, span := observability.StartUpstreamSpan(ctx, observability.UpstreamDictionary, op,
		attribute.String("dictionary.word", word))
	start := time.Now()
	defer func() {
		observability.ObserveUpstream(observability.UpstreamDictionary, time.Since(start))
		if err != nil && !errors.Is(err, ErrNotFound) {
			observability.IncError(observability.ClassifyUpstreamError(err), "dictionary")
		}
		observability.EndSpan(span, err)
	}()

	target := strings.ReplaceAll(c.urlTemplate, "{word}", url.PathEscape(word))
	req, err := httpx.NewRequest(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("build dictionary request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &httpx.FetchError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("dictionary returned status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read dictionary response: %w", err)
	}
	raws, err := decodeEntries(body)
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, ErrNotFound
	}
	c.log.DebugContext(ctx, "dictionary entries decoded", "word", word, "entries", len(raws))
	return raws, nil
}

// decodeEntries requires a top-level JSON array and keeps every element
// that decodes as an entry object.
func decodeEntries(body []byte) ([]rawEntry, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("dictionary decode failed: %w", err)
	}
	out := make([]rawEntry, 0, len(items))
	for _, item := range items {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			continue
		}
		var e rawEntry
		if err := json.Unmarshal(trimmed, &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
