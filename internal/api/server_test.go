package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/wordwise/internal/ai"
	"github.com/baxromumarov/wordwise/internal/content"
	"github.com/baxromumarov/wordwise/internal/core"
	"github.com/baxromumarov/wordwise/internal/dictionary"
)

type stubDictionary struct {
	words   []string
	entries []dictionary.Entry
	err     error
}

func (d *stubDictionary) Lookup(_ context.Context, word string) ([]dictionary.Entry, error) {
	d.words = append(d.words, word)
	return d.entries, d.err
}

type stubPhonetics struct{}

func (stubPhonetics) Phonetics(context.Context, string) (dictionary.Phonetic, error) {
	return dictionary.Phonetic{Text: "/x/"}, nil
}

type stubAI struct {
	vocab []ai.VocabItem
	quiz  []ai.QuizQuestion
	err   error
	text  string
}

func (a *stubAI) ExtractVocabulary(_ context.Context, text string) ([]ai.VocabItem, error) {
	a.text = text
	return a.vocab, a.err
}

func (a *stubAI) GenerateQuiz(context.Context, []ai.QuizWord) ([]ai.QuizQuestion, error) {
	return a.quiz, a.err
}

type stubPages struct {
	page *content.Page
	err  error
}

func (p stubPages) Fetch(context.Context, string) (*content.Page, error) {
	return p.page, p.err
}

type fixture struct {
	dict  *stubDictionary
	ai    *stubAI
	pages stubPages
}

func (f *fixture) handler() http.Handler {
	if f.dict == nil {
		f.dict = &stubDictionary{}
	}
	if f.ai == nil {
		f.ai = &stubAI{}
	}
	srv := NewServer(Options{}, Services{
		Lookup:     core.NewLookupService(f.dict, nil),
		Vocabulary: core.NewVocabularyService(f.ai, stubPhonetics{}, 2, nil),
		Quiz:       core.NewQuizService(f.ai, nil),
		Fetch:      core.NewFetchService(f.pages, nil),
	})
	return srv.Router()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, body["error"], body["detail"])
	return body["error"]
}

func TestHealth(t *testing.T) {
	t.Parallel()

	h := (&fixture{}).handler()
	for _, path := range []string{"/", "/health"} {
		rec := do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	rec := do(t, (&fixture{}).handler(), http.MethodGet, "/stats", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"lookups"`)
}

func TestRequestIDIsEchoed(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	(&fixture{}).handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}

func TestLookup(t *testing.T) {
	t.Parallel()

	f := &fixture{dict: &stubDictionary{entries: []dictionary.Entry{{
		Word:     "hello",
		Phonetic: dictionary.Phonetic{Text: "/həˈloʊ/"},
		Meanings: []dictionary.Meaning{{PartOfSpeech: "noun", Definitions: []dictionary.Definition{{Definition: "a greeting"}}}},
	}}}}
	h := f.handler()

	rec := do(t, h, http.MethodGet, "/lookup/Hello!!", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"hello"}, f.dict.words)
	assert.JSONEq(t, `[{"word":"hello","phonetic":{"text":"/həˈloʊ/","audio":""},
		"meanings":[{"partOfSpeech":"noun","definitions":[{"definition":"a greeting","example":""}]}]}]`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/lookup/Hello%21%21", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"hello", "hello"}, f.dict.words)

	// Escapes are decoded once; a literal "%25" stays a percent sign.
	rec = do(t, h, http.MethodGet, "/lookup/50%2525", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodGet, "/lookup/%2521%2521", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"hello", "hello", "5025", "2121"}, f.dict.words)
}

func TestLookup_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		err     error
		status  int
		message string
	}{
		{"invalid word", "/lookup/%21%21%21", nil, http.StatusBadRequest, "Invalid word provided"},
		{"not found", "/lookup/Zzxq", dictionary.ErrNotFound, http.StatusNotFound, "Word 'zzxq' not found in dictionary"},
		{"upstream failure", "/lookup/hello", errors.New("connection refused"), http.StatusNotFound, "Word 'hello' not found in dictionary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := &fixture{dict: &stubDictionary{err: tt.err}}
			rec := do(t, f.handler(), http.MethodGet, tt.path, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decodeError(t, rec))
		})
	}
}

func TestExtractVocabulary(t *testing.T) {
	t.Parallel()

	f := &fixture{ai: &stubAI{vocab: []ai.VocabItem{{Word: "lucid", PartOfSpeech: "adjective", Definition: "clear", Example: "A lucid essay."}}}}
	h := f.handler()

	for _, body := range []string{`"A lucid essay about words."`, `{"text":"A lucid essay about words."}`} {
		rec := do(t, h, http.MethodPost, "/vocab/extract_text", body)
		require.Equal(t, http.StatusOK, rec.Code, body)
		assert.Equal(t, "A lucid essay about words.", f.ai.text)
		assert.Equal(t,
			`[{"word":"lucid","phonetic":{"text":"/x/","audio":""},"partOfSpeech":"adjective","definition":"clear","example":"A lucid essay."}]`,
			rec.Body.String())
	}
}

func TestExtractVocabulary_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		aiErr   error
		status  int
		message string
	}{
		{"short string", `"too short"`, nil, http.StatusBadRequest, "Text is too short or empty"},
		{"blank object", `{"text":"     "}`, nil, http.StatusBadRequest, "Text is too short or empty"},
		{"missing text", `{}`, nil, http.StatusBadRequest, "Text is too short or empty"},
		{"number", `42`, nil, http.StatusBadRequest, "Invalid request body"},
		{"empty body", ``, nil, http.StatusBadRequest, "Invalid request body"},
		{"model down", `"plenty of text here"`, errors.New("connection reset"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := &fixture{ai: &stubAI{err: tt.aiErr}}
			rec := do(t, f.handler(), http.MethodPost, "/vocab/extract_text", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			msg := decodeError(t, rec)
			if tt.message != "" {
				assert.Equal(t, tt.message, msg)
			}
		})
	}
}

func TestExtractVocabulary_MalformedAnswerIsEmptyList(t *testing.T) {
	t.Parallel()

	f := &fixture{ai: &stubAI{err: fmt.Errorf("bad: %w", ai.ErrMalformedOutput)}}
	rec := do(t, f.handler(), http.MethodPost, "/vocab/extract_text", `"plenty of text here"`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestQuiz(t *testing.T) {
	t.Parallel()

	question := ai.QuizQuestion{Word: "lucid", Definition: "clear", Question: "Which word means clear?", Options: []string{"lucid", "murky", "dim", "vague"}}
	f := &fixture{ai: &stubAI{quiz: []ai.QuizQuestion{question}}}

	rec := do(t, f.handler(), http.MethodPost, "/practice/quiz", `[{"word":"lucid","definition":"clear","example":"A lucid essay."}]`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"word":"lucid","definition":"clear","question":"Which word means clear?",
		"options":["lucid","murky","dim","vague"],"correct_option_idx":0}]`, rec.Body.String())
}

func TestQuiz_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"empty list", `[]`, http.StatusBadRequest, "Word list is empty"},
		{"null", `null`, http.StatusBadRequest, "Word list is empty"},
		{"missing example", `[{"word":"a","definition":"b"}]`, http.StatusBadRequest, "Each word entry must contain word, definition, and example"},
		{"null entry", `[null]`, http.StatusBadRequest, "Each word entry must contain word, definition, and example"},
		{"not a list", `{"word":"a"}`, http.StatusBadRequest, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := do(t, (&fixture{}).handler(), http.MethodPost, "/practice/quiz", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decodeError(t, rec))
		})
	}
}

func TestFetch(t *testing.T) {
	t.Parallel()

	f := &fixture{pages: stubPages{page: &content.Page{
		Title:    "Docs",
		HTML:     "<h1>Docs</h1>",
		Markdown: "# Docs\n\nRead [more](https://go.dev) at www.go.dev today!!",
	}}}

	rec := do(t, f.handler(), http.MethodPost, "/web/fetch", `{"url":"https://go.dev"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got core.FetchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "https://go.dev", got.URL)
	assert.Equal(t, "Docs", got.Title)
	assert.Equal(t, "<h1>Docs</h1>", got.HTML)
	assert.Equal(t, "Docs Read at today", got.ProcessedMarkdown)
}

func TestFetch_Errors(t *testing.T) {
	t.Parallel()

	rec := do(t, (&fixture{}).handler(), http.MethodPost, "/web/fetch", `{"url":"go.dev"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "http://")

	f := &fixture{pages: stubPages{err: errors.New("dial tcp: no such host")}}
	rec = do(t, f.handler(), http.MethodPost, "/web/fetch", `{"url":"https://nope.invalid"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	msg := decodeError(t, rec)
	assert.True(t, strings.HasPrefix(msg, "Failed to fetch content from URL: "), msg)
	assert.Contains(t, msg, "no such host")

	rec = do(t, (&fixture{}).handler(), http.MethodPost, "/web/fetch", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodOptions, "/web/fetch", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	(&fixture{}).handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
