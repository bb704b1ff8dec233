package content

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/wordwise/internal/httpx"
)

const samplePage = `<!doctype html>
<html>
<head>
  <title>  Learning   Words </title>
  <style>body { color: red; }</style>
  <script>var tracking = "secret-script";</script>
</head>
<body>
  <h1>Heading</h1>
  <p>Some <strong>bold</strong> text with <a href="/doc">docs</a>.</p>
  <noscript>enable javascript</noscript>
  <div hidden>invisible</div>
</body>
</html>`

func TestExtract_TitleAndMarkdown(t *testing.T) {
	t.Parallel()

	page, err := Extract("https://example.com/words", []byte(samplePage), "text/html; charset=utf-8")
	require.NoError(t, err)

	assert.Equal(t, "Learning Words", page.Title)
	assert.Equal(t, samplePage, page.HTML)
	assert.Contains(t, page.Markdown, "Heading")
	assert.Contains(t, page.Markdown, "**bold**")
	assert.Contains(t, page.Markdown, "https://example.com/doc")
	assert.NotContains(t, page.Markdown, "secret-script")
	assert.NotContains(t, page.Markdown, "color: red")
	assert.NotContains(t, page.Markdown, "enable javascript")
	assert.NotContains(t, page.Markdown, "invisible")
}

func TestExtract_TitleFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "open graph",
			html: `<html><head><meta property="og:title" content="OG Title"></head><body><h1>H</h1></body></html>`,
			want: "OG Title",
		},
		{
			name: "json-ld",
			html: `<html><head><script type="application/ld+json">{"@graph":[{"@type":"Article","headline":"LD Title"}]}</script></head><body></body></html>`,
			want: "LD Title",
		},
		{
			name: "first h1",
			html: `<html><body><h1> First </h1><h1>Second</h1></body></html>`,
			want: "First",
		},
		{
			name: "none",
			html: `<html><body><p>text</p></body></html>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			page, err := Extract("https://example.com", []byte(tt.html), "text/html")
			require.NoError(t, err)
			assert.Equal(t, tt.want, page.Title)
		})
	}
}

func TestExtract_DecodesDeclaredCharset(t *testing.T) {
	t.Parallel()

	body := []byte("<html><head><title>Caf\xe9</title></head><body>x</body></html>")
	page, err := Extract("https://example.com", body, "text/html; charset=ISO-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "Café", page.Title)
}

type stubSource struct {
	page *httpx.Page
	err  error
}

func (s stubSource) FetchPage(context.Context, string) (*httpx.Page, error) {
	return s.page, s.err
}

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	f := NewFetcher(stubSource{page: &httpx.Page{
		FinalURL:    "https://example.com/after-redirect",
		Status:      200,
		ContentType: "text/html",
		Body:        []byte(samplePage),
	}})

	page, err := f.Fetch(context.Background(), "https://example.com/before")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/before", page.URL)
	assert.Equal(t, "Learning Words", page.Title)
}

func TestFetcher_FetchPropagatesErrors(t *testing.T) {
	t.Parallel()

	want := &httpx.FetchError{Status: 502, Err: errors.New("bad gateway")}
	f := NewFetcher(stubSource{err: want})

	_, err := f.Fetch(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, want)
}

func TestJSONLDTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Name", jsonLDTitle(`[{"@type":"WebPage","name":" Name "}]`))
	assert.Equal(t, "", jsonLDTitle(`not json`))
	assert.Equal(t, "", jsonLDTitle(``))
}
