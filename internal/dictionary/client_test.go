package dictionary

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/wordwise/internal/httpx"
)

const helloPayload = `[
  {
    "word": "hello",
    "phonetic": "həˈləʊ",
    "phonetics": [
      {"audio": "https://audio.example/hello-au.mp3"},
      {"text": "/həˈloʊ/", "audio": "https://audio.example/hello-us.mp3"}
    ],
    "meanings": [
      {
        "partOfSpeech": "exclamation",
        "definitions": [
          {"definition": "used as a greeting", "example": "hello there, Katie!", "synonyms": []},
          {"definition": "used to begin a phone call"}
        ]
      }
    ]
  },
  {
    "phonetics": [],
    "meanings": [{"partOfSpeech": "noun", "definitions": [{"definition": "an utterance of hello"}]}]
  },
  "stray string",
  {"word": 42}
]`

type fixedTranscriber string

func (f fixedTranscriber) Transcribe(string) string { return string(f) }

func newTestClient(t *testing.T, handler http.HandlerFunc, tr fixedTranscriber) (*Client, *[]string) {
	t.Helper()
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	doer := httpx.NewPoliteClient(httpx.PoliteOptions{
		Timeout:     2 * time.Second,
		MaxAttempts: 1,
		Every:       time.Millisecond,
		Burst:       10,
	})
	return NewClient(srv.URL+"/entries/en/{word}", doer, tr, nil), &paths
}

func TestLookup_ReshapesEntries(t *testing.T) {
	c, paths := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, helloPayload)
	}, "/fallback/")

	entries, err := c.Lookup(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, []string{"/entries/en/hello"}, *paths)

	first := entries[0]
	assert.Equal(t, "hello", first.Word)
	assert.Equal(t, Phonetic{Text: "/həˈloʊ/", Audio: "https://audio.example/hello-us.mp3"}, first.Phonetic)
	require.Len(t, first.Meanings, 1)
	assert.Equal(t, "exclamation", first.Meanings[0].PartOfSpeech)
	assert.Equal(t, []Definition{
		{Definition: "used as a greeting", Example: "hello there, Katie!"},
		{Definition: "used to begin a phone call"},
	}, first.Meanings[0].Definitions)

	second := entries[1]
	assert.Equal(t, "hello", second.Word, "word defaults to the looked-up word")
	assert.Equal(t, Phonetic{Text: "/fallback/"}, second.Phonetic)
}

func TestLookup_EscapesWord(t *testing.T) {
	c, paths := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"word":"ice cream"}]`)
	}, "")

	entries, err := c.Lookup(context.Background(), "ice cream")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"/entries/en/ice%20cream"}, *paths)
	assert.Empty(t, entries[0].Meanings)
}

func TestLookup_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		notFound bool
	}{
		{"not found", http.StatusNotFound, `{"title":"No Definitions Found"}`, true},
		{"empty array", http.StatusOK, `[]`, true},
		{"only junk entries", http.StatusOK, `[1, "x", null]`, true},
		{"object instead of array", http.StatusOK, `{"word":"hello"}`, false},
		{"broken json", http.StatusOK, `[{`, false},
		{"server error", http.StatusInternalServerError, ``, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}, "")

			_, err := c.Lookup(context.Background(), "hello")
			require.Error(t, err)
			if tt.notFound {
				assert.ErrorIs(t, err, ErrNotFound)
			} else {
				assert.NotErrorIs(t, err, ErrNotFound)
			}
		})
	}
}

func TestLookup_ServerErrorCarriesStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, "")

	_, err := c.Lookup(context.Background(), "hello")
	assert.Equal(t, http.StatusBadGateway, httpx.StatusOf(err))
}

func TestPhonetics(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    Phonetic
		wantErr bool
	}{
		{
			name:   "first audio entry without text keeps top-level text",
			status: http.StatusOK,
			body:   helloPayload,
			want:   Phonetic{Text: "həˈləʊ", Audio: "https://audio.example/hello-au.mp3"},
		},
		{
			name:   "audio entry with text overrides",
			status: http.StatusOK,
			body:   `[{"phonetic":"/top/","phonetics":[{"text":"/no-audio/"},{"text":"/with-audio/","audio":"a.mp3"}]}]`,
			want:   Phonetic{Text: "/with-audio/", Audio: "a.mp3"},
		},
		{
			name:   "no phonetic data falls back",
			status: http.StatusOK,
			body:   `[{"word":"hello"}]`,
			want:   Phonetic{Text: "/fb/"},
		},
		{
			name:    "upstream failure still falls back",
			status:  http.StatusNotFound,
			body:    ``,
			want:    Phonetic{Text: "/fb/"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}, "/fb/")

			got, err := c.Phonetics(context.Background(), "hello")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeEntries_RequiresArray(t *testing.T) {
	t.Parallel()

	_, err := decodeEntries([]byte(`{"word":"x"}`))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "decode failed"))

	got, err := decodeEntries([]byte(` [ {"word":"a"}, 3, {"word":"b"} ] `))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[1].Word)
}
