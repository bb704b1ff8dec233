package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"go.opentelemetry.io/otel/attribute"

	"github.com/baxromumarov/wordwise/internal/httpx"
	"github.com/baxromumarov/wordwise/internal/observability"
)

const (
	geminiBaseURL    = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel     = "gemini-2.0-flash"
	maxResponseBytes = 8 << 20
)

// GeminiOptions configures a GeminiClient. Zero values fall back to defaults.
type GeminiOptions struct {
	BaseURL         string
	Model           string
	APIKeys         []string
	Temperature     float64
	MaxOutputTokens int
	// MaxPromptWidth caps user text in a prompt, in terminal columns.
	MaxPromptWidth int
	Timeout        time.Duration
}

// GeminiClient implements Client over the generateContent REST endpoint.
// Every call uses a key picked at random from the configured pool.
type GeminiClient struct {
	baseURL     string
	model       string
	keys        []string
	temperature float64
	maxTokens   int
	maxWidth    int
	maxBody     int64
	httpClient  *http.Client
	pickKey     func(n int) int
	log         *slog.Logger
}

func NewGeminiClient(opts GeminiOptions, log *slog.Logger) *GeminiClient {
	if opts.BaseURL == "" {
		opts.BaseURL = geminiBaseURL
	}
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = 4096
	}
	if opts.MaxPromptWidth <= 0 {
		opts.MaxPromptWidth = 12000
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &GeminiClient{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		model:       opts.Model,
		keys:        append([]string(nil), opts.APIKeys...),
		temperature: opts.Temperature,
		maxTokens:   opts.MaxOutputTokens,
		maxWidth:    opts.MaxPromptWidth,
		maxBody:     maxResponseBytes,
		httpClient:  &http.Client{Timeout: opts.Timeout},
		pickKey:     rand.IntN,
		log:         log,
	}
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

func (g *GeminiClient) apiKey() (string, error) {
	if len(g.keys) == 0 {
		return "", fmt.Errorf("no Gemini API key configured")
	}
	return g.keys[g.pickKey(len(g.keys))], nil
}

func (g *GeminiClient) callAPI(ctx context.Context, op, prompt string) (_ string, err error) {
	ctx, span := observability.StartUpstreamSpan(ctx, observability.UpstreamAI, op,
		attribute.String("ai.model", g.model))
	start := time.Now()
	defer func() {
		observability.ObserveUpstream(observability.UpstreamAI, time.Since(start))
		if err != nil {
			observability.IncError(observability.ClassifyUpstreamError(err), "ai")
		}
		observability.EndSpan(span, err)
	}()

	key, err := g.apiKey()
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s:generateContent", g.baseURL, g.model)
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      g.temperature,
			MaxOutputTokens:  g.maxTokens,
			ResponseMIMEType: "application/json",
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Header rather than query string, so the key never shows up in URL errors.
	req.Header.Set("x-goog-api-key", key)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, g.maxBody))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", &httpx.FetchError{Status: resp.StatusCode, Err: fmt.Errorf("Gemini API returned status %d", resp.StatusCode)}
		}
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if geminiResp.Error != nil {
		return "", &httpx.FetchError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("Gemini API error: %s (code: %d)", geminiResp.Error.Message, geminiResp.Error.Code),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &httpx.FetchError{Status: resp.StatusCode, Err: fmt.Errorf("Gemini API returned status %d", resp.StatusCode)}
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response from Gemini", ErrMalformedOutput)
	}

	var sb strings.Builder
	for _, part := range geminiResp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

// ExtractVocabulary asks the model for up to ten study-worthy words in text.
func (g *GeminiClient) ExtractVocabulary(ctx context.Context, text string) ([]VocabItem, error) {
	prompt := vocabPrompt(truncateText(text, g.maxWidth))
	response, err := g.callAPI(ctx, "extract_vocabulary", prompt)
	if err != nil {
		return nil, err
	}
	items, err := parseVocabulary(response)
	if err != nil {
		g.log.WarnContext(ctx, "unusable vocabulary response", "error", err, "response_len", len(response))
		return nil, err
	}
	return items, nil
}

// GenerateQuiz asks the model for one four-option question per word.
func (g *GeminiClient) GenerateQuiz(ctx context.Context, words []QuizWord) ([]QuizQuestion, error) {
	prompt, err := quizPrompt(words)
	if err != nil {
		return nil, err
	}
	response, err := g.callAPI(ctx, "generate_quiz", prompt)
	if err != nil {
		return nil, err
	}
	questions, err := parseQuiz(response)
	if err != nil {
		g.log.WarnContext(ctx, "unusable quiz response", "error", err, "response_len", len(response))
		return nil, err
	}
	return questions, nil
}

// truncateText limits text to maxWidth display columns.
func truncateText(text string, maxWidth int) string {
	if runewidth.StringWidth(text) <= maxWidth {
		return text
	}
	return runewidth.Truncate(text, maxWidth, "...")
}
