// Package config loads the service configuration from an optional YAML or TOML
// file, an optional .env file and the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrInvalidPort           = errors.New("server.port must be between 1 and 65535")
	ErrInvalidTimeout        = errors.New("timeouts must be at least 1 second")
	ErrInvalidDictionaryURL  = errors.New("dictionary_api.base_url must contain {word}")
	ErrInvalidMaxRetries     = errors.New("dictionary_api.max_retries must be at least 1")
	ErrInvalidLogLevel       = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat      = errors.New("logging.format must be 'json' or 'text'")
	ErrInvalidAIProvider     = errors.New("ai.provider must be 'gemini', 'mock' or empty")
	ErrInvalidTemperature    = errors.New("ai.temperature must be between 0 and 2")
	ErrInvalidMaxTokens      = errors.New("ai.max_output_tokens must be at least 1")
	ErrInvalidSampleRatio    = errors.New("tracing.sample_ratio must be between 0 and 1")
	ErrUnsupportedFileFormat = errors.New("config file must be .yaml, .yml or .toml")
)

// Config is built once at startup and handed to every collaborator.
type Config struct {
	Server     ServerConfig     `yaml:"server" toml:"server"`
	Dictionary DictionaryConfig `yaml:"dictionary_api" toml:"dictionary_api"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
	Security   SecurityConfig   `yaml:"security" toml:"security"`
	AI         AIConfig         `yaml:"ai" toml:"ai"`
	Fetch      FetchConfig      `yaml:"fetch" toml:"fetch"`
	Phonetic   PhoneticConfig   `yaml:"phonetic" toml:"phonetic"`
	Tracing    TracingConfig    `yaml:"tracing" toml:"tracing"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string `yaml:"host" toml:"host"`
	Port            int    `yaml:"port" toml:"port"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec" toml:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec" toml:"write_timeout_sec"`
}

// DictionaryConfig points at the public dictionary API.
type DictionaryConfig struct {
	BaseURL       string `yaml:"base_url" toml:"base_url"`
	TimeoutSec    int    `yaml:"timeout" toml:"timeout"`
	MaxRetries    int    `yaml:"max_retries" toml:"max_retries"`
	RespectRobots bool   `yaml:"respect_robots" toml:"respect_robots"`
	UserAgent     string `yaml:"user_agent" toml:"user_agent"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// SecurityConfig holds CORS settings.
type SecurityConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`
}

// AIConfig configures the generative-language client. APIKeys usually comes
// from GEMINI_MODEL_API_KEY as a comma separated list.
type AIConfig struct {
	Provider        string   `yaml:"provider" toml:"provider"`
	ModelName       string   `yaml:"gemini_model_name" toml:"gemini_model_name"`
	BaseURL         string   `yaml:"base_url" toml:"base_url"`
	APIKeys         []string `yaml:"api_keys" toml:"api_keys"`
	Temperature     float64  `yaml:"temperature" toml:"temperature"`
	MaxOutputTokens int      `yaml:"max_output_tokens" toml:"max_output_tokens"`
	MaxPromptWidth  int      `yaml:"max_prompt_width" toml:"max_prompt_width"`
	TimeoutSec      int      `yaml:"timeout_sec" toml:"timeout_sec"`
}

// FetchConfig configures the web page fetcher.
type FetchConfig struct {
	UserAgent  string `yaml:"user_agent" toml:"user_agent"`
	TimeoutSec int    `yaml:"timeout_sec" toml:"timeout_sec"`
	MinDelayMs int    `yaml:"min_delay_ms" toml:"min_delay_ms"`
}

// PhoneticConfig locates the pronunciation lexicon.
type PhoneticConfig struct {
	LexiconPath string `yaml:"lexicon_path" toml:"lexicon_path"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" toml:"enabled"`
	Endpoint    string  `yaml:"endpoint" toml:"endpoint"`
	SampleRatio float64 `yaml:"sample_ratio" toml:"sample_ratio"`
	ServiceName string  `yaml:"service_name" toml:"service_name"`
	// Insecure sends OTLP over plain HTTP when Endpoint has no scheme.
	Insecure    bool    `yaml:"insecure" toml:"insecure"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeoutSec:  15,
			WriteTimeoutSec: 90,
		},
		Dictionary: DictionaryConfig{
			BaseURL:       "https://api.dictionaryapi.dev/api/v2/entries/en/{word}",
			TimeoutSec:    10,
			MaxRetries:    3,
			RespectRobots: true,
			UserAgent:     "wordwise/1.0",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"*"},
		},
		AI: AIConfig{
			ModelName:       "gemini-2.0-flash",
			BaseURL:         "https://generativelanguage.googleapis.com/v1beta/models",
			Temperature:     0.2,
			MaxOutputTokens: 4096,
			MaxPromptWidth:  12000,
			TimeoutSec:      60,
		},
		Fetch: FetchConfig{
			UserAgent:  "wordwise-fetcher/1.0",
			TimeoutSec: 20,
			MinDelayMs: 1000,
		},
		Tracing: TracingConfig{
			SampleRatio: 0.1,
			ServiceName: "wordwise",
		},
	}
}

// Load reads configuration from path (if it exists), then applies a .env file
// in the working directory and environment overrides. An empty path means
// CONFIG_PATH or "config.yaml".
func Load(path string) (*Config, error) {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config.yaml"
	}
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv(lookup)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFileFormat, path)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	list := func(name string, dst *[]string) {
		if v, ok := lookup(name); ok {
			if items := splitList(v); len(items) > 0 {
				*dst = items
			}
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(name); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				*dst = b
			}
		}
	}

	str("HOST", &c.Server.Host)
	if v, ok := lookup("PORT"); ok {
		if port, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Server.Port = port
		}
	}
	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FORMAT", &c.Logging.Format)
	str("DICTIONARY_API_URL", &c.Dictionary.BaseURL)
	list("ALLOWED_ORIGINS", &c.Security.AllowedOrigins)
	str("AI_PROVIDER", &c.AI.Provider)
	str("GEMINI_MODEL_NAME", &c.AI.ModelName)
	list("GEMINI_MODEL_API_KEY", &c.AI.APIKeys)
	str("PHONETIC_LEXICON", &c.Phonetic.LexiconPath)
	boolean("OTEL_ENABLED", &c.Tracing.Enabled)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &c.Tracing.Endpoint)
	boolean("OTEL_EXPORTER_OTLP_INSECURE", &c.Tracing.Insecure)
}

// splitList splits a comma separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}
	if c.Server.ReadTimeoutSec < 1 || c.Server.WriteTimeoutSec < 1 {
		return fmt.Errorf("%w: server", ErrInvalidTimeout)
	}

	if !strings.Contains(c.Dictionary.BaseURL, "{word}") {
		return ErrInvalidDictionaryURL
	}
	if c.Dictionary.TimeoutSec < 1 {
		return fmt.Errorf("%w: dictionary_api", ErrInvalidTimeout)
	}
	if c.Dictionary.MaxRetries < 1 {
		return ErrInvalidMaxRetries
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return ErrInvalidLogLevel
	}
	if f := strings.ToLower(c.Logging.Format); f != "json" && f != "text" {
		return ErrInvalidLogFormat
	}

	switch strings.ToLower(c.AI.Provider) {
	case "", "gemini", "mock":
	default:
		return ErrInvalidAIProvider
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return ErrInvalidTemperature
	}
	if c.AI.MaxOutputTokens < 1 {
		return ErrInvalidMaxTokens
	}
	if c.AI.TimeoutSec < 1 {
		return fmt.Errorf("%w: ai", ErrInvalidTimeout)
	}

	if c.Fetch.TimeoutSec < 1 {
		return fmt.Errorf("%w: fetch", ErrInvalidTimeout)
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return ErrInvalidSampleRatio
	}
	return nil
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Timeout returns the per-request dictionary timeout.
func (d DictionaryConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSec) * time.Second
}

// Timeout returns the generative call timeout.
func (a AIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSec) * time.Second
}

// Timeout returns the page fetch timeout.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSec) * time.Second
}

// MinDelay returns the minimum spacing between fetches to one host.
func (f FetchConfig) MinDelay() time.Duration {
	return time.Duration(f.MinDelayMs) * time.Millisecond
}

// String returns a summary safe for logs; API keys are counted, not printed.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Addr: %s, Dictionary: %s, AIProvider: %q, AIKeys: %d, Model: %s}",
		c.Server.Addr(),
		c.Dictionary.BaseURL,
		c.AI.Provider,
		len(c.AI.APIKeys),
		c.AI.ModelName,
	)
}
