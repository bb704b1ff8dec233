package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath
}

func noEnv(string) (string, bool) { return "", false }

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

const validConfigYAML = `
server:
  host: "127.0.0.1"
  port: 9090
dictionary_api:
  base_url: "http://dict.local/entries/{word}"
  timeout: 5
  max_retries: 2
logging:
  level: "debug"
  format: "text"
security:
  allowed_origins: ["https://app.example.com"]
ai:
  gemini_model_name: "gemini-test"
  temperature: 0.5
`

const validConfigTOML = `
[server]
port = 7070

[logging]
level = "warn"

[ai]
provider = "mock"
`

func TestLoad_YAML(t *testing.T) {
	path := createTempConfigFile(t, "config.yaml", validConfigYAML)

	cfg, err := load(path, noEnv)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
	assert.Equal(t, "http://dict.local/entries/{word}", cfg.Dictionary.BaseURL)
	assert.Equal(t, 2, cfg.Dictionary.MaxRetries)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, "gemini-test", cfg.AI.ModelName)
	assert.InDelta(t, 0.5, cfg.AI.Temperature, 1e-9)

	// untouched sections keep defaults
	assert.Equal(t, 1000, cfg.Fetch.MinDelayMs)
	assert.Equal(t, 15, cfg.Server.ReadTimeoutSec)
}

func TestLoad_TOML(t *testing.T) {
	path := createTempConfigFile(t, "config.toml", validConfigTOML)

	cfg, err := load(path, noEnv)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "mock", cfg.AI.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.ModelName)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := load(filepath.Join(t.TempDir(), "absent.yaml"), noEnv)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := createTempConfigFile(t, "config.yaml", validConfigYAML)

	cfg, err := load(path, envMap(map[string]string{
		"PORT":                        "8181",
		"LOG_LEVEL":                   "error",
		"GEMINI_MODEL_API_KEY":        " key-a, ,key-b ",
		"ALLOWED_ORIGINS":             "https://a.example,https://b.example",
		"OTEL_ENABLED":                "true",
		"OTEL_EXPORTER_OTLP_INSECURE": "1",
		"PHONETIC_LEXICON":            "/data/cmudict.dict",
	}))
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, []string{"key-a", "key-b"}, cfg.AI.APIKeys)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
	assert.True(t, cfg.Tracing.Enabled)
	assert.True(t, cfg.Tracing.Insecure)
	assert.Equal(t, "/data/cmudict.dict", cfg.Phonetic.LexiconPath)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := createTempConfigFile(t, "config.yaml", "server: [unclosed")

	_, err := load(path, noEnv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := createTempConfigFile(t, "config.ini", "[server]\nport=1\n")

	_, err := load(path, noEnv)
	assert.ErrorIs(t, err, ErrUnsupportedFileFormat)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "port zero", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: ErrInvalidPort},
		{name: "port too big", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: ErrInvalidPort},
		{name: "dictionary url without placeholder", mutate: func(c *Config) { c.Dictionary.BaseURL = "http://x/entries" }, wantErr: ErrInvalidDictionaryURL},
		{name: "no retries", mutate: func(c *Config) { c.Dictionary.MaxRetries = 0 }, wantErr: ErrInvalidMaxRetries},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, wantErr: ErrInvalidLogLevel},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: ErrInvalidLogFormat},
		{name: "bad provider", mutate: func(c *Config) { c.AI.Provider = "openai" }, wantErr: ErrInvalidAIProvider},
		{name: "temperature", mutate: func(c *Config) { c.AI.Temperature = 3 }, wantErr: ErrInvalidTemperature},
		{name: "tokens", mutate: func(c *Config) { c.AI.MaxOutputTokens = 0 }, wantErr: ErrInvalidMaxTokens},
		{name: "fetch timeout", mutate: func(c *Config) { c.Fetch.TimeoutSec = 0 }, wantErr: ErrInvalidTimeout},
		{name: "sample ratio", mutate: func(c *Config) { c.Tracing.SampleRatio = 1.5 }, wantErr: ErrInvalidSampleRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestString_DoesNotLeakKeys(t *testing.T) {
	cfg := Default()
	cfg.AI.APIKeys = []string{"super-secret"}
	assert.NotContains(t, cfg.String(), "super-secret")
	assert.Contains(t, cfg.String(), "AIKeys: 1")
}
