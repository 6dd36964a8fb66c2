package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CARDSCAN_CONFIG", "STORAGE_DRIVER", "STORAGE_DSN", "GRPC_ADDR", "OCR_ENGINE",
		"AI_PROVIDER", "AI_API_KEY", "AI_TIMEOUT", "AI_INVALID_KEY_POLICY",
		"INGEST_WORKERS", "INGEST_SKIP_HIDDEN", "LOG_FORMAT", "OCR_HEIC_CONVERTER",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultsAreValid(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "attempt", cfg.AI.InvalidKeyPolicy)
	assert.Equal(t, 4, cfg.Ingest.Workers)
	assert.Equal(t, "magick", cfg.OCR.HeicConverter)
}

func TestYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "cardscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  driver: memory
ai:
  provider: claude
  timeout: 20s
  api_key: ignored
ingest:
  workers: 2
`), 0o644))

	t.Setenv("INGEST_WORKERS", "8")
	t.Setenv("AI_API_KEY", "sk-ant-xyz")
	t.Setenv("INGEST_SKIP_HIDDEN", "false")
	t.Setenv("OCR_HEIC_CONVERTER", "sips")

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "claude", cfg.AI.Provider)
	assert.Equal(t, 20*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "sk-ant-xyz", cfg.AI.APIKey)
	assert.Equal(t, 8, cfg.Ingest.Workers)
	assert.Equal(t, "sips", cfg.OCR.HeicConverter)
	assert.False(t, cfg.Ingest.SkipHidden)
	assert.NoError(t, cfg.Validate())
}

func TestEnvIgnoresMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("INGEST_WORKERS", "many")
	t.Setenv("AI_TIMEOUT", "soon")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, Default().Ingest.Workers, cfg.Ingest.Workers)
	assert.Equal(t, Default().AI.Timeout, cfg.AI.Timeout)
}

func TestLoadConfigFromErrors(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [oops"), 0o644))
	_, err = LoadConfigFrom(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"provider alias", func(c *Config) { c.AI.Provider = "Google" }, true},
		{"unknown provider", func(c *Config) { c.AI.Provider = "cohere" }, false},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }, false},
		{"sqlite needs dsn", func(c *Config) { c.Storage.DSN = "" }, false},
		{"memory needs no dsn", func(c *Config) { c.Storage.Driver = "memory"; c.Storage.DSN = "" }, true},
		{"bad policy", func(c *Config) { c.AI.InvalidKeyPolicy = "maybe" }, false},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, false},
		{"no addr", func(c *Config) { c.Server.GRPCAddr = "" }, false},
		{"heif-convert", func(c *Config) { c.OCR.HeicConverter = "heif-convert" }, true},
		{"unknown heic converter", func(c *Config) { c.OCR.HeicConverter = "ffmpeg" }, false},
		{"no heic converter", func(c *Config) { c.OCR.HeicConverter = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidInput)
			}
		})
	}
}

func TestValidatorRules(t *testing.T) {
	v := NewValidator().
		Field("name", "  ", Required).
		Field("index", -1, NonNegative).
		Field("count", "3", NonNegative).
		Field("value", "héllo", MaxLength(5)).
		Field("value", "héllo!", MaxLength(5)).
		Field("format", "xml", OneOf("json", "csv"))
	require.True(t, v.HasErrors())
	assert.ErrorIs(t, v.Error(), ErrValidation)
	msg := v.ErrorMessage()
	assert.Contains(t, msg, "'name'")
	assert.Contains(t, msg, "must not be negative")
	assert.Contains(t, msg, "must be an integer")
	assert.Contains(t, msg, "at most 5 characters")
	assert.Contains(t, msg, "must be one of json, csv")
	assert.Equal(t, 5, len(strings.Split(msg, "; ")))

	assert.NoError(t, NewValidator().Field("index", 0, NonNegative).Error())
}
