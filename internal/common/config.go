package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/cardscan/constants"
)

// Config holds all application configuration
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	OCR     OCRConfig     `yaml:"ocr"`
	AI      AIConfig      `yaml:"ai"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig holds durable key-value store configuration
type StorageConfig struct {
	Driver           string        `yaml:"driver"` // sqlite | postgres | memory
	DSN              string        `yaml:"dsn"`
	MaxConns         int32         `yaml:"max_conns"`
	MinConns         int32         `yaml:"min_conns"`
	MaxConnLifetime  time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `yaml:"max_conn_idle_time"`
	DialTimeout      time.Duration `yaml:"dial_timeout"`
	StatementTimeout time.Duration `yaml:"statement_timeout"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string `yaml:"grpc_addr"`
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Engine      string        `yaml:"engine"` // tesseract | gosseract
	Tesseract   string        `yaml:"tesseract"`
	Language    string        `yaml:"language"`
	TessdataDir string        `yaml:"tessdata_dir"`
	PSM         int           `yaml:"psm"`
	Timeout     time.Duration `yaml:"timeout"`
	// HeicConverter turns HEIC/HEIF captures into PNG: magick | heif-convert | sips
	HeicConverter string `yaml:"heic_converter"`
}

// AIConfig holds LLM provider configuration
type AIConfig struct {
	Provider         string        `yaml:"provider"`
	APIKey           string        `yaml:"-"`
	Timeout          time.Duration `yaml:"timeout"`
	InvalidKeyPolicy string        `yaml:"invalid_key_policy"` // attempt | skip

	OpenAIModel      string `yaml:"openai_model"`
	OpenAIBaseURL    string `yaml:"openai_base_url"`
	AnthropicModel   string `yaml:"anthropic_model"`
	AnthropicBaseURL string `yaml:"anthropic_base_url"`
	GeminiModel      string `yaml:"gemini_model"`
	GeminiBaseURL    string `yaml:"gemini_base_url"`
}

// IngestConfig holds batch and watch-folder configuration
type IngestConfig struct {
	Workers    int           `yaml:"workers"`
	QueueSize  int           `yaml:"queue_size"`
	JobTimeout time.Duration `yaml:"job_timeout"`
	Debounce   time.Duration `yaml:"debounce"`
	SkipHidden bool          `yaml:"skip_hidden"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	Format string `yaml:"format"` // text | json
	Level  string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver:          "sqlite",
			DSN:             "cardscan.db",
			MaxConns:        10,
			MinConns:        1,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
			DialTimeout:     3 * time.Second,
		},
		Server: ServerConfig{
			GRPCAddr: ":8080",
		},
		OCR: OCRConfig{
			Engine:    "tesseract",
			Tesseract: "tesseract",
			Language:      "eng",
			Timeout:       2 * time.Minute,
			HeicConverter: "magick",
		},
		AI: AIConfig{
			Provider:         "openai",
			InvalidKeyPolicy: "attempt",
			OpenAIModel:      "gpt-4o-mini",
			AnthropicModel:   "claude-3-haiku-20240307",
			GeminiModel:      "gemini-1.5-flash",
		},
		Ingest: IngestConfig{
			Workers:    4,
			QueueSize:  64,
			JobTimeout: 3 * time.Minute,
			Debounce:   500 * time.Millisecond,
			SkipHidden: true,
		},
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from the file named by CARDSCAN_CONFIG (if any)
// and then from environment variables.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(os.Getenv("CARDSCAN_CONFIG"))
}

// LoadConfigFrom starts from defaults, overlays the YAML file at path when
// path is non-empty, and finally applies environment variables.
func LoadConfigFrom(path string) (*Config, error) {
	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, NewAppError("CONFIG_ERROR", fmt.Sprintf("read %s", path), err)
		}
		if err := yaml.Unmarshal(raw, c); err != nil {
			return nil, NewAppError("CONFIG_ERROR", fmt.Sprintf("parse %s", path), err)
		}
	}
	c.applyEnv()
	return c, nil
}

func (c *Config) applyEnv() {
	c.Storage.Driver = getEnv("STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.DSN = getEnv("STORAGE_DSN", c.Storage.DSN)
	c.Storage.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Storage.MaxConns)
	c.Storage.MinConns = getEnvAsInt32("DB_MIN_CONNS", c.Storage.MinConns)
	c.Storage.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", c.Storage.MaxConnLifetime)
	c.Storage.MaxConnIdleTime = getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", c.Storage.MaxConnIdleTime)
	c.Storage.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", c.Storage.DialTimeout)
	c.Storage.StatementTimeout = getEnvAsDuration("DB_STATEMENT_TIMEOUT", c.Storage.StatementTimeout)

	c.Server.GRPCAddr = getEnv("GRPC_ADDR", c.Server.GRPCAddr)

	c.OCR.Engine = getEnv("OCR_ENGINE", c.OCR.Engine)
	c.OCR.Tesseract = getEnv("TESSERACT_BIN", c.OCR.Tesseract)
	c.OCR.Language = getEnv("OCR_LANG", c.OCR.Language)
	c.OCR.TessdataDir = getEnv("TESSDATA_PREFIX", c.OCR.TessdataDir)
	c.OCR.PSM = getEnvAsInt("OCR_PSM", c.OCR.PSM)
	c.OCR.Timeout = getEnvAsDuration("OCR_TIMEOUT", c.OCR.Timeout)
	c.OCR.HeicConverter = getEnv("OCR_HEIC_CONVERTER", c.OCR.HeicConverter)

	c.AI.Provider = getEnv("AI_PROVIDER", c.AI.Provider)
	c.AI.APIKey = getEnv("AI_API_KEY", c.AI.APIKey)
	c.AI.Timeout = getEnvAsDuration("AI_TIMEOUT", c.AI.Timeout)
	c.AI.InvalidKeyPolicy = getEnv("AI_INVALID_KEY_POLICY", c.AI.InvalidKeyPolicy)
	c.AI.OpenAIModel = getEnv("OPENAI_MODEL", c.AI.OpenAIModel)
	c.AI.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.AI.OpenAIBaseURL)
	c.AI.AnthropicModel = getEnv("ANTHROPIC_MODEL", c.AI.AnthropicModel)
	c.AI.AnthropicBaseURL = getEnv("ANTHROPIC_BASE_URL", c.AI.AnthropicBaseURL)
	c.AI.GeminiModel = getEnv("GEMINI_MODEL", c.AI.GeminiModel)
	c.AI.GeminiBaseURL = getEnv("GEMINI_BASE_URL", c.AI.GeminiBaseURL)

	c.Ingest.Workers = getEnvAsInt("INGEST_WORKERS", c.Ingest.Workers)
	c.Ingest.QueueSize = getEnvAsInt("INGEST_QUEUE_SIZE", c.Ingest.QueueSize)
	c.Ingest.JobTimeout = getEnvAsDuration("INGEST_JOB_TIMEOUT", c.Ingest.JobTimeout)
	c.Ingest.Debounce = getEnvAsDuration("INGEST_DEBOUNCE", c.Ingest.Debounce)
	c.Ingest.SkipHidden = getEnvAsBool("INGEST_SKIP_HIDDEN", c.Ingest.SkipHidden)

	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// knownProvider accepts any spelling CanonicalizeProvider understands.
func knownProvider(fieldName string, value interface{}) *ValidationError {
	s, _ := value.(string)
	if _, ok := constants.CanonicalizeProvider(s); !ok {
		return &ValidationError{Field: fieldName, Value: value, Message: fmt.Sprintf("must be one of %v", constants.ProvidersAsStringSlice())}
	}
	return nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("storage.driver", c.Storage.Driver, OneOf("sqlite", "postgres", "memory")).
		Field("ocr.engine", c.OCR.Engine, OneOf("tesseract", "gosseract")).
		Field("ocr.heic_converter", c.OCR.HeicConverter, OneOf("magick", "heif-convert", "sips")).
		Field("ai.provider", c.AI.Provider, knownProvider).
		Field("ai.invalid_key_policy", c.AI.InvalidKeyPolicy, OneOf("attempt", "skip")).
		Field("log.format", c.Log.Format, OneOf("text", "json")).
		Field("ingest.workers", c.Ingest.Workers, NonNegative).
		Field("ingest.queue_size", c.Ingest.QueueSize, NonNegative).
		Field("ocr.psm", c.OCR.PSM, NonNegative)
	if c.Storage.Driver != "memory" {
		v.Field("storage.dsn", c.Storage.DSN, Required)
	}
	if err := v.Error(); err != nil {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	return nil
}
