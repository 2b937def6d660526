package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Model     ModelConfig     `mapstructure:"model"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Doubao    DoubaoConfig    `mapstructure:"doubao"`
	Qwen      QwenConfig      `mapstructure:"qwen"`
	Claude    ClaudeConfig    `mapstructure:"claude"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
}

// ModelConfig selects the provider used for every model invocation.
type ModelConfig struct {
	Provider   string        `mapstructure:"provider"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

type GeminiConfig struct {
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	Temperature    float32 `mapstructure:"temperature"`
	ThinkingBudget int32   `mapstructure:"thinking_budget"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

type DoubaoConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

type QwenConfig struct {
	APIKey       string  `mapstructure:"api_key"`
	BaseURL      string  `mapstructure:"base_url"`
	Model        string  `mapstructure:"model"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	Temperature  float32 `mapstructure:"temperature"`
	TopP         float32 `mapstructure:"top_p"`
	DebugRequest bool    `mapstructure:"debug_request"`
}

type ClaudeConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// ExtractorConfig sizes are measured in characters, not tokens.
type ExtractorConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

const (
	ProviderGemini  = "gemini"
	ProviderOpenAI  = "openai"
	ProviderDoubao  = "doubao"
	ProviderQwen    = "qwen"
	ProviderClaude  = "claude"
	ProviderOffline = "offline"
)

var ErrInvalidConfig = errors.New("invalid configuration")

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.write_timeout", "5m")
	v.SetDefault("server.max_header_bytes", 1<<20)
	v.SetDefault("server.max_upload_bytes", 10<<20)

	v.SetDefault("model.provider", ProviderGemini)
	v.SetDefault("model.timeout", "2m")
	v.SetDefault("model.max_retries", 0)
	v.SetDefault("model.retry_delay", "2s")

	// Keys without a default are invisible to AutomaticEnv during Unmarshal.
	for _, key := range []string{
		"gemini.api_key", "openai.api_key", "openai.base_url", "doubao.api_key",
		"doubao.base_url", "doubao.model", "qwen.api_key", "claude.api_key",
	} {
		v.SetDefault(key, "")
	}

	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.thinking_budget", 10000)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("qwen.base_url", "https://dashscope.aliyuncs.com/compatible-mode/v1")
	v.SetDefault("qwen.model", "qwen-plus")
	v.SetDefault("qwen.max_tokens", 2048)
	v.SetDefault("qwen.temperature", 0.7)
	v.SetDefault("qwen.top_p", 0.9)
	v.SetDefault("claude.model", "claude-sonnet-4-20250514")
	v.SetDefault("claude.max_tokens", 2048)

	v.SetDefault("extractor.chunk_size", 1000)
	v.SetDefault("extractor.chunk_overlap", 200)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"*"})
	v.SetDefault("cors.max_age", 43200)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests_per_minute", 60)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Load reads the YAML file at configPath. An empty path or a missing file
// falls back to defaults plus environment (MEDASSIST_ prefix).
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MEDASSIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !os.IsNotExist(err) && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config %s: %w", configPath, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// File and MEDASSIST_* values win; the providers' conventional variables
	// are only consulted when nothing else set a key.
	fillFromEnv(&cfg.Gemini.APIKey, "GOOGLE_API_KEY", "GEMINI_API_KEY")
	fillFromEnv(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	fillFromEnv(&cfg.Doubao.APIKey, "DOUBAO_API_KEY", "ARK_API_KEY")
	fillFromEnv(&cfg.Qwen.APIKey, "DASHSCOPE_API_KEY", "QWEN_API_KEY")
	fillFromEnv(&cfg.Claude.APIKey, "ANTHROPIC_API_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func fillFromEnv(dst *string, keys ...string) {
	if *dst != "" {
		return
	}
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			*dst = value
			return
		}
	}
}

func (c *Config) Validate() error {
	switch c.Model.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderDoubao, ProviderQwen, ProviderClaude, ProviderOffline:
	default:
		return fmt.Errorf("%w: unsupported model provider %q", ErrInvalidConfig, c.Model.Provider)
	}

	if c.Extractor.ChunkSize <= 0 {
		return fmt.Errorf("%w: extractor.chunk_size must be positive", ErrInvalidConfig)
	}
	if c.Extractor.ChunkOverlap < 0 || c.Extractor.ChunkOverlap >= c.Extractor.ChunkSize {
		return fmt.Errorf("%w: extractor.chunk_overlap must be in [0, chunk_size)", ErrInvalidConfig)
	}
	if c.Model.MaxRetries < 0 {
		return fmt.Errorf("%w: model.max_retries cannot be negative", ErrInvalidConfig)
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("%w: rate_limit.requests_per_minute must be positive", ErrInvalidConfig)
	}

	return nil
}
