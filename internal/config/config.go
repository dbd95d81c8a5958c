package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Result    ResultConfig
	Media     MediaConfig
	STT       STTConfig
	Translate TranslateConfig
	LLM       LLMConfig
}

type ServerConfig struct {
	Host              string
	Port              int
	MaxUploadMB       int
	ReadHeaderTimeout time.Duration
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy bool
}

type CORSConfig struct {
	AllowedOrigin string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ResultConfig struct {
	Backend string // "memory" or "redis"
	TTL     time.Duration
}

type MediaConfig struct {
	FFmpegBin string
	TempDir   string // empty means os.TempDir()
}

type STTConfig struct {
	Backend       string // "openai" or "local"
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	LocalBaseURL  string // default: "http://localhost:8178/v1"
}

type TranslateConfig struct {
	Backend        string // "llm" or "lambda"
	Provider       string // llm provider name
	Model          string
	LambdaFunction string
	ChunkChars     int // longest transcript piece per backend call
}

type LLMConfig struct {
	OpenAIKey        string
	OpenAIBaseURL    string // OpenAI-compatible servers
	AnthropicKey     string
	AnthropicBaseURL string
	OllamaURL        string
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8000)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxUpload, err := getEnvInt("MAX_UPLOAD_MB", 512)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB: %w", err)
	}

	rps, err := getEnvFloat("RATE_LIMIT_RPS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	burst, err := getEnvInt("RATE_LIMIT_BURST", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	ttlMinutes, err := getEnvInt("RESULT_TTL_MINUTES", 24*60)
	if err != nil {
		return nil, fmt.Errorf("invalid RESULT_TTL_MINUTES: %w", err)
	}

	trustProxy, err := getEnvBool("TRUST_PROXY_HEADERS", false)
	if err != nil {
		return nil, fmt.Errorf("invalid TRUST_PROXY_HEADERS: %w", err)
	}

	chunkChars, err := getEnvInt("TRANSLATE_CHUNK_CHARS", 2000)
	if err != nil {
		return nil, fmt.Errorf("invalid TRANSLATE_CHUNK_CHARS: %w", err)
	}

	openAIKey := getEnv("OPENAI_API_KEY", "")

	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Port:        port,
			MaxUploadMB: maxUpload,
			// Bodies and processing are bounded by the request context only.
			ReadHeaderTimeout: 10 * time.Second,
			TrustProxy:        trustProxy,
		},
		CORS: CORSConfig{
			AllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
		},
		RateLimit: RateLimitConfig{
			RPS:   rps,
			Burst: burst,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Result: ResultConfig{
			Backend: getEnv("RESULT_STORE", "memory"),
			TTL:     time.Duration(ttlMinutes) * time.Minute,
		},
		Media: MediaConfig{
			FFmpegBin: getEnv("FFMPEG_BIN", "ffmpeg"),
			TempDir:   getEnv("MEDIA_TEMP_DIR", ""),
		},
		STT: STTConfig{
			Backend:       getEnv("STT_BACKEND", "openai"),
			OpenAIKey:     openAIKey,
			OpenAIBaseURL: getEnv("STT_OPENAI_BASE_URL", ""),
			OpenAIModel:   getEnv("STT_OPENAI_MODEL", "whisper-1"),
			LocalBaseURL:  getEnv("STT_LOCAL_BASE_URL", "http://localhost:8178/v1"),
		},
		Translate: TranslateConfig{
			Backend:        getEnv("TRANSLATE_BACKEND", "llm"),
			Provider:       getEnv("TRANSLATE_PROVIDER", "openai"),
			Model:          getEnv("TRANSLATE_MODEL", "gpt-4o-mini"),
			LambdaFunction: getEnv("TRANSLATE_LAMBDA_FUNCTION", ""),
			ChunkChars:     chunkChars,
		},
		LLM: LLMConfig{
			OpenAIKey:        openAIKey,
			OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", ""),
			OllamaURL:        getEnv("OLLAMA_URL", ""),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// MaxUploadBytes is the multipart memory/size limit for POST /upload.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

func (c *Config) Validate() error {
	var problems []string

	switch c.Result.Backend {
	case "memory", "redis":
	default:
		problems = append(problems, fmt.Sprintf("RESULT_STORE must be memory or redis, got %q", c.Result.Backend))
	}

	switch c.STT.Backend {
	case "openai":
		if c.STT.OpenAIKey == "" && c.STT.OpenAIBaseURL == "" {
			problems = append(problems, "OPENAI_API_KEY is required for STT_BACKEND=openai")
		}
	case "local":
	default:
		problems = append(problems, fmt.Sprintf("STT_BACKEND must be openai or local, got %q", c.STT.Backend))
	}

	switch c.Translate.Backend {
	case "llm":
		switch c.Translate.Provider {
		case "openai":
			if c.LLM.OpenAIKey == "" && c.LLM.OpenAIBaseURL == "" {
				problems = append(problems, "OPENAI_API_KEY or OPENAI_BASE_URL is required for TRANSLATE_PROVIDER=openai")
			}
		case "anthropic":
			if c.LLM.AnthropicKey == "" {
				problems = append(problems, "ANTHROPIC_API_KEY is required for TRANSLATE_PROVIDER=anthropic")
			}
		case "ollama":
			if c.LLM.OllamaURL == "" {
				problems = append(problems, "OLLAMA_URL is required for TRANSLATE_PROVIDER=ollama")
			}
		default:
			problems = append(problems, fmt.Sprintf("TRANSLATE_PROVIDER must be openai, anthropic or ollama, got %q", c.Translate.Provider))
		}
	case "lambda":
		if c.Translate.LambdaFunction == "" {
			problems = append(problems, "TRANSLATE_LAMBDA_FUNCTION is required for TRANSLATE_BACKEND=lambda")
		}
	default:
		problems = append(problems, fmt.Sprintf("TRANSLATE_BACKEND must be llm or lambda, got %q", c.Translate.Backend))
	}

	if c.Server.MaxUploadMB <= 0 {
		problems = append(problems, "MAX_UPLOAD_MB must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}
