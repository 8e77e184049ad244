// Package config loads the pipeline's environment-derived configuration:
// model identifiers, API keys, directories, and defaults. Nothing affecting
// a single generate call lives outside this surface — there are no hidden
// flags.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// LLM provider
	LLMProvider string // "openai" or "gemini"
	OpenAIKey   string
	OpenAIModel string
	GeminiKey   string
	GeminiModel string

	// TTS model — external service, URL of its HTTP endpoint
	TTSModelEndpoint string

	// Face-animation model — external service
	AnimationBinaryPath string
	FFmpegPath          string

	// Asset locations
	AssetDir  string
	OutputDir string

	// Defaults
	DefaultFPS          int
	DefaultResolution   int
	DefaultStylePreset  string
	EnableIntentDefault bool
	EnableGovernorDefault bool

	// Optional run ledger (internal/runstore). Empty disables it.
	DatabaseURL string

	// Optional style-profile cache (internal/style.Cache). Empty disables it.
	RedisURL string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LLMProvider:           getEnv("LLM_PROVIDER", "openai"),
		OpenAIKey:             getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:           getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiKey:             getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		TTSModelEndpoint:      getEnv("TTS_MODEL_ENDPOINT", ""),
		AnimationBinaryPath:   getEnv("ANIMATION_BINARY_PATH", "sadtalker"),
		FFmpegPath:            getEnv("FFMPEG_PATH", "ffmpeg"),
		AssetDir:              getEnv("ASSET_DIR", "assets"),
		OutputDir:             getEnv("OUTPUT_DIR", "outputs"),
		DefaultFPS:            getEnvInt("DEFAULT_FPS", 25),
		DefaultResolution:     getEnvInt("DEFAULT_RESOLUTION", 512),
		DefaultStylePreset:    getEnv("DEFAULT_STYLE_PRESET", "calm_tech"),
		EnableIntentDefault:   getEnvBool("ENABLE_INTENT_DEFAULT", true),
		EnableGovernorDefault: getEnvBool("ENABLE_GOVERNOR_DEFAULT", true),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		RedisURL:              getEnv("REDIS_URL", ""),
	}

	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
	case "gemini":
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q (want openai or gemini)", cfg.LLMProvider)
	}

	if cfg.DefaultResolution != 256 && cfg.DefaultResolution != 512 {
		return nil, fmt.Errorf("DEFAULT_RESOLUTION must be 256 or 512, got %d", cfg.DefaultResolution)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}
