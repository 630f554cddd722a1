package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type BackendKind string

const (
	BackendReplicate BackendKind = "replicate"
	BackendLocal     BackendKind = "local"
	BackendNone      BackendKind = "none"
)

// ConfigurationError marks startup problems: a missing credential for the
// selected backend, an unknown project slug, a bad registry file.
type ConfigurationError struct {
	Field string
	Msg   string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

type Config struct {
	Backend BackendKind

	ReplicateToken string
	PollInterval   time.Duration

	SDURL      string
	SDModel    string
	SDSteps    int
	SDGuidance float64

	EnhancerEnabled bool
	OllamaURL       string
	OllamaModel     string
	EnhanceTimeout  time.Duration

	DataDir      string
	ImageSeconds float64

	HTTPTimeout time.Duration
	Verbose     bool
}

// Load reads the environment once into an immutable Config. A .env file in
// the working directory is merged in first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Backend:         BackendKind(strings.ToLower(getEnv("HAWK_BACKEND", "replicate"))),
		ReplicateToken:  strings.TrimSpace(os.Getenv("REPLICATE_API_TOKEN")),
		PollInterval:    time.Duration(getEnvInt("HAWK_POLL_INTERVAL_MS", 1500)) * time.Millisecond,
		SDURL:           strings.TrimRight(getEnv("HAWK_SD_URL", "http://127.0.0.1:7860"), "/"),
		SDModel:         getEnv("HAWK_SD_MODEL", "sdxl-turbo"),
		SDSteps:         getEnvInt("HAWK_SD_STEPS", 20),
		SDGuidance:      getEnvFloat("HAWK_SD_GUIDANCE", 7.5),
		EnhancerEnabled: getEnvBool("HAWK_ENHANCER", false),
		OllamaURL:       strings.TrimRight(getEnv("HAWK_OLLAMA_URL", "http://127.0.0.1:11434"), "/"),
		OllamaModel:     getEnv("HAWK_OLLAMA_MODEL", "llama3.2"),
		EnhanceTimeout:  time.Duration(getEnvInt("HAWK_ENHANCE_TIMEOUT_SECONDS", 20)) * time.Second,
		DataDir:         getEnv("HAWK_DATA_DIR", defaultDataDir()),
		ImageSeconds:    getEnvFloat("HAWK_IMAGE_SECONDS", 2.5),
		HTTPTimeout:     time.Duration(getEnvInt("HAWK_HTTP_TIMEOUT_SECONDS", 120)) * time.Second,
		Verbose:         getEnvBool("HAWK_VERBOSE", false),
	}

	switch cfg.Backend {
	case BackendReplicate, BackendLocal, BackendNone:
	default:
		return Config{}, &ConfigurationError{
			Field: "HAWK_BACKEND",
			Msg:   fmt.Sprintf("unknown backend %q (want replicate, local, or none)", cfg.Backend),
		}
	}

	if cfg.Backend == BackendReplicate && cfg.ReplicateToken == "" {
		return Config{}, &ConfigurationError{
			Field: "REPLICATE_API_TOKEN",
			Msg:   "required when HAWK_BACKEND=replicate",
		}
	}

	if cfg.SDSteps < 1 {
		cfg.SDSteps = 1
	}
	if cfg.ImageSeconds <= 0 {
		cfg.ImageSeconds = 2.5
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 1500 * time.Millisecond
	}
	if cfg.EnhanceTimeout <= 0 {
		cfg.EnhanceTimeout = 20 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 120 * time.Second
	}

	return cfg, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "hawk-data"
	}
	return filepath.Join(home, "hawk")
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
