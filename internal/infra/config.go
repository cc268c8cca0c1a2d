package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents process-level configuration loaded once at startup.
// Provider credentials are deliberately NOT part of it: they are resolved
// fresh on every pipeline invocation via ResolveLLMConfig/ResolveImageConfig
// so a credential rotation takes effect without a restart.
type Config struct {
	AppEnv           string
	Port             string
	PromptDir        string
	AllowedOrigins   []string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	OutboundPerSec   float64
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		PromptDir:        getEnv("PROMPT_DIR", "."),
		AllowedOrigins:   splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		OutboundPerSec:   getEnvFloat("OUTBOUND_REQUESTS_PER_SECOND", 2),
	}
	return cfg, nil
}

// ProviderConfig is a resolved {credential, endpoint, model} triple for one
// upstream provider. An empty APIKey means no credential is available; the
// orchestrator checks that before attempting a network call.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// HasCredentials reports whether an API key was resolved.
func (p ProviderConfig) HasCredentials() bool {
	return strings.TrimSpace(p.APIKey) != ""
}

const (
	defaultLLMBaseURL   = "https://api.openai.com/v1"
	defaultLLMModel     = "gpt-4o-mini"
	defaultImageBaseURL = "https://api.openai.com/v1/images/generations"
	defaultImageModel   = "bytedance/doubao-seedream-4.5"
)

// ResolveLLMConfig resolves the chat-completion provider triple. Precedence
// per field: preset selected by CUR_LLM (case-insensitive) -> generic
// override -> hardcoded default. Never fails.
func ResolveLLMConfig() ProviderConfig {
	preset := strings.ToUpper(strings.TrimSpace(os.Getenv("CUR_LLM")))
	return ProviderConfig{
		APIKey:  firstNonEmpty(presetVar(preset, "LLM_KEY"), os.Getenv("LLM_API_KEY"), os.Getenv("OPENAI_API_KEY")),
		BaseURL: firstNonEmpty(presetVar(preset, "LLM_BASE_URL"), os.Getenv("LLM_BASE_URL"), defaultLLMBaseURL),
		Model:   firstNonEmpty(presetVar(preset, "LLM_MODEL"), os.Getenv("LLM_MODEL"), defaultLLMModel),
	}
}

// ResolveImageConfig resolves the image-generation provider triple with the
// same precedence rules, selected independently by CUR_IMAGE.
func ResolveImageConfig() ProviderConfig {
	preset := strings.ToUpper(strings.TrimSpace(os.Getenv("CUR_IMAGE")))
	return ProviderConfig{
		APIKey:  firstNonEmpty(presetVar(preset, "IMAGE_KEY"), os.Getenv("SEEDREAM_API_KEY"), os.Getenv("LLM_API_KEY")),
		BaseURL: firstNonEmpty(presetVar(preset, "IMAGE_BASE_URL"), os.Getenv("SEEDREAM_BASE_URL"), defaultImageBaseURL),
		Model:   firstNonEmpty(presetVar(preset, "IMAGE_MODEL"), os.Getenv("SEEDREAM_MODEL"), defaultImageModel),
	}
}

func presetVar(preset, suffix string) string {
	if preset == "" {
		return ""
	}
	return os.Getenv(preset + "_" + suffix)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
