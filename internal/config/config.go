package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration. Values come from a YAML file,
// overridden by CHATRELAY_* environment variables (a .env file is honored).
type Config struct {
	ListenAddr    string             `yaml:"listen_addr"`
	APIKey        string             `yaml:"api_key"`
	AllowedOrigin string             `yaml:"allowed_origin"`
	LogLevel      string             `yaml:"log_level"`
	SystemPrompt  string             `yaml:"system_prompt"`
	Backend       BackendConfig      `yaml:"backend"`
	Limits        LimitsConfig       `yaml:"limits"`
	Defaults      GenerationDefaults `yaml:"defaults"`
}

// BackendConfig describes the inference backend endpoint.
type BackendConfig struct {
	APIBase        string `yaml:"api_base"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the backend request deadline.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// LimitsConfig bounds per-request cost.
type LimitsConfig struct {
	MaxMessageChars int `yaml:"max_message_chars"`
	MaxOutputTokens int `yaml:"max_output_tokens"`
}

// GenerationDefaults are applied when the caller omits a parameter.
type GenerationDefaults struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
	TopP        float32 `yaml:"top_p"`
}

// DefaultConfig returns the built-in configuration. The generation defaults
// favor short, focused completions to keep per-call token cost low.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:    ":8080",
		AllowedOrigin: "*",
		LogLevel:      "INFO",
		SystemPrompt:  "You are a helpful, concise assistant. Keep responses brief.",
		Backend: BackendConfig{
			Model:          "nova-micro",
			TimeoutSeconds: 30,
		},
		Limits: LimitsConfig{
			MaxMessageChars: 2000,
			MaxOutputTokens: 512,
		},
		Defaults: GenerationDefaults{
			MaxTokens:   150,
			Temperature: 0.3,
			TopP:        0.85,
		},
	}
}

// LoadConfig loads configuration from a YAML file and applies environment
// overrides. An empty path skips the file and uses defaults plus environment.
func LoadConfig(path string) (*Config, error) {
	// Load .env if present; missing files are fine
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.ListenAddr = getEnvOrDefault("CHATRELAY_LISTEN_ADDR", cfg.ListenAddr)
	cfg.APIKey = getEnvOrDefault("CHATRELAY_API_KEY", cfg.APIKey)
	cfg.AllowedOrigin = getEnvOrDefault("CHATRELAY_ALLOWED_ORIGIN", cfg.AllowedOrigin)
	cfg.LogLevel = getEnvOrDefault("CHATRELAY_LOG_LEVEL", cfg.LogLevel)
	cfg.SystemPrompt = getEnvOrDefault("CHATRELAY_SYSTEM_PROMPT", cfg.SystemPrompt)

	cfg.Backend.APIBase = getEnvOrDefault("CHATRELAY_BACKEND_API_BASE", cfg.Backend.APIBase)
	cfg.Backend.APIKey = getEnvOrDefault("CHATRELAY_BACKEND_API_KEY", cfg.Backend.APIKey)
	cfg.Backend.Model = getEnvOrDefault("CHATRELAY_BACKEND_MODEL", cfg.Backend.Model)
	cfg.Backend.TimeoutSeconds = getEnvAsIntOrDefault("CHATRELAY_BACKEND_TIMEOUT_SECONDS", cfg.Backend.TimeoutSeconds)

	cfg.Limits.MaxMessageChars = getEnvAsIntOrDefault("CHATRELAY_MAX_MESSAGE_CHARS", cfg.Limits.MaxMessageChars)
	cfg.Limits.MaxOutputTokens = getEnvAsIntOrDefault("CHATRELAY_MAX_OUTPUT_TOKENS", cfg.Limits.MaxOutputTokens)
}

func (c *Config) validate() error {
	if c.Backend.APIBase == "" {
		return fmt.Errorf("backend.api_base is required")
	}
	if c.Backend.Model == "" {
		return fmt.Errorf("backend.model is required")
	}
	if c.Limits.MaxMessageChars <= 0 {
		return fmt.Errorf("limits.max_message_chars must be positive")
	}
	if c.Limits.MaxOutputTokens <= 0 {
		return fmt.Errorf("limits.max_output_tokens must be positive")
	}
	if c.Backend.TimeoutSeconds <= 0 {
		return fmt.Errorf("backend.timeout_seconds must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
