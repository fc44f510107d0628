// Package config loads and validates gateway configuration.
//
// DESIGN: Configuration is resolved once at process start and treated as
// immutable. Sources, in increasing priority:
//   - compiled-in defaults (defaults.go)
//   - optional YAML file with ${ENV_VAR} expansion
//   - environment variables
//
// The resolved Config is passed explicitly into gateway.New; nothing reads
// ambient globals at request time.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full gateway configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Model      ModelConfig      `yaml:"model"`
	CORS       CORSConfig       `yaml:"cors"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// StoreConfig points at the identity/entitlement/vector store.
// AnonKey authenticates token-resolution calls; ServiceKey authenticates
// privileged reads (profiles, vector RPC).
type StoreConfig struct {
	URL        string `yaml:"url"`
	AnonKey    string `yaml:"anon_key"`
	ServiceKey string `yaml:"service_key"`
}

// ModelConfig points at the generative-model provider.
type ModelConfig struct {
	BaseURL       string `yaml:"base_url"`
	APIKey        string `yaml:"api_key"`
	GenerateModel string `yaml:"generate_model"`
	EmbedModel    string `yaml:"embed_model"`
}

// CORSConfig holds the origin allow-list. An empty list or a "*" entry
// selects the wildcard policy.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// RateLimitConfig controls the per-IP token bucket.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

// MonitoringConfig controls JSONL telemetry.
type MonitoringConfig struct {
	Enabled     bool   `yaml:"enabled"`
	LogPath     string `yaml:"log_path"`
	LogToStdout bool   `yaml:"log_to_stdout"`
}

// Load builds a Config from defaults, an optional YAML file, and environment
// variables. path may be empty.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Expand ${VAR} references so secrets can live in the environment
		// while structure lives in the file.
		expanded := os.Expand(string(data), os.Getenv)
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	fillDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         DefaultServerPort,
			ReadTimeout:  DefaultServerReadTimeout,
			WriteTimeout: DefaultServerWriteTimeout,
		},
		Model: ModelConfig{
			BaseURL:       DefaultModelBaseURL,
			GenerateModel: DefaultGenerateModel,
			EmbedModel:    DefaultEmbedModel,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     DefaultRateLimit,
			Burst:   DefaultRateBurst,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 && port <= 65535 {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("STORE_URL"); v != "" {
		cfg.Store.URL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("STORE_ANON_KEY"); v != "" {
		cfg.Store.AnonKey = v
	}
	if v := os.Getenv("STORE_SERVICE_KEY"); v != "" {
		cfg.Store.ServiceKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Model.APIKey = v
	}
	if v := os.Getenv("GEMINI_BASE_URL"); v != "" {
		cfg.Model.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.CORS.AllowedOrigins = splitOrigins(v)
	}
}

func fillDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Model.BaseURL == "" {
		cfg.Model.BaseURL = DefaultModelBaseURL
	}
	if cfg.Model.GenerateModel == "" {
		cfg.Model.GenerateModel = DefaultGenerateModel
	}
	if cfg.Model.EmbedModel == "" {
		cfg.Model.EmbedModel = DefaultEmbedModel
	}
	if cfg.RateLimit.RPS <= 0 {
		cfg.RateLimit.RPS = DefaultRateLimit
	}
	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = DefaultRateBurst
	}
}

// splitOrigins parses a comma-separated origin list, trimming whitespace and
// trailing slashes.
func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.Store.URL == "" {
		return fmt.Errorf("store URL is required (STORE_URL or store.url)")
	}
	if c.Store.AnonKey == "" {
		return fmt.Errorf("store anon key is required (STORE_ANON_KEY or store.anon_key)")
	}
	if c.Model.APIKey == "" {
		return fmt.Errorf("model API key is required (GEMINI_API_KEY or model.api_key)")
	}
	return nil
}
