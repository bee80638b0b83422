// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	MaxUploadMB    int           `yaml:"max_upload_mb"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"` // websocket origin check; empty = any
	// SubmitsPerMinute throttles POST /runs per client IP through Redis; 0 disables it.
	SubmitsPerMinute int `yaml:"submits_per_minute"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // empty disables the snapshot mirror
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	GeminiKey         string        `yaml:"gemini_key"`
	GeminiURL         string        `yaml:"gemini_url"`
	OpenAIKey         string        `yaml:"openai_key"`
	OpenAIBaseURL     string        `yaml:"openai_base_url"`
	DefaultProvider   string        `yaml:"default_provider"` // gemini|openai
	AnalysisModel     string        `yaml:"analysis_model"`
	ImageModel        string        `yaml:"image_model"`
	VideoModel        string        `yaml:"video_model"`
	VideoPollInterval time.Duration `yaml:"video_poll_interval"`
	VideoMaxPolls     int           `yaml:"video_max_polls"`
	ConcurrentLimit   int           `yaml:"concurrent_limit"` // 0 = unlimited fan-out
	CallTimeout       time.Duration `yaml:"call_timeout"`
}

type SecurityConfig struct {
	// CredentialSecret seals a user-selected API key before it is persisted to Redis.
	// Empty keeps selected keys in memory only.
	CredentialSecret string `yaml:"credential_secret"`
}

type RunConfig struct {
	DefaultMode        string `yaml:"default_mode"`
	DefaultStyle       string `yaml:"default_style"`
	DefaultAspectRatio string `yaml:"default_aspect_ratio"`
	CampaignCount      int    `yaml:"campaign_count"`
	EcommerceCount     int    `yaml:"ecommerce_count"`
}

type Config struct {
	HTTP  HTTPConfig  `yaml:"http"`
	Log   LogConfig   `yaml:"log"`
	Redis RedisConfig `yaml:"redis"`
	AI    AIConfig    `yaml:"ai"`
	Run   RunConfig   `yaml:"run"`

	Security SecurityConfig `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path (optional when it does not exist),
// overlays values from .env and the process environment, then applies defaults.
func LoadConfig(path string, dev bool) (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// env-only deployment
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	cfg.Runtime.Dev = dev

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := firstEnv("GEMINI_API_KEY", "API_KEY"); v != "" {
		cfg.AI.GeminiKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.OpenAIKey = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Port = p
		}
	}
	if v := os.Getenv("CREDENTIAL_SECRET"); v != "" {
		cfg.Security.CredentialSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.MaxUploadMB <= 0 {
		cfg.HTTP.MaxUploadMB = 20
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 30 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	if cfg.AI.DefaultProvider == "" {
		cfg.AI.DefaultProvider = "gemini"
	}
	if cfg.AI.AnalysisModel == "" {
		cfg.AI.AnalysisModel = "gemini-3-pro-preview"
	}
	if cfg.AI.ImageModel == "" {
		cfg.AI.ImageModel = "gemini-3-pro-image-preview"
	}
	if cfg.AI.VideoModel == "" {
		cfg.AI.VideoModel = "veo-3.1-fast-generate-preview"
	}
	if cfg.AI.VideoPollInterval <= 0 {
		cfg.AI.VideoPollInterval = 5 * time.Second
	}
	if cfg.AI.VideoMaxPolls <= 0 {
		cfg.AI.VideoMaxPolls = 60
	}
	if cfg.AI.CallTimeout <= 0 {
		cfg.AI.CallTimeout = 3 * time.Minute
	}

	if cfg.Run.DefaultMode == "" {
		cfg.Run.DefaultMode = "campaign"
	}
	if cfg.Run.DefaultStyle == "" {
		cfg.Run.DefaultStyle = "luxury-premium"
	}
	if cfg.Run.DefaultAspectRatio == "" {
		cfg.Run.DefaultAspectRatio = "1:1"
	}
	if cfg.Run.CampaignCount <= 0 {
		cfg.Run.CampaignCount = 4
	}
	if cfg.Run.EcommerceCount <= 0 {
		cfg.Run.EcommerceCount = 8
	}
}

// Validate checks values that defaults cannot repair.
// A missing Gemini key is fine: the credential gate asks for one at run time.
func (c *Config) Validate() error {
	switch strings.ToLower(c.AI.DefaultProvider) {
	case "gemini", "openai":
	default:
		return fmt.Errorf("ai.default_provider must be gemini or openai, got %q", c.AI.DefaultProvider)
	}
	switch c.Run.DefaultMode {
	case "campaign", "ecommerce":
	default:
		return fmt.Errorf("run.default_mode must be campaign or ecommerce, got %q", c.Run.DefaultMode)
	}
	if c.HTTP.SubmitsPerMinute < 0 {
		return errors.New("http.submits_per_minute must not be negative")
	}
	if c.AI.ConcurrentLimit < 0 {
		return errors.New("ai.concurrent_limit must not be negative")
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
