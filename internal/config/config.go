// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Addr           string        `yaml:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	ExportTimeout  time.Duration `yaml:"export_timeout"`
	SecureCookies  bool          `yaml:"secure_cookies"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Password   string        `yaml:"password"`    // shared secret, compared as-is
	JWTSecret  string        `yaml:"jwt_secret"`  // signs the admin cookie
	SessionTTL time.Duration `yaml:"session_ttl"` // admin cookie lifetime
}

type StoreConfig struct {
	Driver string `yaml:"driver"` // memory|redis
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AIConfig struct {
	TextProvider    string        `yaml:"text_provider"`    // gemini|openai|anthropic|noop
	ImageProvider   string        `yaml:"image_provider"`   // gemini|openai|noop
	GeminiKey       string        `yaml:"gemini_key"`
	GeminiURL       string        `yaml:"gemini_url"`
	GeminiModel     string        `yaml:"gemini_model"`
	ImagenModel     string        `yaml:"imagen_model"`
	OpenAIKey       string        `yaml:"openai_key"`
	OpenAIBaseURL   string        `yaml:"openai_base_url"`
	OpenAIModel     string        `yaml:"openai_model"`
	OpenAIImage     string        `yaml:"openai_image_model"`
	AnthropicKey    string        `yaml:"anthropic_key"`
	AnthropicModel  string        `yaml:"anthropic_model"`
	Temperature     float64       `yaml:"temperature"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
	ConcurrentLimit int           `yaml:"concurrent_limit"` // max concurrent AI calls
	ImageWorkers    int           `yaml:"image_workers"`    // background image-phase workers
	ImageQueue      int           `yaml:"image_queue"`
	ImageTimeout    time.Duration `yaml:"image_timeout"`    // whole image phase of one batch
}

type ExportConfig struct {
	ChromePath string        `yaml:"chrome_path"` // empty: chromedp default lookup
	Scale      float64       `yaml:"scale"`
	Quality    int           `yaml:"quality"` // jpeg quality 1..100
	Timeout    time.Duration `yaml:"timeout"`
	LockTTL    time.Duration `yaml:"lock_ttl"`
	FileName   string        `yaml:"file_name"`
}

type SessionConfig struct {
	CookieName   string        `yaml:"cookie_name"`
	TTL          time.Duration `yaml:"ttl"`
	RedeemLimit  int           `yaml:"redeem_limit"`  // attempts per window, 0 disables
	RedeemWindow time.Duration `yaml:"redeem_window"` // fixed window length
}

type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Log     LogConfig     `yaml:"log"`
	Admin   AdminConfig   `yaml:"admin"`
	Store   StoreConfig   `yaml:"store"`
	Redis   RedisConfig   `yaml:"redis"`
	AI      AIConfig      `yaml:"ai"`
	Export  ExportConfig  `yaml:"export"`
	Session SessionConfig `yaml:"session"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig parses -config and -dev from the command line and loads the file.
func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	return Load(configPath, dev)
}

// Load reads a yaml file, applies defaults and validates.
func Load(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	cfg.HTTP.RequestTimeout = orDuration(cfg.HTTP.RequestTimeout, 90*time.Second)
	cfg.HTTP.ExportTimeout = orDuration(cfg.HTTP.ExportTimeout, 2*time.Minute)

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	cfg.Admin.SessionTTL = orDuration(cfg.Admin.SessionTTL, 12*time.Hour)

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "memory"
	}

	if cfg.AI.TextProvider == "" {
		cfg.AI.TextProvider = "gemini"
	}
	if cfg.AI.ImageProvider == "" {
		cfg.AI.ImageProvider = cfg.AI.TextProvider
		if cfg.AI.ImageProvider == "anthropic" {
			cfg.AI.ImageProvider = "noop"
		}
	}
	if cfg.AI.GeminiModel == "" {
		cfg.AI.GeminiModel = "gemini-2.5-flash"
	}
	if cfg.AI.ImagenModel == "" {
		cfg.AI.ImagenModel = "imagen-3.0-generate-002"
	}
	if cfg.AI.OpenAIModel == "" {
		cfg.AI.OpenAIModel = "gpt-4o-mini"
	}
	if cfg.AI.OpenAIImage == "" {
		cfg.AI.OpenAIImage = "dall-e-3"
	}
	if cfg.AI.AnthropicModel == "" {
		cfg.AI.AnthropicModel = "claude-sonnet-4-5"
	}
	if cfg.AI.Temperature <= 0 {
		cfg.AI.Temperature = 0.8
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 4096
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 4
	}
	if cfg.AI.ImageWorkers <= 0 {
		cfg.AI.ImageWorkers = 2
	}
	if cfg.AI.ImageQueue <= 0 {
		cfg.AI.ImageQueue = 64
	}
	cfg.AI.ImageTimeout = orDuration(cfg.AI.ImageTimeout, 2*time.Minute)

	if cfg.Export.Scale <= 0 {
		cfg.Export.Scale = 2
	}
	if cfg.Export.Quality <= 0 || cfg.Export.Quality > 100 {
		cfg.Export.Quality = 95
	}
	cfg.Export.Timeout = orDuration(cfg.Export.Timeout, 90*time.Second)
	cfg.Export.LockTTL = orDuration(cfg.Export.LockTTL, 3*time.Minute)
	if cfg.Export.FileName == "" {
		cfg.Export.FileName = "scenario-questions.pdf"
	}

	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "sq_session"
	}
	cfg.Session.TTL = orDuration(cfg.Session.TTL, 24*time.Hour)
	if cfg.Session.RedeemLimit < 0 {
		cfg.Session.RedeemLimit = 0
	}
	cfg.Session.RedeemWindow = orDuration(cfg.Session.RedeemWindow, time.Minute)
}

// Minimal validation
func (cfg *Config) validate() error {
	if cfg.Admin.Password == "" {
		return errors.New("admin.password is required")
	}
	if cfg.Admin.JWTSecret == "" {
		if !cfg.Runtime.Dev {
			return errors.New("admin.jwt_secret is required")
		}
		cfg.Admin.JWTSecret = "dev-secret"
	}
	switch cfg.Store.Driver {
	case "memory":
	case "redis":
		if cfg.Redis.URL == "" {
			return errors.New("redis.url is required when store.driver is redis")
		}
	default:
		return fmt.Errorf("store.driver %q is not supported", cfg.Store.Driver)
	}
	switch cfg.AI.TextProvider {
	case "gemini":
		if cfg.AI.GeminiKey == "" {
			return errors.New("ai.gemini_key is required for the gemini provider")
		}
	case "openai":
		if cfg.AI.OpenAIKey == "" {
			return errors.New("ai.openai_key is required for the openai provider")
		}
	case "anthropic":
		if cfg.AI.AnthropicKey == "" {
			return errors.New("ai.anthropic_key is required for the anthropic provider")
		}
	case "noop":
	default:
		return fmt.Errorf("ai.text_provider %q is not supported", cfg.AI.TextProvider)
	}
	switch cfg.AI.ImageProvider {
	case "gemini":
		if cfg.AI.GeminiKey == "" {
			return errors.New("ai.gemini_key is required for gemini images")
		}
	case "openai":
		if cfg.AI.OpenAIKey == "" {
			return errors.New("ai.openai_key is required for openai images")
		}
	case "noop":
	default:
		return fmt.Errorf("ai.image_provider %q is not supported", cfg.AI.ImageProvider)
	}
	return nil
}

func orDuration(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
