package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProviderMock    = "mock"
	ProviderOpenAI  = "openai"
	ProviderGemini  = "gemini"
	ProviderNewsAPI = "newsapi"
)

type Config struct {
	Server struct {
		Port       string `yaml:"port"`
		CORSOrigin string `yaml:"corsOrigin"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Quiz struct {
		CacheTTL string `yaml:"cacheTTL"`
	} `yaml:"quiz"`
	Auth struct {
		JWTSecret     string `yaml:"jwtSecret"`
		JWTExpiration string `yaml:"jwtExpiration"`
	} `yaml:"auth"`
	AI struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		APIKey   string `yaml:"apiKey"`
	} `yaml:"ai"`
	News struct {
		Provider string `yaml:"provider"`
		APIKey   string `yaml:"apiKey"`
		Country  string `yaml:"country"`
	} `yaml:"news"`
	RateLimit struct {
		Generate struct {
			Requests int    `yaml:"requests"`
			Window   string `yaml:"window"`
		} `yaml:"generate"`
	} `yaml:"rateLimit"`
}

// Default returns the settings used when no file or environment overrides are present.
func Default() Config {
	var cfg Config
	cfg.Server.Port = "5000"
	cfg.Server.CORSOrigin = "http://localhost:3000"
	cfg.Log.Level = "info"
	cfg.Quiz.CacheTTL = "5m"
	cfg.Auth.JWTSecret = "your-secret-key"
	cfg.Auth.JWTExpiration = "7d"
	cfg.AI.Provider = ProviderMock
	cfg.News.Provider = ProviderMock
	cfg.News.Country = "us"
	cfg.RateLimit.Generate.Requests = 10
	cfg.RateLimit.Generate.Window = "1m"
	return cfg
}

// Load reads YAML config from path over the defaults, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	applyEnv(&cfg, os.LookupEnv)
	return cfg, cfg.validate()
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set("PORT", &cfg.Server.Port)
	set("CORS_ORIGIN", &cfg.Server.CORSOrigin)
	set("LOG_LEVEL", &cfg.Log.Level)
	set("DATABASE_URL", &cfg.Postgres.URL)
	set("REDIS_ADDR", &cfg.Redis.Addr)
	set("JWT_SECRET", &cfg.Auth.JWTSecret)
	set("JWT_EXPIRATION", &cfg.Auth.JWTExpiration)
	set("NEWS_API_KEY", &cfg.News.APIKey)

	switch strings.ToLower(cfg.AI.Provider) {
	case ProviderGemini:
		set("GEMINI_API_KEY", &cfg.AI.APIKey)
	default:
		set("OPENAI_API_KEY", &cfg.AI.APIKey)
	}
}

func (c Config) validate() error {
	switch strings.ToLower(c.AI.Provider) {
	case ProviderMock, ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("ai.provider: unknown provider %q", c.AI.Provider)
	}
	switch strings.ToLower(c.News.Provider) {
	case ProviderMock, ProviderNewsAPI:
	default:
		return fmt.Errorf("news.provider: unknown provider %q", c.News.Provider)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwtSecret must not be empty")
	}
	if _, err := ParseDuration(c.Auth.JWTExpiration); err != nil {
		return fmt.Errorf("auth.jwtExpiration: %w", err)
	}
	if rl := c.RateLimit.Generate; rl.Requests > 0 && rl.Window != "" {
		window, err := ParseDuration(rl.Window)
		if err != nil {
			return fmt.Errorf("rateLimit.generate.window: %w", err)
		}
		if window <= 0 {
			return fmt.Errorf("rateLimit.generate.window must be positive, got %q", rl.Window)
		}
	}
	return nil
}

// ParseDuration accepts Go duration syntax plus a whole-day form such as "7d".
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid day duration %q", raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(raw)
}

// TTLDuration parses a duration string or returns the fallback if empty or malformed.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
