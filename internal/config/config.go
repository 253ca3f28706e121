package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort        = "8080"
	DefaultDatabaseURL = "sqlite:///quiz.db"
	DefaultSecretKey   = "a-very-secret-key"
)

type Config struct {
	Server struct {
		Port      string `yaml:"port"`
		SecretKey string `yaml:"secret_key"`
		// SecureCookies marks the session cookie Secure; enable behind TLS.
		SecureCookies bool `yaml:"secure_cookies"`
	} `yaml:"server"`
	Database struct {
		URL          string `yaml:"url"`
		MaxOpenConns int    `yaml:"max_open_conns"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Session struct {
		TTL string `yaml:"ttl"`
	} `yaml:"session"`
	Quiz struct {
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"quiz"`
	Admin struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"admin"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads YAML config from path, then applies environment overrides.
// A missing file is not an error: defaults and the environment still apply.
func Load(path string) (Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return cfg, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		key string
		dst *string
	}{
		{"PORT", &c.Server.Port},
		{"SECRET_KEY", &c.Server.SecretKey},
		{"DATABASE_URL", &c.Database.URL},
		{"REDIS_ADDR", &c.Redis.Addr},
		{"REDIS_PASSWORD", &c.Redis.Password},
		{"LOG_LEVEL", &c.Log.Level},
		{"ADMIN_USERNAME", &c.Admin.Username},
		{"ADMIN_PASSWORD", &c.Admin.Password},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Server.SecretKey == "" {
		c.Server.SecretKey = DefaultSecretKey
	}
	if c.Database.URL == "" {
		c.Database.URL = DefaultDatabaseURL
	}
	if c.Admin.Username == "" {
		c.Admin.Username = "admin"
	}
	if c.Admin.Password == "" {
		c.Admin.Password = "password"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
