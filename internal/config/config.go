package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Roles understood by the backend; each maps to an API prefix.
const (
	RoleFormateur   = "formateur"
	RoleAdminSystem = "admin-systeme"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Backend struct {
		BaseURL string `yaml:"baseURL"`
		Token   string `yaml:"token"`
		Role    string `yaml:"role"`
		Timeout string `yaml:"timeout"`
	} `yaml:"backend"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Cache struct {
		TTL string `yaml:"ttl"`
	} `yaml:"cache"`
	Log struct {
		RollbarToken string `yaml:"rollbarToken"`
		Env          string `yaml:"env"`
	} `yaml:"log"`
}

// Load reads YAML config from path, then applies secrets from the
// environment (and a sibling .env file when present).
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := loadDotEnv(".env"); err != nil {
		return cfg, err
	}
	cfg.applyEnv()
	if cfg.Backend.Role == "" {
		cfg.Backend.Role = RoleFormateur
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CONSOLE_API_TOKEN"); v != "" {
		c.Backend.Token = v
	}
	if v := os.Getenv("CONSOLE_ROLLBAR_TOKEN"); v != "" {
		c.Log.RollbarToken = v
	}
	if v := os.Getenv("CONSOLE_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
}

// Validate rejects configs the console cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return fmt.Errorf("backend baseURL not configured")
	}
	switch c.Backend.Role {
	case RoleFormateur, RoleAdminSystem:
	default:
		return fmt.Errorf("unknown backend role %q", c.Backend.Role)
	}
	return nil
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
