package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Project  string         `yaml:"project"`
	Version  int            `yaml:"version"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Server   ServerConfig   `yaml:"server"`
	LLM      LLMConfig      `yaml:"llm"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type CacheConfig struct {
	// Addr is the redis host:port. Empty disables the remote cache and the
	// service runs with the in-process cache instead.
	Addr       string   `yaml:"addr"`
	Password   string   `yaml:"password"`
	DB         int      `yaml:"db"`
	PublicTTL  Duration `yaml:"public_ttl"`
	PrivateTTL Duration `yaml:"private_ttl"`
}

// Duration accepts Go duration strings ("10m", "90s") in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

const (
	DefaultPublicTTL  = Duration(600 * time.Second)
	DefaultPrivateTTL = Duration(180 * time.Second)
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if dsn := os.Getenv("FICTURES_DATABASE_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if addr := os.Getenv("FICTURES_REDIS_ADDR"); addr != "" {
		cfg.Cache.Addr = addr
	}
	if key := os.Getenv("FICTURES_LLM_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Cache.PublicTTL <= 0 {
		cfg.Cache.PublicTTL = DefaultPublicTTL
	}
	if cfg.Cache.PrivateTTL <= 0 {
		cfg.Cache.PrivateTTL = DefaultPrivateTTL
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return fmt.Errorf("database dsn is required")
	}
	if cfg.Cache.PrivateTTL > cfg.Cache.PublicTTL {
		return fmt.Errorf("private_ttl must not exceed public_ttl")
	}
	return nil
}
