package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type ServerConfig struct {
	Addr        string        `toml:"addr"`
	DataDir     string        `toml:"data_dir"`
	CatalogPath string        `toml:"catalog_path"`
	TickEvery   time.Duration `toml:"tick_every"`
	PerClick    float64       `toml:"per_click"`
	LogLevel    string        `toml:"log_level"`
	LogFormat   string        `toml:"log_format"` // "json" or "text"
}

type CLIConfig struct {
	APIBaseURL string
	QueuePath  string
}

// LoadServer layers defaults, the optional TOML file at path and the
// environment, in that order. An empty path skips the file.
func LoadServer(path string) (ServerConfig, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Addr = port
	} else {
		cfg.Addr = envDefault("TYCOON_ADDR", cfg.Addr)
	}
	cfg.DataDir = envDefault("TYCOON_DATA_DIR", cfg.DataDir)
	cfg.CatalogPath = envDefault("TYCOON_CATALOG", cfg.CatalogPath)
	cfg.TickEvery = envDurationDefault("TYCOON_TICK_EVERY", cfg.TickEvery)
	cfg.PerClick = envFloatDefault("TYCOON_PER_CLICK", cfg.PerClick)
	cfg.LogLevel = strings.ToLower(envDefault("TYCOON_LOG_LEVEL", cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(envDefault("TYCOON_LOG_FORMAT", cfg.LogFormat))

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Addr:      ":8080",
		DataDir:   filepath.Join(homeDir(), ".tycoon"),
		TickEvery: 60 * time.Second,
		PerClick:  1,
		LogLevel:  "info",
		LogFormat: "json",
	}
}

func (c ServerConfig) validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("data_dir is required")
	}
	if c.TickEvery <= 0 {
		return fmt.Errorf("tick_every must be > 0, got %s", c.TickEvery)
	}
	if c.PerClick < 0 {
		return fmt.Errorf("per_click must be >= 0, got %g", c.PerClick)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("log_format must be json or text, got %q", c.LogFormat)
	}
	return nil
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("TYC_API_BASE_URL", "http://localhost:8080"), "/"),
		QueuePath:  envDefault("TYC_QUEUE_PATH", filepath.Join(homeDir(), ".tyc", "queue.json")),
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return home
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envFloatDefault(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
