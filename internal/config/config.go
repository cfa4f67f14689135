// Package config loads the server configuration from a YAML file with
// environment fallbacks for credentials.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration. Zero values select the
// filesystem-backed defaults under BasePath.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8000".
	Addr string `yaml:"addr"`

	// BasePath roots all filesystem-backed stores (default ".lattice").
	BasePath string `yaml:"base_path"`

	// JSONLogs switches the logger to JSON output.
	JSONLogs bool `yaml:"json_logs"`

	// Chunking overrides the document splitting window.
	Chunking struct {
		Size    int `yaml:"size"`
		Overlap int `yaml:"overlap"`
	} `yaml:"chunking"`

	// Redis, when enabled, replaces the file-backed workflow and chat stores.
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	// Postgres, when a DSN is set, replaces the file-backed vector store
	// with pgvector.
	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`

	// Providers carries API credentials. Empty fields fall back to the
	// OPENAI_API_KEY, GOOGLE_API_KEY and SERP_API_KEY environment variables.
	Providers struct {
		OpenAIKey string `yaml:"openai_key"`
		GoogleKey string `yaml:"google_key"`
		SerpKey   string `yaml:"serp_key"`
	} `yaml:"providers"`
}

// Default returns the zero-config setup: file stores under .lattice,
// listening on :8000, credentials from the environment.
func Default() Config {
	var cfg Config
	cfg.Addr = ":8000"
	cfg.BasePath = ".lattice"
	cfg.applyEnv()
	return cfg
}

// Load reads a YAML config file and applies environment fallbacks.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if cfg.BasePath == "" {
		cfg.BasePath = ".lattice"
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if c.Providers.OpenAIKey == "" {
		c.Providers.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Providers.GoogleKey == "" {
		c.Providers.GoogleKey = os.Getenv("GOOGLE_API_KEY")
	}
	if c.Providers.SerpKey == "" {
		c.Providers.SerpKey = os.Getenv("SERP_API_KEY")
	}
}
