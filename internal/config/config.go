// Package config loads dataveil's file configuration. Everything here is
// passed down as explicit objects; the engine and judge never read
// ambient state, so runs stay deterministic and testable.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// JudgeConfig configures the external AI judge.
type JudgeConfig struct {
	// APIKey authenticates against the judge endpoint. Left empty, the
	// OPENAI_API_KEY environment variable is consulted at load time.
	APIKey string `yaml:"api_key"`

	// Model names the chat model used for judgments.
	Model string `yaml:"model"`

	// BaseURL points at an OpenAI-compatible endpoint. Empty means the
	// default endpoint.
	BaseURL string `yaml:"base_url"`

	// TimeoutSeconds bounds each judge call.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// Concurrency bounds in-flight judge calls within one rule.
	Concurrency int `yaml:"concurrency"`
}

// Timeout returns the per-call timeout as a duration, zero when unset.
func (j JudgeConfig) Timeout() time.Duration {
	return time.Duration(j.TimeoutSeconds) * time.Second
}

// EngineConfig configures suite evaluation.
type EngineConfig struct {
	// Workers sizes the rule-evaluation worker pool.
	Workers int `yaml:"workers"`
}

// Config is the root of the dataveil configuration file.
type Config struct {
	Judge  JudgeConfig  `yaml:"judge"`
	Engine EngineConfig `yaml:"engine"`

	// StorePath locates the SQLite run-history database.
	StorePath string `yaml:"store_path"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Judge: JudgeConfig{
			TimeoutSeconds: 10,
			Concurrency:    4,
		},
		Engine: EngineConfig{
			Workers: 4,
		},
		StorePath: "dataveil.db",
	}
}

// Load reads a YAML config file, filling unset fields with defaults.
// An empty path returns defaults. The judge API key falls back to the
// OPENAI_API_KEY environment variable so the file never has to carry a
// credential.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if cfg.Judge.APIKey == "" {
		cfg.Judge.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Judge.TimeoutSeconds <= 0 {
		cfg.Judge.TimeoutSeconds = 10
	}
	if cfg.Judge.Concurrency <= 0 {
		cfg.Judge.Concurrency = 4
	}
	if cfg.Engine.Workers <= 0 {
		cfg.Engine.Workers = 4
	}
	if cfg.StorePath == "" {
		cfg.StorePath = "dataveil.db"
	}

	return cfg, nil
}
