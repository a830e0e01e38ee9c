// Package config loads the autonote configuration: the JSON settings file,
// the YAML theme catalog, and the account credentials from the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/autonote/internal/core/quality"
)

// Config is the flat autonote configuration persisted as JSON.
type Config struct {
	Version string    `json:"version"`
	LLM     LLMConfig `json:"llm"`

	// Quality gate cutoffs and the regeneration bound.
	Quality          quality.Thresholds `json:"quality"`
	MaxRegenerations int                `json:"max_regenerations"`

	// Retries against the generation API before the run aborts.
	MaxGenerationRetries int `json:"max_generation_retries"`

	// How many recent ledger entries exclude a theme from reselection.
	RecencyWindow int `json:"recency_window"`

	Timeouts TimeoutConfig `json:"timeouts"`
	Publish  PublishConfig `json:"publish"`

	ThumbnailDir string `json:"thumbnail_dir"`
	ThemesPath   string `json:"themes_path"`
}

// LLMConfig selects the generative models. The API key itself stays in the
// environment, never in the config file.
type LLMConfig struct {
	Model      string `json:"model"`
	ImageModel string `json:"image_model"`
	BaseURL    string `json:"base_url,omitempty"`
	APIKeyEnv  string `json:"api_key_env"`
}

// TimeoutConfig holds the per-external-call upper bounds, in seconds.
type TimeoutConfig struct {
	GenerationSeconds    int `json:"generation_seconds"`
	ImageSeconds         int `json:"image_seconds"`
	BrowserActionSeconds int `json:"browser_action_seconds"`
	BrowserPageSeconds   int `json:"browser_page_seconds"`
}

// PublishConfig holds browser and paid-article settings.
type PublishConfig struct {
	Headless         bool    `json:"headless"`
	PaidArticle      bool    `json:"paid_article"`
	PriceYen         int     `json:"price_yen"`
	FreePreviewRatio float64 `json:"free_preview_ratio"`
}

// DefaultConfig returns the configuration written by `autonote init`.
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		LLM: LLMConfig{
			Model:      "gpt-4o-mini",
			ImageModel: "dall-e-3",
			APIKeyEnv:  "OPENAI_API_KEY",
		},
		Quality: quality.Thresholds{
			MinTotalScore:   40,
			MinWordCount:    800,
			MinHeadingCount: 2,
		},
		MaxRegenerations:     2,
		MaxGenerationRetries: 3,
		RecencyWindow:        30,
		Timeouts: TimeoutConfig{
			GenerationSeconds:    120,
			ImageSeconds:         90,
			BrowserActionSeconds: 30,
			BrowserPageSeconds:   60,
		},
		Publish: PublishConfig{
			Headless:         true,
			PriceYen:         300,
			FreePreviewRatio: 0.3,
		},
		ThumbnailDir: "thumbnails",
		ThemesPath:   "themes.yaml",
	}
}

// Dir returns the autonote configuration directory under the user home.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".autonote"), nil
}

// LoadConfig reads config.json from the given directory.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes config.json to the given directory.
func SaveConfig(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
