// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	appName        = "scriven"
	configFileName = "config.json"
)

// Config represents the application configuration. The dictation core
// reads it and never mutates it.
type Config struct {
	// APIKey authenticates against the recognition and rewrite service.
	APIKey string `json:"api_key"`

	// PostProcessEnabled turns the rewrite pass on or off.
	PostProcessEnabled bool `json:"post_process_enabled"`

	// PostProcessPrompt is the rewrite instruction. An empty prompt
	// disables the pass even when enabled.
	PostProcessPrompt string `json:"post_process_prompt,omitempty"`

	// RewriteModel is the model identifier sent to the rewrite service.
	RewriteModel string `json:"rewrite_model,omitempty"`

	// RewriteBackend selects the rewrite service: "task" or "openai".
	RewriteBackend string `json:"rewrite_backend,omitempty"`

	// OpenAIAPIKey authenticates the openai rewrite backend. Falls back
	// to APIKey when empty.
	OpenAIAPIKey string `json:"openai_api_key,omitempty"`

	// VocabularyBoost lists hint phrases for the recognition service.
	VocabularyBoost []string `json:"vocabulary_boost,omitempty"`

	// Locale selects the sentence-boundary punctuation set, e.g. "en".
	Locale string `json:"locale,omitempty"`

	// Endpoint overrides, mainly for testing against local services.
	TokenURL   string `json:"token_url,omitempty"`
	StreamURL  string `json:"stream_url,omitempty"`
	RewriteURL string `json:"rewrite_url,omitempty"`

	// HistoryEnabled archives finalized segments locally.
	HistoryEnabled bool `json:"history_enabled"`

	// CopyToClipboard copies the dictated text when a session stops.
	CopyToClipboard bool `json:"copy_to_clipboard"`

	// Hotkey is the global chord toggling dictation, e.g.
	// ["ctrl", "shift", "d"]. Empty disables the hotkey.
	Hotkey []string `json:"hotkey,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		PostProcessEnabled: true,
		PostProcessPrompt:  "Fix grammar, punctuation and capitalization. Keep the wording and meaning unchanged. Return only the corrected text.",
		RewriteModel:       "default",
		RewriteBackend:     "task",
		VocabularyBoost:    []string{"new line"},
		Locale:             "en",
		HistoryEnabled:     true,
		Hotkey:             []string{"ctrl", "shift", "d"},
	}
}

// Load loads configuration from the config file. Returns the default
// config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}
	return loadFrom(path)
}

func loadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}
	return c.saveTo(path)
}

func (c *Config) saveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// DataDir returns the directory for local application data such as the
// dictation history.
func DataDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(configDir, appName), nil
}

func configPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}
