// Package config handles configuration and credentials for healthchat.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/diogo/healthchat/internal/models"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`             // "clinic", a glamour style name, or path to a JSON style
	EnableEmoji      bool   `json:"enable_emoji"`      // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"` // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`        // Enable word wrap in table cells
}

// RelayConfig tunes the relay endpoint. Credentials never live here; the
// upstream key comes from the environment.
type RelayConfig struct {
	ListenAddr  string  `json:"listen_addr"`
	Path        string  `json:"path"`
	UpstreamURL string  `json:"upstream_url"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// Config represents the user configuration
type Config struct {
	// RelayURL is the base URL the chat client posts to. The environment
	// variable HEALTHCHAT_RELAY_URL takes precedence when set.
	RelayURL string `json:"relay_url,omitempty"`
	// Verbose enables request details on stderr in the ask command.
	Verbose         bool           `json:"verbose"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
	Relay           RelayConfig    `json:"relay"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "clinic",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// DefaultRelayConfig returns the default relay configuration
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		ListenAddr:  models.DefaultListenAddr,
		Path:        models.DefaultRelayPath,
		UpstreamURL: models.EndpointChatCompletions,
		Model:       models.DefaultModel,
		Temperature: models.DefaultTemperature,
		MaxTokens:   models.DefaultMaxTokens,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		RelayURL:        models.DefaultRelayURL,
		Verbose:         false,
		CopyToClipboard: false,
		TUITheme:        "clinic",
		Markdown:        DefaultMarkdownConfig(),
		Relay:           DefaultRelayConfig(),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".healthchat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Relay = cfg.Relay.withDefaults()
	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// withDefaults fills zero values left by a partial config file
func (r RelayConfig) withDefaults() RelayConfig {
	def := DefaultRelayConfig()
	if r.ListenAddr == "" {
		r.ListenAddr = def.ListenAddr
	}
	if r.Path == "" {
		r.Path = def.Path
	}
	if r.UpstreamURL == "" {
		r.UpstreamURL = def.UpstreamURL
	}
	if r.Model == "" {
		r.Model = def.Model
	}
	if r.MaxTokens <= 0 {
		r.MaxTokens = def.MaxTokens
	}
	return r
}
