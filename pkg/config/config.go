// Package config loads the assistant's configuration from a TOML file
// with environment-variable overrides for credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the full program configuration.
type Config struct {
	Gemini  GeminiConfig  `toml:"gemini"`
	Speech  SpeechConfig  `toml:"speech"`
	Audio   AudioConfig   `toml:"audio"`
	History HistoryConfig `toml:"history"`

	// Debug enables verbose logging.
	Debug bool `toml:"debug"`
}

// GeminiConfig configures the chat and synthesis client.
type GeminiConfig struct {
	// APIKey authenticates against the Gemini API. Usually supplied via
	// the GEMINI_API_KEY environment variable rather than the file.
	APIKey string `toml:"api_key"`

	ChatModel string `toml:"chat_model"`
	TTSModel  string `toml:"tts_model"`
	Voice     string `toml:"voice"`
}

// SpeechConfig configures voice input.
type SpeechConfig struct {
	// APIKey authenticates against the recognition service. Usually
	// supplied via DEEPGRAM_API_KEY. Empty disables voice input.
	APIKey string `toml:"api_key"`

	Language string `toml:"language"`
	Model    string `toml:"model"`
}

// AudioConfig configures spoken-reply playback.
type AudioConfig struct {
	// Enabled turns spoken replies on. Defaults to true.
	Enabled bool `toml:"enabled"`
}

// HistoryConfig configures transcript persistence.
type HistoryConfig struct {
	// Enabled turns persistence on. Defaults to true.
	Enabled bool `toml:"enabled"`

	// Path to the SQLite database file. Empty uses the default location
	// under the user config directory.
	Path string `toml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Audio:   AudioConfig{Enabled: true},
		History: HistoryConfig{Enabled: true},
	}
}

// Load reads the configuration file at path (when it exists) over the
// defaults, then applies environment overrides. A missing file is not an
// error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv("DEEPGRAM_API_KEY"); v != "" {
		c.Speech.APIKey = v
	}
}

// DefaultPath returns the default config file location under the user
// config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "quantum.toml"
	}
	return filepath.Join(dir, "quantum", "quantum.toml")
}

// stateDir resolves the per-user state directory (mutable data such as
// the history database and logs), following XDG conventions.
func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "state")
}

// DefaultHistoryPath returns the default history database location under
// the user state directory.
func DefaultHistoryPath() string {
	return filepath.Join(stateDir(), "quantum", "history.db")
}

// DefaultLogPath returns the default log file location under the user
// state directory.
func DefaultLogPath() string {
	return filepath.Join(stateDir(), "quantum", "quantum.log")
}

// HistoryPath resolves the configured history database path.
func (c Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return DefaultHistoryPath()
}
