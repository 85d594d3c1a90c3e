package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.pawchat/config.toml.
type Config struct {
	// ServerURL is the chat server origin, e.g. https://pappi.example.
	ServerURL string `toml:"server_url"`
	// ViewerID identifies the signed-in user; incoming messages from this
	// id render as outgoing.
	ViewerID int64 `toml:"viewer_id"`
	// SessionCookie is the server session cookie value used to
	// authenticate HTTP and WebSocket requests.
	SessionCookie string `toml:"session_cookie"`
	// DefaultDialog opens when no -dialog flag is given.
	DefaultDialog string `toml:"default_dialog"`
	// LocatorCommand is the shell-split command producing "lat lon" on
	// stdout. Empty disables location sharing.
	LocatorCommand string `toml:"locator_command"`
	// RecordCommand is the shell-split command streaming encoded audio to
	// stdout. Empty disables voice notes.
	RecordCommand string `toml:"record_command"`
}

// Load reads config from the given path. Returns an error if the file is missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
