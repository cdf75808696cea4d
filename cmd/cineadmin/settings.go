package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultServer      = "http://localhost:8080"
	defaultTimeoutSecs = 10
	settingsFileName   = ".cineadmin.toml"
)

// Settings is the CLI's persisted state.
type Settings struct {
	Server        string `toml:"server"`
	Token         string `toml:"token"`
	TimeoutSecs   int    `toml:"timeout_secs"`
	StrictCascade bool   `toml:"strict_cascade"`
}

// DefaultSettings points at a local server.
func DefaultSettings() Settings {
	return Settings{Server: defaultServer, TimeoutSecs: defaultTimeoutSecs}
}

// Timeout is the per-call timeout.
func (s Settings) Timeout() time.Duration {
	if s.TimeoutSecs <= 0 {
		return defaultTimeoutSecs * time.Second
	}
	return time.Duration(s.TimeoutSecs) * time.Second
}

func defaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return settingsFileName
	}
	return filepath.Join(home, settingsFileName)
}

// LoadSettings reads path. A missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	if err := toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if settings.Server == "" {
		settings.Server = defaultServer
	}
	return settings, nil
}

// SaveSettings writes s to path, readable only by the owner since it holds the token.
func SaveSettings(path string, s Settings) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
