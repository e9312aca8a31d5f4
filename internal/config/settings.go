package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings are user preferences that live beside the launcher document.
type Settings struct {
	PreferredTerminal string  `yaml:"preferred_terminal"`
	LogLevel          string  `yaml:"log_level"`
	WindowWidth       float32 `yaml:"window_width"`
	WindowHeight      float32 `yaml:"window_height"`
	HistoryEnabled    bool    `yaml:"history_enabled"`
}

const (
	DefaultWindowWidth  = 1100
	DefaultWindowHeight = 700

	// Wide enough for the sidebar plus four launcher cards.
	MinWindowWidth  = 200 + 2*20 + 4*180 + 3*20 + 50
	MinWindowHeight = 480
)

func DefaultSettings() Settings {
	return Settings{
		LogLevel:       "info",
		WindowWidth:    DefaultWindowWidth,
		WindowHeight:   DefaultWindowHeight,
		HistoryEnabled: true,
	}
}

// LoadSettings reads path over the defaults. A missing file yields the
// defaults without error.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), fmt.Errorf("parse settings %s: %w", path, err)
	}

	settings.clamp()
	return settings, nil
}

func SaveSettings(path string, settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// EffectiveLogLevel applies LOG_LEVEL and DEBUG=1 on top of the file value.
func (s Settings) EffectiveLogLevel() string {
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		return lvl
	}
	if os.Getenv("DEBUG") == "1" {
		return "debug"
	}
	if s.LogLevel == "" {
		return "info"
	}
	return s.LogLevel
}

func (s *Settings) clamp() {
	if s.WindowWidth < MinWindowWidth {
		s.WindowWidth = MinWindowWidth
	}
	if s.WindowHeight < MinWindowHeight {
		s.WindowHeight = MinWindowHeight
	}
}
