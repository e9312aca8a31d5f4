package config

import (
	"os"
	"path/filepath"
)

const (
	AppDirName       = "kali_launcher"
	DocumentFileName = ".kali_launcher.json"
	SettingsFileName = "settings.yaml"
	ErrorLogFileName = "error.log"
	HistoryFileName  = "history.db"

	// DirEnv overrides the configuration directory.
	DirEnv = "KALI_LAUNCHER_CONFIG_DIR"
)

// Dir returns the per-user configuration directory. It is not created.
func Dir() (string, error) {
	if dir := os.Getenv(DirEnv); dir != "" {
		return dir, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppDirName), nil
}

// Paths holds every file location derived from the configuration directory.
type Paths struct {
	Dir      string
	Document string
	Settings string
	ErrorLog string
	History  string
}

func PathsFor(dir string) Paths {
	return Paths{
		Dir:      dir,
		Document: filepath.Join(dir, DocumentFileName),
		Settings: filepath.Join(dir, SettingsFileName),
		ErrorLog: filepath.Join(dir, ErrorLogFileName),
		History:  filepath.Join(dir, HistoryFileName),
	}
}

// DefaultPaths resolves Dir and derives the file locations from it.
func DefaultPaths() (Paths, error) {
	dir, err := Dir()
	if err != nil {
		return Paths{}, err
	}
	return PathsFor(dir), nil
}
