package app

import (
	"fmt"
	"io"

	"kali-launcher/internal/config"
	"kali-launcher/internal/history"
	"kali-launcher/internal/launcher"
	"kali-launcher/internal/logger"
	"kali-launcher/internal/models"
	"kali-launcher/internal/services"
	"kali-launcher/internal/shutdown"
	"kali-launcher/internal/storage"
)

const (
	AppName    = "Kali Launcher"
	AppID      = "org.kali.launcher"
	AppVersion = "1.2.0"
)

// Options override the defaults resolved from the environment.
type Options struct {
	// ConfigDir replaces the per-user configuration directory.
	ConfigDir string
	// DocumentPath replaces the launcher document location.
	DocumentPath string
	// LogLevel wins over settings and environment when set.
	LogLevel string
}

// Core is everything the GUI, the CLI and the TUI share.
type Core struct {
	Paths    config.Paths
	Settings config.Settings
	Logger   logger.Logger
	Runner   *launcher.Runner
	History  *history.Store
	Service  *services.LauncherService
	Shutdown *shutdown.Manager

	logCloser io.Closer
}

// Bootstrap builds the core and loads the document. A document that could
// not be read is logged and replaced by the default one; only setup failures
// are returned.
func Bootstrap(opts Options) (*Core, error) {
	paths, err := resolvePaths(opts)
	if err != nil {
		return nil, err
	}

	settings, settingsErr := config.LoadSettings(paths.Settings)

	level := settings.EffectiveLogLevel()
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	log, closer, err := logger.NewLauncherLogger(logger.ParseLevel(level), paths.ErrorLog)
	if err != nil {
		return nil, fmt.Errorf("open error log: %w", err)
	}
	if settingsErr != nil {
		log.Warning("Core", "settings ignored", map[string]interface{}{"error": settingsErr.Error()})
	}

	log.Info("Core", "starting", map[string]interface{}{
		"version":    AppVersion,
		"config_dir": paths.Dir,
		"document":   paths.Document,
		"log_level":  level,
	})

	manager := shutdown.NewManager(log)

	var hist *history.Store
	var histStore services.HistoryStore
	if settings.HistoryEnabled {
		hist, err = history.Open(paths.History, log)
		if err != nil {
			log.Error("Core", err, map[string]interface{}{"history": paths.History})
		} else {
			histStore = hist
			manager.Register("history", hist)
		}
	}

	runner := launcher.NewRunner(log, launcher.WithPreferredTerminal(settings.PreferredTerminal))
	manager.Register("runner", runner)

	store := storage.NewFileStore(paths.Document, log)
	service := services.NewLauncherService(models.NewDocumentRepository(nil), store, runner, histStore, log)
	manager.Register("launcher service", service)

	// Load errors are already logged; the default document is in use.
	_ = service.Load()

	return &Core{
		Paths:     paths,
		Settings:  settings,
		Logger:    log,
		Runner:    runner,
		History:   hist,
		Service:   service,
		Shutdown:  manager,
		logCloser: closer,
	}, nil
}

func resolvePaths(opts Options) (config.Paths, error) {
	var paths config.Paths
	if opts.ConfigDir != "" {
		paths = config.PathsFor(opts.ConfigDir)
	} else {
		p, err := config.DefaultPaths()
		if err != nil {
			return config.Paths{}, fmt.Errorf("resolve config dir: %w", err)
		}
		paths = p
	}
	if opts.DocumentPath != "" {
		paths.Document = opts.DocumentPath
	}
	return paths, nil
}

// SaveSettings writes the current settings back to disk.
func (c *Core) SaveSettings() error {
	return config.SaveSettings(c.Paths.Settings, c.Settings)
}

// Close shuts every component down and closes the error log.
func (c *Core) Close() {
	c.Shutdown.Shutdown()
	if c.logCloser != nil {
		_ = c.logCloser.Close()
	}
}
