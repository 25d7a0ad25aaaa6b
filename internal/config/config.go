package config

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const (
	defaultAddr         = ":5000"
	defaultPollInterval = time.Second
	defaultSettingsName = "settings.json"
)

// AppConfig holds application configuration
type AppConfig struct {
	logger       *zap.Logger
	addr         string
	pollInterval time.Duration
	settingsFile string
	panelEnabled bool
}

// NewAppConfig creates a new application configuration instance.
// Values are read from environment variables or fall back to defaults.
func NewAppConfig(logger *zap.Logger) *AppConfig {
	addr := os.Getenv("NOWPLAYING_ADDR")
	if addr == "" {
		addr = defaultAddr
	}

	interval := defaultPollInterval
	if v := os.Getenv("NOWPLAYING_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		} else {
			logger.Warn("Invalid poll interval, using default",
				zap.String("value", v),
				zap.Duration("default", defaultPollInterval))
		}
	}

	settingsFile := os.Getenv("NOWPLAYING_SETTINGS_FILE")
	if settingsFile == "" {
		settingsFile = defaultSettingsPath()
	}

	panelEnabled := os.Getenv("NOWPLAYING_PANEL") == "1"

	logger.Info("Configuration loaded",
		zap.String("addr", addr),
		zap.Duration("pollInterval", interval),
		zap.String("settingsFile", settingsFile),
		zap.Bool("panel", panelEnabled))

	return &AppConfig{
		logger:       logger,
		addr:         addr,
		pollInterval: interval,
		settingsFile: settingsFile,
		panelEnabled: panelEnabled,
	}
}

// defaultSettingsPath places the settings file beside the executable so a
// portable install keeps its preferences with the binary.
func defaultSettingsPath() string {
	exe, err := os.Executable()
	if err != nil {
		return defaultSettingsName
	}
	return filepath.Join(filepath.Dir(exe), defaultSettingsName)
}

// Addr returns the listen address for the HTTP surface
func (c *AppConfig) Addr() string {
	return c.addr
}

// PollInterval returns the media poll cycle length
func (c *AppConfig) PollInterval() time.Duration {
	return c.pollInterval
}

// SettingsFile returns the path of the persisted settings file
func (c *AppConfig) SettingsFile() string {
	return c.settingsFile
}

// PanelEnabled reports whether the terminal control panel should run
func (c *AppConfig) PanelEnabled() bool {
	return c.panelEnabled
}
