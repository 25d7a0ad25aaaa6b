package config

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNewAppConfig_Defaults(t *testing.T) {
	cfg := NewAppConfig(zap.NewNop())

	if cfg.Addr() != ":5000" {
		t.Errorf("Addr: expected ':5000', got '%s'", cfg.Addr())
	}
	if cfg.PollInterval() != time.Second {
		t.Errorf("PollInterval: expected 1s, got %v", cfg.PollInterval())
	}
	if cfg.SettingsFile() == "" {
		t.Error("SettingsFile should never be empty")
	}
	if cfg.PanelEnabled() {
		t.Error("Panel should be disabled by default")
	}
}

func TestNewAppConfig_Environment(t *testing.T) {
	t.Setenv("NOWPLAYING_ADDR", "127.0.0.1:8080")
	t.Setenv("NOWPLAYING_POLL_INTERVAL", "250ms")
	t.Setenv("NOWPLAYING_SETTINGS_FILE", "/tmp/nowplaying-settings.json")
	t.Setenv("NOWPLAYING_PANEL", "1")

	cfg := NewAppConfig(zap.NewNop())

	if cfg.Addr() != "127.0.0.1:8080" {
		t.Errorf("Addr: got '%s'", cfg.Addr())
	}
	if cfg.PollInterval() != 250*time.Millisecond {
		t.Errorf("PollInterval: got %v", cfg.PollInterval())
	}
	if cfg.SettingsFile() != "/tmp/nowplaying-settings.json" {
		t.Errorf("SettingsFile: got '%s'", cfg.SettingsFile())
	}
	if !cfg.PanelEnabled() {
		t.Error("Panel should be enabled")
	}
}

func TestNewAppConfig_InvalidInterval(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"Garbage", "not-a-duration"},
		{"Zero", "0s"},
		{"Negative", "-3s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NOWPLAYING_POLL_INTERVAL", tt.value)

			cfg := NewAppConfig(zap.NewNop())
			if cfg.PollInterval() != time.Second {
				t.Errorf("expected fallback to 1s, got %v", cfg.PollInterval())
			}
		})
	}
}
