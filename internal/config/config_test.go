package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoad_CreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Feeds.RefreshIntervalMinutes != 60 {
		t.Errorf("default refresh interval = %d, want 60", cfg.Feeds.RefreshIntervalMinutes)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config file not written: %v", err)
	}
}

func TestLoad_ParsesFile(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9090

[feeds]
refresh_interval_minutes = 15
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Feeds.RefreshIntervalMinutes != 15 {
		t.Errorf("refresh interval = %d, want 15", cfg.Feeds.RefreshIntervalMinutes)
	}
}

func TestLoad_ZeroIntervalDisablesLoop(t *testing.T) {
	path := writeConfig(t, `
[feeds]
refresh_interval_minutes = 0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Feeds.RefreshIntervalMinutes != 0 {
		t.Errorf("refresh interval = %d, want 0 preserved", cfg.Feeds.RefreshIntervalMinutes)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want default 8080 when unset", cfg.Server.Port)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9090

[feeds]
refresh_interval_minutes = 15
`)

	t.Setenv("FEEDWARD_PORT", "3000")
	t.Setenv("FEEDWARD_REFRESH_INTERVAL_MINUTES", "5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("port = %d, want env override 3000", cfg.Server.Port)
	}
	if cfg.Feeds.RefreshIntervalMinutes != 5 {
		t.Errorf("refresh interval = %d, want env override 5", cfg.Feeds.RefreshIntervalMinutes)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "explicit zero port",
			content: "[server]\nport = 0\n",
			wantErr: "invalid server.port",
		},
		{
			name:    "port out of range",
			content: "[server]\nport = 70000\n",
			wantErr: "invalid server.port",
		},
		{
			name:    "negative interval",
			content: "[feeds]\nrefresh_interval_minutes = -1\n",
			wantErr: "refresh_interval_minutes",
		},
		{
			name:    "malformed toml",
			content: "[server\nport = 8080\n",
			wantErr: "parsing config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
