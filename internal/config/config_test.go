package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dailytask", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Timers.TickInterval != time.Second || cfg.Timers.ReminderInterval != 5*time.Second {
		t.Errorf("unexpected timer defaults %+v", cfg.Timers)
	}
	if cfg.Storage.Key != "tasks_v4" || !cfg.Notifications.Enabled {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoadMissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dailytask", "config.yaml")
	if _, err := Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected default config at %s: %v", path, err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.Timers.ReminderInterval != 5*time.Second || got.Export.Dir != "." || !got.Notifications.Enabled {
		t.Errorf("unexpected reloaded config %+v", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `storage:
  path: /tmp/tasks.db
timers:
  reminder_interval: 30s
export:
  dir: /tmp/exports
  copy_to_clipboard: true
notifications:
  enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage.Path != "/tmp/tasks.db" || cfg.Storage.Key != "tasks_v4" {
		t.Errorf("unexpected storage %+v", cfg.Storage)
	}
	if cfg.Timers.ReminderInterval != 30*time.Second || cfg.Timers.TickInterval != time.Second {
		t.Errorf("unexpected timers %+v", cfg.Timers)
	}
	if cfg.Export.Dir != "/tmp/exports" || !cfg.Export.CopyToClipboard {
		t.Errorf("unexpected export %+v", cfg.Export)
	}
	if cfg.Notifications.Enabled {
		t.Error("Expected notifications disabled")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("timers: [unclosed"), 0o644)

	if _, err := Load(path); err == nil {
		t.Error("Expected decode error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Timers.TickInterval = 2 * time.Second
	cfg.Log.File = "/tmp/dailytask.log"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Timers.TickInterval != 2*time.Second || got.Log.File != cfg.Log.File {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestPathUsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	path, err := Path()
	if err != nil {
		t.Fatalf("Path failed: %v", err)
	}
	if path != filepath.Join("/xdg", "dailytask", "config.yaml") {
		t.Errorf("unexpected path %s", path)
	}
}
