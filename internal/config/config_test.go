package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// isolate points the home and working directories at empty temp dirs.
func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home, work = t.TempDir(), t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(work)
	return home, work
}

func TestLoadEmbeddedDefault(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want %+v", cfg, Default())
	}
}

func TestLoadSearchOrder(t *testing.T) {
	home, work := isolate(t)
	userPath := filepath.Join(home, ".stardust", "config.yaml")
	localPath := filepath.Join(work, "configs", FileName)

	writeFile(t, userPath, "storage:\n  profile: home\n")
	writeFile(t, localPath, "storage:\n  profile: local\n")

	tests := []struct {
		name  string
		setup func()
		want  string
	}{
		{"user config wins", func() {}, "home"},
		{"broken user config skipped", func() { writeFile(t, userPath, "storage: [") }, "local"},
		{"local config", func() { os.Remove(userPath) }, "local"},
		{"embedded default", func() { os.Remove(localPath) }, "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			if cfg.Storage.Profile != tt.want {
				t.Errorf("profile = %q, want %q", cfg.Storage.Profile, tt.want)
			}
		})
	}
}

func TestLoadCustomPath(t *testing.T) {
	_, work := isolate(t)
	path := filepath.Join(work, "custom.yaml")
	writeFile(t, path, "log:\n  level: debug\nsettings:\n  muted: true\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.LogLevel() != log.DebugLevel || !cfg.Settings.Muted {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Settings.Language != "en-US" || cfg.Settings.Volume != 0.7 {
		t.Errorf("partial file lost defaults: %+v", cfg.Settings)
	}
}

func TestLoadErrors(t *testing.T) {
	_, work := isolate(t)

	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "settings: ["},
		{"volume out of range", "settings:\n  volume: 2\n"},
		{"unknown level", "log:\n  level: chatty\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(work, "bad.yaml")
			writeFile(t, path, tt.content)
			if _, err := Load(path); err == nil {
				t.Error("Load() succeeded, want error")
			}
		})
	}

	if _, err := Load(filepath.Join(work, "missing.yaml")); err == nil {
		t.Error("Load() of missing file succeeded")
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("STARDUST_PROFILE", "from-env")
	t.Setenv("STARDUST_VOLUME", "0.25")
	t.Setenv("STARDUST_LANGUAGE", "ja-JP")
	t.Setenv("STARDUST_SSH_ADDR", ":2222")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Storage.Profile != "from-env" || cfg.Settings.Volume != 0.25 || cfg.Server.Addr != ":2222" {
		t.Errorf("cfg = %+v", cfg)
	}
	if got := cfg.CoreSettings(); got.Language != "ja-JP" || got.Volume != 0.25 {
		t.Errorf("CoreSettings() = %+v", got)
	}

	t.Setenv("STARDUST_VOLUME", "loud")
	if _, err := Load(""); err == nil {
		t.Error("unparsable env accepted")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	_, work := isolate(t)
	path := filepath.Join(work, "out", "stardust.yaml")

	want := Default()
	want.Storage.Profile = "written"
	want.Settings.ReducedMotion = true
	if err := Write(path, want); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestLogLevelFallback(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "nonsense"
	if cfg.LogLevel() != log.InfoLevel {
		t.Errorf("LogLevel() = %v", cfg.LogLevel())
	}
}
