//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/music",
			expected: filepath.Join(home, "music"),
		},
		{
			name:     "tilde with nested path",
			input:    "~/music/bgm/field",
			expected: filepath.Join(home, "music", "bgm", "field"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/usr/local/music",
			expected: "/usr/local/music",
		},
		{
			name:     "relative path unchanged",
			input:    "music/bgm",
			expected: "music/bgm",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	// Should have at least one path
	if len(paths) == 0 {
		t.Fatal("getConfigPaths() returned empty slice")
	}

	// Last path should be local config.toml
	lastPath := paths[len(paths)-1]
	if lastPath != "config.toml" {
		t.Errorf("last config path = %q, want %q", lastPath, "config.toml")
	}

	// If we have home dir, first path should be ~/.config/bgm/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		expectedFirst := filepath.Join(home, ".config", "bgm", "config.toml")
		if paths[0] != expectedFirst {
			t.Errorf("first config path = %q, want %q", paths[0], expectedFirst)
		}
	}
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadFiles_LastWins(t *testing.T) {
	dir := t.TempDir()
	user := writeConfig(t, dir, "user.toml", `
music_dir = "/srv/music"
resume = true
notify = true

[fade]
fps = 30
frames = 90

[log]
level = "debug"
`)
	local := writeConfig(t, dir, "local.toml", `
mpris = true
watch = true

[fade]
frames = 45

[log]
level = " WARN "
`)

	cfg, err := loadFiles([]string{user, filepath.Join(dir, "missing.toml"), local})
	if err != nil {
		t.Fatalf("loadFiles() error = %v", err)
	}

	if cfg.MusicDir != "/srv/music" {
		t.Errorf("MusicDir = %q, want %q", cfg.MusicDir, "/srv/music")
	}
	if !cfg.Resume {
		t.Error("Resume = false, want true")
	}
	if !cfg.Notify || !cfg.MPRIS || !cfg.Watch {
		t.Errorf("Notify, MPRIS, Watch = %v, %v, %v; want true", cfg.Notify, cfg.MPRIS, cfg.Watch)
	}
	if cfg.Fade.FPS != 30 {
		t.Errorf("Fade.FPS = %f, want 30", cfg.Fade.FPS)
	}
	if cfg.Fade.Frames != 45 {
		t.Errorf("Fade.Frames = %d, want 45", cfg.Fade.Frames)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}
}

func TestLoadFiles_NoFiles(t *testing.T) {
	cfg, err := loadFiles([]string{filepath.Join(t.TempDir(), "missing.toml")})
	if err != nil {
		t.Fatalf("loadFiles() error = %v", err)
	}
	if cfg.MusicDir != "" {
		t.Errorf("MusicDir = %q, want empty", cfg.MusicDir)
	}
	if cfg.Resume {
		t.Error("Resume = true, want false")
	}
}

func TestLoadFiles_InvalidToml(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "bad.toml", "music_dir = [")

	if _, err := loadFiles([]string{path}); err == nil {
		t.Error("loadFiles() error = nil, want parse error")
	}
}

func TestGetFadeConfig_Defaults(t *testing.T) {
	cfg := Config{}
	fade := cfg.GetFadeConfig()

	if fade.FPS != 60 {
		t.Errorf("FPS = %f, want 60", fade.FPS)
	}
	if fade.Frames != 120 {
		t.Errorf("Frames = %d, want 120", fade.Frames)
	}
	if fade.QueueSize != 16 {
		t.Errorf("QueueSize = %d, want 16", fade.QueueSize)
	}
}

func TestGetFadeConfig_CustomValues(t *testing.T) {
	cfg := Config{
		Fade: FadeConfig{
			FPS:       30,
			Frames:    45,
			QueueSize: 4,
		},
	}

	fade := cfg.GetFadeConfig()

	if fade.FPS != 30 {
		t.Errorf("FPS = %f, want 30", fade.FPS)
	}
	if fade.Frames != 45 {
		t.Errorf("Frames = %d, want 45", fade.Frames)
	}
	if fade.QueueSize != 4 {
		t.Errorf("QueueSize = %d, want 4", fade.QueueSize)
	}
}

func TestGetFadeConfig_InvalidValues(t *testing.T) {
	// Test that invalid values get replaced with defaults
	cfg := Config{
		Fade: FadeConfig{
			FPS:       -1,  // negative, should become 60
			Frames:    -10, // negative, should become 120
			QueueSize: 300, // > 256, should become 16
		},
	}

	fade := cfg.GetFadeConfig()

	if fade.FPS != 60 {
		t.Errorf("FPS with invalid value = %f, want 60", fade.FPS)
	}
	if fade.Frames != 120 {
		t.Errorf("Frames with invalid value = %d, want 120", fade.Frames)
	}
	if fade.QueueSize != 16 {
		t.Errorf("QueueSize with invalid value = %d, want 16", fade.QueueSize)
	}
}

func TestGetLogConfig(t *testing.T) {
	cfg := Config{}
	if got := cfg.GetLogConfig().Level; got != "info" {
		t.Errorf("default Level = %q, want %q", got, "info")
	}

	cfg.Log = LogConfig{File: "/tmp/bgm.log", Level: "debug"}
	log := cfg.GetLogConfig()
	if log.Level != "debug" || log.File != "/tmp/bgm.log" {
		t.Errorf("GetLogConfig() = %+v", log)
	}
}
