package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	MusicDir string `koanf:"music_dir"` // folder scanned for tracks (default: cwd)
	Resume   bool   `koanf:"resume"`    // resume the last track at its saved position
	Notify   bool   `koanf:"notify"`    // desktop notifications on track changes (Linux)
	MPRIS    bool   `koanf:"mpris"`     // media key control over D-Bus (Linux)
	Icons    string `koanf:"icons"`     // status glyphs: "unicode" (default), "nerd", "none"
	Watch    bool   `koanf:"watch"`     // rescan music_dir when its files change

	// Fadeout pacing
	Fade FadeConfig `koanf:"fade"`

	// File logging (the TUI owns stdout)
	Log LogConfig `koanf:"log"`
}

// FadeConfig holds fadeout settings.
type FadeConfig struct {
	FPS       float64 `koanf:"fps"`        // pacer frame rate (default: 60)
	Frames    int     `koanf:"frames"`     // fadeout length in frames (default: 120)
	QueueSize int     `koanf:"queue_size"` // pending fade requests per manager (1-256, default: 16)
}

// LogConfig holds logging settings.
type LogConfig struct {
	File  string `koanf:"file"`  // log file path (default: bgm.log in the XDG state dir)
	Level string `koanf:"level"` // zerolog level name (default: "info")
}

func Load() (*Config, error) {
	return loadFiles(getConfigPaths())
}

// loadFiles merges the existing files of paths in order (last wins).
func loadFiles(paths []string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		MusicDir: "", // empty means use cwd
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in paths
	cfg.MusicDir = expandPath(cfg.MusicDir)
	cfg.Log.File = expandPath(cfg.Log.File)

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/bgm/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "bgm", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetFadeConfig returns the fade configuration with defaults applied.
func (c *Config) GetFadeConfig() FadeConfig {
	cfg := c.Fade

	if cfg.FPS <= 0 {
		cfg.FPS = 60
	}
	if cfg.Frames <= 0 {
		cfg.Frames = 120
	}
	if cfg.QueueSize <= 0 || cfg.QueueSize > 256 {
		cfg.QueueSize = 16
	}

	return cfg
}

// GetLogConfig returns the log configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	return cfg
}
