package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appName          = "wodtimer"
	settingsFileName = "settings.yaml"
)

type Config struct {
	CountdownSeconds int    `yaml:"countdown_seconds"`
	CountdownTickMS  int    `yaml:"countdown_tick_ms"`
	RunningTickMS    int    `yaml:"running_tick_ms"`
	FinalCueSeconds  int    `yaml:"final_cue_seconds"`
	SoundEnabled     bool   `yaml:"sound_enabled"`
	VibrationEnabled bool   `yaml:"vibration_enabled"`
	DataDir          string `yaml:"data_dir"`
	LogLevel         string `yaml:"log_level"`
	LogFile          string `yaml:"log_file"`
}

func Default() Config {
	dataDir := "." + appName
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, "."+appName)
	}
	return Config{
		CountdownSeconds: 3,
		CountdownTickMS:  1000,
		RunningTickMS:    100,
		FinalCueSeconds:  10,
		SoundEnabled:     true,
		VibrationEnabled: true,
		DataDir:          dataDir,
		LogLevel:         "info",
		LogFile:          filepath.Join(dataDir, appName+".log"),
	}
}

// DefaultPath is settings.yaml under the user's config directory.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

// Load reads settings from path on top of the defaults, then applies
// environment overrides. A missing file is not an error.
//
// Env vars use the prefix WODTIMER_:
//
//	WODTIMER_COUNTDOWN_SECONDS, WODTIMER_COUNTDOWN_TICK_MS,
//	WODTIMER_RUNNING_TICK_MS, WODTIMER_FINAL_CUE_SECONDS,
//	WODTIMER_SOUND_ENABLED, WODTIMER_VIBRATION_ENABLED,
//	WODTIMER_DATA_DIR, WODTIMER_LOG_LEVEL, WODTIMER_LOG_FILE
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read settings file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse settings yaml: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.LogFile = expandHome(cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}
	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	envInt("WODTIMER_COUNTDOWN_SECONDS", &cfg.CountdownSeconds)
	envInt("WODTIMER_COUNTDOWN_TICK_MS", &cfg.CountdownTickMS)
	envInt("WODTIMER_RUNNING_TICK_MS", &cfg.RunningTickMS)
	envInt("WODTIMER_FINAL_CUE_SECONDS", &cfg.FinalCueSeconds)
	envBool("WODTIMER_SOUND_ENABLED", &cfg.SoundEnabled)
	envBool("WODTIMER_VIBRATION_ENABLED", &cfg.VibrationEnabled)
	if v := os.Getenv("WODTIMER_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("WODTIMER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("WODTIMER_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func (c Config) Validate() error {
	if c.CountdownSeconds < 0 || c.CountdownSeconds > 60 {
		return fmt.Errorf("countdown_seconds must be between 0 and 60, got %d", c.CountdownSeconds)
	}
	if c.CountdownTickMS <= 0 {
		return fmt.Errorf("countdown_tick_ms must be positive, got %d", c.CountdownTickMS)
	}
	if c.RunningTickMS <= 0 || c.RunningTickMS > 1000 {
		return fmt.Errorf("running_tick_ms must be between 1 and 1000, got %d", c.RunningTickMS)
	}
	if c.FinalCueSeconds < 0 {
		return fmt.Errorf("final_cue_seconds must not be negative, got %d", c.FinalCueSeconds)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

func (c Config) CountdownTick() time.Duration {
	return time.Duration(c.CountdownTickMS) * time.Millisecond
}

func (c Config) RunningTick() time.Duration {
	return time.Duration(c.RunningTickMS) * time.Millisecond
}

// DatabasePath is the SQLite file inside the data directory.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, appName+".db")
}

func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}
