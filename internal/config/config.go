package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the settings stockroom reads at startup.
type Config struct {
	APIBase     string
	SessionPath string
	LogFile     string
	PollEvery   time.Duration
	Debug       bool
}

const (
	defaultConfigPath  = "~/.config/stockroom/config.toml"
	defaultSessionPath = "~/.config/stockroom/session.toml"
	defaultLogFile     = "~/.local/state/stockroom/stockroom.log"
	defaultAPIBase     = "http://localhost:5050/api"
	defaultPollEvery   = 30 * time.Second

	// EnvAPIBase overrides api_base from the config file.
	EnvAPIBase = "STOCKROOM_API_BASE"
	// EnvConfig points at the config file when no path is given.
	EnvConfig = "STOCKROOM_CONFIG"
)

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		path = os.Getenv(EnvConfig)
	}
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBase     string `toml:"api_base"`
		SessionPath string `toml:"session_path"`
		LogFile     string `toml:"log_file"`
		PollSeconds int    `toml:"poll_seconds"`
		Debug       bool   `toml:"debug"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBase); v != "" {
		cfg.APIBase = v
	}
	if v := strings.TrimSpace(raw.SessionPath); v != "" {
		cfg.SessionPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if raw.PollSeconds > 0 {
		cfg.PollEvery = time.Duration(raw.PollSeconds) * time.Second
	}
	cfg.Debug = raw.Debug

	applyEnv(&cfg)
	return cfg, nil
}

func defaults() Config {
	return Config{
		APIBase:     defaultAPIBase,
		SessionPath: mustExpand(defaultSessionPath),
		LogFile:     mustExpand(defaultLogFile),
		PollEvery:   defaultPollEvery,
	}
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIBase)); v != "" {
		cfg.APIBase = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
