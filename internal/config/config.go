package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix marks environment overrides, e.g. FINQA_BACKEND__BASE_URL.
const EnvPrefix = "FINQA_"

// BackendConfig locates the ingestion and question-answering service.
type BackendConfig struct {
	BaseURL string `yaml:"base_url" koanf:"base_url"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level string `yaml:"level" koanf:"level"`
	// File is where the interactive UI writes its log, since it owns the terminal.
	File string `yaml:"file" koanf:"file"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Backend   BackendConfig `yaml:"backend" koanf:"backend"`
	StateFile string        `yaml:"state_file" koanf:"state_file"`
	Log       LogConfig     `yaml:"log" koanf:"log"`
}

// Load reads a config from path and overlays FINQA_* environment variables.
// A missing file yields defaults.
func Load(path string) (*AppConfig, error) {
	k := koanf.New(".")
	cfg := defaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// FINQA_BACKEND__BASE_URL -> backend.base_url
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := applyConfigDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// LoadDefault tries ./config.yaml first, then ~/.config/finqa/config.yaml.
// If neither exists, it writes defaults to ~/.config/finqa/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserPath("config.yaml")
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	// Environment overrides still apply on first run.
	cfg, err = Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yamlv3.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks that the configuration can be used.
func (c *AppConfig) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid backend.base_url %q: %w", c.Backend.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.base_url must be http or https, got %q", c.Backend.BaseURL)
	}
	if c.StateFile == "" {
		return errors.New("state_file is required")
	}
	return nil
}

func defaultUserPath(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "finqa", name), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Backend: BackendConfig{BaseURL: "http://localhost:8000"},
		Log:     LogConfig{Level: "info"},
	}
}

func applyConfigDefaults(cfg *AppConfig) error {
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:8000"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.StateFile == "" {
		p, err := defaultUserPath("state.yaml")
		if err != nil {
			return err
		}
		cfg.StateFile = p
	}
	if cfg.Log.File == "" {
		p, err := defaultUserPath("finqa.log")
		if err != nil {
			return err
		}
		cfg.Log.File = p
	}
	return nil
}
