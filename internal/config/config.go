// Package config loads imggallery settings from a YAML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	SourceRemote = "remote"
	SourceDir    = "dir"
)

// Config holds all application configuration.
type Config struct {
	Source     string        `yaml:"source" validate:"required,oneof=remote dir"`
	BackendURL string        `yaml:"backend_url" validate:"required_if=Source remote,omitempty,url"`
	ImagesDir  string        `yaml:"images_dir" validate:"required_if=Source dir"`
	Timeout    time.Duration `yaml:"timeout" validate:"gt=0"`

	Store     string `yaml:"store" validate:"required,oneof=memory badger sqlite"`
	StorePath string `yaml:"store_path" validate:"required_unless=Store memory"`

	// User keys favourites for the directory source, which has no auth
	// backend. Empty means anonymous.
	User string `yaml:"user"`

	// Cookie is a "name=value" backend session cookie for the remote source.
	Cookie string `yaml:"cookie" validate:"omitempty,contains=="`

	Categories string `yaml:"categories"`
	LogLevel   string `yaml:"log_level" validate:"required,oneof=debug info warn error"`
}

var validate = validator.New()

// DefaultDir returns ~/.imggallery.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".imggallery"), nil
}

// Default returns the built-in configuration.
func Default() (*Config, error) {
	dir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		Source:     SourceRemote,
		BackendURL: "http://localhost:3000",
		Timeout:    30 * time.Second,
		Store:      "badger",
		StorePath:  filepath.Join(dir, "favourites"),
		LogLevel:   "info",
	}, nil
}

// Load reads the configuration and validates it.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read reads path over the defaults and applies IMGGALLERY_* environment
// overrides without validating. An empty path means
// ~/.imggallery/config.yaml; a missing default file is not an error.
func Read(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	explicit := path != ""
	if !explicit {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.yaml")
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	overrides := map[string]*string{
		"IMGGALLERY_SOURCE":      &cfg.Source,
		"IMGGALLERY_BACKEND_URL": &cfg.BackendURL,
		"IMGGALLERY_IMAGES_DIR":  &cfg.ImagesDir,
		"IMGGALLERY_STORE":       &cfg.Store,
		"IMGGALLERY_STORE_PATH":  &cfg.StorePath,
		"IMGGALLERY_USER":        &cfg.User,
		"IMGGALLERY_COOKIE":      &cfg.Cookie,
		"IMGGALLERY_CATEGORIES":  &cfg.Categories,
		"IMGGALLERY_LOG_LEVEL":   &cfg.LogLevel,
	}
	for key, field := range overrides {
		if v, ok := os.LookupEnv(key); ok {
			*field = v
		}
	}
}

// Validate checks the configuration's struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, formatFieldError(e))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required", "required_if", "required_unless":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "contains":
		return fmt.Sprintf("%s must look like name=value", field)
	case "gt":
		return fmt.Sprintf("%s must be positive", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
