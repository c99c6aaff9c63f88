package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"IMGGALLERY_SOURCE", "IMGGALLERY_BACKEND_URL", "IMGGALLERY_IMAGES_DIR",
		"IMGGALLERY_STORE", "IMGGALLERY_STORE_PATH", "IMGGALLERY_USER", "IMGGALLERY_COOKIE",
		"IMGGALLERY_CATEGORIES", "IMGGALLERY_LOG_LEVEL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Source != SourceRemote || cfg.BackendURL != "http://localhost:3000" {
		t.Errorf("unexpected source defaults: %+v", cfg)
	}
	if cfg.Store != "badger" || cfg.StorePath != filepath.Join(home, ".imggallery", "favourites") {
		t.Errorf("unexpected store defaults: %+v", cfg)
	}
	if cfg.Timeout != 30*time.Second || cfg.LogLevel != "info" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	dir := filepath.Join(home, ".imggallery")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	content := "source: dir\nimages_dir: /srv/photos\nstore: sqlite\nstore_path: /tmp/fav.db\ntimeout: 5s\nuser: ann\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Source != SourceDir || cfg.ImagesDir != "/srv/photos" || cfg.User != "ann" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Store != "sqlite" || cfg.StorePath != "/tmp/fav.db" || cfg.Timeout != 5*time.Second {
		t.Errorf("file values not applied: %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)
	t.Setenv("IMGGALLERY_STORE", "memory")
	t.Setenv("IMGGALLERY_LOG_LEVEL", "debug")
	t.Setenv("IMGGALLERY_BACKEND_URL", "https://gallery.example.com/api")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store != "memory" || cfg.LogLevel != "debug" || cfg.BackendURL != "https://gallery.example.com/api" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestValidation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)

	cases := map[string]string{
		"IMGGALLERY_SOURCE":    "ftp",
		"IMGGALLERY_STORE":     "redis",
		"IMGGALLERY_LOG_LEVEL": "loud",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load("")
			if err == nil {
				t.Fatalf("expected validation error for %s=%s", key, value)
			}
			if !strings.Contains(err.Error(), "must be one of") {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDirSourceNeedsImagesDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)
	t.Setenv("IMGGALLERY_SOURCE", "dir")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "imagesdir is required") {
		t.Errorf("expected images dir error, got %v", err)
	}
}

func TestExplicitMissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)

	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestInvalidYAML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("source: [remote"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
