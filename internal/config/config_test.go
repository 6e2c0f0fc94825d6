package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"taskpad/internal/config"
)

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := "url = \"https://example.supabase.co\"\nanon_key = \"anon-123\"\n"
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.URL != "https://example.supabase.co" {
		t.Errorf("unexpected url: %q", cfg.URL)
	}
	if cfg.AnonKey != "anon-123" {
		t.Errorf("unexpected anon key: %q", cfg.AnonKey)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := "url = \"https://file.supabase.co\"\nanon_key = \"from-file\"\n"
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TASKPAD_URL", "https://env.supabase.co")

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.URL != "https://env.supabase.co" {
		t.Errorf("expected env override, got %q", cfg.URL)
	}
	if cfg.AnonKey != "from-file" {
		t.Errorf("expected file value, got %q", cfg.AnonKey)
	}
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation failure with no settings")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte("url = [broken"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(dir); err == nil {
		t.Error("expected error for invalid TOML")
	}
}

func TestSessionLifecycle(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.HasSession() {
		t.Error("expected no session file")
	}
	if err := os.WriteFile(cfg.SessionPath(), []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	if !cfg.HasSession() {
		t.Error("expected session file")
	}
	if err := cfg.RemoveSession(); err != nil {
		t.Fatal(err)
	}
	if cfg.HasSession() {
		t.Error("expected session file removed")
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := config.DefaultConfigDir(); got != filepath.Join("/tmp/xdg", config.AppName) {
		t.Errorf("unexpected dir: %q", got)
	}
}
