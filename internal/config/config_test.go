package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	if cfg == nil {
		t.Fatalf("DefaultConfig() returned nil")
	}

	if cfg.Project.PluginsDir != "plugins" {
		t.Errorf("Project.PluginsDir = %q, want %q", cfg.Project.PluginsDir, "plugins")
	}
	if cfg.Project.ThemesDir != "themes" {
		t.Errorf("Project.ThemesDir = %q, want %q", cfg.Project.ThemesDir, "themes")
	}
	if cfg.Project.StructuredControllers {
		t.Errorf("Project.StructuredControllers = true, want false")
	}
	if len(cfg.Project.Exclude) != 0 {
		t.Errorf("Project.Exclude = %v, want empty", cfg.Project.Exclude)
	}
	if !cfg.Watch.Enabled {
		t.Errorf("Watch.Enabled = false, want true")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoadMissingFileReturnsDefaultConfig(t *testing.T) {
	tempDir := t.TempDir()
	missing := filepath.Join(tempDir, "no-such-config.yaml")

	cfg, err := Load(missing)
	if err != nil {
		t.Fatalf("Load(%q) returned error: %v", missing, err)
	}
	if cfg == nil {
		t.Fatalf("Load(%q) returned nil config", missing)
	}

	if cfg.Project.PluginsDir != "plugins" {
		t.Errorf("Project.PluginsDir = %q, want %q", cfg.Project.PluginsDir, "plugins")
	}
}

func TestLoadParsesYAMLAndValidates(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "config.yaml")

	yamlContent := []byte(`
project:
  plugins_dir: extensions
  structured_controllers: true
  exclude:
    - node_modules
    - "legacy*"
watch:
  debounce_ms: 50
`)
	if err := os.WriteFile(path, yamlContent, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) returned error: %v", path, err)
	}

	if cfg.Project.PluginsDir != "extensions" {
		t.Errorf("Project.PluginsDir = %q, want %q", cfg.Project.PluginsDir, "extensions")
	}
	// Omitted keys keep their defaults
	if cfg.Project.ThemesDir != "themes" {
		t.Errorf("Project.ThemesDir = %q, want %q", cfg.Project.ThemesDir, "themes")
	}
	if !cfg.Project.StructuredControllers {
		t.Errorf("Project.StructuredControllers = false, want true")
	}
	if len(cfg.Project.Exclude) != 2 || cfg.Project.Exclude[1] != "legacy*" {
		t.Errorf("Project.Exclude = %v, want [node_modules legacy*]", cfg.Project.Exclude)
	}
	if cfg.Watch.DebounceMs != 50 {
		t.Errorf("Watch.DebounceMs = %d, want 50", cfg.Watch.DebounceMs)
	}
}

func TestLoadRejectsNestedPluginsDir(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "config.yaml")

	if err := os.WriteFile(path, []byte("project:\n  plugins_dir: a/b\n"), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("Load(%q) expected validation error for nested plugins_dir", path)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OCTOBER_THEMES_DIR", "skins")
	t.Setenv("OCTOBER_EXCLUDE", "node_modules, storage ,")
	t.Setenv("OCTOBER_STRUCTURED_CONTROLLERS", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Project.ThemesDir != "skins" {
		t.Errorf("Project.ThemesDir = %q, want %q", cfg.Project.ThemesDir, "skins")
	}
	if len(cfg.Project.Exclude) != 2 || cfg.Project.Exclude[0] != "node_modules" || cfg.Project.Exclude[1] != "storage" {
		t.Errorf("Project.Exclude = %v, want [node_modules storage]", cfg.Project.Exclude)
	}
	if !cfg.Project.StructuredControllers {
		t.Errorf("Project.StructuredControllers = false, want true")
	}
}
