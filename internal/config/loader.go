package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPluginsDir = "plugins"
	DefaultThemesDir  = "themes"
)

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return default config if file doesn't exist
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so omitted keys keep their default value
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			PluginsDir:            DefaultPluginsDir,
			ThemesDir:             DefaultThemesDir,
			StructuredControllers: false,
			Exclude:               []string{},
			PHPPath:               "php",
		},
		Watch: WatchConfig{
			Enabled:    true,
			DebounceMs: 300,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Name: "october-code",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) {
	if dir := os.Getenv("OCTOBER_PLUGINS_DIR"); dir != "" {
		cfg.Project.PluginsDir = dir
	}
	if dir := os.Getenv("OCTOBER_THEMES_DIR"); dir != "" {
		cfg.Project.ThemesDir = dir
	}
	if structured := os.Getenv("OCTOBER_STRUCTURED_CONTROLLERS"); structured != "" {
		if v, err := strconv.ParseBool(structured); err == nil {
			cfg.Project.StructuredControllers = v
		}
	}
	if exclude := os.Getenv("OCTOBER_EXCLUDE"); exclude != "" {
		cfg.Project.Exclude = cfg.Project.Exclude[:0]
		for _, p := range strings.Split(exclude, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				cfg.Project.Exclude = append(cfg.Project.Exclude, p)
			}
		}
	}
	if php := os.Getenv("OCTOBER_PHP_PATH"); php != "" {
		cfg.Project.PHPPath = php
	}
	if watch := os.Getenv("OCTOBER_WATCH"); watch != "" {
		if v, err := strconv.ParseBool(watch); err == nil {
			cfg.Watch.Enabled = v
		}
	}
	if level := os.Getenv("OCTOBER_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Project.PluginsDir == "" {
		cfg.Project.PluginsDir = DefaultPluginsDir
	}
	if cfg.Project.ThemesDir == "" {
		cfg.Project.ThemesDir = DefaultThemesDir
	}

	for name, dir := range map[string]string{
		"project.plugins_dir": cfg.Project.PluginsDir,
		"project.themes_dir":  cfg.Project.ThemesDir,
	} {
		if filepath.IsAbs(dir) || strings.ContainsAny(dir, `/\`) {
			return fmt.Errorf("%s must be a single directory name, got %q", name, dir)
		}
	}

	if cfg.Watch.DebounceMs < 0 {
		return fmt.Errorf("watch.debounce_ms must not be negative")
	}

	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}

	return nil
}
