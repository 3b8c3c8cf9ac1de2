package config

// Config represents the global application configuration
type Config struct {
	// Project holds the options the indexer reads while scanning a project
	Project ProjectConfig `yaml:"project"`

	// Watch configuration (file change notifications)
	Watch WatchConfig `yaml:"watch"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`

	// Server configuration (MCP query server)
	Server ServerConfig `yaml:"server"`
}

// ProjectConfig contains the per-project scanning options supplied by the
// embedding environment. Every field is optional.
type ProjectConfig struct {
	// PluginsDir is the directory name holding plugins (default: plugins)
	PluginsDir string `yaml:"plugins_dir"`

	// ThemesDir is the directory name holding themes (default: themes)
	ThemesDir string `yaml:"themes_dir"`

	// StructuredControllers selects the controllers/<name>/config/ layout for
	// behavior config files instead of the flat controllers/<name>/ layout
	StructuredControllers bool `yaml:"structured_controllers"`

	// Exclude lists directory names (or doublestar globs) skipped by every scan
	Exclude []string `yaml:"exclude"`

	// PHPPath is the PHP executable. Only shell-execution features use it.
	PHPPath string `yaml:"php_path"`
}

// WatchConfig controls the file system watcher
type WatchConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMs int  `yaml:"debounce_ms"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Path  string `yaml:"path"`  // optional log file, stderr is always written
}

// ServerConfig contains MCP server settings
type ServerConfig struct {
	Name string `yaml:"name"`
	// Projects are opened on startup
	Projects []string `yaml:"projects"`
}
