package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultStateDir is the project-relative directory for local, never
// committed state. Unity's Library/ folder is ignored by version control.
const DefaultStateDir = "Library/quickaccess"

// ConfigFileName is the config file name inside the state directory.
const ConfigFileName = "config.yaml"

// Config holds all quickaccess configuration.
type Config struct {
	// Local state location, relative to the workspace unless absolute
	StateDir  string `yaml:"state_dir"`
	StoreFile string `yaml:"store_file"`

	// Project asset database
	AssetDB AssetDBConfig `yaml:"asset_db"`

	// How items are opened
	Launch LaunchConfig `yaml:"launch"`

	// Interactive list
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// AssetDBConfig configures the .meta index used to resolve asset GUIDs.
type AssetDBConfig struct {
	Enabled bool     `yaml:"enabled"`
	Path    string   `yaml:"path"`    // relative to StateDir unless absolute
	Roots   []string `yaml:"roots"`   // project folders scanned for .meta files
	Workers int      `yaml:"workers"` // parallel .meta parsers
}

// LaunchConfig configures how items are opened.
type LaunchConfig struct {
	Browser string `yaml:"browser"` // empty = platform default
	Opener  string `yaml:"opener"`  // empty = platform default

	// Command template used to invoke menu items, {path} is replaced by
	// the menu path. Empty disables menu invocation.
	MenuCommand string `yaml:"menu_command"`
}

// UIConfig configures the interactive list.
type UIConfig struct {
	Theme        string `yaml:"theme"` // dark, light
	ConfirmClear bool   `yaml:"confirm_clear"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		StateDir:  DefaultStateDir,
		StoreFile: "local_cache.yaml",

		AssetDB: AssetDBConfig{
			Enabled: true,
			Path:    "assetdb.sqlite",
			Roots:   []string{"Assets", "Packages"},
			Workers: 8,
		},

		Launch: LaunchConfig{},

		UI: UIConfig{
			Theme:        "dark",
			ConfirmClear: true,
		},

		Logging: LoggingConfig{
			Level:     "info",
			Format:    "text",
			DebugMode: false,
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("QUICKACCESS_STATE_DIR"); dir != "" {
		c.StateDir = dir
	}
	if browser := os.Getenv("QUICKACCESS_BROWSER"); browser != "" {
		c.Launch.Browser = browser
	}
	if menu := os.Getenv("QUICKACCESS_MENU_COMMAND"); menu != "" {
		c.Launch.MenuCommand = menu
	}
	switch strings.ToLower(os.Getenv("QUICKACCESS_DEBUG")) {
	case "1", "true", "yes":
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
}

// DefaultPath returns the config file location for a workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, filepath.FromSlash(DefaultStateDir), ConfigFileName)
}

// StatePath returns the absolute state directory for a workspace.
func (c *Config) StatePath(workspace string) string {
	return resolve(workspace, c.StateDir)
}

// StoreFilePath returns the persisted quick access list path.
func (c *Config) StoreFilePath(workspace string) string {
	return resolve(c.StatePath(workspace), c.StoreFile)
}

// AssetDBPath returns the asset database path.
func (c *Config) AssetDBPath(workspace string) string {
	return resolve(c.StatePath(workspace), c.AssetDB.Path)
}

// LogsDir returns the directory for category log files.
func (c *Config) LogsDir(workspace string) string {
	return filepath.Join(c.StatePath(workspace), "logs")
}

func resolve(base, p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// ValidThemes lists the supported UI themes.
var ValidThemes = []string{"dark", "light"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.StateDir) == "" {
		return fmt.Errorf("state_dir must not be empty")
	}
	if strings.TrimSpace(c.StoreFile) == "" {
		return fmt.Errorf("store_file must not be empty")
	}
	if c.AssetDB.Enabled {
		if strings.TrimSpace(c.AssetDB.Path) == "" {
			return fmt.Errorf("asset_db.path must not be empty when asset_db is enabled")
		}
		if c.AssetDB.Workers < 1 {
			return fmt.Errorf("asset_db.workers must be at least 1, got %d", c.AssetDB.Workers)
		}
	}
	if c.Launch.MenuCommand != "" && !strings.Contains(c.Launch.MenuCommand, "{path}") {
		return fmt.Errorf("launch.menu_command must contain {path}")
	}

	validTheme := false
	for _, t := range ValidThemes {
		if c.UI.Theme == t {
			validTheme = true
			break
		}
	}
	if !validTheme {
		return fmt.Errorf("invalid ui.theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}

	return c.Logging.Validate()
}
