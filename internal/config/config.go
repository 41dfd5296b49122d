package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	CurrentVersion = 1
	DefaultPath    = "~/.pidex/config.yaml"
)

// Config is the top-level configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Database DatabaseConfig `yaml:"database,omitempty"`
	Sprites  SpriteConfig   `yaml:"sprites,omitempty"`
	PokeAPI  PokeAPIConfig  `yaml:"pokeapi,omitempty"`
	Input    InputConfig    `yaml:"input,omitempty"`
	UI       UIConfig       `yaml:"ui,omitempty"`
	Logging  LogConfig      `yaml:"logging,omitempty"`
}

// DatabaseConfig locates the SQLite database file.
type DatabaseConfig struct {
	Path string `yaml:"path,omitempty"` // default ~/.pidex/pidex.db
}

// SpriteConfig controls the sprite disk store and memory cache.
type SpriteConfig struct {
	Directory     string `yaml:"directory,omitempty"`      // default ~/.pidex/sprites/
	MemoryEntries int    `yaml:"memory_entries,omitempty"` // LRU capacity, default 64
	DiskLimitMB   int    `yaml:"disk_limit_mb,omitempty"`  // default 256
}

// PokeAPIConfig controls the seeding client.
type PokeAPIConfig struct {
	BaseURL           string        `yaml:"base_url,omitempty"`
	SpriteBaseURL     string        `yaml:"sprite_base_url,omitempty"`
	Timeout           time.Duration `yaml:"timeout,omitempty"`
	RequestsPerSecond int           `yaml:"requests_per_second,omitempty"` // default 4
}

// InputConfig selects and tunes the button backend.
type InputConfig struct {
	Backend    string         `yaml:"backend,omitempty"` // keyboard or gpio
	GPIOPins   map[string]int `yaml:"gpio_pins,omitempty"`
	DebounceMS int            `yaml:"debounce_ms,omitempty"` // default 30
}

// UIConfig holds presentation settings.
type UIConfig struct {
	SpriteWidth int  `yaml:"sprite_width,omitempty"` // cells, default 24
	ShowDebug   bool `yaml:"show_debug,omitempty"`   // cache stats in status bar
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level     string `yaml:"level,omitempty"`     // debug, info, warn, error
	Directory string `yaml:"directory,omitempty"` // default ~/.pidex/logs/
}

// Load reads and parses the config file from the given path.
// A missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	cfg := &Config{Version: CurrentVersion}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentVersion)
	}

	cfg.expandValues()
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the config to the given path.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = ExpandHome("~/.pidex/pidex.db")
	}
	if c.Sprites.Directory == "" {
		c.Sprites.Directory = ExpandHome("~/.pidex/sprites/")
	}
	if c.Sprites.MemoryEntries <= 0 {
		c.Sprites.MemoryEntries = 64
	}
	if c.Sprites.DiskLimitMB <= 0 {
		c.Sprites.DiskLimitMB = 256
	}
	if c.PokeAPI.BaseURL == "" {
		c.PokeAPI.BaseURL = "https://pokeapi.co/api/v2"
	}
	if c.PokeAPI.SpriteBaseURL == "" {
		c.PokeAPI.SpriteBaseURL = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon"
	}
	if c.PokeAPI.Timeout == 0 {
		c.PokeAPI.Timeout = 15 * time.Second
	}
	if c.PokeAPI.RequestsPerSecond <= 0 {
		c.PokeAPI.RequestsPerSecond = 4
	}
	if c.Input.Backend == "" {
		c.Input.Backend = "keyboard"
	}
	if c.Input.DebounceMS <= 0 {
		c.Input.DebounceMS = 30
	}
	if c.UI.SpriteWidth <= 0 {
		c.UI.SpriteWidth = 24
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Directory == "" {
		c.Logging.Directory = ExpandHome("~/.pidex/logs/")
	}
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandValues resolves ${VAR} references and ~ in path-like settings.
func (c *Config) expandValues() {
	c.Database.Path = ExpandHome(expandEnv(c.Database.Path))
	c.Sprites.Directory = ExpandHome(expandEnv(c.Sprites.Directory))
	c.Logging.Directory = ExpandHome(expandEnv(c.Logging.Directory))
	c.PokeAPI.BaseURL = expandEnv(c.PokeAPI.BaseURL)
	c.PokeAPI.SpriteBaseURL = expandEnv(c.PokeAPI.SpriteBaseURL)
}

func expandEnv(val string) string {
	return envPattern.ReplaceAllStringFunc(val, func(m string) string {
		name := m[2 : len(m)-1]
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return m
	})
}

// ExpandHome expands ~ to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks settings that would otherwise fail deep inside a component.
func (c *Config) Validate() error {
	switch c.Input.Backend {
	case "keyboard", "gpio":
	default:
		return fmt.Errorf("unknown input backend %q (expected keyboard or gpio)", c.Input.Backend)
	}
	if c.Input.Backend == "gpio" && len(c.Input.GPIOPins) == 0 {
		return fmt.Errorf("input backend gpio requires input.gpio_pins")
	}
	return nil
}
