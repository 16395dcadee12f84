// Package config loads and saves the YAML configuration of nativefs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Root is a directory exposed through the inspection API
type Root struct {
	Path  string `yaml:"path" json:"path"`
	Alias string `yaml:"alias" json:"alias"`
}

// Config holds all configuration options for nativefs
type Config struct {
	// Installation layout overrides; empty means derive from the executable
	BinPath  string `yaml:"bin_path,omitempty" json:"bin_path,omitempty"`
	HomePath string `yaml:"home_path,omitempty" json:"home_path,omitempty"`

	// Debug enables native call timing
	Debug    bool   `yaml:"debug" json:"debug"`
	LogLevel string `yaml:"log_level" json:"log_level"`

	Port    int      `yaml:"port" json:"port"`
	Watch   bool     `yaml:"watch" json:"watch"`
	Roots   []Root   `yaml:"roots,omitempty" json:"roots"`
	Exclude []string `yaml:"exclude" json:"exclude"`

	// CallTimeout bounds a single filesystem call made on behalf of a request
	CallTimeout Duration `yaml:"call_timeout" json:"call_timeout"`

	// Internal: path to config file for saving
	configPath string
}

// Duration is a time.Duration written as a Go duration string in YAML
type Duration time.Duration

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:    "info",
		Port:        8090,
		Watch:       true,
		Exclude:     []string{".git", "node_modules", ".svn"},
		CallTimeout: Duration(5 * time.Second),
	}
}

// GetConfigDir returns the config directory path
func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/nativefs"
	}
	return filepath.Join(home, ".config", "nativefs")
}

// GetConfigPath returns the full path to the config file
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// Load reads configuration from path. With an empty path it tries
// ~/.config/nativefs/config.yaml, then ./nativefs.yaml, and falls back to
// defaults. Only an explicitly named file that cannot be loaded is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	cfgPath := path
	if cfgPath == "" {
		globalConfig := GetConfigPath()
		if _, err := os.Stat(globalConfig); err == nil {
			cfgPath = globalConfig
		} else if _, err := os.Stat("nativefs.yaml"); err == nil {
			cfgPath = "nativefs.yaml"
		}
	}

	if cfgPath != "" {
		if err := cfg.loadFromFile(cfgPath); err != nil {
			if path != "" {
				return nil, err
			}
			// implicit config is best-effort; keep defaults
			cfg = DefaultConfig()
		}
		cfg.configPath = cfgPath
	} else {
		cfg.configPath = GetConfigPath()
	}

	cfg.normalizeRoots()
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	result, err := Validate(data)
	if err != nil {
		return fmt.Errorf("validating %s: %w", path, err)
	}
	if !result.Valid {
		return &ValidationError{Path: path, Issues: result.Issues}
	}

	return yaml.Unmarshal(data, c)
}

// normalizeRoots resolves root paths to absolute and fills missing aliases
func (c *Config) normalizeRoots() {
	for i := range c.Roots {
		absPath, err := filepath.Abs(c.Roots[i].Path)
		if err == nil {
			c.Roots[i].Path = absPath
		}
		if c.Roots[i].Alias == "" {
			c.Roots[i].Alias = filepath.Base(c.Roots[i].Path)
		}
	}
}

// Save saves the current configuration to the config file
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config has no file path")
	}

	configDir := filepath.Dir(c.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(c.configPath, data, 0644)
}

// SetConfigFilePath sets where Save writes the configuration
func (c *Config) SetConfigFilePath(path string) {
	c.configPath = path
}

// GetConfigFilePath returns the path to the config file
func (c *Config) GetConfigFilePath() string {
	return c.configPath
}

// AddRoot adds a root directory. Adding an existing path is a no-op.
func (c *Config) AddRoot(path, alias string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	for _, r := range c.Roots {
		if r.Path == absPath {
			return nil
		}
	}

	if alias == "" {
		alias = filepath.Base(absPath)
	}
	for _, r := range c.Roots {
		if r.Alias == alias {
			return fmt.Errorf("alias %q already in use by %s", alias, r.Path)
		}
	}

	c.Roots = append(c.Roots, Root{Path: absPath, Alias: alias})
	return nil
}

// RemoveRootByIndex removes a root by its index
func (c *Config) RemoveRootByIndex(index int) {
	if index < 0 || index >= len(c.Roots) {
		return
	}
	c.Roots = append(c.Roots[:index], c.Roots[index+1:]...)
}

// RootByAlias returns the root with the given alias
func (c *Config) RootByAlias(alias string) (Root, bool) {
	for _, r := range c.Roots {
		if r.Alias == alias {
			return r, true
		}
	}
	return Root{}, false
}

// IsExcluded checks if a path should be excluded
func (c *Config) IsExcluded(path string) bool {
	base := filepath.Base(path)
	for _, exclude := range c.Exclude {
		if matched, _ := filepath.Match(exclude, base); matched {
			return true
		}
	}
	return false
}

// ValidationError reports schema violations found in a config file
type ValidationError struct {
	Path   string
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		if issue.Path != "" {
			msgs[i] = issue.Path + ": " + issue.Message
		} else {
			msgs[i] = issue.Message
		}
	}
	return fmt.Sprintf("config %s has %d issue(s): %s", e.Path, len(e.Issues), strings.Join(msgs, "; "))
}
