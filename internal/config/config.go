// Package config handles global Facet configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// Config represents the global Facet configuration, loaded from
// ~/.config/facet/config.toml.
type Config struct {
	// DefaultWorkspace is the name of the default workspace (from Workspaces).
	DefaultWorkspace string `toml:"default_workspace"`

	// Workspaces maps workspace names to paths.
	Workspaces map[string]string `toml:"workspaces"`

	// StateFile overrides the state.toml location. Relative paths resolve
	// against the config file's directory.
	StateFile string `toml:"state_file"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output and markdown
	// rendering: an ANSI color code ("0" to "255") or a hex color ("#RRGGBB").
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme for rendered markdown code
	// blocks, e.g. "monokai", "dracula", "github".
	CodeTheme string `toml:"code_theme"`
}

// GetWorkspacePath returns the path for a named workspace. An empty name
// means the default workspace.
func (c *Config) GetWorkspacePath(name string) (string, error) {
	if name == "" {
		name = c.DefaultWorkspace
	}
	if name == "" {
		return "", fmt.Errorf("no default workspace configured")
	}
	if path, ok := c.Workspaces[name]; ok {
		return path, nil
	}
	return "", fmt.Errorf("workspace '%s' not found in config", name)
}

// GetDefaultWorkspacePath returns the default workspace path.
func (c *Config) GetDefaultWorkspacePath() (string, error) {
	return c.GetWorkspacePath("")
}

// WorkspaceNames returns the configured workspace names, sorted.
func (c *Config) WorkspaceNames() []string {
	names := make([]string, 0, len(c.Workspaces))
	for name := range c.Workspaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultPath returns the default global config path, honoring
// XDG_CONFIG_HOME.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "facet", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".facet-config.toml")
	}
	return filepath.Join(home, ".config", "facet", "config.toml")
}

// Load reads the global config from path. A missing file is not an error;
// it yields an empty config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}
