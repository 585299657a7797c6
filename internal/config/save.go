package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/facet-hq/facet/internal/atomicfile"
)

// persistedConfig mirrors Config with pointer fields so that unset values
// round-trip as absent keys instead of empty strings.
type persistedConfig struct {
	DefaultWorkspace *string            `toml:"default_workspace,omitempty"`
	Workspaces       map[string]string  `toml:"workspaces,omitempty"`
	StateFile        *string            `toml:"state_file,omitempty"`
	UI               *persistedUIConfig `toml:"ui,omitempty"`
}

type persistedUIConfig struct {
	Accent    *string `toml:"accent,omitempty"`
	CodeTheme *string `toml:"code_theme,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Save writes the global config to the default config path.
func Save(cfg *Config) error {
	return SaveTo(DefaultPath(), cfg)
}

// SaveTo writes the global config to a specific path atomically.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	out := persistedConfig{
		DefaultWorkspace: nonEmptyPtr(cfg.DefaultWorkspace),
		StateFile:        nonEmptyPtr(cfg.StateFile),
	}
	if len(cfg.Workspaces) > 0 {
		out.Workspaces = cfg.Workspaces
	}
	accent := nonEmptyPtr(cfg.UI.Accent)
	codeTheme := nonEmptyPtr(cfg.UI.CodeTheme)
	if accent != nil || codeTheme != nil {
		out.UI = &persistedUIConfig{Accent: accent, CodeTheme: codeTheme}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
