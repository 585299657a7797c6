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

// StateVersion is the current state file schema version.
const StateVersion = 1

// State is mutable machine-local runtime state, kept separate from the
// config so that switching workspaces never rewrites user settings.
type State struct {
	Version         int    `toml:"version"`
	ActiveWorkspace string `toml:"active_workspace,omitempty"`
}

// ResolveConfigPath resolves the effective config path from an optional
// override.
func ResolveConfigPath(explicitConfigPath string) string {
	if strings.TrimSpace(explicitConfigPath) != "" {
		return explicitConfigPath
	}
	return DefaultPath()
}

// ResolveStatePath resolves the state.toml path with precedence:
//  1. explicitStatePath flag
//  2. cfg.StateFile from config.toml (relative to the config file dir)
//  3. sibling state.toml next to config.toml
func ResolveStatePath(explicitStatePath, configPath string, cfg *Config) string {
	if strings.TrimSpace(explicitStatePath) != "" {
		return explicitStatePath
	}

	configDir := filepath.Dir(ResolveConfigPath(configPath))
	if cfg != nil {
		if fromConfig := strings.TrimSpace(cfg.StateFile); fromConfig != "" {
			if filepath.IsAbs(fromConfig) {
				return filepath.Clean(fromConfig)
			}
			return filepath.Join(configDir, filepath.FromSlash(fromConfig))
		}
	}
	return filepath.Join(configDir, "state.toml")
}

// LoadState reads runtime state from path. A missing file yields empty
// state.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &State{Version: StateVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state %s: %w", path, err)
	}

	var st State
	if err := toml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse state %s: %w", path, err)
	}
	if st.Version == 0 {
		st.Version = StateVersion
	}
	return &st, nil
}

// SaveState writes runtime state to path atomically.
func SaveState(path string, st *State) error {
	if st == nil {
		st = &State{}
	}
	if st.Version == 0 {
		st.Version = StateVersion
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(st); err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write state %s: %w", path, err)
	}
	return nil
}
