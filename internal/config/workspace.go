package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// WorkspaceConfigFile is the per-workspace settings file name.
const WorkspaceConfigFile = "facet.toml"

// WorkspaceConfig holds per-workspace settings, loaded from facet.toml in
// the workspace root. All fields are optional.
type WorkspaceConfig struct {
	// Project names the project this workspace's commands default to.
	// Empty means the workspace's first project.
	Project string `toml:"project"`

	// PageSize overrides the default record page size for listings.
	PageSize int `toml:"page_size"`
}

// LoadWorkspaceConfig reads facet.toml from a workspace root. A missing
// file is not an error; it yields an empty config.
func LoadWorkspaceConfig(workspacePath string) (*WorkspaceConfig, error) {
	path := filepath.Join(workspacePath, WorkspaceConfigFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &WorkspaceConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg WorkspaceConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.PageSize < 0 {
		return nil, fmt.Errorf("%s: page_size must not be negative", path)
	}
	return &cfg, nil
}
