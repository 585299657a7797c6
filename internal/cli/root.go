// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/facet-hq/facet/internal/config"
	"github.com/facet-hq/facet/internal/ui"
)

var (
	// Global flags
	workspaceName     string // Named workspace from config
	workspacePathFlag string // Explicit path (rare)
	configPath        string
	statePathFlag     string

	// Resolved values
	resolvedWorkspacePath string
	resolvedConfigPath    string
	resolvedStatePath     string
	cfg                   *config.Config
	wsCfg                 *config.WorkspaceConfig
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "facet",
	Short: "Facet - schemas and records you define yourself",
	Long: `Facet is a record system with admin-defined schemas: entities with typed
properties, records validated against them, and saved boolean queries over
everything. Data lives in a local SQLite workspace.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip workspace resolution for commands that don't need one.
		switch cmd.Name() {
		case "init", "workspace", "completion", "help", "version", "docs":
			return nil
		}
		if cmd.Parent() != nil && (cmd.Parent().Name() == "workspace" || cmd.Parent().Name() == "completion" || cmd.Parent().Name() == "docs") {
			return nil
		}

		var err error
		resolvedConfigPath = config.ResolveConfigPath(configPath)
		cfg, err = config.Load(resolvedConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		resolvedStatePath = config.ResolveStatePath(statePathFlag, resolvedConfigPath, cfg)
		ui.ConfigureTheme(cfg.UI.Accent)
		ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)

		// Resolve workspace path: explicit path > named workspace > active
		// state > default.
		if workspacePathFlag != "" {
			resolvedWorkspacePath = workspacePathFlag
		} else if workspaceName != "" {
			resolvedWorkspacePath, err = cfg.GetWorkspacePath(workspaceName)
			if err != nil {
				return fmt.Errorf("workspace '%s' not found\n\nRun 'facet workspace list' to see configured workspaces", workspaceName)
			}
		} else {
			state, stateErr := config.LoadState(resolvedStatePath)
			if stateErr != nil {
				return fmt.Errorf("failed to load state: %w", stateErr)
			}

			active := strings.TrimSpace(state.ActiveWorkspace)
			if active != "" {
				resolvedWorkspacePath, err = cfg.GetWorkspacePath(active)
				if err != nil {
					resolvedWorkspacePath, err = cfg.GetDefaultWorkspacePath()
					if err != nil {
						return fmt.Errorf("active workspace '%s' not found in config and no default workspace configured\n\nRun 'facet workspace use <name>' or set default_workspace in config.toml", active)
					}
					if !jsonOutput {
						fmt.Fprintf(os.Stderr, "warning: active workspace '%s' not found in config, falling back to default\n", active)
					}
				}
			} else {
				resolvedWorkspacePath, err = cfg.GetDefaultWorkspacePath()
				if err != nil {
					return fmt.Errorf(`no workspace specified

Either:
  1. Use --workspace <name> (from config)
  2. Use --workspace-path /path/to/workspace
  3. Run 'facet workspace use <name>' to set active_workspace in state.toml
  4. Set default_workspace in ~/.config/facet/config.toml
  5. Run 'facet init /path/to/new/workspace' to create one`)
				}
			}
		}

		if _, err := os.Stat(resolvedWorkspacePath); os.IsNotExist(err) {
			return fmt.Errorf("workspace not found: %s\n\nRun 'facet init %s' to create it", resolvedWorkspacePath, resolvedWorkspacePath)
		}

		wsCfg, err = config.LoadWorkspaceConfig(resolvedWorkspacePath)
		if err != nil {
			return fmt.Errorf("failed to load workspace config: %w", err)
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&workspaceName, "workspace", "", "named workspace from config")
	rootCmd.PersistentFlags().StringVar(&workspacePathFlag, "workspace-path", "", "explicit workspace path")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/facet/config.toml)")
	rootCmd.PersistentFlags().StringVar(&statePathFlag, "state", "", "state file path (default next to config.toml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.SilenceUsage = true
}
