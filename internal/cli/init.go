package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/facet-hq/facet/internal/config"
	"github.com/facet-hq/facet/internal/store"
	"github.com/facet-hq/facet/internal/ui"
)

var initProjectName string

var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Initialize a new workspace",
	Long: `Creates a new workspace at the specified path.

Creates:
  - facet.toml    (workspace configuration)
  - .facet/       (database directory)

and a first project for the workspace's schema.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create workspace directory: %w", err)
		}

		s, err := store.Open(path)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer s.Close()

		_, err = s.DefaultProject()
		if err == nil {
			return fmt.Errorf("workspace already initialized: %s", path)
		}
		if !errors.Is(err, store.ErrProjectNotFound) {
			return err
		}
		if _, err := s.CreateProject(initProjectName); err != nil {
			return err
		}

		configFile := filepath.Join(path, config.WorkspaceConfigFile)
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			sample := fmt.Sprintf("# Facet workspace configuration\nproject = %q\n\n# page_size = 20\n", initProjectName)
			if err := os.WriteFile(configFile, []byte(sample), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", configFile, err)
			}
		}

		fmt.Println(ui.Successf("Initialized workspace at %s", path))
		fmt.Println(ui.Hint("Next up: 'facet entity create <Name>' to define a schema"))
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initProjectName, "project", "main", "name for the workspace's first project")
	rootCmd.AddCommand(initCmd)
}
