package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/facet-hq/facet/internal/config"
	"github.com/facet-hq/facet/internal/ui"
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage configured workspaces",
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured workspaces",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, statePath, err := loadConfigAndStatePath()
		if err != nil {
			return err
		}
		state, err := config.LoadState(statePath)
		if err != nil {
			return err
		}

		if isJSONOutput() {
			type wsInfo struct {
				Name    string `json:"name"`
				Path    string `json:"path"`
				Default bool   `json:"default,omitempty"`
				Active  bool   `json:"active,omitempty"`
			}
			var out []wsInfo
			for _, name := range cfg.WorkspaceNames() {
				out = append(out, wsInfo{
					Name:    name,
					Path:    cfg.Workspaces[name],
					Default: name == cfg.DefaultWorkspace,
					Active:  name == state.ActiveWorkspace,
				})
			}
			outputSuccess(out, &Meta{Count: len(out)})
			return nil
		}

		if len(cfg.Workspaces) == 0 {
			fmt.Println("No workspaces configured.")
			fmt.Println(ui.Hint("Add one with 'facet workspace add <name> <path>'"))
			return nil
		}
		tbl := ui.NewTable(3)
		for _, name := range cfg.WorkspaceNames() {
			marker := ""
			if name == state.ActiveWorkspace {
				marker = "* active"
			} else if name == cfg.DefaultWorkspace {
				marker = "  default"
			}
			tbl.AddRow(ui.Name(name), cfg.Workspaces[name], marker)
		}
		fmt.Print(tbl.String())
		return nil
	},
}

var workspaceAddCmd = &cobra.Command{
	Use:   "add <name> <path>",
	Short: "Add a workspace to the config",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, path := args[0], args[1]
		cfgPath := config.ResolveConfigPath(configPath)
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if cfg.Workspaces == nil {
			cfg.Workspaces = make(map[string]string)
		}
		cfg.Workspaces[name] = path
		if cfg.DefaultWorkspace == "" {
			cfg.DefaultWorkspace = name
		}
		if err := config.SaveTo(cfgPath, cfg); err != nil {
			return err
		}
		fmt.Println(ui.Successf("Added workspace '%s' -> %s", name, path))
		return nil
	},
}

var workspaceUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the active workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg, statePath, err := loadConfigAndStatePath()
		if err != nil {
			return err
		}
		if _, err := cfg.GetWorkspacePath(name); err != nil {
			return fmt.Errorf("workspace '%s' not found in config\n\nRun 'facet workspace add %s <path>' first", name, name)
		}
		state, err := config.LoadState(statePath)
		if err != nil {
			return err
		}
		state.ActiveWorkspace = name
		if err := config.SaveState(statePath, state); err != nil {
			return err
		}
		fmt.Println(ui.Successf("Active workspace is now '%s'", name))
		return nil
	},
}

func loadConfigAndStatePath() (*config.Config, string, error) {
	cfgPath := config.ResolveConfigPath(configPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, "", err
	}
	return cfg, config.ResolveStatePath(statePathFlag, cfgPath, cfg), nil
}

func init() {
	workspaceCmd.AddCommand(workspaceListCmd)
	workspaceCmd.AddCommand(workspaceAddCmd)
	workspaceCmd.AddCommand(workspaceUseCmd)
	rootCmd.AddCommand(workspaceCmd)
}
