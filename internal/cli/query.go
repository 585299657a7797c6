package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/facet-hq/facet/internal/query"
	"github.com/facet-hq/facet/internal/records"
	"github.com/facet-hq/facet/internal/store"
	"github.com/facet-hq/facet/internal/ui"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Save and run filters over records",
}

var (
	queryPage     int
	queryPageSize int
)

var queryImportCmd = &cobra.Command{
	Use:   "import <query.yaml>",
	Short: "Save a query from a YAML file",
	Long: `Saves a named query defined in YAML. Rules reference properties by
machine name:

  name: Adults in Berlin
  entity: contact
  where:
    op: and
    rules:
      - {property: city, operator: equals, value: Berlin}
    groups:
      - op: or
        rules:
          - {property: age, operator: greater_than_or_equal, value: "18"}
          - {property: guardian, operator: is_not_null}`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		qf, err := query.LoadQueryFile(args[0])
		if err != nil {
			return handleError(ErrFileRead, err, "")
		}

		s, err := openStore()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer s.Close()

		projectID, err := currentProjectID(s)
		if err != nil {
			return handleError(ErrWorkspaceNotSpecified, err, "")
		}
		entity, err := lookupEntity(s, projectID, qf.Entity)
		if err != nil {
			return handleError(ErrEntityNotFound, err, "")
		}
		props, err := s.ListProperties(entity.ID)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		root, err := qf.Resolve(props)
		if err != nil {
			return handleError(ErrQueryInvalid, err, "")
		}

		saved, err := s.SaveQuery(projectID, entity.ID, qf.Name, root)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]string{"id": saved.ID, "name": saved.Name, "entity": entity.Name}, nil)
			return nil
		}
		fmt.Println(ui.Successf("Saved query %s on %s", ui.Name(saved.Name), ui.Name(entity.Name)))
		return nil
	},
}

var queryRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a saved query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer s.Close()

		projectID, err := currentProjectID(s)
		if err != nil {
			return handleError(ErrWorkspaceNotSpecified, err, "")
		}

		page, err := records.NewService(s).RunQuery(projectID, args[0], queryPage, resolvePageSize(queryPageSize))
		if errors.Is(err, store.ErrQueryNotFound) {
			return handleErrorMsg(ErrQueryNotFound, fmt.Sprintf("query '%s' not found\n\nRun 'facet query list' to see saved queries", args[0]), "")
		}
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		return printPage(page)
	},
}

var queryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved queries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer s.Close()

		projectID, err := currentProjectID(s)
		if err != nil {
			return handleError(ErrWorkspaceNotSpecified, err, "")
		}
		queries, err := s.ListQueries(projectID)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		if isJSONOutput() {
			type queryInfo struct {
				ID     string `json:"id"`
				Name   string `json:"name"`
				Entity string `json:"entity"`
			}
			out := make([]queryInfo, 0, len(queries))
			for _, q := range queries {
				name := q.EntityID
				if entity, err := s.GetEntity(q.EntityID); err == nil {
					name = entity.Name
				}
				out = append(out, queryInfo{ID: q.ID, Name: q.Name, Entity: name})
			}
			outputSuccess(out, &Meta{Count: len(out)})
			return nil
		}

		if len(queries) == 0 {
			fmt.Println("No saved queries.")
			fmt.Println(ui.Hint("Save one with 'facet query import <file.yaml>'"))
			return nil
		}
		tbl := ui.NewTable(2)
		tbl.SetHeader("NAME", "ENTITY")
		for _, q := range queries {
			name := q.EntityID
			if entity, err := s.GetEntity(q.EntityID); err == nil {
				name = entity.Name
			}
			tbl.AddRow(q.Name, name)
		}
		fmt.Print(tbl.String())
		return nil
	},
}

var queryShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a saved query's condition tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer s.Close()

		projectID, err := currentProjectID(s)
		if err != nil {
			return handleError(ErrWorkspaceNotSpecified, err, "")
		}
		q, err := s.GetQueryByName(projectID, args[0])
		if errors.Is(err, store.ErrQueryNotFound) {
			return handleErrorMsg(ErrQueryNotFound, fmt.Sprintf("query '%s' not found", args[0]), "")
		}
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		props, err := s.ListProperties(q.EntityID)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		nameByID := make(map[string]string, len(props))
		for _, p := range props {
			nameByID[p.ID] = p.Name
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"id":    q.ID,
				"name":  q.Name,
				"where": groupJSON(q.Root, nameByID),
			}, nil)
			return nil
		}

		fmt.Println(ui.Header(q.Name))
		var sb strings.Builder
		writeGroup(&sb, q.Root, nameByID, 0)
		fmt.Print(sb.String())
		return nil
	},
}

var queryDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved query (soft delete)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer s.Close()

		projectID, err := currentProjectID(s)
		if err != nil {
			return handleError(ErrWorkspaceNotSpecified, err, "")
		}
		q, err := s.GetQueryByName(projectID, args[0])
		if errors.Is(err, store.ErrQueryNotFound) {
			return handleErrorMsg(ErrQueryNotFound, fmt.Sprintf("query '%s' not found", args[0]), "")
		}
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		if err := s.SoftDeleteQuery(q.ID); err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		if isJSONOutput() {
			outputSuccess(map[string]string{"deleted": q.Name}, nil)
			return nil
		}
		fmt.Println(ui.Successf("Deleted query %s", ui.Name(q.Name)))
		return nil
	},
}

// writeGroup renders a condition tree as indented text.
func writeGroup(sb *strings.Builder, g query.Group, nameByID map[string]string, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%s%s\n", indent, strings.ToUpper(string(g.Operator)))
	for _, r := range g.Rules {
		name := nameByID[r.PropertyID]
		if name == "" {
			name = r.PropertyID
		}
		if query.NeedsValue(r.Operator) {
			fmt.Fprintf(sb, "%s  %s %s %q\n", indent, name, r.Operator, r.Value)
		} else {
			fmt.Fprintf(sb, "%s  %s %s\n", indent, name, r.Operator)
		}
	}
	for _, child := range g.Groups {
		writeGroup(sb, child, nameByID, depth+1)
	}
}

func groupJSON(g query.Group, nameByID map[string]string) map[string]interface{} {
	rules := make([]map[string]interface{}, 0, len(g.Rules))
	for _, r := range g.Rules {
		rule := map[string]interface{}{
			"property": nameByID[r.PropertyID],
			"operator": string(r.Operator),
		}
		if query.NeedsValue(r.Operator) {
			rule["value"] = r.Value
		}
		rules = append(rules, rule)
	}
	groups := make([]map[string]interface{}, 0, len(g.Groups))
	for _, child := range g.Groups {
		groups = append(groups, groupJSON(child, nameByID))
	}
	out := map[string]interface{}{"op": string(g.Operator)}
	if len(rules) > 0 {
		out["rules"] = rules
	}
	if len(groups) > 0 {
		out["groups"] = groups
	}
	return out
}

func init() {
	queryRunCmd.Flags().IntVar(&queryPage, "page", 1, "page number")
	queryRunCmd.Flags().IntVar(&queryPageSize, "page-size", 0, "records per page")

	queryCmd.AddCommand(queryImportCmd)
	queryCmd.AddCommand(queryRunCmd)
	queryCmd.AddCommand(queryListCmd)
	queryCmd.AddCommand(queryShowCmd)
	queryCmd.AddCommand(queryDeleteCmd)
	rootCmd.AddCommand(queryCmd)
}
