package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/facet-hq/facet/internal/codec"
	"github.com/facet-hq/facet/internal/records"
	"github.com/facet-hq/facet/internal/schema"
	"github.com/facet-hq/facet/internal/store"
	"github.com/facet-hq/facet/internal/ui"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Create, inspect, and list records",
}

var (
	recordSetFlags []string
	recordPage     int
	recordPageSize int
)

var recordCreateCmd = &cobra.Command{
	Use:   "create <entity>",
	Short: "Create a record",
	Long: `Creates a record of the given entity. Field values come from repeated
--set flags keyed by machine name:

  facet record create Contact --set firstName=Ann --set age=30

Repeat a field to build a list value; absent fields pick up their
property defaults.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := parseSetArgs(recordSetFlags)
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
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
		entity, err := lookupEntity(s, projectID, args[0])
		if err != nil {
			return handleError(ErrEntityNotFound, err, "")
		}

		rec, err := records.NewService(s).Create(entity.ID, input)
		var verrs records.ValidationErrors
		if errors.As(err, &verrs) {
			return handleValidationErrors(verrs)
		}
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(recordJSON(rec), nil)
			return nil
		}
		fmt.Println(ui.Successf("Created %s %s", ui.Name(entity.Name), recordLabel(rec)))
		return nil
	},
}

var recordUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of a record",
	Long: `Updates only the fields named by --set flags; everything else keeps its
value. Use an empty assignment (--set age=) to clear a field.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := parseSetArgs(recordSetFlags)
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		if len(input) == 0 {
			return handleErrorMsg(ErrInvalidInput, "nothing to update; pass at least one --set field=value", "")
		}

		s, err := openStore()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer s.Close()

		rec, err := records.NewService(s).Update(args[0], input)
		var verrs records.ValidationErrors
		if errors.As(err, &verrs) {
			return handleValidationErrors(verrs)
		}
		if errors.Is(err, store.ErrInstanceNotFound) {
			return handleErrorMsg(ErrRecordNotFound, fmt.Sprintf("record '%s' not found", args[0]), "")
		}
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(recordJSON(rec), nil)
			return nil
		}
		fmt.Println(ui.Successf("Updated %s", recordLabel(rec)))
		return nil
	},
}

var recordShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer s.Close()

		rec, err := records.NewService(s).Get(args[0])
		if errors.Is(err, store.ErrInstanceNotFound) {
			return handleErrorMsg(ErrRecordNotFound, fmt.Sprintf("record '%s' not found", args[0]), "")
		}
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(recordJSON(rec), nil)
			return nil
		}

		props, err := s.ListProperties(rec.EntityID)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		if rec.Display != "" {
			fmt.Println(ui.Header(rec.Display))
		}
		fmt.Println(ui.Hint("id: " + rec.ID))
		tbl := ui.NewTable(2)
		for _, p := range props {
			tbl.AddRow(p.Name, renderValues(rec.Values[p.Name], p))
		}
		fmt.Print(tbl.String())
		return nil
	},
}

var recordDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a record (soft delete)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer s.Close()

		err = records.NewService(s).Delete(args[0])
		if errors.Is(err, store.ErrInstanceNotFound) {
			return handleErrorMsg(ErrRecordNotFound, fmt.Sprintf("record '%s' not found", args[0]), "")
		}
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		if isJSONOutput() {
			outputSuccess(map[string]string{"deleted": args[0]}, nil)
			return nil
		}
		fmt.Println(ui.Successf("Deleted record %s", args[0]))
		return nil
	},
}

var recordListCmd = &cobra.Command{
	Use:   "list <entity>",
	Short: "List records of an entity",
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
		entity, err := lookupEntity(s, projectID, args[0])
		if err != nil {
			return handleError(ErrEntityNotFound, err, "")
		}

		page, err := records.NewService(s).List(entity.ID, recordPage, resolvePageSize(recordPageSize))
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		return printPage(page)
	},
}

// printPage renders a record page for both output modes.
func printPage(page records.Page) error {
	if isJSONOutput() {
		out := make([]map[string]interface{}, 0, len(page.Records))
		for _, rec := range page.Records {
			out = append(out, recordJSON(rec))
		}
		outputSuccess(out, &Meta{
			Count:      len(out),
			Total:      page.Total,
			Page:       page.Page,
			TotalPages: page.TotalPages,
		})
		return nil
	}

	if page.Total == 0 {
		fmt.Println("No records.")
		return nil
	}
	tbl := ui.NewTable(2)
	tbl.SetHeader("ID", "DISPLAY")
	for _, rec := range page.Records {
		tbl.AddRow(rec.ID, rec.Display)
	}
	fmt.Print(tbl.String())
	fmt.Println(ui.Hint(fmt.Sprintf("page %d of %d %s", page.Page, page.TotalPages, ui.Count(page.Total, "record", "records"))))
	return nil
}

func handleValidationErrors(verrs records.ValidationErrors) error {
	return handleErrorWithDetails(ErrValidationFailed, verrs.Error(), "", map[string]string(verrs))
}

func recordJSON(rec records.Record) map[string]interface{} {
	return map[string]interface{}{
		"id":      rec.ID,
		"display": rec.Display,
		"values":  rec.Values,
	}
}

// recordLabel shows the display string when the template yields one, the
// id otherwise.
func recordLabel(rec records.Record) string {
	if strings.TrimSpace(rec.Display) != "" {
		return fmt.Sprintf("%q (%s)", rec.Display, rec.ID)
	}
	return rec.ID
}

func renderValues(vals []codec.Value, p schema.Property) string {
	if len(vals) == 0 {
		return ui.Hint("—")
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = codec.FormatDisplayValue(v, p.Type)
	}
	return strings.Join(parts, ", ")
}

func init() {
	for _, cmd := range []*cobra.Command{recordCreateCmd, recordUpdateCmd} {
		cmd.Flags().StringArrayVar(&recordSetFlags, "set", nil, "field assignment, repeatable (field=value)")
	}
	recordListCmd.Flags().IntVar(&recordPage, "page", 1, "page number")
	recordListCmd.Flags().IntVar(&recordPageSize, "page-size", 0, "records per page")

	recordCmd.AddCommand(recordCreateCmd)
	recordCmd.AddCommand(recordUpdateCmd)
	recordCmd.AddCommand(recordShowCmd)
	recordCmd.AddCommand(recordDeleteCmd)
	recordCmd.AddCommand(recordListCmd)
	rootCmd.AddCommand(recordCmd)
}
