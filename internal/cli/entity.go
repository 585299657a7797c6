package cli

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/facet-hq/facet/internal/schema"
	"github.com/facet-hq/facet/internal/store"
	"github.com/facet-hq/facet/internal/ui"
)

var entityCmd = &cobra.Command{
	Use:   "entity",
	Short: "Manage entity definitions",
}

var entityDisplayFlag string

var entityCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Define a new entity",
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

		entity, err := s.CreateEntity(projectID, args[0], entityDisplayFlag)
		var se *store.SchemaError
		if errors.As(err, &se) {
			fields, msg := schemaErrorDetails(se)
			return handleErrorWithDetails(ErrSchemaInvalid, msg, "", fields)
		}
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(entityJSON(entity), nil)
			return nil
		}
		fmt.Println(ui.Successf("Created entity %s", ui.Name(entity.Name)))
		fmt.Println(ui.Hint(fmt.Sprintf("Add fields with 'facet property add %s <Label> --type <type>'", entity.Name)))
		return nil
	},
}

var entityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entities in the current project",
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
		entities, err := s.ListEntities(projectID)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		if isJSONOutput() {
			out := make([]map[string]interface{}, 0, len(entities))
			for _, e := range entities {
				out = append(out, entityJSON(e))
			}
			outputSuccess(out, &Meta{Count: len(out)})
			return nil
		}

		if len(entities) == 0 {
			fmt.Println("No entities defined.")
			return nil
		}
		tbl := ui.NewTable(2)
		tbl.SetHeader("NAME", "DISPLAY")
		for _, e := range entities {
			tbl.AddRow(e.Name, e.DisplayTemplate)
		}
		fmt.Print(tbl.String())
		return nil
	},
}

var entityShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show an entity and its properties",
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
		props, err := s.ListProperties(entity.ID)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		if isJSONOutput() {
			out := entityJSON(entity)
			propList := make([]map[string]interface{}, 0, len(props))
			for _, p := range props {
				propList = append(propList, propertyJSON(p))
			}
			out["properties"] = propList
			outputSuccess(out, nil)
			return nil
		}

		fmt.Println(ui.Header(entity.Name))
		if entity.DisplayTemplate != "" {
			fmt.Printf("display: %s\n", entity.DisplayTemplate)
		}
		fmt.Println()
		tbl := ui.NewTable(4)
		tbl.SetHeader("FIELD", "TYPE", "FLAGS", "DEFAULT")
		for _, p := range props {
			tbl.AddRow(p.Name, propertyTypeLabel(s, p), propertyFlags(p), p.Default)
		}
		fmt.Print(tbl.String())
		return nil
	},
}

var entitySetDisplayCmd = &cobra.Command{
	Use:   "set-display <name> <template>",
	Short: "Set an entity's display template",
	Long: `Sets the template used to render records of this entity, e.g.

  facet entity set-display Contact "{firstName} {lastName}"

Tokens reference property machine names; unknown tokens resolve to "".`,
	Args: cobra.ExactArgs(2),
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
		if err := s.UpdateEntityTemplate(entity.ID, args[1]); err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		if isJSONOutput() {
			outputSuccess(map[string]string{"entity": entity.Name, "display": args[1]}, nil)
			return nil
		}
		fmt.Println(ui.Successf("Display template for %s is now %q", ui.Name(entity.Name), args[1]))
		return nil
	},
}

var entityDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an entity (soft delete)",
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
		if err := s.SoftDeleteEntity(entity.ID); err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		if isJSONOutput() {
			outputSuccess(map[string]string{"deleted": entity.Name}, nil)
			return nil
		}
		fmt.Println(ui.Successf("Deleted entity %s", ui.Name(entity.Name)))
		return nil
	},
}

var entityImportCmd = &cobra.Command{
	Use:   "import <schema.yaml>",
	Short: "Import entities and properties from a schema file",
	Long: `Creates the entities and properties defined in a YAML schema file:

  entities:
    contact:
      display: "{firstName} {lastName}"
      properties:
        - {label: First Name, type: string, required: true}
        - {label: Employer, type: reference, references: company}
    company:
      properties:
        - {label: Name, type: string, required: true}

Entities are created before properties so references can point at any
entity in the file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := schema.LoadSchemaFile(args[0])
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

		created, err := importSchema(s, projectID, sf)
		var se *store.SchemaError
		if errors.As(err, &se) {
			fields, msg := schemaErrorDetails(se)
			return handleErrorWithDetails(ErrSchemaInvalid, msg, "", fields)
		}
		var cerr schema.CircularReferenceError
		if errors.As(err, &cerr) {
			return handleError(ErrCircularRef, cerr, "")
		}
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"entities": created}, &Meta{Count: len(created)})
			return nil
		}
		fmt.Println(ui.Successf("Imported %d entities from %s", len(created), args[0]))
		return nil
	},
}

var entityExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the project schema as YAML",
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
		sf, err := exportSchema(s, projectID)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		data, err := schema.MarshalSchemaFile(sf)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		os.Stdout.Write(data)
		return nil
	},
}

// importSchema creates the file's entities first, then their properties,
// so reference properties can target entities defined later in the file.
func importSchema(s *store.Store, projectID string, sf *schema.SchemaFile) ([]string, error) {
	names := make([]string, 0, len(sf.Entities))
	for name := range sf.Entities {
		names = append(names, name)
	}
	sort.Strings(names)

	entityIDs := make(map[string]string, len(names))
	for _, name := range names {
		entity, err := s.CreateEntity(projectID, name, sf.Entities[name].Display)
		if err != nil {
			return nil, fmt.Errorf("entity '%s': %w", name, err)
		}
		entityIDs[name] = entity.ID
	}

	for _, name := range names {
		for _, def := range sf.Entities[name].Properties {
			in := store.PropertyInput{
				Label:    def.Label,
				Type:     def.Type,
				IsList:   def.List,
				Required: def.Required,
				Default:  def.Default,
			}
			if def.Type == schema.TypeReference {
				targetID, ok := entityIDs[def.References]
				if !ok {
					// The target may be a pre-existing entity.
					target, err := s.GetEntityByName(projectID, def.References)
					if err != nil {
						return nil, fmt.Errorf("entity '%s' property '%s': references unknown entity '%s'", name, def.Label, def.References)
					}
					targetID = target.ID
				}
				in.ReferencedEntityID = targetID
			}
			if _, err := s.CreateProperty(entityIDs[name], in); err != nil {
				return nil, fmt.Errorf("entity '%s' property '%s': %w", name, def.Label, err)
			}
		}
	}
	return names, nil
}

// exportSchema renders the live schema back into the import file format.
func exportSchema(s *store.Store, projectID string) (*schema.SchemaFile, error) {
	entities, err := s.ListEntities(projectID)
	if err != nil {
		return nil, err
	}
	nameByID := make(map[string]string, len(entities))
	for _, e := range entities {
		nameByID[e.ID] = e.Name
	}

	sf := &schema.SchemaFile{Entities: make(map[string]*schema.EntityDef, len(entities))}
	for _, e := range entities {
		def := &schema.EntityDef{Display: e.DisplayTemplate}
		props, err := s.ListProperties(e.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range props {
			def.Properties = append(def.Properties, &schema.PropertyDef{
				Label:      p.Label,
				Type:       p.Type,
				List:       p.IsList,
				Required:   p.Required,
				Default:    p.Default,
				References: nameByID[p.ReferencedEntityID],
			})
		}
		sf.Entities[e.Name] = def
	}
	return sf, nil
}

func entityJSON(e schema.Entity) map[string]interface{} {
	return map[string]interface{}{
		"id":      e.ID,
		"name":    e.Name,
		"display": e.DisplayTemplate,
	}
}

func init() {
	entityCreateCmd.Flags().StringVar(&entityDisplayFlag, "display", "", "display template, e.g. \"{firstName} {lastName}\"")
	entityCmd.AddCommand(entityCreateCmd)
	entityCmd.AddCommand(entityListCmd)
	entityCmd.AddCommand(entityShowCmd)
	entityCmd.AddCommand(entitySetDisplayCmd)
	entityCmd.AddCommand(entityDeleteCmd)
	entityCmd.AddCommand(entityImportCmd)
	entityCmd.AddCommand(entityExportCmd)
	rootCmd.AddCommand(entityCmd)
}
