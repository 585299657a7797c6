package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/facet-hq/facet/internal/schema"
	"github.com/facet-hq/facet/internal/store"
	"github.com/facet-hq/facet/internal/ui"
)

var propertyCmd = &cobra.Command{
	Use:   "property",
	Short: "Manage entity properties",
}

var (
	propTypeFlag     string
	propListFlag     bool
	propRequiredFlag bool
	propDefaultFlag  string
	propRefFlag      string
)

func propertyInputFromFlags(s *store.Store, projectID, label string) (store.PropertyInput, error) {
	in := store.PropertyInput{
		Label:    label,
		Type:     schema.PropertyType(propTypeFlag),
		IsList:   propListFlag,
		Required: propRequiredFlag,
		Default:  propDefaultFlag,
	}
	if propRefFlag != "" {
		target, err := lookupEntity(s, projectID, propRefFlag)
		if err != nil {
			return store.PropertyInput{}, err
		}
		in.ReferencedEntityID = target.ID
	}
	return in, nil
}

func runPropertyMutation(cmd *cobra.Command, entityName string, mutate func(s *store.Store, projectID string, entity schema.Entity) (schema.Property, error)) error {
	s, err := openStore()
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}
	defer s.Close()

	projectID, err := currentProjectID(s)
	if err != nil {
		return handleError(ErrWorkspaceNotSpecified, err, "")
	}
	entity, err := lookupEntity(s, projectID, entityName)
	if err != nil {
		return handleError(ErrEntityNotFound, err, "")
	}

	prop, err := mutate(s, projectID, entity)
	var se *store.SchemaError
	if errors.As(err, &se) {
		fields, msg := schemaErrorDetails(se)
		return handleErrorWithDetails(ErrSchemaInvalid, msg, "", fields)
	}
	var cerr schema.CircularReferenceError
	if errors.As(err, &cerr) {
		return handleError(ErrCircularRef, cerr, "Remove one of the references in the chain to break the cycle")
	}
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}

	if isJSONOutput() {
		outputSuccess(propertyJSON(prop), nil)
		return nil
	}
	fmt.Println(ui.Successf("Saved property %s on %s", ui.Name(prop.Name), ui.Name(entity.Name)))
	return nil
}

var propertyAddCmd = &cobra.Command{
	Use:   "add <entity> <label>",
	Short: "Add a property to an entity",
	Long: `Adds a typed property. The machine name is derived from the label
("First Name" becomes firstName). Types: string, number, boolean, date,
datetime, time, reference. Reference properties need --references.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPropertyMutation(cmd, args[0], func(s *store.Store, projectID string, entity schema.Entity) (schema.Property, error) {
			in, err := propertyInputFromFlags(s, projectID, args[1])
			if err != nil {
				return schema.Property{}, err
			}
			return s.CreateProperty(entity.ID, in)
		})
	},
}

var propertyUpdateCmd = &cobra.Command{
	Use:   "update <entity> <name>",
	Short: "Update a property definition",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPropertyMutation(cmd, args[0], func(s *store.Store, projectID string, entity schema.Entity) (schema.Property, error) {
			prop, err := findProperty(s, entity.ID, args[1])
			if err != nil {
				return schema.Property{}, err
			}

			label := prop.Label
			if cmd.Flags().Changed("label") {
				label = propLabelFlag
			}
			in, err := propertyInputFromFlags(s, projectID, label)
			if err != nil {
				return schema.Property{}, err
			}
			// Flags not passed keep the property's current settings.
			if !cmd.Flags().Changed("type") {
				in.Type = prop.Type
			}
			if !cmd.Flags().Changed("list") {
				in.IsList = prop.IsList
			}
			if !cmd.Flags().Changed("required") {
				in.Required = prop.Required
			}
			if !cmd.Flags().Changed("default") {
				in.Default = prop.Default
			}
			if !cmd.Flags().Changed("references") {
				in.ReferencedEntityID = prop.ReferencedEntityID
			}
			return s.UpdateProperty(prop.ID, in)
		})
	},
}

var propLabelFlag string

var propertyDeleteCmd = &cobra.Command{
	Use:   "delete <entity> <name>",
	Short: "Delete a property (soft delete)",
	Args:  cobra.ExactArgs(2),
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
		prop, err := findProperty(s, entity.ID, args[1])
		if err != nil {
			return handleError(ErrPropertyNotFound, err, "")
		}
		if err := s.SoftDeleteProperty(prop.ID); err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		if isJSONOutput() {
			outputSuccess(map[string]string{"deleted": prop.Name}, nil)
			return nil
		}
		fmt.Println(ui.Successf("Deleted property %s from %s", ui.Name(prop.Name), ui.Name(entity.Name)))
		return nil
	},
}

// findProperty locates a property on an entity by machine name.
func findProperty(s *store.Store, entityID, name string) (schema.Property, error) {
	props, err := s.ListProperties(entityID)
	if err != nil {
		return schema.Property{}, err
	}
	for _, p := range props {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return schema.Property{}, fmt.Errorf("property '%s' not found", name)
}

func propertyJSON(p schema.Property) map[string]interface{} {
	out := map[string]interface{}{
		"id":    p.ID,
		"label": p.Label,
		"name":  p.Name,
		"type":  string(p.Type),
	}
	if p.IsList {
		out["list"] = true
	}
	if p.Required {
		out["required"] = true
	}
	if p.Default != "" {
		out["default"] = p.Default
	}
	if p.ReferencedEntityID != "" {
		out["references"] = p.ReferencedEntityID
	}
	return out
}

// propertyTypeLabel renders the type, naming the target entity for
// references.
func propertyTypeLabel(s *store.Store, p schema.Property) string {
	if p.Type != schema.TypeReference {
		return string(p.Type)
	}
	target, err := s.GetEntity(p.ReferencedEntityID)
	if err != nil {
		return string(p.Type)
	}
	return fmt.Sprintf("reference(%s)", target.Name)
}

func propertyFlags(p schema.Property) string {
	var flags []string
	if p.IsList {
		flags = append(flags, "list")
	}
	if p.Required {
		flags = append(flags, "required")
	}
	return strings.Join(flags, ",")
}

func init() {
	for _, cmd := range []*cobra.Command{propertyAddCmd, propertyUpdateCmd} {
		cmd.Flags().StringVar(&propTypeFlag, "type", "string", "property type")
		cmd.Flags().BoolVar(&propListFlag, "list", false, "allow multiple values")
		cmd.Flags().BoolVar(&propRequiredFlag, "required", false, "require a value on every record")
		cmd.Flags().StringVar(&propDefaultFlag, "default", "", "default value for new records")
		cmd.Flags().StringVar(&propRefFlag, "references", "", "target entity for reference properties")
	}
	propertyUpdateCmd.Flags().StringVar(&propLabelFlag, "label", "", "new label (renames the machine name)")

	propertyCmd.AddCommand(propertyAddCmd)
	propertyCmd.AddCommand(propertyUpdateCmd)
	propertyCmd.AddCommand(propertyDeleteCmd)
	rootCmd.AddCommand(propertyCmd)
}
