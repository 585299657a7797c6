package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/facet-hq/facet/internal/records"
	"github.com/facet-hq/facet/internal/schema"
	"github.com/facet-hq/facet/internal/store"
)

// openStore opens the resolved workspace's database. The caller closes it.
func openStore() (*store.Store, error) {
	return store.Open(resolvedWorkspacePath)
}

// currentProjectID resolves the project commands operate on: the one named
// in facet.toml, else the workspace's first project.
func currentProjectID(s *store.Store) (string, error) {
	if wsCfg != nil && wsCfg.Project != "" {
		id, err := s.GetProjectByName(wsCfg.Project)
		if err != nil {
			return "", fmt.Errorf("project '%s' from facet.toml not found", wsCfg.Project)
		}
		return id, nil
	}
	id, err := s.DefaultProject()
	if errors.Is(err, store.ErrProjectNotFound) {
		return "", fmt.Errorf("workspace has no project; run 'facet init %s' first", resolvedWorkspacePath)
	}
	return id, err
}

// lookupEntity finds an entity by name within the current project.
func lookupEntity(s *store.Store, projectID, name string) (schema.Entity, error) {
	entity, err := s.GetEntityByName(projectID, name)
	if errors.Is(err, store.ErrEntityNotFound) {
		return schema.Entity{}, fmt.Errorf("entity '%s' not found\n\nRun 'facet entity list' to see defined entities", name)
	}
	return entity, err
}

// resolvePageSize picks the effective page size: flag > facet.toml >
// built-in default.
func resolvePageSize(flagValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	if wsCfg != nil && wsCfg.PageSize > 0 {
		return wsCfg.PageSize
	}
	return records.DefaultPageSize
}

// parseSetArgs parses repeated field=value arguments into record input.
// Repeating a field accumulates list elements; "field=" supplies an
// explicit empty value.
func parseSetArgs(args []string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid field assignment '%s' (want field=value)", arg)
		}
		name = strings.TrimSpace(name)
		out[name] = append(out[name], value)
	}
	return out, nil
}

// schemaErrorDetails flattens a SchemaError for JSON details and a text
// summary.
func schemaErrorDetails(se *store.SchemaError) (map[string]string, string) {
	fields := make(map[string]string, len(se.Errors))
	lines := make([]string, 0, len(se.Errors))
	for _, e := range se.Errors {
		fields[e.Field] = e.Message
		lines = append(lines, fmt.Sprintf("  %s: %s", e.Field, e.Message))
	}
	return fields, "schema validation failed:\n" + strings.Join(lines, "\n")
}
