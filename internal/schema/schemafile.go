package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SchemaFile is the YAML representation of a project schema, used by
// `facet entity import` and `facet entity export`.
type SchemaFile struct {
	Entities map[string]*EntityDef `yaml:"entities"`
}

// EntityDef defines one entity in a schema file.
type EntityDef struct {
	Display    string         `yaml:"display,omitempty"`
	Properties []*PropertyDef `yaml:"properties"`
}

// PropertyDef defines one property in a schema file. Property order in the
// file determines sort order.
type PropertyDef struct {
	Label      string       `yaml:"label"`
	Type       PropertyType `yaml:"type"`
	List       bool         `yaml:"list,omitempty"`
	Required   bool         `yaml:"required,omitempty"`
	Default    string       `yaml:"default,omitempty"`
	References string       `yaml:"references,omitempty"` // Referenced entity name
}

// ParseSchemaFile parses schema YAML and checks basic shape. Name
// uniqueness, default values, and reference cycles are checked by the
// write path against the live schema.
func ParseSchemaFile(data []byte) (*SchemaFile, error) {
	var sf SchemaFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}
	if sf.Entities == nil {
		sf.Entities = make(map[string]*EntityDef)
	}

	for name, def := range sf.Entities {
		if def == nil {
			sf.Entities[name] = &EntityDef{}
			continue
		}
		for _, prop := range def.Properties {
			if prop == nil {
				return nil, fmt.Errorf("entity '%s' has an empty property definition", name)
			}
			if prop.Label == "" {
				return nil, fmt.Errorf("entity '%s' has a property without a label", name)
			}
			if !ValidType(prop.Type) {
				return nil, fmt.Errorf("entity '%s' property '%s': unknown type '%s'", name, prop.Label, prop.Type)
			}
			if prop.Type == TypeReference && prop.References == "" {
				return nil, fmt.Errorf("entity '%s' property '%s': reference properties need a 'references' entity", name, prop.Label)
			}
		}
	}

	return &sf, nil
}

// LoadSchemaFile reads and parses a schema YAML file.
func LoadSchemaFile(path string) (*SchemaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}
	return ParseSchemaFile(data)
}

// MarshalSchemaFile renders a schema file back to YAML.
func MarshalSchemaFile(sf *SchemaFile) ([]byte, error) {
	return yaml.Marshal(sf)
}
