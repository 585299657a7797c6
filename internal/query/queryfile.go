package query

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/facet-hq/facet/internal/schema"
)

// QueryFile is the YAML representation of a saved query, used by
// `facet query import`. Properties are referenced by machine name and
// resolved against the target entity's schema.
type QueryFile struct {
	Name   string   `yaml:"name"`
	Entity string   `yaml:"entity"`
	Where  GroupDef `yaml:"where"`
}

// GroupDef defines one boolean node in a query file.
type GroupDef struct {
	Op     BoolOp     `yaml:"op"`
	Rules  []RuleDef  `yaml:"rules,omitempty"`
	Groups []GroupDef `yaml:"groups,omitempty"`
}

// RuleDef defines one leaf condition in a query file.
type RuleDef struct {
	Property string   `yaml:"property"`
	Operator Operator `yaml:"operator"`
	Value    string   `yaml:"value,omitempty"`
}

// ParseQueryFile parses query YAML and checks basic shape. Operator and
// value validity against property types is checked when the tree is
// resolved.
func ParseQueryFile(data []byte) (*QueryFile, error) {
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("failed to parse query file: %w", err)
	}
	if qf.Name == "" {
		return nil, fmt.Errorf("query file needs a 'name'")
	}
	if qf.Entity == "" {
		return nil, fmt.Errorf("query file needs an 'entity'")
	}
	if err := checkGroupDef(qf.Where); err != nil {
		return nil, err
	}
	return &qf, nil
}

func checkGroupDef(g GroupDef) error {
	if !ValidBoolOp(g.Op) {
		return fmt.Errorf("unknown group op '%s' (want 'and' or 'or')", g.Op)
	}
	for _, r := range g.Rules {
		if r.Property == "" {
			return fmt.Errorf("rule without a property")
		}
		if !ValidOperator(r.Operator) {
			return fmt.Errorf("unknown operator '%s'", r.Operator)
		}
	}
	for _, child := range g.Groups {
		if err := checkGroupDef(child); err != nil {
			return err
		}
	}
	return nil
}

// LoadQueryFile reads and parses a query YAML file.
func LoadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query file %s: %w", path, err)
	}
	return ParseQueryFile(data)
}

// Resolve turns the file's machine-name rules into a Group over property
// ids, validating each rule against its property's type.
func (qf *QueryFile) Resolve(props []schema.Property) (Group, error) {
	byName := make(map[string]schema.Property, len(props))
	for _, p := range props {
		if !p.Deleted {
			byName[p.Name] = p
		}
	}
	return resolveGroupDef(qf.Where, byName)
}

func resolveGroupDef(g GroupDef, props map[string]schema.Property) (Group, error) {
	out := Group{Operator: g.Op}
	for _, rd := range g.Rules {
		prop, ok := props[rd.Property]
		if !ok {
			return Group{}, fmt.Errorf("unknown property '%s'", rd.Property)
		}
		r := Rule{PropertyID: prop.ID, Operator: rd.Operator, Value: rd.Value}
		if err := ValidateRule(r, prop); err != nil {
			return Group{}, fmt.Errorf("rule on '%s': %w", rd.Property, err)
		}
		out.Rules = append(out.Rules, r)
	}
	for _, child := range g.Groups {
		resolved, err := resolveGroupDef(child, props)
		if err != nil {
			return Group{}, err
		}
		out.Groups = append(out.Groups, resolved)
	}
	return out, nil
}
