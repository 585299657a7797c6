package query

import (
	"fmt"

	"github.com/facet-hq/facet/internal/schema"
)

// RuleStore is the narrow attribute-store contract the filter phase needs:
// one lookup resolving a single rule to the set of matching instance ids.
// Rows considered are the property's non-deleted property instances.
type RuleStore interface {
	QueryPropertyInstances(prop schema.Property, op Operator, literal string) (InstanceSet, error)
}

// Evaluator walks a query's group tree and combines per-rule id sets with
// set intersection and union. It owns no data and holds no mutable state;
// each evaluation is a pure function of the tree, the property index, and
// the store's answers.
type Evaluator struct {
	store RuleStore
	props map[string]schema.Property
}

// NewEvaluator creates an evaluator for one entity's properties.
func NewEvaluator(store RuleStore, props []schema.Property) *Evaluator {
	index := make(map[string]schema.Property, len(props))
	for _, p := range props {
		if !p.Deleted {
			index[p.ID] = p
		}
	}
	return &Evaluator{store: store, props: index}
}

// EvaluateGroup computes the selection for a group subtree.
//
// A root group with neither rules nor child groups selects ALL — distinct
// from the empty set. Otherwise: rules are grouped by target property, and
// multiple rules on the same property within one group are OR'd together.
// The per-property sets and the recursively evaluated child groups are then
// combined with the group's own operator (and → intersection, or → union).
//
// Any unknown operator, property, or malformed literal fails the whole
// evaluation; no partial result is returned.
func (e *Evaluator) EvaluateGroup(g Group) (Selection, error) {
	if len(g.Rules) == 0 && len(g.Groups) == 0 {
		return SelectAll(), nil
	}
	if !ValidBoolOp(g.Operator) {
		return Selection{}, fmt.Errorf("unknown group operator '%s'", g.Operator)
	}

	var collected []Selection

	// Rules grouped by property, preserving first-appearance order so
	// evaluation order is deterministic.
	var propOrder []string
	rulesByProp := make(map[string][]Rule)
	for _, r := range g.Rules {
		if _, seen := rulesByProp[r.PropertyID]; !seen {
			propOrder = append(propOrder, r.PropertyID)
		}
		rulesByProp[r.PropertyID] = append(rulesByProp[r.PropertyID], r)
	}

	for _, propID := range propOrder {
		prop, ok := e.props[propID]
		if !ok {
			return Selection{}, fmt.Errorf("property '%s' does not belong to the queried entity", propID)
		}

		matched := NewInstanceSet()
		for _, r := range rulesByProp[propID] {
			if err := ValidateRule(r, prop); err != nil {
				return Selection{}, err
			}
			literal := r.Value
			if !NeedsValue(r.Operator) {
				literal = ""
			}
			ids, err := e.store.QueryPropertyInstances(prop, r.Operator, literal)
			if err != nil {
				return Selection{}, fmt.Errorf("rule lookup for property '%s' failed: %w", prop.Name, err)
			}
			matched = matched.Union(ids)
		}
		collected = append(collected, SelectIDs(matched))
	}

	for _, child := range g.Groups {
		sel, err := e.EvaluateGroup(child)
		if err != nil {
			return Selection{}, err
		}
		collected = append(collected, sel)
	}

	if g.Operator == OpAnd {
		return combineAnd(collected), nil
	}
	return combineOr(collected), nil
}
