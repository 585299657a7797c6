package query

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/facet-hq/facet/internal/dates"
	"github.com/facet-hq/facet/internal/schema"
)

// operatorInfo describes one operator: whether it reads the rule literal
// and which property types it applies to. nil types means "all types".
type operatorInfo struct {
	needsValue bool
	types      map[schema.PropertyType]bool
}

func typeSet(types ...schema.PropertyType) map[schema.PropertyType]bool {
	m := make(map[schema.PropertyType]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}

var temporalTypes = typeSet(schema.TypeDate, schema.TypeDatetime, schema.TypeTime)
var calendarTypes = typeSet(schema.TypeDate, schema.TypeDatetime)
var stringOnly = typeSet(schema.TypeString)
var numberOnly = typeSet(schema.TypeNumber)
var booleanOnly = typeSet(schema.TypeBoolean)

// operators is the single source of truth for operator semantics. The
// store's SQL builder dispatches on the same names.
var operators = map[Operator]operatorInfo{
	OpEquals:    {needsValue: true},
	OpNotEquals: {needsValue: true},

	OpContains:     {needsValue: true, types: stringOnly},
	OpNotContains:  {needsValue: true, types: stringOnly},
	OpStartsWith:   {needsValue: true, types: stringOnly},
	OpEndsWith:     {needsValue: true, types: stringOnly},
	OpIsEmpty:      {types: stringOnly},
	OpIsNotEmpty:   {types: stringOnly},
	OpMatchesRegex: {needsValue: true, types: stringOnly},

	OpGreaterThan:        {needsValue: true, types: numberOnly},
	OpLessThan:           {needsValue: true, types: numberOnly},
	OpGreaterThanOrEqual: {needsValue: true, types: numberOnly},
	OpLessThanOrEqual:    {needsValue: true, types: numberOnly},

	OpBefore:       {needsValue: true, types: temporalTypes},
	OpAfter:        {needsValue: true, types: temporalTypes},
	OpInLastDays:   {needsValue: true, types: calendarTypes},
	OpInLastMonths: {needsValue: true, types: calendarTypes},
	OpIsToday:      {types: calendarTypes},
	OpIsThisWeek:   {types: calendarTypes},
	OpIsThisMonth:  {types: calendarTypes},

	OpIsTrue:  {types: booleanOnly},
	OpIsFalse: {types: booleanOnly},

	OpIsNull:    {},
	OpIsNotNull: {},
}

// ValidOperator reports whether op is a known operator.
func ValidOperator(op Operator) bool {
	_, ok := operators[op]
	return ok
}

// NeedsValue reports whether op reads the rule's literal value.
// Unknown operators report false.
func NeedsValue(op Operator) bool {
	return operators[op].needsValue
}

// OperatorsFor returns the operators applicable to a property type.
func OperatorsFor(t schema.PropertyType) []Operator {
	var out []Operator
	for op, info := range operators {
		if info.types == nil || info.types[t] {
			out = append(out, op)
		}
	}
	return out
}

// ValidateRule checks a rule against its target property: the operator must
// exist, apply to the property's type, and carry a well-formed literal when
// one is needed. A failure here fails the whole evaluation.
func ValidateRule(r Rule, prop schema.Property) error {
	info, ok := operators[r.Operator]
	if !ok {
		return fmt.Errorf("unknown operator '%s'", r.Operator)
	}
	if info.types != nil && !info.types[prop.Type] {
		return fmt.Errorf("operator '%s' does not apply to %s property '%s'", r.Operator, prop.Type, prop.Name)
	}
	if !info.needsValue {
		return nil
	}

	switch r.Operator {
	case OpGreaterThan, OpLessThan, OpGreaterThanOrEqual, OpLessThanOrEqual:
		if _, err := strconv.ParseFloat(r.Value, 64); err != nil {
			return fmt.Errorf("operator '%s' needs a numeric value, got '%s'", r.Operator, r.Value)
		}
	case OpInLastDays, OpInLastMonths:
		n, err := strconv.Atoi(r.Value)
		if err != nil || n < 0 {
			return fmt.Errorf("operator '%s' needs a non-negative whole number, got '%s'", r.Operator, r.Value)
		}
	case OpBefore, OpAfter:
		if err := validateTemporalLiteral(r.Value, prop.Type); err != nil {
			return fmt.Errorf("operator '%s': %w", r.Operator, err)
		}
	case OpMatchesRegex:
		if _, err := regexp.Compile(r.Value); err != nil {
			return fmt.Errorf("operator '%s' needs a valid regular expression: %w", r.Operator, err)
		}
	case OpEquals, OpNotEquals:
		// Any literal compares against the stored encoding.
	default:
		if r.Value == "" {
			return fmt.Errorf("operator '%s' needs a value", r.Operator)
		}
	}
	return nil
}

func validateTemporalLiteral(value string, t schema.PropertyType) error {
	switch t {
	case schema.TypeDate:
		if !dates.IsValidDate(value) {
			return fmt.Errorf("'%s' is not a date in YYYY-MM-DD format", value)
		}
	case schema.TypeDatetime:
		if !dates.IsValidDatetime(value) && !dates.IsValidDate(value) {
			return fmt.Errorf("'%s' is not a valid datetime", value)
		}
	case schema.TypeTime:
		if !dates.IsValidTimeOfDay(value) {
			return fmt.Errorf("'%s' is not a time in HH:MM:SS format", value)
		}
	}
	return nil
}
