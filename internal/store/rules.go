package store

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/facet-hq/facet/internal/dates"
	"github.com/facet-hq/facet/internal/query"
	"github.com/facet-hq/facet/internal/schema"
)

// ruleNow is the evaluation-time clock for the calendar operators,
// overridable in tests.
var ruleNow = time.Now

// QueryPropertyInstances resolves one query rule to the set of matching
// instance ids, considering only non-deleted rows. It implements
// query.RuleStore.
//
// Most operators compile to a single SQL condition over the property's
// value rows. matches_regex is the exception: SQLite ships no REGEXP
// function by default, so the property's rows are streamed and matched
// in-process with Go's regexp (RE2 semantics).
func (s *Store) QueryPropertyInstances(prop schema.Property, op query.Operator, literal string) (query.InstanceSet, error) {
	switch op {
	case query.OpIsNull:
		return s.instancesWithoutProperty(prop)
	case query.OpIsNotNull:
		return s.matchInstances(prop, `1 = 1`, nil)
	case query.OpMatchesRegex:
		return s.matchRegex(prop, literal)
	}

	cond, args, err := ruleCondition(prop, op, literal)
	if err != nil {
		return nil, err
	}
	return s.matchInstances(prop, cond, args)
}

// ruleCondition builds the SQL condition over pi.value for one operator.
func ruleCondition(prop schema.Property, op query.Operator, literal string) (string, []any, error) {
	switch op {
	case query.OpEquals:
		return equalityCondition(prop, literal, false)
	case query.OpNotEquals:
		return equalityCondition(prop, literal, true)

	case query.OpContains:
		return `LOWER(pi.value) LIKE ? ESCAPE '\'`, []any{"%" + escapeLikePattern(strings.ToLower(literal)) + "%"}, nil
	case query.OpNotContains:
		return `LOWER(pi.value) NOT LIKE ? ESCAPE '\'`, []any{"%" + escapeLikePattern(strings.ToLower(literal)) + "%"}, nil
	case query.OpStartsWith:
		return `LOWER(pi.value) LIKE ? ESCAPE '\'`, []any{escapeLikePattern(strings.ToLower(literal)) + "%"}, nil
	case query.OpEndsWith:
		return `LOWER(pi.value) LIKE ? ESCAPE '\'`, []any{"%" + escapeLikePattern(strings.ToLower(literal))}, nil
	case query.OpIsEmpty:
		return `pi.value = ''`, nil, nil
	case query.OpIsNotEmpty:
		return `pi.value <> ''`, nil, nil

	case query.OpGreaterThan, query.OpLessThan, query.OpGreaterThanOrEqual, query.OpLessThanOrEqual:
		n, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return "", nil, fmt.Errorf("operator '%s' needs a numeric value, got '%s'", op, literal)
		}
		return `CAST(pi.value AS REAL) ` + numericOpSQL(op) + ` ?`, []any{n}, nil

	case query.OpBefore:
		lit, err := temporalLiteral(prop.Type, literal)
		if err != nil {
			return "", nil, err
		}
		return `pi.value < ?`, []any{lit}, nil
	case query.OpAfter:
		lit, err := temporalLiteral(prop.Type, literal)
		if err != nil {
			return "", nil, err
		}
		return `pi.value > ?`, []any{lit}, nil

	case query.OpInLastDays, query.OpInLastMonths:
		n, err := strconv.Atoi(literal)
		if err != nil || n < 0 {
			return "", nil, fmt.Errorf("operator '%s' needs a non-negative whole number, got '%s'", op, literal)
		}
		if op == query.OpInLastDays {
			return windowCondition(prop.Type, dates.LastDaysWindow(ruleNow(), n)), nil, nil
		}
		return windowCondition(prop.Type, dates.LastMonthsWindow(ruleNow(), n)), nil, nil
	case query.OpIsToday:
		return windowCondition(prop.Type, dates.DayWindow(ruleNow())), nil, nil
	case query.OpIsThisWeek:
		return windowCondition(prop.Type, dates.WeekWindow(ruleNow())), nil, nil
	case query.OpIsThisMonth:
		return windowCondition(prop.Type, dates.MonthWindow(ruleNow())), nil, nil

	case query.OpIsTrue:
		return `pi.value = 'true'`, nil, nil
	case query.OpIsFalse:
		return `pi.value = 'false'`, nil, nil
	}

	return "", nil, fmt.Errorf("unknown operator '%s'", op)
}

// equalityCondition compares typed encodings: numbers numerically so that
// "18.0" equals "18", booleans and temporal values on their canonical
// storage form, everything else as exact strings.
func equalityCondition(prop schema.Property, literal string, negate bool) (string, []any, error) {
	eq, neq := `=`, `<>`
	op := eq
	if negate {
		op = neq
	}

	switch prop.Type {
	case schema.TypeNumber:
		n, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return "", nil, fmt.Errorf("'%s' is not a number", literal)
		}
		return `CAST(pi.value AS REAL) ` + op + ` ?`, []any{n}, nil
	case schema.TypeBoolean:
		switch literal {
		case "true", "1":
			literal = "true"
		case "false", "0":
			literal = "false"
		default:
			return "", nil, fmt.Errorf("'%s' is not a boolean", literal)
		}
	case schema.TypeDate, schema.TypeDatetime, schema.TypeTime:
		norm, err := temporalLiteral(prop.Type, literal)
		if err != nil {
			return "", nil, err
		}
		literal = norm
	}
	return `pi.value ` + op + ` ?`, []any{literal}, nil
}

func numericOpSQL(op query.Operator) string {
	switch op {
	case query.OpGreaterThan:
		return `>`
	case query.OpLessThan:
		return `<`
	case query.OpGreaterThanOrEqual:
		return `>=`
	default:
		return `<=`
	}
}

// temporalLiteral normalizes a before/after literal to the property's
// canonical storage layout so lexicographic comparison is chronological.
func temporalLiteral(t schema.PropertyType, literal string) (string, error) {
	switch t {
	case schema.TypeDate:
		d, err := dates.ParseDate(literal)
		if err != nil {
			return "", err
		}
		return d.Format(dates.DateLayout), nil
	case schema.TypeDatetime:
		if dt, err := dates.ParseDatetime(literal); err == nil {
			return dt.Format(dates.DatetimeLayout), nil
		}
		// A bare date compares against midnight.
		d, err := dates.ParseDate(literal)
		if err != nil {
			return "", fmt.Errorf("'%s' is not a valid datetime", literal)
		}
		return d.Format(dates.DatetimeLayout), nil
	case schema.TypeTime:
		tod, err := dates.ParseTimeOfDay(literal)
		if err != nil {
			return "", err
		}
		return tod.Format(dates.TimeLayout), nil
	}
	return "", fmt.Errorf("operator does not apply to %s properties", t)
}

// windowCondition encodes a half-open calendar window for the property's
// storage layout. Date properties only carry day precision, so a window
// ending mid-day rounds its end up to the next midnight; truncating it
// would drop the final day from the comparison.
func windowCondition(t schema.PropertyType, w dates.Window) string {
	if t == schema.TypeDatetime {
		return fmt.Sprintf(`pi.value >= '%s' AND pi.value < '%s'`,
			w.Start.Format(dates.DatetimeLayout), w.End.Format(dates.DatetimeLayout))
	}
	end := w.End
	if !end.Equal(dates.StartOfDay(end)) {
		end = dates.StartOfDay(end).AddDate(0, 0, 1)
	}
	return fmt.Sprintf(`pi.value >= '%s' AND pi.value < '%s'`,
		w.Start.Format(dates.DateLayout), end.Format(dates.DateLayout))
}

// matchInstances runs the base rule query with one extra condition.
func (s *Store) matchInstances(prop schema.Property, cond string, args []any) (query.InstanceSet, error) {
	sqlStr := `SELECT DISTINCT pi.entity_instance_id
		 FROM property_instances pi
		 JOIN entity_instances ei ON ei.id = pi.entity_instance_id
		 WHERE pi.property_id = ? AND pi.deleted = 0 AND ei.deleted = 0 AND ` + cond
	allArgs := append([]any{prop.ID}, args...)

	rows, err := s.db.Query(sqlStr, allArgs...)
	if err != nil {
		return nil, fmt.Errorf("rule query failed: %w", err)
	}
	defer rows.Close()

	out := query.NewInstanceSet()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out.Add(id)
	}
	return out, rows.Err()
}

// instancesWithoutProperty returns the entity's instances that have no
// non-deleted row for the property — the is_null semantics.
func (s *Store) instancesWithoutProperty(prop schema.Property) (query.InstanceSet, error) {
	rows, err := s.db.Query(
		`SELECT ei.id FROM entity_instances ei
		 WHERE ei.entity_id = ? AND ei.deleted = 0 AND NOT EXISTS (
			SELECT 1 FROM property_instances pi
			WHERE pi.entity_instance_id = ei.id AND pi.property_id = ? AND pi.deleted = 0
		 )`, prop.EntityID, prop.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("rule query failed: %w", err)
	}
	defer rows.Close()

	out := query.NewInstanceSet()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out.Add(id)
	}
	return out, rows.Err()
}

// matchRegex streams the property's rows and matches them in-process.
func (s *Store) matchRegex(prop schema.Property, pattern string) (query.InstanceSet, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression '%s': %w", pattern, err)
	}

	rows, err := s.db.Query(
		`SELECT pi.entity_instance_id, pi.value
		 FROM property_instances pi
		 JOIN entity_instances ei ON ei.id = pi.entity_instance_id
		 WHERE pi.property_id = ? AND pi.deleted = 0 AND ei.deleted = 0`, prop.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("rule query failed: %w", err)
	}
	defer rows.Close()

	out := query.NewInstanceSet()
	for rows.Next() {
		var id, value string
		if err := rows.Scan(&id, &value); err != nil {
			return nil, err
		}
		if re.MatchString(value) {
			out.Add(id)
		}
	}
	return out, rows.Err()
}
