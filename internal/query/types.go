// Package query implements saved nested boolean filters and their
// evaluation against the attribute store.
package query

// BoolOp is a group's boolean combinator.
type BoolOp string

const (
	OpAnd BoolOp = "and"
	OpOr  BoolOp = "or"
)

// ValidBoolOp reports whether op is a recognized group operator.
func ValidBoolOp(op BoolOp) bool {
	return op == OpAnd || op == OpOr
}

// Operator is a rule's comparison operator.
type Operator string

const (
	OpEquals    Operator = "equals"
	OpNotEquals Operator = "not_equals"

	OpContains     Operator = "contains"
	OpNotContains  Operator = "not_contains"
	OpStartsWith   Operator = "starts_with"
	OpEndsWith     Operator = "ends_with"
	OpIsEmpty      Operator = "is_empty"
	OpIsNotEmpty   Operator = "is_not_empty"
	OpMatchesRegex Operator = "matches_regex"

	OpGreaterThan        Operator = "greater_than"
	OpLessThan           Operator = "less_than"
	OpGreaterThanOrEqual Operator = "greater_than_or_equal"
	OpLessThanOrEqual    Operator = "less_than_or_equal"

	OpBefore       Operator = "before"
	OpAfter        Operator = "after"
	OpInLastDays   Operator = "in_last_days"
	OpInLastMonths Operator = "in_last_months"
	OpIsToday      Operator = "is_today"
	OpIsThisWeek   Operator = "is_this_week"
	OpIsThisMonth  Operator = "is_this_month"

	OpIsTrue  Operator = "is_true"
	OpIsFalse Operator = "is_false"

	OpIsNull    Operator = "is_null"
	OpIsNotNull Operator = "is_not_null"
)

// Rule is a leaf condition: property + operator + literal value.
// Value is ignored for operators that take no literal.
type Rule struct {
	ID         string
	PropertyID string
	Operator   Operator
	Value      string
	SortOrder  int
}

// Group is a boolean node in a query's expression tree. Children are owned
// by their parent, so the tree is acyclic by construction.
type Group struct {
	ID        string
	Operator  BoolOp
	Rules     []Rule
	Groups    []Group
	SortOrder int
}

// SavedQuery is a persisted filter over one entity's instances.
type SavedQuery struct {
	ID        string
	ProjectID string
	EntityID  string
	Name      string
	Root      Group
	CreatedAt int64
	UpdatedAt int64
}
