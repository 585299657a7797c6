// Package schema defines entities, their typed properties, and the
// validation rules that keep a project's schema consistent.
package schema

// PropertyType represents the value type of a property.
type PropertyType string

const (
	TypeString    PropertyType = "string"
	TypeNumber    PropertyType = "number"
	TypeBoolean   PropertyType = "boolean"
	TypeDate      PropertyType = "date"
	TypeDatetime  PropertyType = "datetime"
	TypeTime      PropertyType = "time"
	TypeReference PropertyType = "reference"
)

// ValidType reports whether t is a recognized property type.
func ValidType(t PropertyType) bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeDate, TypeDatetime, TypeTime, TypeReference:
		return true
	}
	return false
}

// Entity is an administrator-defined record type.
type Entity struct {
	ID              string
	ProjectID       string
	Name            string // Unique among the project's non-deleted entities
	DisplayTemplate string // e.g. "{firstName} {lastName}"
	Deleted         bool
	CreatedAt       int64 // Unix seconds
	UpdatedAt       int64
}

// Property is a typed field definition on an entity.
type Property struct {
	ID                 string
	EntityID           string
	Label              string // Human-facing display name
	Name               string // Machine name, camelCase derived from Label
	Type               PropertyType
	IsList             bool
	Required           bool
	Default            string // String-encoded default value; empty means none
	ReferencedEntityID string // Only set when Type == TypeReference
	SortOrder          int
	Deleted            bool
	CreatedAt          int64
	UpdatedAt          int64
}

// EntityInstance is one record of an entity. It holds no attribute data
// itself; values live in PropertyInstance rows.
type EntityInstance struct {
	ID        string
	EntityID  string
	Deleted   bool
	CreatedAt int64
	UpdatedAt int64
}

// PropertyInstance is one stored value of a property on an entity instance.
// List properties materialize as multiple rows ordered by SortOrder;
// non-list properties have at most one non-deleted row.
type PropertyInstance struct {
	ID               string
	EntityInstanceID string
	PropertyID       string
	Value            string
	SortOrder        int
	Deleted          bool
}
