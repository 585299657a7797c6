package schema

import (
	"fmt"
	"strings"
)

// ValidationError represents a field-level schema validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("Field '%s': %s", e.Field, e.Message)
}

// ValidateEntity checks an entity definition against its project siblings.
// siblings must be the project's non-deleted entities, excluding e itself.
func ValidateEntity(e Entity, siblings []Entity) []ValidationError {
	var errs []ValidationError

	name := strings.TrimSpace(e.Name)
	if name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "Entity name is required"})
	}
	for _, other := range siblings {
		if other.Deleted || other.ID == e.ID {
			continue
		}
		if strings.EqualFold(other.Name, name) {
			errs = append(errs, ValidationError{
				Field:   "name",
				Message: fmt.Sprintf("An entity named '%s' already exists in this project", name),
			})
			break
		}
	}

	return errs
}

// ValidateProperty checks a property definition against its entity siblings.
// siblings must be the entity's non-deleted properties, excluding p itself.
// Default value validation is type-aware and lives with the value codec;
// the schema write path runs it separately.
func ValidateProperty(p Property, siblings []Property) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(p.Label) == "" {
		errs = append(errs, ValidationError{Field: "label", Message: "Property label is required"})
	}
	if p.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "Property label must produce a usable machine name"})
	}
	if !ValidType(p.Type) {
		errs = append(errs, ValidationError{
			Field:   "type",
			Message: fmt.Sprintf("Unknown property type '%s'", p.Type),
		})
	}

	for _, other := range siblings {
		if other.Deleted || other.ID == p.ID {
			continue
		}
		if other.Name == p.Name && p.Name != "" {
			errs = append(errs, ValidationError{
				Field:   "name",
				Message: fmt.Sprintf("A property named '%s' already exists on this entity", p.Name),
			})
			break
		}
	}

	if p.Type == TypeReference && p.ReferencedEntityID == "" {
		errs = append(errs, ValidationError{
			Field:   "referenced_entity",
			Message: "Reference properties must name a referenced entity",
		})
	}
	if p.Type != TypeReference && p.ReferencedEntityID != "" {
		errs = append(errs, ValidationError{
			Field:   "referenced_entity",
			Message: fmt.Sprintf("Only reference properties may name a referenced entity (type is '%s')", p.Type),
		})
	}

	return errs
}
