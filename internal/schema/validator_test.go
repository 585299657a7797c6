package schema

import (
	"strings"
	"testing"
)

func hasFieldError(errs []ValidationError, field, fragment string) bool {
	for _, e := range errs {
		if e.Field == field && strings.Contains(e.Message, fragment) {
			return true
		}
	}
	return false
}

func TestValidateEntityDuplicateName(t *testing.T) {
	siblings := []Entity{
		{ID: "e1", Name: "Contact"},
		{ID: "e2", Name: "Company"},
	}

	errs := ValidateEntity(Entity{ID: "e3", Name: "contact"}, siblings)
	if !hasFieldError(errs, "name", "already exists") {
		t.Fatalf("expected duplicate name error, got %v", errs)
	}

	// An entity never collides with itself on update.
	errs = ValidateEntity(Entity{ID: "e1", Name: "Contact"}, siblings)
	if len(errs) != 0 {
		t.Fatalf("expected no errors updating an entity under its own name, got %v", errs)
	}
}

func TestValidateEntityEmptyName(t *testing.T) {
	errs := ValidateEntity(Entity{Name: "   "}, nil)
	if !hasFieldError(errs, "name", "required") {
		t.Fatalf("expected required name error, got %v", errs)
	}
}

func TestValidatePropertyDuplicateMachineName(t *testing.T) {
	siblings := []Property{
		{ID: "p1", Name: "firstName", Label: "First Name", Type: TypeString},
	}

	p := Property{ID: "p2", Label: "First Name", Name: "firstName", Type: TypeString}
	errs := ValidateProperty(p, siblings)
	if !hasFieldError(errs, "name", "already exists") {
		t.Fatalf("expected duplicate machine name error, got %v", errs)
	}

	// Deleted siblings do not block name reuse.
	siblings[0].Deleted = true
	if errs := ValidateProperty(p, siblings); len(errs) != 0 {
		t.Fatalf("expected deleted sibling to free the name, got %v", errs)
	}
}

func TestValidatePropertyTypeShape(t *testing.T) {
	errs := ValidateProperty(Property{Label: "X", Name: "x", Type: "color"}, nil)
	if !hasFieldError(errs, "type", "Unknown property type") {
		t.Fatalf("expected unknown type error, got %v", errs)
	}

	errs = ValidateProperty(Property{Label: "Owner", Name: "owner", Type: TypeReference}, nil)
	if !hasFieldError(errs, "referenced_entity", "must name a referenced entity") {
		t.Fatalf("expected missing referenced entity error, got %v", errs)
	}

	errs = ValidateProperty(Property{Label: "Age", Name: "age", Type: TypeNumber, ReferencedEntityID: "e9"}, nil)
	if !hasFieldError(errs, "referenced_entity", "Only reference properties") {
		t.Fatalf("expected stray referenced entity error, got %v", errs)
	}
}
