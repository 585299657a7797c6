package store

import (
	"errors"
	"testing"

	"github.com/facet-hq/facet/internal/schema"
)

func TestCreatePropertyDerivesMachineName(t *testing.T) {
	s := newTestStore(t)
	_, entity := seedEntity(t, s, "Customer")

	p := mustCreateProperty(t, s, entity.ID, PropertyInput{Label: "First Name", Type: schema.TypeString})
	if p.Name != "firstName" {
		t.Errorf("expected machine name 'firstName', got %q", p.Name)
	}
	if p.SortOrder != 0 {
		t.Errorf("expected sort order 0, got %d", p.SortOrder)
	}

	p2 := mustCreateProperty(t, s, entity.ID, PropertyInput{Label: "Last Name", Type: schema.TypeString})
	if p2.SortOrder != 1 {
		t.Errorf("expected sort order 1, got %d", p2.SortOrder)
	}
}

func TestCreatePropertyRejectsInvalidDefault(t *testing.T) {
	s := newTestStore(t)
	_, entity := seedEntity(t, s, "Customer")

	_, err := s.CreateProperty(entity.ID, PropertyInput{Label: "Age", Type: schema.TypeNumber, Default: "abc"})
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if se.Errors[0].Field != "default" {
		t.Errorf("expected error on field 'default', got %q", se.Errors[0].Field)
	}
}

func TestUpdatePropertyPreservesSortOrder(t *testing.T) {
	s := newTestStore(t)
	_, entity := seedEntity(t, s, "Customer")

	mustCreateProperty(t, s, entity.ID, PropertyInput{Label: "First Name", Type: schema.TypeString})
	p := mustCreateProperty(t, s, entity.ID, PropertyInput{Label: "Last Name", Type: schema.TypeString})

	updated, err := s.UpdateProperty(p.ID, PropertyInput{Label: "Surname", Type: schema.TypeString, Required: true})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "surname" {
		t.Errorf("expected machine name to follow the new label, got %q", updated.Name)
	}
	if updated.SortOrder != 1 {
		t.Errorf("expected sort order to survive the update, got %d", updated.SortOrder)
	}
}

func TestReferenceCycleIsRejected(t *testing.T) {
	s := newTestStore(t)
	projectID, a := seedEntity(t, s, "Author")
	b, err := s.CreateEntity(projectID, "Book", "")
	if err != nil {
		t.Fatalf("failed to create entity: %v", err)
	}
	c, err := s.CreateEntity(projectID, "Chapter", "")
	if err != nil {
		t.Fatalf("failed to create entity: %v", err)
	}

	// Author -> Book -> Chapter is fine.
	mustCreateProperty(t, s, a.ID, PropertyInput{Label: "Books", Type: schema.TypeReference, IsList: true, ReferencedEntityID: b.ID})
	mustCreateProperty(t, s, b.ID, PropertyInput{Label: "Chapters", Type: schema.TypeReference, IsList: true, ReferencedEntityID: c.ID})

	// Chapter -> Author closes the loop.
	_, err = s.CreateProperty(c.ID, PropertyInput{Label: "Written By", Type: schema.TypeReference, ReferencedEntityID: a.ID})
	var cerr schema.CircularReferenceError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected CircularReferenceError, got %v", err)
	}
}

func TestReferenceUpdateExcludesOwnEdge(t *testing.T) {
	s := newTestStore(t)
	projectID, a := seedEntity(t, s, "Author")
	b, err := s.CreateEntity(projectID, "Book", "")
	if err != nil {
		t.Fatalf("failed to create entity: %v", err)
	}

	p := mustCreateProperty(t, s, a.ID, PropertyInput{Label: "Books", Type: schema.TypeReference, IsList: true, ReferencedEntityID: b.ID})

	// Re-saving the same target must not trip over the property's own edge.
	if _, err := s.UpdateProperty(p.ID, PropertyInput{Label: "Books", Type: schema.TypeReference, IsList: true, ReferencedEntityID: b.ID}); err != nil {
		t.Errorf("expected unchanged reference to re-save cleanly, got %v", err)
	}
}

func TestReferenceTargetMustExist(t *testing.T) {
	s := newTestStore(t)
	_, entity := seedEntity(t, s, "Customer")

	_, err := s.CreateProperty(entity.ID, PropertyInput{
		Label: "Account", Type: schema.TypeReference,
		ReferencedEntityID: "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d",
	})
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError for missing target, got %v", err)
	}
}

func TestSoftDeletedPropertyFreesItsName(t *testing.T) {
	s := newTestStore(t)
	_, entity := seedEntity(t, s, "Customer")

	p := mustCreateProperty(t, s, entity.ID, PropertyInput{Label: "Email", Type: schema.TypeString})
	if err := s.SoftDeleteProperty(p.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	if _, err := s.CreateProperty(entity.ID, PropertyInput{Label: "Email", Type: schema.TypeString}); err != nil {
		t.Errorf("expected name to be reusable after delete, got %v", err)
	}
}
