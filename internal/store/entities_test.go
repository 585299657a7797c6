package store

import (
	"errors"
	"testing"
)

func TestCreateEntityRejectsDuplicateName(t *testing.T) {
	s := newTestStore(t)
	projectID, _ := seedEntity(t, s, "Customer")

	_, err := s.CreateEntity(projectID, "customer", "")
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError for duplicate name, got %v", err)
	}
	if se.Errors[0].Field != "name" {
		t.Errorf("expected error on field 'name', got %q", se.Errors[0].Field)
	}
}

func TestGetEntityByNameIsCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	projectID, entity := seedEntity(t, s, "Customer")

	got, err := s.GetEntityByName(projectID, "CUSTOMER")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got.ID != entity.ID {
		t.Errorf("expected entity %s, got %s", entity.ID, got.ID)
	}
}

func TestSoftDeletedEntityIsInvisible(t *testing.T) {
	s := newTestStore(t)
	projectID, entity := seedEntity(t, s, "Customer")

	if err := s.SoftDeleteEntity(entity.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	if _, err := s.GetEntity(entity.ID); !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("expected ErrEntityNotFound, got %v", err)
	}
	list, err := s.ListEntities(projectID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected no entities after delete, got %d", len(list))
	}

	// The name is free again for a new entity.
	if _, err := s.CreateEntity(projectID, "Customer", ""); err != nil {
		t.Errorf("expected name to be reusable after delete, got %v", err)
	}
}

func TestUpdateEntityTemplate(t *testing.T) {
	s := newTestStore(t)
	_, entity := seedEntity(t, s, "Customer")

	if err := s.UpdateEntityTemplate(entity.ID, "{firstName} {lastName}"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	got, err := s.GetEntity(entity.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.DisplayTemplate != "{firstName} {lastName}" {
		t.Errorf("template not updated, got %q", got.DisplayTemplate)
	}

	if err := s.UpdateEntityTemplate("missing", "x"); !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("expected ErrEntityNotFound, got %v", err)
	}
}
