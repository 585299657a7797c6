package store

import (
	"testing"

	"github.com/facet-hq/facet/internal/schema"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedEntity creates a project plus one entity and returns both ids.
func seedEntity(t *testing.T, s *Store, name string) (projectID string, entity schema.Entity) {
	t.Helper()
	projectID, err := s.CreateProject("test")
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	entity, err = s.CreateEntity(projectID, name, "")
	if err != nil {
		t.Fatalf("failed to create entity: %v", err)
	}
	return projectID, entity
}

func mustCreateProperty(t *testing.T, s *Store, entityID string, in PropertyInput) schema.Property {
	t.Helper()
	p, err := s.CreateProperty(entityID, in)
	if err != nil {
		t.Fatalf("failed to create property %q: %v", in.Label, err)
	}
	return p
}

func mustCreateInstance(t *testing.T, s *Store, entityID string, values map[string][]string) schema.EntityInstance {
	t.Helper()
	inst, err := s.CreateInstance(entityID, values)
	if err != nil {
		t.Fatalf("failed to create instance: %v", err)
	}
	return inst
}

// tickingClock makes nowUnix return strictly increasing values so that
// created_at ordering is deterministic within a test.
func tickingClock(t *testing.T) {
	t.Helper()
	orig := nowUnix
	var tick int64 = 1_700_000_000
	nowUnix = func() int64 {
		tick++
		return tick
	}
	t.Cleanup(func() { nowUnix = orig })
}
