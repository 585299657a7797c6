package store

import (
	"errors"
	"reflect"
	"testing"

	"github.com/facet-hq/facet/internal/query"
	"github.com/facet-hq/facet/internal/schema"
)

func TestCreateInstanceAndFetch(t *testing.T) {
	s := newTestStore(t)
	_, entity := seedEntity(t, s, "Customer")
	name := mustCreateProperty(t, s, entity.ID, PropertyInput{Label: "Name", Type: schema.TypeString})
	tags := mustCreateProperty(t, s, entity.ID, PropertyInput{Label: "Tags", Type: schema.TypeString, IsList: true})

	inst := mustCreateInstance(t, s, entity.ID, map[string][]string{
		name.ID: {"Ada"},
		tags.ID: {"vip", "early"},
	})

	rows, total, err := s.FetchInstancesByIDs(entity.ID, query.SelectAll(), 0, 0)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("expected one row, got total=%d len=%d", total, len(rows))
	}
	if rows[0].Instance.ID != inst.ID {
		t.Errorf("expected instance %s, got %s", inst.ID, rows[0].Instance.ID)
	}
	if got := rows[0].Values[name.ID]; !reflect.DeepEqual(got, []string{"Ada"}) {
		t.Errorf("name values = %v", got)
	}
	if got := rows[0].Values[tags.ID]; !reflect.DeepEqual(got, []string{"vip", "early"}) {
		t.Errorf("list values out of order: %v", got)
	}
}

func TestCreateInstanceCleansUpWhenValueWriteFails(t *testing.T) {
	s := newTestStore(t)
	_, entity := seedEntity(t, s, "Customer")
	name := mustCreateProperty(t, s, entity.ID, PropertyInput{Label: "Name", Type: schema.TypeString})

	// Make every value insert fail so the compensating delete runs.
	if _, err := s.DB().Exec(`CREATE TRIGGER reject_value_rows BEFORE INSERT ON property_instances
		BEGIN SELECT RAISE(ABORT, 'rejected'); END`); err != nil {
		t.Fatalf("failed to create trigger: %v", err)
	}

	if _, err := s.CreateInstance(entity.ID, map[string][]string{name.ID: {"Ada"}}); err == nil {
		t.Fatal("expected create to fail")
	}

	var n int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM entity_instances`).Scan(&n); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no instance rows after failed create, got %d", n)
	}
}

func TestUpsertReplacesPropertyValues(t *testing.T) {
	s := newTestStore(t)
	_, entity := seedEntity(t, s, "Customer")
	tags := mustCreateProperty(t, s, entity.ID, PropertyInput{Label: "Tags", Type: schema.TypeString, IsList: true})
	inst := mustCreateInstance(t, s, entity.ID, map[string][]string{tags.ID: {"a", "b"}})

	if err := s.UpsertPropertyInstances(inst.ID, tags.ID, []string{"c"}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	rows, _, err := s.FetchInstancesByIDs(entity.ID, query.SelectAll(), 0, 0)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if got := rows[0].Values[tags.ID]; !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("expected old values replaced, got %v", got)
	}
}

func TestUpsertToEmptyClearsProperty(t *testing.T) {
	s := newTestStore(t)
	_, entity := seedEntity(t, s, "Customer")
	name := mustCreateProperty(t, s, entity.ID, PropertyInput{Label: "Name", Type: schema.TypeString})
	inst := mustCreateInstance(t, s, entity.ID, map[string][]string{name.ID: {"Ada"}})

	if err := s.UpsertPropertyInstances(inst.ID, name.ID, nil); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	rows, _, err := s.FetchInstancesByIDs(entity.ID, query.SelectAll(), 0, 0)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if got := rows[0].Values[name.ID]; len(got) != 0 {
		t.Errorf("expected no values, got %v", got)
	}
}

func TestSoftDeletedInstanceExcludedFromFetch(t *testing.T) {
	s := newTestStore(t)
	_, entity := seedEntity(t, s, "Customer")
	name := mustCreateProperty(t, s, entity.ID, PropertyInput{Label: "Name", Type: schema.TypeString})

	keep := mustCreateInstance(t, s, entity.ID, map[string][]string{name.ID: {"Ada"}})
	gone := mustCreateInstance(t, s, entity.ID, map[string][]string{name.ID: {"Bob"}})

	if err := s.SoftDeleteInstance(gone.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	if _, err := s.GetInstance(gone.ID); !errors.Is(err, ErrInstanceNotFound) {
		t.Errorf("expected ErrInstanceNotFound, got %v", err)
	}

	rows, total, err := s.FetchInstancesByIDs(entity.ID, query.SelectAll(), 0, 0)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Instance.ID != keep.ID {
		t.Errorf("expected only the surviving instance, got total=%d rows=%d", total, len(rows))
	}
}

func TestFetchPagination(t *testing.T) {
	s := newTestStore(t)
	tickingClock(t)
	_, entity := seedEntity(t, s, "Customer")
	name := mustCreateProperty(t, s, entity.ID, PropertyInput{Label: "Name", Type: schema.TypeString})

	var created []string
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		inst := mustCreateInstance(t, s, entity.ID, map[string][]string{name.ID: {n}})
		created = append(created, inst.ID)
	}

	rows, total, err := s.FetchInstancesByIDs(entity.ID, query.SelectAll(), 2, 2)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if total != 5 {
		t.Errorf("expected total 5, got %d", total)
	}
	if len(rows) != 2 {
		t.Fatalf("expected page of 2, got %d", len(rows))
	}
	if rows[0].Instance.ID != created[2] || rows[1].Instance.ID != created[3] {
		t.Errorf("page out of creation order")
	}

	// Offset past the end: empty page, total still reported.
	rows, total, err = s.FetchInstancesByIDs(entity.ID, query.SelectAll(), 2, 10)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if total != 5 || len(rows) != 0 {
		t.Errorf("expected empty page with total 5, got total=%d rows=%d", total, len(rows))
	}
}

func TestFetchBySelectionSubset(t *testing.T) {
	s := newTestStore(t)
	_, entity := seedEntity(t, s, "Customer")
	name := mustCreateProperty(t, s, entity.ID, PropertyInput{Label: "Name", Type: schema.TypeString})

	a := mustCreateInstance(t, s, entity.ID, map[string][]string{name.ID: {"Ada"}})
	mustCreateInstance(t, s, entity.ID, map[string][]string{name.ID: {"Bob"}})

	set := query.NewInstanceSet()
	set.Add(a.ID)
	rows, total, err := s.FetchInstancesByIDs(entity.ID, query.SelectIDs(set), 0, 0)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Instance.ID != a.ID {
		t.Errorf("expected only the selected instance")
	}
}

func TestFetchEmptySelectionSkipsQuery(t *testing.T) {
	s := newTestStore(t)
	_, entity := seedEntity(t, s, "Customer")

	rows, total, err := s.FetchInstancesByIDs(entity.ID, query.SelectIDs(query.NewInstanceSet()), 10, 0)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if total != 0 || len(rows) != 0 {
		t.Errorf("expected nothing for the empty selection, got total=%d rows=%d", total, len(rows))
	}
}
