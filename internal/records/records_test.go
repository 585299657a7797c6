package records

import (
	"errors"
	"testing"

	"github.com/facet-hq/facet/internal/query"
	"github.com/facet-hq/facet/internal/schema"
	"github.com/facet-hq/facet/internal/store"
)

type fixture struct {
	store   *store.Store
	svc     *Service
	project string
	contact schema.Entity
	props   map[string]schema.Property
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	projectID, err := s.CreateProject("test")
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	contact, err := s.CreateEntity(projectID, "Contact", "{firstName} {lastName}")
	if err != nil {
		t.Fatalf("failed to create entity: %v", err)
	}

	f := &fixture{
		store:   s,
		svc:     NewService(s),
		project: projectID,
		contact: contact,
		props:   make(map[string]schema.Property),
	}
	for _, in := range []store.PropertyInput{
		{Label: "First Name", Type: schema.TypeString, Required: true},
		{Label: "Last Name", Type: schema.TypeString},
		{Label: "Age", Type: schema.TypeNumber},
		{Label: "City", Type: schema.TypeString},
		{Label: "Nicknames", Type: schema.TypeString, IsList: true},
	} {
		p, err := s.CreateProperty(contact.ID, in)
		if err != nil {
			t.Fatalf("failed to create property %q: %v", in.Label, err)
		}
		f.props[p.Name] = p
	}
	return f
}

func (f *fixture) create(t *testing.T, input map[string][]string) Record {
	t.Helper()
	rec, err := f.svc.Create(f.contact.ID, input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return rec
}

func TestCreateValidRecord(t *testing.T) {
	f := newFixture(t)

	rec := f.create(t, map[string][]string{"firstName": {"Ann"}})
	if rec.ID == "" {
		t.Fatal("expected an id")
	}
	if got, _ := rec.Values["firstName"][0].AsString(); got != "Ann" {
		t.Errorf("firstName = %q", got)
	}
	if _, ok := rec.Values["age"]; ok {
		t.Errorf("expected absent age to stay null, got %v", rec.Values["age"])
	}
}

func TestCreateMissingRequiredField(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.contact.ID, map[string][]string{"age": {"30"}})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if verrs["firstName"] != "This field is required" {
		t.Errorf("firstName error = %q", verrs["firstName"])
	}

	// Nothing was written.
	page, err := f.svc.List(f.contact.ID, 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if page.Total != 0 {
		t.Errorf("expected no records after failed create, got %d", page.Total)
	}
}

func TestCreateCollectsAllFieldErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.contact.ID, map[string][]string{"age": {"old"}, "city": {"a", "b"}})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	for _, field := range []string{"firstName", "age", "city"} {
		if verrs[field] == "" {
			t.Errorf("expected an error for %s, got none (all: %v)", field, verrs)
		}
	}
}

func TestCreateRejectsUnknownField(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.contact.ID, map[string][]string{"firstName": {"Ann"}, "salary": {"1"}})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if verrs["salary"] != "Unknown field" {
		t.Errorf("salary flagged as %q, want Unknown field", verrs["salary"])
	}
}

func TestCreateReportsUnknownFieldAlongsideOtherErrors(t *testing.T) {
	f := newFixture(t)

	// An unknown key and a missing required field come back in one map.
	_, err := f.svc.Create(f.contact.ID, map[string][]string{"nickname": {"x"}})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if verrs["nickname"] != "Unknown field" {
		t.Errorf("nickname flagged as %q, want Unknown field", verrs["nickname"])
	}
	if verrs["firstName"] != "This field is required" {
		t.Errorf("firstName flagged as %q, want This field is required", verrs["firstName"])
	}
}

func TestUpdateReportsUnknownFieldAlongsideOtherErrors(t *testing.T) {
	f := newFixture(t)
	rec := f.create(t, map[string][]string{"firstName": {"Ann"}})

	_, err := f.svc.Update(rec.ID, map[string][]string{"nickname": {"x"}, "age": {"old"}})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if verrs["nickname"] != "Unknown field" {
		t.Errorf("nickname flagged as %q, want Unknown field", verrs["nickname"])
	}
	if verrs["age"] == "" {
		t.Errorf("expected an error for age, got none (all: %v)", verrs)
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	f := newFixture(t)
	if _, err := f.store.CreateProperty(f.contact.ID, store.PropertyInput{
		Label: "Status", Type: schema.TypeString, Default: "active",
	}); err != nil {
		t.Fatalf("failed to create property: %v", err)
	}

	rec := f.create(t, map[string][]string{"firstName": {"Ann"}})
	if got, _ := rec.Values["status"][0].AsString(); got != "active" {
		t.Errorf("expected default applied, got %q", got)
	}

	// An explicit empty value wins over the default.
	rec = f.create(t, map[string][]string{"firstName": {"Bea"}, "status": {""}})
	if vals := rec.Values["status"]; len(vals) != 1 || !vals[0].IsNull() {
		t.Errorf("expected explicit empty to beat the default, got %v", vals)
	}
}

func TestCreateCanonicalizesNumbers(t *testing.T) {
	f := newFixture(t)

	rec := f.create(t, map[string][]string{"firstName": {"Ann"}, "age": {"30.0"}})
	if got, _ := rec.Values["age"][0].AsNumber(); got != 30 {
		t.Errorf("age = %v", got)
	}

	// Canonical form means "30.0" and "30" are the same stored value.
	page, err := f.svc.FetchPage(f.contact.ID, query.Group{
		Operator: query.OpAnd,
		Rules:    []query.Rule{{PropertyID: f.props["age"].ID, Operator: query.OpEquals, Value: "30"}},
	}, 1, 10)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("expected canonical match, got total=%d", page.Total)
	}
}

func TestUpdateIsPartial(t *testing.T) {
	f := newFixture(t)
	rec := f.create(t, map[string][]string{"firstName": {"Ann"}, "age": {"30"}})

	updated, err := f.svc.Update(rec.ID, map[string][]string{"city": {"Paris"}})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got, _ := updated.Values["firstName"][0].AsString(); got != "Ann" {
		t.Errorf("untouched field lost: %q", got)
	}
	if got, _ := updated.Values["city"][0].AsString(); got != "Paris" {
		t.Errorf("city = %q", got)
	}

	// Supplying an empty list clears a field.
	updated, err = f.svc.Update(rec.ID, map[string][]string{"age": {}})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, ok := updated.Values["age"]; ok {
		t.Errorf("expected age cleared, got %v", updated.Values["age"])
	}

	// A required field cannot be cleared.
	if _, err := f.svc.Update(rec.ID, map[string][]string{"firstName": {}}); err == nil {
		t.Error("expected an error when clearing a required field")
	}
}

func TestDisplayStringResolution(t *testing.T) {
	f := newFixture(t)

	rec := f.create(t, map[string][]string{"firstName": {"John"}})
	if rec.Display != "John " {
		t.Errorf("expected trailing space for the missing token, got %q", rec.Display)
	}

	rec = f.create(t, map[string][]string{"firstName": {"Ada"}, "lastName": {"Lovelace"}})
	if rec.Display != "Ada Lovelace" {
		t.Errorf("display = %q", rec.Display)
	}
}

func TestFetchPageIntersectsAcrossProperties(t *testing.T) {
	f := newFixture(t)

	f.create(t, map[string][]string{"firstName": {"Ann"}, "age": {"30"}, "city": {"Paris"}})
	f.create(t, map[string][]string{"firstName": {"Bob"}, "age": {"12"}, "city": {"Paris"}})
	f.create(t, map[string][]string{"firstName": {"Cyd"}, "age": {"40"}, "city": {"Lyon"}})

	page, err := f.svc.FetchPage(f.contact.ID, query.Group{
		Operator: query.OpAnd,
		Rules: []query.Rule{
			{PropertyID: f.props["age"].ID, Operator: query.OpGreaterThan, Value: "18"},
			{PropertyID: f.props["city"].ID, Operator: query.OpEquals, Value: "Paris"},
		},
	}, 1, 10)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if page.Total != 1 || len(page.Records) != 1 {
		t.Fatalf("expected the intersection to hold one record, got total=%d", page.Total)
	}
	if got, _ := page.Records[0].Values["firstName"][0].AsString(); got != "Ann" {
		t.Errorf("expected Ann, got %q", got)
	}
}

func TestFetchPageEmptyResultShortCircuits(t *testing.T) {
	f := newFixture(t)
	f.create(t, map[string][]string{"firstName": {"Ann"}})

	page, err := f.svc.FetchPage(f.contact.ID, query.Group{
		Operator: query.OpAnd,
		Rules:    []query.Rule{{PropertyID: f.props["city"].ID, Operator: query.OpEquals, Value: "Nowhere"}},
	}, 1, 10)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if page.Total != 0 || len(page.Records) != 0 {
		t.Errorf("expected empty page, got total=%d records=%d", page.Total, len(page.Records))
	}
	if page.TotalPages != 0 {
		t.Errorf("expected zero pages, got %d", page.TotalPages)
	}
}

func TestListPagination(t *testing.T) {
	f := newFixture(t)
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		f.create(t, map[string][]string{"firstName": {n}})
	}

	page, err := f.svc.List(f.contact.ID, 2, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if page.Total != 5 || page.TotalPages != 3 || len(page.Records) != 2 {
		t.Errorf("page bookkeeping wrong: total=%d pages=%d records=%d", page.Total, page.TotalPages, len(page.Records))
	}
}

func TestRunSavedQuery(t *testing.T) {
	f := newFixture(t)
	f.create(t, map[string][]string{"firstName": {"Ann"}, "city": {"Paris"}})
	f.create(t, map[string][]string{"firstName": {"Bob"}, "city": {"Lyon"}})

	if _, err := f.store.SaveQuery(f.project, f.contact.ID, "Parisians", query.Group{
		Operator: query.OpAnd,
		Rules:    []query.Rule{{PropertyID: f.props["city"].ID, Operator: query.OpEquals, Value: "Paris"}},
	}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	page, err := f.svc.RunQuery(f.project, "parisians", 1, 10)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("expected one match, got %d", page.Total)
	}
}

func TestDeletedRecordLeavesQueries(t *testing.T) {
	f := newFixture(t)
	rec := f.create(t, map[string][]string{"firstName": {"Ann"}})

	if err := f.svc.Delete(rec.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := f.svc.Get(rec.ID); !errors.Is(err, store.ErrInstanceNotFound) {
		t.Errorf("expected ErrInstanceNotFound, got %v", err)
	}
	page, err := f.svc.List(f.contact.ID, 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if page.Total != 0 {
		t.Errorf("expected no records, got %d", page.Total)
	}
}

func TestListRecordsMultiValue(t *testing.T) {
	f := newFixture(t)

	rec := f.create(t, map[string][]string{
		"firstName": {"Ann"},
		"nicknames": {"Annie", "An"},
	})
	vals := rec.Values["nicknames"]
	if len(vals) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(vals))
	}
	if got, _ := vals[0].AsString(); got != "Annie" {
		t.Errorf("element order lost: %q", got)
	}
}
