// Package records is the write-and-read surface for entity instances: it
// validates raw input against the entity's schema, encodes values to their
// canonical string form, and hydrates stored rows back into typed records
// with resolved display strings.
package records

import (
	"fmt"
	"sort"
	"strings"

	"github.com/facet-hq/facet/internal/codec"
	"github.com/facet-hq/facet/internal/display"
	"github.com/facet-hq/facet/internal/query"
	"github.com/facet-hq/facet/internal/schema"
	"github.com/facet-hq/facet/internal/store"
)

// DefaultPageSize is the page size used when the caller passes none.
const DefaultPageSize = 20

// Record is a hydrated entity instance: typed values keyed by property
// machine name, plus the resolved display string.
type Record struct {
	ID        string
	EntityID  string
	Values    map[string][]codec.Value
	Display   string
	CreatedAt int64
	UpdatedAt int64
}

// Page is one page of records from a fetch, with enough bookkeeping to
// render pagination.
type Page struct {
	Records    []Record
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// ValidationErrors maps property machine names to human-facing messages.
// All failing fields are collected in one pass, not just the first.
type ValidationErrors map[string]string

func (e ValidationErrors) Error() string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, e[name])
	}
	return "invalid record: " + strings.Join(parts, "; ")
}

// Service coordinates schema lookups, validation, encoding, and storage
// for record operations.
type Service struct {
	store *store.Store
}

func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

// ValidateRecord checks raw input against every property of the entity,
// collecting one message per failing field. Input is keyed by machine
// name; properties absent from the input are checked too, so a missing
// required field fails ("This field is required").
func ValidateRecord(props []schema.Property, input map[string][]string) ValidationErrors {
	errs := make(ValidationErrors)
	for _, p := range props {
		if p.Deleted {
			continue
		}
		if ok, msg := codec.Validate(input[p.Name], p.Type, p.Required, p.IsList); !ok {
			errs[p.Name] = msg
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Create validates input, fills in property defaults for absent fields,
// and writes a new record. Nothing is written when validation fails.
func (s *Service) Create(entityID string, input map[string][]string) (Record, error) {
	entity, err := s.store.GetEntity(entityID)
	if err != nil {
		return Record{}, err
	}
	props, err := s.store.ListProperties(entity.ID)
	if err != nil {
		return Record{}, err
	}

	errs := unknownFieldErrors(props, input)
	input = applyDefaults(props, input)
	for name, msg := range ValidateRecord(props, input) {
		errs[name] = msg
	}
	if len(errs) > 0 {
		return Record{}, errs
	}

	encoded := make(map[string][]string, len(input))
	for _, p := range props {
		vals := encodeValues(p, input[p.Name])
		if vals != nil {
			encoded[p.ID] = vals
		}
	}

	inst, err := s.store.CreateInstance(entity.ID, encoded)
	if err != nil {
		return Record{}, err
	}
	return s.Get(inst.ID)
}

// Update replaces the supplied fields of an existing record, leaving the
// rest untouched. Supplying an empty slice for a field clears it.
func (s *Service) Update(instanceID string, input map[string][]string) (Record, error) {
	inst, err := s.store.GetInstance(instanceID)
	if err != nil {
		return Record{}, err
	}
	props, err := s.store.ListProperties(inst.EntityID)
	if err != nil {
		return Record{}, err
	}
	errs := unknownFieldErrors(props, input)
	touched := make([]schema.Property, 0, len(input))
	for _, p := range props {
		vals, supplied := input[p.Name]
		if !supplied {
			continue
		}
		if ok, msg := codec.Validate(vals, p.Type, p.Required, p.IsList); !ok {
			errs[p.Name] = msg
			continue
		}
		touched = append(touched, p)
	}
	if len(errs) > 0 {
		return Record{}, errs
	}

	for _, p := range touched {
		if err := s.store.UpsertPropertyInstances(inst.ID, p.ID, encodeValues(p, input[p.Name])); err != nil {
			return Record{}, err
		}
	}
	return s.Get(inst.ID)
}

// Get returns one hydrated record.
func (s *Service) Get(instanceID string) (Record, error) {
	inst, err := s.store.GetInstance(instanceID)
	if err != nil {
		return Record{}, err
	}

	ids := query.NewInstanceSet()
	ids.Add(inst.ID)
	rows, _, err := s.store.FetchInstancesByIDs(inst.EntityID, query.SelectIDs(ids), 1, 0)
	if err != nil {
		return Record{}, err
	}
	if len(rows) == 0 {
		return Record{}, store.ErrInstanceNotFound
	}

	entity, err := s.store.GetEntity(inst.EntityID)
	if err != nil {
		return Record{}, err
	}
	props, err := s.store.ListProperties(entity.ID)
	if err != nil {
		return Record{}, err
	}
	return s.hydrate(entity, props, rows[0]), nil
}

// Delete soft-deletes a record.
func (s *Service) Delete(instanceID string) error {
	return s.store.SoftDeleteInstance(instanceID)
}

// List returns one page of all records of an entity, in creation order.
func (s *Service) List(entityID string, page, pageSize int) (Page, error) {
	return s.fetch(entityID, query.SelectAll(), page, pageSize)
}

// FetchPage evaluates a filter tree against the entity's records and
// returns the requested page of matches. The filter phase runs first and
// produces the matching id set; an empty result short-circuits without a
// fetch round-trip.
func (s *Service) FetchPage(entityID string, root query.Group, page, pageSize int) (Page, error) {
	props, err := s.store.ListProperties(entityID)
	if err != nil {
		return Page{}, err
	}
	sel, err := query.NewEvaluator(s.store, props).EvaluateGroup(root)
	if err != nil {
		return Page{}, err
	}

	page, pageSize = clampPaging(page, pageSize)
	if sel.Empty() {
		return Page{Page: page, PageSize: pageSize}, nil
	}
	return s.fetch(entityID, sel, page, pageSize)
}

// RunQuery executes a saved query by name within a project.
func (s *Service) RunQuery(projectID, queryName string, page, pageSize int) (Page, error) {
	q, err := s.store.GetQueryByName(projectID, queryName)
	if err != nil {
		return Page{}, err
	}
	return s.FetchPage(q.EntityID, q.Root, page, pageSize)
}

func (s *Service) fetch(entityID string, sel query.Selection, page, pageSize int) (Page, error) {
	entity, err := s.store.GetEntity(entityID)
	if err != nil {
		return Page{}, err
	}
	props, err := s.store.ListProperties(entity.ID)
	if err != nil {
		return Page{}, err
	}

	page, pageSize = clampPaging(page, pageSize)
	rows, total, err := s.store.FetchInstancesByIDs(entity.ID, sel, pageSize, (page-1)*pageSize)
	if err != nil {
		return Page{}, err
	}

	out := Page{
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	for _, row := range rows {
		out.Records = append(out.Records, s.hydrate(entity, props, row))
	}
	return out, nil
}

func clampPaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

// hydrate decodes a stored row into typed values keyed by machine name and
// resolves the entity's display template against them.
func (s *Service) hydrate(entity schema.Entity, props []schema.Property, row store.InstanceRow) Record {
	byName := make(map[string]schema.Property, len(props))
	values := make(map[string][]codec.Value)
	for _, p := range props {
		byName[p.Name] = p
		raws, ok := row.Values[p.ID]
		if !ok {
			continue
		}
		typed := make([]codec.Value, len(raws))
		for i, raw := range raws {
			typed[i] = codec.Cast(raw, p.Type)
		}
		values[p.Name] = typed
	}

	return Record{
		ID:        row.Instance.ID,
		EntityID:  row.Instance.EntityID,
		Values:    values,
		Display:   display.Resolve(entity.DisplayTemplate, values, byName),
		CreatedAt: row.Instance.CreatedAt,
		UpdatedAt: row.Instance.UpdatedAt,
	}
}

// unknownFieldErrors flags input keys the entity does not define, keyed
// like every other field problem so callers see them all in one map.
func unknownFieldErrors(props []schema.Property, input map[string][]string) ValidationErrors {
	known := make(map[string]bool, len(props))
	for _, p := range props {
		known[p.Name] = true
	}
	errs := make(ValidationErrors)
	for name := range input {
		if !known[name] {
			errs[name] = "Unknown field"
		}
	}
	return errs
}

// applyDefaults fills property defaults into fields the input leaves
// absent. An explicitly supplied empty value is respected, not defaulted.
func applyDefaults(props []schema.Property, input map[string][]string) map[string][]string {
	out := make(map[string][]string, len(input))
	for k, v := range input {
		out[k] = v
	}
	for _, p := range props {
		if p.Default == "" {
			continue
		}
		if _, supplied := out[p.Name]; supplied {
			continue
		}
		out[p.Name] = []string{p.Default}
	}
	return out
}

// encodeValues turns validated raw input into canonical stored strings.
// Blank scalars store as an explicit empty string for text properties and
// as no row at all (null) for every other type.
func encodeValues(p schema.Property, raws []string) []string {
	var out []string
	for _, raw := range raws {
		if strings.TrimSpace(raw) == "" {
			if p.Type == schema.TypeString {
				out = append(out, "")
			}
			continue
		}
		v := codec.Cast(raw, p.Type)
		encoded, ok := codec.Format(v, p.Type)
		if !ok {
			continue
		}
		out = append(out, encoded)
	}
	return out
}
