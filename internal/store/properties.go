package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/facet-hq/facet/internal/codec"
	"github.com/facet-hq/facet/internal/schema"
)

// PropertyInput carries the admin-supplied parts of a property definition.
// The machine name and sort order are derived here.
type PropertyInput struct {
	Label              string
	Type               schema.PropertyType
	IsList             bool
	Required           bool
	Default            string
	ReferencedEntityID string
}

// CreateProperty validates and creates a property on an entity. Reference
// properties run the cycle detector against the whole project's reference
// graph before anything is written.
func (s *Store) CreateProperty(entityID string, in PropertyInput) (schema.Property, error) {
	return s.saveProperty(entityID, "", in)
}

// UpdateProperty re-validates and rewrites a property definition. The
// property's own prior reference edge is excluded from the cycle check so
// that re-saving an unchanged target never trips over itself.
func (s *Store) UpdateProperty(propertyID string, in PropertyInput) (schema.Property, error) {
	existing, err := s.GetProperty(propertyID)
	if err != nil {
		return schema.Property{}, err
	}
	return s.saveProperty(existing.EntityID, propertyID, in)
}

func (s *Store) saveProperty(entityID, existingID string, in PropertyInput) (schema.Property, error) {
	entity, err := s.GetEntity(entityID)
	if err != nil {
		return schema.Property{}, err
	}
	siblings, err := s.ListProperties(entityID)
	if err != nil {
		return schema.Property{}, err
	}

	now := nowUnix()
	p := schema.Property{
		ID:                 existingID,
		EntityID:           entityID,
		Label:              in.Label,
		Name:               schema.MachineName(in.Label),
		Type:               in.Type,
		IsList:             in.IsList,
		Required:           in.Required,
		Default:            in.Default,
		ReferencedEntityID: in.ReferencedEntityID,
		SortOrder:          len(siblings),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if existingID == "" {
		p.ID = newID()
	} else {
		for _, sib := range siblings {
			if sib.ID == existingID {
				p.SortOrder = sib.SortOrder
				p.CreatedAt = sib.CreatedAt
				break
			}
		}
	}

	errs := schema.ValidateProperty(p, siblings)
	if ok, msg := codec.ValidateDefault(p); !ok {
		errs = append(errs, schema.ValidationError{Field: "default", Message: msg})
	}
	if len(errs) > 0 {
		return schema.Property{}, &SchemaError{Errors: errs}
	}

	if p.Type == schema.TypeReference {
		if _, err := s.GetEntity(p.ReferencedEntityID); err != nil {
			return schema.Property{}, &SchemaError{Errors: []schema.ValidationError{{
				Field:   "referenced_entity",
				Message: "Referenced entity does not exist",
			}}}
		}
		projectProps, err := s.ListProjectProperties(entity.ProjectID)
		if err != nil {
			return schema.Property{}, err
		}
		edge := schema.RefEdge{FromEntityID: entityID, ToEntityID: p.ReferencedEntityID}
		if schema.WouldCreateCycle(projectProps, edge, existingID) {
			return schema.Property{}, schema.CircularReferenceError{
				FromEntityID: entityID,
				ToEntityID:   p.ReferencedEntityID,
			}
		}
	}

	if existingID == "" {
		_, err = s.db.Exec(
			`INSERT INTO properties
			 (id, entity_id, label, name, type, is_list, required, default_value, referenced_entity_id, sort_order, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.EntityID, p.Label, p.Name, string(p.Type), boolToInt(p.IsList), boolToInt(p.Required),
			p.Default, p.ReferencedEntityID, p.SortOrder, p.CreatedAt, p.UpdatedAt,
		)
	} else {
		_, err = s.db.Exec(
			`UPDATE properties SET label = ?, name = ?, type = ?, is_list = ?, required = ?,
			 default_value = ?, referenced_entity_id = ?, updated_at = ?
			 WHERE id = ? AND deleted = 0`,
			p.Label, p.Name, string(p.Type), boolToInt(p.IsList), boolToInt(p.Required),
			p.Default, p.ReferencedEntityID, p.UpdatedAt, p.ID,
		)
	}
	if err != nil {
		return schema.Property{}, fmt.Errorf("failed to save property: %w", err)
	}
	return p, nil
}

// GetProperty returns a non-deleted property by id.
func (s *Store) GetProperty(id string) (schema.Property, error) {
	row := s.db.QueryRow(propertySelect+` WHERE id = ? AND deleted = 0`, id)
	p, err := scanPropertyRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Property{}, ErrPropertyNotFound
	}
	return p, err
}

// ListProperties returns an entity's non-deleted properties in sort order.
func (s *Store) ListProperties(entityID string) ([]schema.Property, error) {
	rows, err := s.db.Query(
		propertySelect+` WHERE entity_id = ? AND deleted = 0 ORDER BY sort_order, name`, entityID,
	)
	if err != nil {
		return nil, err
	}
	return scanRows(rows, scanProperty)
}

// ListProjectProperties returns the non-deleted properties of every
// non-deleted entity in the project. The cycle detector consumes this.
func (s *Store) ListProjectProperties(projectID string) ([]schema.Property, error) {
	rows, err := s.db.Query(
		propertySelect+` WHERE deleted = 0 AND entity_id IN
		 (SELECT id FROM entities WHERE project_id = ? AND deleted = 0)`, projectID,
	)
	if err != nil {
		return nil, err
	}
	return scanRows(rows, scanProperty)
}

// SoftDeleteProperty marks a property deleted, freeing its machine name
// for reuse and removing its edge from the reference graph.
func (s *Store) SoftDeleteProperty(id string) error {
	res, err := s.db.Exec(
		`UPDATE properties SET deleted = 1, updated_at = ? WHERE id = ? AND deleted = 0`,
		nowUnix(), id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

const propertySelect = `SELECT id, entity_id, label, name, type, is_list, required, default_value, referenced_entity_id, sort_order, created_at, updated_at FROM properties`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPropertyRow(row rowScanner) (schema.Property, error) {
	var p schema.Property
	var typ string
	var isList, required int
	err := row.Scan(&p.ID, &p.EntityID, &p.Label, &p.Name, &typ, &isList, &required,
		&p.Default, &p.ReferencedEntityID, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return schema.Property{}, err
	}
	p.Type = schema.PropertyType(typ)
	p.IsList = isList != 0
	p.Required = required != 0
	return p, nil
}

func scanProperty(rows *sql.Rows) (schema.Property, error) {
	return scanPropertyRow(rows)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
