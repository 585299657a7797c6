package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/facet-hq/facet/internal/schema"
)

// SchemaError wraps field-level validation errors from a schema mutation.
// Nothing is applied when a SchemaError is returned.
type SchemaError struct {
	Errors []schema.ValidationError
}

func (e *SchemaError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", e.Errors[0].Error(), len(e.Errors)-1)
}

// CreateProject creates a project and returns it.
func (s *Store) CreateProject(name string) (string, error) {
	id := newID()
	now := nowUnix()
	_, err := s.db.Exec(
		`INSERT INTO projects (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		id, name, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create project: %w", err)
	}
	return id, nil
}

// GetProjectByName returns a project id by name, case-insensitively.
func (s *Store) GetProjectByName(name string) (string, error) {
	var id string
	err := s.db.QueryRow(
		`SELECT id FROM projects WHERE name = ? COLLATE NOCASE AND deleted = 0`, name,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrProjectNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// DefaultProject returns the id of the workspace's first project.
func (s *Store) DefaultProject() (string, error) {
	var id string
	err := s.db.QueryRow(
		`SELECT id FROM projects WHERE deleted = 0 ORDER BY created_at LIMIT 1`,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrProjectNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// CreateEntity validates and creates an entity, returning it with its
// generated id.
func (s *Store) CreateEntity(projectID, name, displayTemplate string) (schema.Entity, error) {
	siblings, err := s.ListEntities(projectID)
	if err != nil {
		return schema.Entity{}, err
	}

	now := nowUnix()
	e := schema.Entity{
		ID:              newID(),
		ProjectID:       projectID,
		Name:            name,
		DisplayTemplate: displayTemplate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if errs := schema.ValidateEntity(e, siblings); len(errs) > 0 {
		return schema.Entity{}, &SchemaError{Errors: errs}
	}

	_, err = s.db.Exec(
		`INSERT INTO entities (id, project_id, name, display_template, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.ProjectID, e.Name, e.DisplayTemplate, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return schema.Entity{}, fmt.Errorf("failed to create entity: %w", err)
	}
	return e, nil
}

// UpdateEntityTemplate changes an entity's display template. Display
// strings are resolved at read time, so no stored data needs refreshing.
func (s *Store) UpdateEntityTemplate(entityID, displayTemplate string) error {
	res, err := s.db.Exec(
		`UPDATE entities SET display_template = ?, updated_at = ? WHERE id = ? AND deleted = 0`,
		displayTemplate, nowUnix(), entityID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEntityNotFound
	}
	return nil
}

// GetEntity returns a non-deleted entity by id.
func (s *Store) GetEntity(id string) (schema.Entity, error) {
	row := s.db.QueryRow(
		`SELECT id, project_id, name, display_template, created_at, updated_at
		 FROM entities WHERE id = ? AND deleted = 0`, id,
	)
	return scanEntity(row)
}

// GetEntityByName returns a non-deleted entity by project and name.
func (s *Store) GetEntityByName(projectID, name string) (schema.Entity, error) {
	row := s.db.QueryRow(
		`SELECT id, project_id, name, display_template, created_at, updated_at
		 FROM entities WHERE project_id = ? AND name = ? COLLATE NOCASE AND deleted = 0`,
		projectID, name,
	)
	return scanEntity(row)
}

func scanEntity(row *sql.Row) (schema.Entity, error) {
	var e schema.Entity
	err := row.Scan(&e.ID, &e.ProjectID, &e.Name, &e.DisplayTemplate, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Entity{}, ErrEntityNotFound
	}
	if err != nil {
		return schema.Entity{}, err
	}
	return e, nil
}

// ListEntities returns the project's non-deleted entities ordered by name.
func (s *Store) ListEntities(projectID string) ([]schema.Entity, error) {
	rows, err := s.db.Query(
		`SELECT id, project_id, name, display_template, created_at, updated_at
		 FROM entities WHERE project_id = ? AND deleted = 0 ORDER BY name`, projectID,
	)
	if err != nil {
		return nil, err
	}
	return scanRows(rows, func(rows *sql.Rows) (schema.Entity, error) {
		var e schema.Entity
		err := rows.Scan(&e.ID, &e.ProjectID, &e.Name, &e.DisplayTemplate, &e.CreatedAt, &e.UpdatedAt)
		return e, err
	})
}

// SoftDeleteEntity marks an entity deleted. Its properties, records, and
// saved queries stay in place but become invisible to every read.
func (s *Store) SoftDeleteEntity(id string) error {
	res, err := s.db.Exec(
		`UPDATE entities SET deleted = 1, updated_at = ? WHERE id = ? AND deleted = 0`,
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
		return ErrEntityNotFound
	}
	return nil
}
