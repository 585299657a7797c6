package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/facet-hq/facet/internal/query"
	"github.com/facet-hq/facet/internal/schema"
)

// InstanceRow is a hydrated record row: the instance plus its
// string-encoded values keyed by property id, list elements in sort order.
type InstanceRow struct {
	Instance schema.EntityInstance
	Values   map[string][]string
}

// CreateInstance creates an entity instance and its property-instance rows
// as one logical unit. values maps property id to encoded values (one
// element for scalars). There is no two-phase commit: if writing the
// dependent rows fails, the just-created instance row is deleted again.
func (s *Store) CreateInstance(entityID string, values map[string][]string) (schema.EntityInstance, error) {
	now := nowUnix()
	inst := schema.EntityInstance{
		ID:        newID(),
		EntityID:  entityID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.Exec(
		`INSERT INTO entity_instances (id, entity_id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		inst.ID, inst.EntityID, inst.CreatedAt, inst.UpdatedAt,
	)
	if err != nil {
		return schema.EntityInstance{}, fmt.Errorf("failed to create record: %w", err)
	}

	for propID, vals := range values {
		if err := s.UpsertPropertyInstances(inst.ID, propID, vals); err != nil {
			// Compensating action: undo the parent row.
			writeErr := fmt.Errorf("failed to write record values: %w", err)
			if _, cErr := s.db.Exec(`DELETE FROM property_instances WHERE entity_instance_id = ?`, inst.ID); cErr != nil {
				return schema.EntityInstance{}, fmt.Errorf("%w (cleanup of record %s also failed: %v)", writeErr, inst.ID, cErr)
			}
			if _, cErr := s.db.Exec(`DELETE FROM entity_instances WHERE id = ?`, inst.ID); cErr != nil {
				return schema.EntityInstance{}, fmt.Errorf("%w (cleanup of record %s also failed: %v)", writeErr, inst.ID, cErr)
			}
			return schema.EntityInstance{}, writeErr
		}
	}
	return inst, nil
}

// UpsertPropertyInstances replaces a record's values for one property:
// existing rows are soft-deleted and fresh rows written with sort order
// following slice order.
func (s *Store) UpsertPropertyInstances(instanceID, propertyID string, values []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`UPDATE property_instances SET deleted = 1 WHERE entity_instance_id = ? AND property_id = ? AND deleted = 0`,
		instanceID, propertyID,
	)
	if err != nil {
		return err
	}

	for i, v := range values {
		_, err = tx.Exec(
			`INSERT INTO property_instances (id, entity_instance_id, property_id, value, sort_order)
			 VALUES (?, ?, ?, ?, ?)`,
			newID(), instanceID, propertyID, v, i,
		)
		if err != nil {
			return err
		}
	}

	if _, err := tx.Exec(
		`UPDATE entity_instances SET updated_at = ? WHERE id = ?`, nowUnix(), instanceID,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// GetInstance returns a non-deleted instance by id.
func (s *Store) GetInstance(id string) (schema.EntityInstance, error) {
	var inst schema.EntityInstance
	err := s.db.QueryRow(
		`SELECT id, entity_id, created_at, updated_at FROM entity_instances WHERE id = ? AND deleted = 0`, id,
	).Scan(&inst.ID, &inst.EntityID, &inst.CreatedAt, &inst.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.EntityInstance{}, ErrInstanceNotFound
	}
	if err != nil {
		return schema.EntityInstance{}, err
	}
	return inst, nil
}

// SoftDeleteInstance marks a record and its value rows deleted.
func (s *Store) SoftDeleteInstance(id string) error {
	res, err := s.db.Exec(
		`UPDATE entity_instances SET deleted = 1, updated_at = ? WHERE id = ? AND deleted = 0`,
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
		return ErrInstanceNotFound
	}
	_, err = s.db.Exec(
		`UPDATE property_instances SET deleted = 1 WHERE entity_instance_id = ?`, id,
	)
	return err
}

// FetchInstancesByIDs returns one page of hydrated rows for the selection
// plus the total matching count. An ALL selection means every non-deleted
// instance of the entity. Callers short-circuit the empty selection; this
// guards it anyway and performs no row queries.
func (s *Store) FetchInstancesByIDs(entityID string, sel query.Selection, limit, offset int) ([]InstanceRow, int, error) {
	if sel.Empty() {
		return nil, 0, nil
	}

	where := `entity_id = ? AND deleted = 0`
	args := []any{entityID}
	if !sel.All {
		ph, idArgs := inClauseArgs(sel.IDs.IDs())
		where += ` AND id IN (` + ph + `)`
		args = append(args, idArgs...)
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM entity_instances WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count records: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	pageSQL := `SELECT id, entity_id, created_at, updated_at FROM entity_instances WHERE ` + where +
		` ORDER BY created_at, id`
	if limit > 0 {
		pageSQL += fmt.Sprintf(` LIMIT %d OFFSET %d`, limit, offset)
	}
	rows, err := s.db.Query(pageSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch records: %w", err)
	}
	instances, err := scanRows(rows, func(rows *sql.Rows) (schema.EntityInstance, error) {
		var inst schema.EntityInstance
		err := rows.Scan(&inst.ID, &inst.EntityID, &inst.CreatedAt, &inst.UpdatedAt)
		return inst, err
	})
	if err != nil {
		return nil, 0, err
	}
	if len(instances) == 0 {
		return nil, total, nil
	}

	pageIDs := make([]string, len(instances))
	for i, inst := range instances {
		pageIDs[i] = inst.ID
	}
	values, err := s.loadValues(pageIDs)
	if err != nil {
		return nil, 0, err
	}

	out := make([]InstanceRow, len(instances))
	for i, inst := range instances {
		vals := values[inst.ID]
		if vals == nil {
			vals = make(map[string][]string)
		}
		out[i] = InstanceRow{Instance: inst, Values: vals}
	}
	return out, total, nil
}

// loadValues fetches the non-deleted property-instance rows for a page of
// instances, grouped by instance then property, list elements in sort
// order.
func (s *Store) loadValues(instanceIDs []string) (map[string]map[string][]string, error) {
	ph, args := inClauseArgs(instanceIDs)
	rows, err := s.db.Query(
		`SELECT entity_instance_id, property_id, value FROM property_instances
		 WHERE entity_instance_id IN (`+ph+`) AND deleted = 0
		 ORDER BY entity_instance_id, property_id, sort_order`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load record values: %w", err)
	}
	defer rows.Close()

	out := make(map[string]map[string][]string, len(instanceIDs))
	for rows.Next() {
		var instID, propID, value string
		if err := rows.Scan(&instID, &propID, &value); err != nil {
			return nil, err
		}
		if out[instID] == nil {
			out[instID] = make(map[string][]string)
		}
		out[instID][propID] = append(out[instID][propID], value)
	}
	return out, rows.Err()
}
