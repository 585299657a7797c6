package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/facet-hq/facet/internal/query"
	"github.com/facet-hq/facet/internal/schema"
)

// SaveQuery persists a saved query and its condition tree. The tree is
// flattened into one row per group and per rule; rules must already be
// valid for the target entity's properties.
func (s *Store) SaveQuery(projectID, entityID, name string, root query.Group) (*query.SavedQuery, error) {
	entity, err := s.GetEntity(entityID)
	if err != nil {
		return nil, err
	}

	props, err := s.ListProperties(entity.ID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]schema.Property, len(props))
	for _, p := range props {
		byID[p.ID] = p
	}
	if err := validateGroup(root, byID); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := nowUnix()
	q := &query.SavedQuery{
		ID:        newID(),
		ProjectID: projectID,
		EntityID:  entity.ID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = tx.Exec(
		`INSERT INTO queries (id, project_id, entity_id, name, created_at, updated_at, deleted)
		 VALUES (?, ?, ?, ?, ?, ?, 0)`,
		q.ID, q.ProjectID, q.EntityID, q.Name, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save query '%s': %w", name, err)
	}

	saved, err := insertGroup(tx, q.ID, nil, root)
	if err != nil {
		return nil, err
	}
	q.Root = *saved

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return q, nil
}

// validateGroup checks every rule in the tree against the entity's
// properties.
func validateGroup(g query.Group, props map[string]schema.Property) error {
	if !query.ValidBoolOp(g.Operator) {
		return fmt.Errorf("unknown group operator '%s'", g.Operator)
	}
	for _, r := range g.Rules {
		prop, ok := props[r.PropertyID]
		if !ok {
			return fmt.Errorf("property '%s' does not belong to the queried entity", r.PropertyID)
		}
		if err := query.ValidateRule(r, prop); err != nil {
			return err
		}
	}
	for _, child := range g.Groups {
		if err := validateGroup(child, props); err != nil {
			return err
		}
	}
	return nil
}

func insertGroup(tx *sql.Tx, queryID string, parentID *string, g query.Group) (*query.Group, error) {
	out := query.Group{
		ID:        newID(),
		Operator:  g.Operator,
		SortOrder: g.SortOrder,
	}

	_, err := tx.Exec(
		`INSERT INTO query_groups (id, query_id, parent_group_id, operator, sort_order, deleted)
		 VALUES (?, ?, ?, ?, ?, 0)`,
		out.ID, queryID, parentID, out.Operator, out.SortOrder,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save query group: %w", err)
	}

	for i, r := range g.Rules {
		rule := query.Rule{
			ID:         newID(),
			PropertyID: r.PropertyID,
			Operator:   r.Operator,
			Value:      r.Value,
			SortOrder:  i,
		}
		var value *string
		if query.NeedsValue(rule.Operator) {
			v := rule.Value
			value = &v
		}
		_, err := tx.Exec(
			`INSERT INTO query_rules (id, group_id, property_id, operator, value, sort_order, deleted)
			 VALUES (?, ?, ?, ?, ?, ?, 0)`,
			rule.ID, out.ID, rule.PropertyID, string(rule.Operator), value, rule.SortOrder,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to save query rule: %w", err)
		}
		out.Rules = append(out.Rules, rule)
	}

	for i, child := range g.Groups {
		child.SortOrder = i
		saved, err := insertGroup(tx, queryID, &out.ID, child)
		if err != nil {
			return nil, err
		}
		out.Groups = append(out.Groups, *saved)
	}
	return &out, nil
}

// LoadQuery reads a saved query and reassembles its condition tree.
func (s *Store) LoadQuery(id string) (*query.SavedQuery, error) {
	q := &query.SavedQuery{}
	err := s.db.QueryRow(
		`SELECT id, project_id, entity_id, name, created_at, updated_at
		 FROM queries WHERE id = ? AND deleted = 0`, id,
	).Scan(&q.ID, &q.ProjectID, &q.EntityID, &q.Name, &q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQueryNotFound
	}
	if err != nil {
		return nil, err
	}

	root, err := s.loadQueryTree(q.ID)
	if err != nil {
		return nil, err
	}
	q.Root = *root
	return q, nil
}

// GetQueryByName finds a saved query by its name within a project,
// case-insensitively.
func (s *Store) GetQueryByName(projectID, name string) (*query.SavedQuery, error) {
	var id string
	err := s.db.QueryRow(
		`SELECT id FROM queries
		 WHERE project_id = ? AND name = ? COLLATE NOCASE AND deleted = 0`,
		projectID, name,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQueryNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.LoadQuery(id)
}

// ListQueries returns the project's saved queries ordered by name. The
// returned queries carry only their header fields, not the condition
// tree; use LoadQuery for that.
func (s *Store) ListQueries(projectID string) ([]query.SavedQuery, error) {
	rows, err := s.db.Query(
		`SELECT id, project_id, entity_id, name, created_at, updated_at
		 FROM queries WHERE project_id = ? AND deleted = 0 ORDER BY name COLLATE NOCASE`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows, func(rows *sql.Rows) (query.SavedQuery, error) {
		var q query.SavedQuery
		err := rows.Scan(&q.ID, &q.ProjectID, &q.EntityID, &q.Name, &q.CreatedAt, &q.UpdatedAt)
		return q, err
	})
}

// SoftDeleteQuery marks a saved query as deleted. Its group and rule rows
// stay in place; they are unreachable once the header is gone.
func (s *Store) SoftDeleteQuery(id string) error {
	res, err := s.db.Exec(
		`UPDATE queries SET deleted = 1, updated_at = ? WHERE id = ? AND deleted = 0`,
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
		return ErrQueryNotFound
	}
	return nil
}

type groupRow struct {
	id       string
	parentID *string
	operator string
	order    int
}

func (s *Store) loadQueryTree(queryID string) (*query.Group, error) {
	rows, err := s.db.Query(
		`SELECT id, parent_group_id, operator, sort_order
		 FROM query_groups WHERE query_id = ? AND deleted = 0`, queryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groupRows, err := scanRows(rows, func(rows *sql.Rows) (groupRow, error) {
		var g groupRow
		err := rows.Scan(&g.id, &g.parentID, &g.operator, &g.order)
		return g, err
	})
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*query.Group, len(groupRows))
	children := make(map[string][]*query.Group)
	var root *query.Group
	for _, gr := range groupRows {
		g := &query.Group{ID: gr.id, Operator: query.BoolOp(gr.operator), SortOrder: gr.order}
		groups[g.ID] = g
		if gr.parentID == nil {
			if root != nil {
				return nil, fmt.Errorf("query '%s' has more than one root group", queryID)
			}
			root = g
		} else {
			children[*gr.parentID] = append(children[*gr.parentID], g)
		}
	}
	if root == nil {
		return nil, fmt.Errorf("query '%s' has no root group", queryID)
	}

	if err := s.loadQueryRules(groups); err != nil {
		return nil, err
	}

	// Attach children bottom-up: sort each sibling list, then fold leaves
	// into their parents until only the root remains.
	var attach func(g *query.Group)
	attach = func(g *query.Group) {
		kids := children[g.ID]
		sort.Slice(kids, func(i, j int) bool { return kids[i].SortOrder < kids[j].SortOrder })
		for _, k := range kids {
			attach(k)
			g.Groups = append(g.Groups, *k)
		}
	}
	attach(root)
	return root, nil
}

func (s *Store) loadQueryRules(groups map[string]*query.Group) error {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	placeholders, args := inClauseArgs(ids)

	rows, err := s.db.Query(
		`SELECT id, group_id, property_id, operator, value, sort_order
		 FROM query_rules WHERE group_id IN (`+placeholders+`) AND deleted = 0
		 ORDER BY sort_order`, args...,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r       query.Rule
			groupID string
			value   *string
		)
		if err := rows.Scan(&r.ID, &groupID, &r.PropertyID, &r.Operator, &value, &r.SortOrder); err != nil {
			return err
		}
		if value != nil {
			r.Value = *value
		}
		g, ok := groups[groupID]
		if !ok {
			continue
		}
		g.Rules = append(g.Rules, r)
	}
	return rows.Err()
}
