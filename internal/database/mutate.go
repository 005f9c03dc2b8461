// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"njyot/internal/models"
)

// ErrUnsupported is returned by Tx.Exec for a mutation the store cannot
// apply: unknown table or column, wrong number of values, or a value that
// does not fit its column.
var ErrUnsupported = errors.New("unsupported mutation")

// Op is the kind of a Mutation.
type Op int

const (
	OpInsert Op = iota + 1
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

// Mutation describes a single write against one table.
type Mutation struct {
	Op     Op
	Entity Entity
	// ID selects the row for updates and deletes.
	ID int64
	// Columns names the columns Values are written to. An insert without
	// columns uses the table's positional order.
	Columns []string
	Values  []any
}

// Insert adds a row with values in the table's positional column order.
// Trailing columns may be omitted and take their defaults.
func Insert(entity Entity, values ...any) Mutation {
	return Mutation{Op: OpInsert, Entity: entity, Values: values}
}

// InsertColumns adds a row setting only the named columns.
func InsertColumns(entity Entity, columns []string, values ...any) Mutation {
	return Mutation{Op: OpInsert, Entity: entity, Columns: columns, Values: values}
}

// Update sets the named columns on the row with the given id.
func Update(entity Entity, id int64, columns []string, values ...any) Mutation {
	return Mutation{Op: OpUpdate, Entity: entity, ID: id, Columns: columns, Values: values}
}

// Delete removes the row with the given id. Related rows are left alone.
func Delete(entity Entity, id int64) Mutation {
	return Mutation{Op: OpDelete, Entity: entity, ID: id}
}

// Result reports the outcome of a mutation. The zero Result means nothing
// was changed.
type Result struct {
	// ID is the id assigned by an insert, or the id targeted by an update
	// or delete that matched.
	ID       int64
	Affected int
}

// RunQuery applies m and persists the new state when a row changed. A
// mutation that cannot be applied returns the zero Result.
func (s *Store) RunQuery(ctx context.Context, m Mutation) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.applyLocked(m)
	if err != nil {
		slog.Debug("mutation ignored", "op", m.Op, "table", m.Entity, "error", err)
		return Result{}
	}
	if res.Affected > 0 {
		_ = s.persistLocked(ctx)
	}
	return res
}

func (s *Store) applyLocked(m Mutation) (Result, error) {
	t, ok := schema[m.Entity]
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown table %q", ErrUnsupported, m.Entity)
	}

	switch m.Op {
	case OpInsert:
		return s.insertLocked(t, m.Columns, m.Values)
	case OpUpdate:
		return s.updateLocked(t, m.ID, m.Columns, m.Values)
	case OpDelete:
		return s.deleteLocked(t, m.ID)
	}
	return Result{}, fmt.Errorf("%w: unknown operation %d", ErrUnsupported, m.Op)
}

// assign validates columns and converts values for a write. Managed
// columns cannot be written.
func assign(t *table, columns []string, values []any) (map[string]any, error) {
	if len(columns) != len(values) {
		return nil, fmt.Errorf("%w: %d columns but %d values", ErrUnsupported, len(columns), len(values))
	}
	set := make(map[string]any, len(columns))
	for i, name := range columns {
		c, ok := t.column(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown column %s.%s", ErrUnsupported, t.entity, name)
		}
		if c.Managed {
			return nil, fmt.Errorf("%w: column %s.%s is managed by the store", ErrUnsupported, t.entity, name)
		}
		if _, dup := set[name]; dup {
			return nil, fmt.Errorf("%w: column %s.%s given twice", ErrUnsupported, t.entity, name)
		}
		v, err := coerce(c, values[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnsupported, t.entity, err)
		}
		set[name] = v
	}
	return set, nil
}

func (s *Store) insertLocked(t *table, columns []string, values []any) (Result, error) {
	if columns == nil {
		order := t.insertOrder()
		if len(values) > len(order) {
			return Result{}, fmt.Errorf("%w: %s takes at most %d values, got %d", ErrUnsupported, t.entity, len(order), len(values))
		}
		columns = order[:len(values)]
	}
	set, err := assign(t, columns, values)
	if err != nil {
		return Result{}, err
	}

	now := s.now().UTC()
	row := make(models.Row, len(t.columns))
	var id int64
	for _, c := range t.columns {
		switch {
		case c.Name == "id":
			id = s.nextIDs[t.entity]
			s.nextIDs[t.entity] = id + 1
			row[c.Name] = id
		case c.Managed && c.Type == TypeTime:
			row[c.Name] = now
		default:
			if v, ok := set[c.Name]; ok {
				row[c.Name] = v
			} else {
				row[c.Name] = c.zero()
			}
		}
	}

	s.tables[t.entity] = append(s.tables[t.entity], row)
	return Result{ID: id, Affected: 1}, nil
}

func (s *Store) updateLocked(t *table, id int64, columns []string, values []any) (Result, error) {
	if !t.autoID() {
		return Result{}, fmt.Errorf("%w: %s has no id column", ErrUnsupported, t.entity)
	}
	if len(columns) == 0 {
		return Result{}, fmt.Errorf("%w: update without columns", ErrUnsupported)
	}
	set, err := assign(t, columns, values)
	if err != nil {
		return Result{}, err
	}

	rows := s.tables[t.entity]
	i := slices.IndexFunc(rows, func(r models.Row) bool { return r.Int("id") == id })
	if i < 0 {
		slog.Debug("update matched no row", "table", t.entity, "id", id)
		return Result{}, nil
	}

	// Rows are replaced, never modified in place, so a Tx can restore the
	// previous table by keeping the old slice.
	row := rows[i].Clone()
	for name, v := range set {
		row[name] = v
	}
	if t.has("updated_at") {
		row["updated_at"] = s.now().UTC()
	}
	updated := slices.Clone(rows)
	updated[i] = row
	s.tables[t.entity] = updated

	return Result{ID: id, Affected: 1}, nil
}

func (s *Store) deleteLocked(t *table, id int64) (Result, error) {
	if !t.autoID() {
		return Result{}, fmt.Errorf("%w: %s has no id column", ErrUnsupported, t.entity)
	}

	rows := s.tables[t.entity]
	kept := make([]models.Row, 0, len(rows))
	for _, r := range rows {
		if r.Int("id") != id {
			kept = append(kept, r)
		}
	}
	n := len(rows) - len(kept)
	if n == 0 {
		slog.Debug("delete matched no row", "table", t.entity, "id", id)
		return Result{}, nil
	}
	s.tables[t.entity] = kept
	return Result{ID: id, Affected: n}, nil
}
