// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"
	"time"

	"njyot/internal/models"
)

type filterKind int

const (
	filterEq filterKind = iota + 1
	filterFlag
	filterSearch
	filterCategorySlug
)

// Filter is a single predicate of a Query. All filters of a query must hold
// for a row to match.
type Filter struct {
	kind   filterKind
	column string
	value  any
}

// Eq matches rows whose column equals value. The value is converted to the
// column's type first; a nil value matches null.
func Eq(column string, value any) Filter {
	return Filter{kind: filterEq, column: column, value: value}
}

// Flag matches rows where a flag column is set.
func Flag(column string) Filter {
	return Filter{kind: filterFlag, column: column}
}

// Search matches rows whose name or description contains term, ignoring
// case.
func Search(term string) Filter {
	return Filter{kind: filterSearch, value: term}
}

// CategorySlug matches products in the category with the given slug. A slug
// that names no category matches nothing.
func CategorySlug(slug string) Filter {
	return Filter{kind: filterCategorySlug, value: slug}
}

// Sort orders query results by a column.
type Sort struct {
	Column string
	Desc   bool
}

// Query describes a read against one table.
type Query struct {
	Entity  Entity
	Filters []Filter
	// JoinCategory adds a category_name column to product rows.
	JoinCategory bool
	Order        *Sort
	// Max caps the number of rows returned; zero means no cap.
	Max int
}

// Select starts a query against entity.
func Select(entity Entity) Query {
	return Query{Entity: entity}
}

// Where adds filters to the query.
func (q Query) Where(filters ...Filter) Query {
	q.Filters = append(slices.Clip(q.Filters), filters...)
	return q
}

// WithCategory joins each product with its category name.
func (q Query) WithCategory() Query {
	q.JoinCategory = true
	return q
}

// OrderBy sorts ascending by column. Ties are broken by id.
func (q Query) OrderBy(column string) Query {
	q.Order = &Sort{Column: column}
	return q
}

// OrderByDesc sorts descending by column. Ties put the highest id first.
func (q Query) OrderByDesc(column string) Query {
	q.Order = &Sort{Column: column, Desc: true}
	return q
}

// Limit caps the number of rows returned.
func (q Query) Limit(n int) Query {
	q.Max = n
	return q
}

// GetAll returns copies of every row matching q. Rows come back in insertion
// order unless the query is sorted. A query the store cannot interpret
// yields no rows.
func (s *Store) GetAll(q Query) []models.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectLocked(q)
}

// GetRow returns the first row matching q.
func (s *Store) GetRow(q Query) (models.Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return first(s.selectLocked(q))
}

// Count returns the number of rows matching q.
func (s *Store) Count(q Query) int {
	q.JoinCategory = false
	q.Order = nil
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.selectLocked(q))
}

func first(rows []models.Row) (models.Row, bool) {
	if len(rows) == 0 {
		return nil, false
	}
	return rows[0], true
}

type predicate func(models.Row) bool

func (s *Store) selectLocked(q Query) []models.Row {
	t, ok := schema[q.Entity]
	if !ok {
		unsupported(q, "unknown table")
		return []models.Row{}
	}
	if q.JoinCategory && q.Entity != Products {
		unsupported(q, "category join applies to products only")
		return []models.Row{}
	}
	if q.Order != nil && !t.has(q.Order.Column) && !(q.JoinCategory && q.Order.Column == "category_name") {
		unsupported(q, "unknown sort column "+q.Order.Column)
		return []models.Row{}
	}

	preds := make([]predicate, 0, len(q.Filters))
	for _, f := range q.Filters {
		p, ok := s.compileLocked(t, f)
		if !ok {
			return []models.Row{}
		}
		preds = append(preds, p)
	}

	var categoryNames map[int64]string
	if q.JoinCategory {
		categoryNames = make(map[int64]string, len(s.tables[Categories]))
		for _, c := range s.tables[Categories] {
			categoryNames[c.Int("id")] = c.String("name")
		}
	}

	out := []models.Row{}
rows:
	for _, row := range s.tables[q.Entity] {
		for _, p := range preds {
			if !p(row) {
				continue rows
			}
		}
		r := row.Clone()
		if q.JoinCategory {
			r["category_name"] = nil
			if name, ok := categoryNames[r.Int("category_id")]; ok && r["category_id"] != nil {
				r["category_name"] = name
			}
		}
		out = append(out, r)
	}

	if q.Order != nil {
		col, desc := q.Order.Column, q.Order.Desc
		slices.SortStableFunc(out, func(a, b models.Row) int {
			c := compareValues(a[col], b[col])
			if c == 0 {
				c = compareValues(a["id"], b["id"])
			}
			if desc {
				return -c
			}
			return c
		})
	}
	if q.Max > 0 && len(out) > q.Max {
		out = out[:q.Max]
	}
	return out
}

// compileLocked turns a filter into a predicate. It reports false when the
// filter can match nothing or does not apply to the table.
func (s *Store) compileLocked(t *table, f Filter) (predicate, bool) {
	q := Query{Entity: t.entity}

	switch f.kind {
	case filterEq:
		c, ok := t.column(f.column)
		if !ok {
			unsupported(q, "unknown filter column "+f.column)
			return nil, false
		}
		want, err := coerce(c, f.value)
		if err != nil {
			slog.Debug("filter value does not fit column", "table", t.entity, "column", c.Name, "error", err)
			return nil, false
		}
		return func(r models.Row) bool { return equalValues(r[c.Name], want) }, true

	case filterFlag:
		c, ok := t.column(f.column)
		if !ok || c.Type != TypeFlag {
			unsupported(q, "not a flag column: "+f.column)
			return nil, false
		}
		return func(r models.Row) bool { return r.Bool(c.Name) }, true

	case filterSearch:
		if !t.has("name") || !t.has("description") {
			unsupported(q, "search needs name and description columns")
			return nil, false
		}
		term := strings.ToLower(f.value.(string))
		return func(r models.Row) bool {
			return strings.Contains(strings.ToLower(r.String("name")), term) ||
				strings.Contains(strings.ToLower(r.String("description")), term)
		}, true

	case filterCategorySlug:
		if t.entity != Products {
			unsupported(q, "category filter applies to products only")
			return nil, false
		}
		slug := f.value.(string)
		for _, c := range s.tables[Categories] {
			if c.String("slug") == slug {
				id := c.Int("id")
				return func(r models.Row) bool {
					return r["category_id"] != nil && r.Int("category_id") == id
				}, true
			}
		}
		slog.Debug("category slug not found", "slug", slug)
		return nil, false
	}

	unsupported(q, "unknown filter")
	return nil, false
}

func unsupported(q Query, reason string) {
	slog.Debug("unsupported query, returning no rows", "table", q.Entity, "reason", reason)
}

func equalValues(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return a == b
}

// compareValues orders two stored values of the same column. Null sorts
// first.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch x := a.(type) {
	case int64:
		y, _ := b.(int64)
		return cmp.Compare(x, y)
	case string:
		y, _ := b.(string)
		return cmp.Compare(x, y)
	case bool:
		y, _ := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case time.Time:
		y, _ := b.(time.Time)
		return x.Compare(y)
	}
	return 0
}
