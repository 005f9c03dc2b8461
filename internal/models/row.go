// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the entity types of the storefront and the generic
// Row record the data store hands back for every table.
package models

import "time"

// Row is a single record returned by the data store. Values are always one
// of int64, string, bool, time.Time or nil, keyed by column name.
type Row map[string]any

// Clone returns a shallow copy of the row. All stored values are immutable
// scalars, so the copy is fully detached from the original.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Int returns an integer column, or 0 if it is absent or null.
func (r Row) Int(col string) int64 {
	v, _ := r[col].(int64)
	return v
}

// NullInt returns an integer column as a pointer, nil when the value is null.
func (r Row) NullInt(col string) *int64 {
	v, ok := r[col].(int64)
	if !ok {
		return nil
	}
	return &v
}

// String returns a text column, or "" if it is absent or null.
func (r Row) String(col string) string {
	v, _ := r[col].(string)
	return v
}

// NullString returns a text column as a pointer, nil when the value is null.
func (r Row) NullString(col string) *string {
	v, ok := r[col].(string)
	if !ok {
		return nil
	}
	return &v
}

// Bool returns a flag column.
func (r Row) Bool(col string) bool {
	v, _ := r[col].(bool)
	return v
}

// Time returns a timestamp column, or the zero time.
func (r Row) Time(col string) time.Time {
	v, _ := r[col].(time.Time)
	return v
}
