// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"log/slog"
	"maps"

	"njyot/internal/models"
)

// Tx is an atomic unit of reads and mutations. It is only valid inside the
// function passed to Store.Tx.
type Tx struct {
	s       *Store
	changed bool
}

// Tx runs fn while holding the store's write lock. If fn returns an error or
// panics, every table is restored to its state before the call; id counters
// are not rewound, so ids handed out inside a failed unit are never reused.
// On success the new state is persisted once.
func (s *Store) Tx(ctx context.Context, fn func(*Tx) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := maps.Clone(s.tables)
	tx := &Tx{s: s}

	defer func() {
		if p := recover(); p != nil {
			s.tables = saved
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		s.tables = saved
		slog.Debug("transaction rolled back", "error", err)
		return err
	}
	if tx.changed {
		_ = s.persistLocked(ctx)
	}
	return nil
}

// Exec applies m within the unit. Unlike Store.RunQuery it returns an error
// for a mutation the store cannot apply, so the caller can abort.
func (tx *Tx) Exec(m Mutation) (Result, error) {
	res, err := tx.s.applyLocked(m)
	if err != nil {
		return Result{}, err
	}
	if res.Affected > 0 {
		tx.changed = true
	}
	return res, nil
}

// GetAll returns the rows matching q, including changes made in this unit.
func (tx *Tx) GetAll(q Query) []models.Row {
	return tx.s.selectLocked(q)
}

// GetRow returns the first row matching q.
func (tx *Tx) GetRow(q Query) (models.Row, bool) {
	return first(tx.s.selectLocked(q))
}
