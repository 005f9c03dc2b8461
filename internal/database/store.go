// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package database is the storefront's data store. It keeps every table in
// memory, answers structured queries and mutations against them, and mirrors
// the full state to a storage.Medium after each change.
package database

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"njyot/internal/models"
	"njyot/internal/storage"
)

// snapshotVersion is the layout version written to and accepted from media.
const snapshotVersion = 1

// DefaultAdminPassword is used for the seeded admin when no password option
// is given.
const DefaultAdminPassword = "admin123"

// Store holds all tables in memory. It is safe for concurrent use: readers
// share a read lock and receive copies, mutations and their persistence run
// under the write lock.
type Store struct {
	mu      sync.RWMutex
	tables  map[Entity][]models.Row
	nextIDs map[Entity]int64
	medium  storage.Medium

	now           func() time.Time
	adminPassword string
	bcryptCost    int
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithAdminPassword sets the plain password hashed for the seeded admin.
func WithAdminPassword(password string) Option {
	return func(s *Store) {
		if password != "" {
			s.adminPassword = password
		}
	}
}

// WithBcryptCost sets the bcrypt cost for the seeded admin hash. Tests use
// bcrypt.MinCost to keep seeding fast.
func WithBcryptCost(cost int) Option {
	return func(s *Store) { s.bcryptCost = cost }
}

// Open loads the prior snapshot from medium, or starts from an empty state
// when there is none or it cannot be used. Seeding then fills in whatever
// default data is missing and the result is written back, unless the medium
// failed to read. In that case the stored snapshot is left alone until the
// first change.
func Open(ctx context.Context, medium storage.Medium, opts ...Option) (*Store, error) {
	if medium == nil {
		medium = storage.Discard{}
	}
	s := &Store{
		medium:        medium,
		now:           time.Now,
		adminPassword: DefaultAdminPassword,
		bcryptCost:    bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reset()

	s.mu.Lock()
	defer s.mu.Unlock()

	readable := s.load(ctx)
	if _, err := s.seedLocked(); err != nil {
		return nil, fmt.Errorf("seed store: %w", err)
	}
	if readable {
		_ = s.persistLocked(ctx)
	} else {
		slog.Warn("serving seed data; the next change will overwrite the stored snapshot",
			"medium", s.medium.Name())
	}

	return s, nil
}

// reset replaces all tables with empty ones and rewinds the counters.
func (s *Store) reset() {
	s.tables = make(map[Entity][]models.Row, len(entities))
	s.nextIDs = make(map[Entity]int64, len(entities))
	for _, e := range entities {
		s.tables[e] = []models.Row{}
		if schema[e].autoID() {
			s.nextIDs[e] = 1
		}
	}
}

// load reads the snapshot from the medium. Any failure leaves the store
// empty so the seeder can rebuild it. It reports false when the medium
// itself could not be read, as opposed to holding no or an invalid snapshot.
func (s *Store) load(ctx context.Context) bool {
	data, err := s.medium.Load(ctx)
	if errors.Is(err, storage.ErrNoSnapshot) {
		slog.Info("no snapshot found, starting from seed data", "medium", s.medium.Name())
		return true
	}
	if err != nil {
		slog.Warn("failed to read snapshot, reseeding", "medium", s.medium.Name(), "error", err)
		return false
	}

	tables, nextIDs, err := decodeSnapshot(data)
	if err != nil {
		slog.Warn("invalid snapshot, reseeding", "medium", s.medium.Name(), "error", err)
		return true
	}
	s.tables = tables
	s.nextIDs = nextIDs
	slog.Info("snapshot loaded", "medium", s.medium.Name(), "bytes", len(data))
	return true
}

// Flush writes the complete state to the medium.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx)
}

// Close flushes the state one last time and releases the medium.
func (s *Store) Close(ctx context.Context) error {
	flushErr := s.Flush(ctx)
	if err := s.medium.Close(); err != nil {
		return fmt.Errorf("close medium: %w", err)
	}
	return flushErr
}

// Medium returns the persistence medium the store writes to.
func (s *Store) Medium() storage.Medium {
	return s.medium
}

// Export returns the current state encoded as a snapshot document.
func (s *Store) Export() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.encodeLocked()
}

// persistLocked saves the state to the medium. Failures are logged and
// returned; the in-memory state stays authoritative either way.
func (s *Store) persistLocked(ctx context.Context) error {
	data, err := s.encodeLocked()
	if err != nil {
		slog.Warn("failed to encode snapshot", "error", err)
		return err
	}
	if err := s.medium.Save(ctx, data); err != nil {
		slog.Warn("failed to persist snapshot", "medium", s.medium.Name(), "error", err)
		return fmt.Errorf("persist snapshot: %w", err)
	}
	slog.Debug("snapshot persisted", "medium", s.medium.Name(), "bytes", len(data))
	return nil
}

// snapshot is the document written to a medium.
type snapshot struct {
	Version  int                     `json:"version"`
	Revision string                  `json:"revision"`
	SavedAt  time.Time               `json:"saved_at"`
	Tables   map[Entity][]models.Row `json:"tables"`
	NextIDs  map[Entity]int64        `json:"next_ids"`
}

func (s *Store) encodeLocked() ([]byte, error) {
	snap := snapshot{
		Version:  snapshotVersion,
		Revision: uuid.NewString(),
		SavedAt:  s.now().UTC(),
		Tables:   s.tables,
		NextIDs:  s.nextIDs,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// rawSnapshot mirrors snapshot with untyped rows, as read from a medium.
type rawSnapshot struct {
	Version int                         `json:"version"`
	Tables  map[string][]map[string]any `json:"tables"`
	NextIDs map[string]int64            `json:"next_ids"`
}

// decodeSnapshot parses and validates a snapshot document. Every row is
// coerced to its table's column types and every counter is raised above
// the highest id present.
func decodeSnapshot(data []byte) (map[Entity][]models.Row, map[Entity]int64, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw rawSnapshot
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if raw.Version != snapshotVersion {
		return nil, nil, fmt.Errorf("unsupported snapshot version %d", raw.Version)
	}

	tables := make(map[Entity][]models.Row, len(entities))
	nextIDs := make(map[Entity]int64, len(entities))
	for _, e := range entities {
		rawRows, ok := raw.Tables[string(e)]
		if !ok {
			return nil, nil, fmt.Errorf("snapshot is missing table %s", e)
		}

		t := schema[e]
		rows := make([]models.Row, 0, len(rawRows))
		var maxID int64
		for i, rr := range rawRows {
			if rr == nil {
				return nil, nil, fmt.Errorf("table %s row %d: not an object", e, i)
			}
			row := make(models.Row, len(t.columns))
			for _, c := range t.columns {
				v, present := rr[c.Name]
				if !present {
					row[c.Name] = c.zero()
					continue
				}
				cv, err := coerce(c, v)
				if err != nil {
					return nil, nil, fmt.Errorf("table %s row %d: %w", e, i, err)
				}
				row[c.Name] = cv
			}
			if t.autoID() {
				id := row.Int("id")
				if id <= 0 {
					return nil, nil, fmt.Errorf("table %s row %d: invalid id %d", e, i, id)
				}
				maxID = max(maxID, id)
			}
			rows = append(rows, row)
		}
		tables[e] = rows

		if t.autoID() {
			nextIDs[e] = max(raw.NextIDs[string(e)], maxID+1, 1)
		}
	}
	return tables, nextIDs, nil
}
