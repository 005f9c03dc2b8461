// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"slices"

	"njyot/internal/models"
)

// GetSetting returns the value stored under key.
func (s *Store) GetSetting(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.tables[Settings] {
		if r.String("key") == key {
			return r.String("value"), true
		}
	}
	return "", false
}

// UpdateSetting stores value under key, creating the setting if needed, and
// persists the change. It always reports true.
func (s *Store) UpdateSetting(ctx context.Context, key, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tables[Settings]
	row := models.Row{"key": key, "value": value}
	if i := slices.IndexFunc(rows, func(r models.Row) bool { return r.String("key") == key }); i >= 0 {
		updated := slices.Clone(rows)
		updated[i] = row
		s.tables[Settings] = updated
	} else {
		s.tables[Settings] = append(rows, row)
	}

	_ = s.persistLocked(ctx)
	return true
}

// AllSettings returns every setting as a key to value map.
func (s *Store) AllSettings() models.SiteSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(models.SiteSettings, len(s.tables[Settings]))
	for _, r := range s.tables[Settings] {
		out[r.String("key")] = r.String("value")
	}
	return out
}
