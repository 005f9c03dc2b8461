// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// seedMarker is the category slug whose presence means the catalog has
// already been seeded.
const seedMarker = "necklaces"

type seedData struct {
	Categories []seedCategory `yaml:"categories"`
	Products   []seedProduct  `yaml:"products"`
	Admin      struct {
		Username string `yaml:"username"`
	} `yaml:"admin"`
	Settings []seedSetting `yaml:"settings"`
}

type seedCategory struct {
	Name  string `yaml:"name"`
	Slug  string `yaml:"slug"`
	Image string `yaml:"image"`
}

type seedProduct struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	Price       int64  `yaml:"price"`
	SalePrice   *int64 `yaml:"sale_price"`
	Category    string `yaml:"category"`
	Stock       int64  `yaml:"stock"`
	Featured    bool   `yaml:"featured"`
	Image       string `yaml:"image"`
}

type seedSetting struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

func loadSeedData() (*seedData, error) {
	var data seedData
	if err := yaml.Unmarshal(seedYAML, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return &data, nil
}

// Seed inserts any default data that is missing and persists the result if
// anything was added. It is safe to call repeatedly.
func (s *Store) Seed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := s.seedLocked()
	if err != nil {
		return err
	}
	if changed {
		_ = s.persistLocked(ctx)
	}
	return nil
}

// seedLocked fills each default group independently: the catalog when the
// marker category is absent, the admin when its username is absent, and
// each setting whose key is absent.
func (s *Store) seedLocked() (bool, error) {
	data, err := loadSeedData()
	if err != nil {
		return false, err
	}
	changed := false

	if !s.existsLocked(Categories, "slug", seedMarker) {
		if err := s.seedCatalogLocked(data); err != nil {
			return changed, err
		}
		changed = true
	}

	if !s.existsLocked(AdminUsers, "username", data.Admin.Username) {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.adminPassword), s.bcryptCost)
		if err != nil {
			return changed, fmt.Errorf("seed bcrypt: %w", err)
		}
		if _, err := s.insertLocked(schema[AdminUsers], nil, []any{data.Admin.Username, string(hash)}); err != nil {
			return changed, fmt.Errorf("seed insert admin: %w", err)
		}
		changed = true
		slog.Info("seeded default admin user", "username", data.Admin.Username)
	}

	added := 0
	for _, st := range data.Settings {
		if s.existsLocked(Settings, "key", st.Key) {
			continue
		}
		if _, err := s.insertLocked(schema[Settings], nil, []any{st.Key, st.Value}); err != nil {
			return changed, fmt.Errorf("seed setting %s: %w", st.Key, err)
		}
		added++
	}
	if added > 0 {
		changed = true
		slog.Info("seeded default settings", "count", added)
	}

	return changed, nil
}

func (s *Store) seedCatalogLocked(data *seedData) error {
	categoryIDs := make(map[string]int64, len(data.Categories))
	for _, c := range data.Categories {
		res, err := s.insertLocked(schema[Categories], nil, []any{c.Name, c.Slug, c.Image})
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.Slug, err)
		}
		categoryIDs[c.Slug] = res.ID
	}

	for _, p := range data.Products {
		var categoryID any
		if id, ok := categoryIDs[p.Category]; ok {
			categoryID = id
		}
		_, err := s.insertLocked(schema[Products], nil, []any{
			p.Name, p.Slug, p.Description, p.Price, p.SalePrice,
			categoryID, p.Image, p.Stock, p.Featured,
		})
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.Slug, err)
		}
	}

	slog.Info("seeded default catalog",
		"categories", len(data.Categories),
		"products", len(data.Products),
	)
	return nil
}

func (s *Store) existsLocked(e Entity, column, value string) bool {
	for _, r := range s.tables[e] {
		if r.String(column) == value {
			return true
		}
	}
	return false
}
