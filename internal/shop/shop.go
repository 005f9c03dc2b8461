// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package shop implements the storefront and back-office flows (catalog,
// checkout, order tracking, dashboard) on top of the data store. It owns
// the business rules the store itself does not enforce, such as unique
// slugs and order numbers and valid status transitions.
package shop

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/crypto/bcrypt"

	"njyot/internal/database"
	"njyot/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when required fields are missing or out
	// of range.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyCart is returned when an order is placed without lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidStatus is returned for an unknown order status.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrInvalidCredentials is returned when an admin login fails.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Service exposes the shop operations. It is safe for concurrent use.
type Service struct {
	db         *database.Store
	now        func() time.Time
	rand       func(n int) int
	bcryptCost int
}

// New returns a Service backed by db.
func New(db *database.Store) *Service {
	return &Service{
		db:         db,
		now:        time.Now,
		rand:       rand.IntN,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Store returns the underlying data store.
func (s *Service) Store() *database.Store {
	return s.db
}

// Settings returns every site setting.
func (s *Service) Settings() models.SiteSettings {
	return s.db.AllSettings()
}

// Setting returns a single site setting.
func (s *Service) Setting(key string) (string, error) {
	v, ok := s.db.GetSetting(key)
	if !ok {
		return "", fmt.Errorf("setting %q: %w", key, ErrNotFound)
	}
	return v, nil
}

// UpdateSetting stores a site setting, creating it if needed.
func (s *Service) UpdateSetting(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("setting key is required: %w", ErrInvalidInput)
	}
	s.db.UpdateSetting(ctx, key, value)
	return nil
}
