// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package shop

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"njyot/internal/database"
	"njyot/internal/models"
)

const (
	// recentOrdersLimit is the number of orders shown on the dashboard.
	recentOrdersLimit = 5
	minPasswordLength = 8
)

// Stats is the back-office dashboard summary.
type Stats struct {
	TotalOrders   int            `json:"total_orders"`
	TotalProducts int            `json:"total_products"`
	TotalRevenue  int64          `json:"total_revenue"`
	PendingOrders int            `json:"pending_orders"`
	RecentOrders  []models.Order `json:"recent_orders"`
}

// Stats computes the dashboard figures. Revenue counts paid orders only.
func (s *Service) Stats() Stats {
	st := Stats{
		TotalOrders:   s.db.Count(database.Select(database.Orders)),
		TotalProducts: s.db.Count(database.Select(database.Products)),
		PendingOrders: s.db.Count(database.Select(database.Orders).
			Where(database.Eq("status", string(models.OrderStatusPending)))),
		RecentOrders: s.orders(database.Select(database.Orders).OrderByDesc("created_at").Limit(recentOrdersLimit)),
	}
	for _, o := range s.orders(database.Select(database.Orders)) {
		if o.IsPaid() {
			st.TotalRevenue += o.Total
		}
	}
	return st
}

// Authenticate checks admin credentials against the stored bcrypt hash.
func (s *Service) Authenticate(username, password string) (*models.AdminUser, error) {
	row, ok := s.db.GetRow(database.Select(database.AdminUsers).Where(database.Eq("username", username)))
	if !ok {
		return nil, ErrInvalidCredentials
	}
	user := models.AdminUserFromRow(row)
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// SetAdminPassword replaces an admin's password hash.
func (s *Service) SetAdminPassword(ctx context.Context, username, password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, ErrInvalidInput)
	}
	row, ok := s.db.GetRow(database.Select(database.AdminUsers).Where(database.Eq("username", username)))
	if !ok {
		return fmt.Errorf("admin %q: %w", username, ErrNotFound)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	s.db.RunQuery(ctx, database.Update(database.AdminUsers, row.Int("id"), []string{"password"}, string(hash)))
	slog.Info("admin password changed", "username", username)
	return nil
}
