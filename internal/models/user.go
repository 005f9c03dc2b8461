// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// AdminUser is a back-office login. Password holds a bcrypt hash and is
// never serialized.
type AdminUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
}

// Customer is a registered shopper. Orders keep their own copy of the
// customer's contact details.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminUserFromRow decodes an admin_users row.
func AdminUserFromRow(r Row) AdminUser {
	return AdminUser{
		ID:       r.Int("id"),
		Username: r.String("username"),
		Password: r.String("password"),
	}
}

// CustomerFromRow decodes a customers row.
func CustomerFromRow(r Row) Customer {
	return Customer{
		ID:        r.Int("id"),
		Name:      r.String("name"),
		Email:     r.String("email"),
		Phone:     r.String("phone"),
		Address:   r.String("address"),
		Password:  r.String("password"),
		CreatedAt: r.Time("created_at"),
	}
}
