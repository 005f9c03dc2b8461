// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// UncategorizedLabel is shown for products whose category is missing.
const UncategorizedLabel = "Uncategorized"

// Category groups products in the catalog. Categories are seeded once and
// are not edited afterwards.
type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image"`
}

// CategoryFromRow decodes a categories row.
func CategoryFromRow(r Row) Category {
	return Category{
		ID:    r.Int("id"),
		Name:  r.String("name"),
		Slug:  r.String("slug"),
		Image: r.String("image"),
	}
}
