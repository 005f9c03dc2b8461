// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Product is a sellable catalog item. Prices are whole currency units.
// CategoryID is a weak reference and may point at a category that no
// longer exists.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	SalePrice   *int64    `json:"sale_price"`
	CategoryID  *int64    `json:"category_id"`
	Image       *string   `json:"image"`
	Stock       int64     `json:"stock"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"created_at"`

	// Virtual field populated when the query joins categories.
	CategoryName *string `json:"category_name,omitempty"`
}

// EffectivePrice is the price a customer pays: the sale price when one is
// set and positive, otherwise the list price.
func (p *Product) EffectivePrice() int64 {
	if p.SalePrice != nil && *p.SalePrice > 0 {
		return *p.SalePrice
	}
	return p.Price
}

// OnSale reports whether a discounted price applies.
func (p *Product) OnSale() bool {
	return p.SalePrice != nil && *p.SalePrice > 0 && *p.SalePrice < p.Price
}

// CategoryLabel returns the joined category name or UncategorizedLabel.
func (p *Product) CategoryLabel() string {
	if p.CategoryName == nil || *p.CategoryName == "" {
		return UncategorizedLabel
	}
	return *p.CategoryName
}

// ProductFromRow decodes a products row, including category_name when the
// row came from a joined query.
func ProductFromRow(r Row) Product {
	return Product{
		ID:           r.Int("id"),
		Name:         r.String("name"),
		Slug:         r.String("slug"),
		Description:  r.String("description"),
		Price:        r.Int("price"),
		SalePrice:    r.NullInt("sale_price"),
		CategoryID:   r.NullInt("category_id"),
		Image:        r.NullString("image"),
		Stock:        r.Int("stock"),
		Featured:     r.Bool("featured"),
		CreatedAt:    r.Time("created_at"),
		CategoryName: r.NullString("category_name"),
	}
}
