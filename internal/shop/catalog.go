// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package shop

import (
	"context"
	"fmt"
	"strings"

	"njyot/internal/database"
	"njyot/internal/models"
	"njyot/internal/slug"
)

// ProductFilter narrows a catalog listing. Zero values mean no filter.
type ProductFilter struct {
	Category     string // category slug
	Search       string
	FeaturedOnly bool
	Limit        int
}

// ProductInput holds the editable fields of a product. The slug is derived
// from Name.
type ProductInput struct {
	Name        string
	Description string
	Price       int64
	SalePrice   *int64
	CategoryID  *int64
	Image       *string // nil keeps the current image on update
	Stock       int64
	Featured    bool
}

func (in *ProductInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Name == "":
		return fmt.Errorf("product name is required: %w", ErrInvalidInput)
	case slug.Generate(in.Name) == "":
		return fmt.Errorf("product name %q has no usable characters: %w", in.Name, ErrInvalidInput)
	case in.Price < 0:
		return fmt.Errorf("price must not be negative: %w", ErrInvalidInput)
	case in.SalePrice != nil && *in.SalePrice < 0:
		return fmt.Errorf("sale price must not be negative: %w", ErrInvalidInput)
	case in.Stock < 0:
		return fmt.Errorf("stock must not be negative: %w", ErrInvalidInput)
	}
	return nil
}

// Categories returns every category in creation order.
func (s *Service) Categories() []models.Category {
	rows := s.db.GetAll(database.Select(database.Categories))
	out := make([]models.Category, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.CategoryFromRow(r))
	}
	return out
}

// ListProducts returns the storefront listing, newest first, with category
// names.
func (s *Service) ListProducts(f ProductFilter) []models.Product {
	q := database.Select(database.Products).WithCategory().OrderByDesc("created_at")
	if f.Category != "" {
		q = q.Where(database.CategorySlug(f.Category))
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		q = q.Where(database.Search(term))
	}
	if f.FeaturedOnly {
		q = q.Where(database.Flag("featured"))
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	return productsFromRows(s.db.GetAll(q))
}

// AdminProducts returns every product for the back-office, newest first.
func (s *Service) AdminProducts() []models.Product {
	return s.ListProducts(ProductFilter{})
}

// ProductByID returns a product with its category name.
func (s *Service) ProductByID(id int64) (*models.Product, error) {
	return s.productWhere(database.Eq("id", id))
}

// ProductBySlug returns a product with its category name.
func (s *Service) ProductBySlug(productSlug string) (*models.Product, error) {
	return s.productWhere(database.Eq("slug", productSlug))
}

func (s *Service) productWhere(f database.Filter) (*models.Product, error) {
	row, ok := s.db.GetRow(database.Select(database.Products).Where(f).WithCategory())
	if !ok {
		return nil, fmt.Errorf("product: %w", ErrNotFound)
	}
	p := models.ProductFromRow(row)
	return &p, nil
}

// CreateProduct adds a product with a slug unique among all products.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var id int64
	err := s.db.Tx(ctx, func(tx *database.Tx) error {
		productSlug := uniqueSlug(tx, in.Name, 0)
		res, err := tx.Exec(database.Insert(database.Products,
			in.Name, productSlug, in.Description, in.Price, in.SalePrice,
			in.CategoryID, in.Image, in.Stock, in.Featured,
		))
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		id = res.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ProductByID(id)
}

// UpdateProduct replaces the editable fields of a product. The slug follows
// the new name and the image is kept unless a new one is given.
func (s *Service) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	err := s.db.Tx(ctx, func(tx *database.Tx) error {
		current, ok := tx.GetRow(database.Select(database.Products).Where(database.Eq("id", id)))
		if !ok {
			return fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		image := in.Image
		if image == nil {
			image = current.NullString("image")
		}
		productSlug := uniqueSlug(tx, in.Name, id)
		_, err := tx.Exec(database.Update(database.Products, id,
			[]string{"name", "slug", "description", "price", "sale_price", "category_id", "image", "stock", "featured"},
			in.Name, productSlug, in.Description, in.Price, in.SalePrice, in.CategoryID, image, in.Stock, in.Featured,
		))
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ProductByID(id)
}

// DeleteProduct removes a product. Order items keep their copied name and
// price.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if res := s.db.RunQuery(ctx, database.Delete(database.Products, id)); res.Affected == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return nil
}

// uniqueSlug derives a slug from name that no product other than self uses.
func uniqueSlug(tx *database.Tx, name string, self int64) string {
	return slug.Unique(slug.Generate(name), func(candidate string) bool {
		row, ok := tx.GetRow(database.Select(database.Products).Where(database.Eq("slug", candidate)))
		return ok && row.Int("id") != self
	})
}

func productsFromRows(rows []models.Row) []models.Product {
	out := make([]models.Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.ProductFromRow(r))
	}
	return out
}
