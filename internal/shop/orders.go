// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package shop

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"njyot/internal/database"
	"njyot/internal/models"
)

// CartLine is one product and quantity in a checkout.
type CartLine struct {
	ProductID int64
	Quantity  int64
}

// Checkout is the customer-supplied data for placing an order.
type Checkout struct {
	CustomerID      *int64
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
	PaymentMethod   string
	Lines           []CartLine
}

func (c *Checkout) validate() error {
	if len(c.Lines) == 0 {
		return ErrEmptyCart
	}
	c.CustomerName = strings.TrimSpace(c.CustomerName)
	c.CustomerEmail = strings.TrimSpace(c.CustomerEmail)
	c.ShippingAddress = strings.TrimSpace(c.ShippingAddress)
	c.PaymentMethod = strings.TrimSpace(c.PaymentMethod)

	var missing []string
	if c.CustomerName == "" {
		missing = append(missing, "name")
	}
	if c.CustomerEmail == "" {
		missing = append(missing, "email")
	}
	if c.ShippingAddress == "" {
		missing = append(missing, "shipping address")
	}
	if c.PaymentMethod == "" {
		missing = append(missing, "payment method")
	}
	if len(missing) > 0 {
		return fmt.Errorf("checkout is missing %s: %w", strings.Join(missing, ", "), ErrInvalidInput)
	}

	for _, l := range c.Lines {
		if l.Quantity <= 0 {
			return fmt.Errorf("quantity for product %d must be positive: %w", l.ProductID, ErrInvalidInput)
		}
	}
	return nil
}

// OrderDetail is an order with its lines and status history.
type OrderDetail struct {
	Order    models.Order
	Items    []models.OrderItem
	Tracking []models.OrderTracking
}

// History returns the statuses the order went through, oldest first.
func (d *OrderDetail) History() []models.OrderStatus {
	out := make([]models.OrderStatus, 0, len(d.Tracking))
	for _, t := range d.Tracking {
		out = append(out, t.Status)
	}
	return out
}

// PlaceOrder creates the order, one item per cart line and the initial
// tracking entry as a single unit. Item prices are the products' effective
// prices at the time of the call.
func (s *Service) PlaceOrder(ctx context.Context, c Checkout) (*OrderDetail, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	var orderID int64
	err := s.db.Tx(ctx, func(tx *database.Tx) error {
		type line struct {
			product  models.Product
			quantity int64
		}
		lines := make([]line, 0, len(c.Lines))
		var total int64
		for _, l := range c.Lines {
			row, ok := tx.GetRow(database.Select(database.Products).Where(database.Eq("id", l.ProductID)))
			if !ok {
				return fmt.Errorf("product %d: %w", l.ProductID, ErrNotFound)
			}
			p := models.ProductFromRow(row)
			total += p.EffectivePrice() * l.Quantity
			lines = append(lines, line{product: p, quantity: l.Quantity})
		}

		number := s.newOrderNumber(tx)
		res, err := tx.Exec(database.Insert(database.Orders,
			number, c.CustomerID, c.CustomerName, c.CustomerEmail, c.CustomerPhone,
			c.ShippingAddress, total, c.PaymentMethod, string(models.OrderStatusPending),
		))
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		orderID = res.ID

		for _, l := range lines {
			_, err := tx.Exec(database.Insert(database.OrderItems,
				orderID, l.product.ID, l.product.Name, l.quantity, l.product.EffectivePrice(),
			))
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}

		_, err = tx.Exec(database.Insert(database.OrderTracking,
			orderID, string(models.OrderStatusPending), models.OrderPlacedDescription,
		))
		if err != nil {
			return fmt.Errorf("insert order tracking: %w", err)
		}

		slog.Info("order placed", "order_number", number, "total", total, "items", len(lines))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.OrderDetail(orderID)
}

// newOrderNumber returns "LA" followed by the current Unix time in
// milliseconds and a random number below 1000, retrying on collision.
func (s *Service) newOrderNumber(tx *database.Tx) string {
	for {
		number := "LA" + strconv.FormatInt(s.now().UnixMilli(), 10) + strconv.Itoa(s.rand(1000))
		if _, taken := tx.GetRow(database.Select(database.Orders).Where(database.Eq("order_number", number))); !taken {
			return number
		}
	}
}

// OrderByNumber looks up an order by its public order number, as used on
// the tracking page.
func (s *Service) OrderByNumber(number string) (*OrderDetail, error) {
	row, ok := s.db.GetRow(database.Select(database.Orders).Where(database.Eq("order_number", strings.TrimSpace(number))))
	if !ok {
		return nil, fmt.Errorf("order %q: %w", number, ErrNotFound)
	}
	return s.detail(models.OrderFromRow(row)), nil
}

// OrderDetail looks up an order by id.
func (s *Service) OrderDetail(id int64) (*OrderDetail, error) {
	row, ok := s.db.GetRow(database.Select(database.Orders).Where(database.Eq("id", id)))
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return s.detail(models.OrderFromRow(row)), nil
}

func (s *Service) detail(o models.Order) *OrderDetail {
	d := &OrderDetail{Order: o}
	for _, r := range s.db.GetAll(database.Select(database.OrderItems).Where(database.Eq("order_id", o.ID))) {
		d.Items = append(d.Items, models.OrderItemFromRow(r))
	}
	q := database.Select(database.OrderTracking).Where(database.Eq("order_id", o.ID)).OrderBy("created_at")
	for _, r := range s.db.GetAll(q) {
		d.Tracking = append(d.Tracking, models.OrderTrackingFromRow(r))
	}
	return d
}

// ListOrders returns every order, newest first.
func (s *Service) ListOrders() []models.Order {
	return s.orders(database.Select(database.Orders).OrderByDesc("created_at"))
}

func (s *Service) orders(q database.Query) []models.Order {
	rows := s.db.GetAll(q)
	out := make([]models.Order, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.OrderFromRow(r))
	}
	return out
}

// UpdateOrderStatus moves an order to status and appends the matching
// tracking entry in the same unit.
func (s *Service) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}

	return s.db.Tx(ctx, func(tx *database.Tx) error {
		res, err := tx.Exec(database.Update(database.Orders, id, []string{"status"}, string(status)))
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if res.Affected == 0 {
			return fmt.Errorf("order %d: %w", id, ErrNotFound)
		}
		if _, err := tx.Exec(database.Insert(database.OrderTracking, id, string(status), status.Description())); err != nil {
			return fmt.Errorf("insert order tracking: %w", err)
		}
		slog.Info("order status updated", "order_id", id, "status", status)
		return nil
	})
}

// MarkPaid records payment for an order.
func (s *Service) MarkPaid(ctx context.Context, id int64) error {
	res := s.db.RunQuery(ctx, database.Update(database.Orders, id,
		[]string{"payment_status"}, string(models.PaymentStatusPaid)))
	if res.Affected == 0 {
		return fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return nil
}
