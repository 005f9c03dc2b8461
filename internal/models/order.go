// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus tracks whether an order has been paid for.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// OrderPlacedDescription is the text of the first tracking entry.
const OrderPlacedDescription = "Order placed successfully"

var statusDescriptions = map[OrderStatus]string{
	OrderStatusPending:    "Order placed, awaiting processing",
	OrderStatusProcessing: "Order is being processed",
	OrderStatusShipped:    "Order has been shipped",
	OrderStatusDelivered:  "Order has been delivered",
	OrderStatusCancelled:  "Order has been cancelled",
}

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	_, ok := statusDescriptions[s]
	return ok
}

// Description returns the tracking text recorded when an order moves into
// this status.
func (s OrderStatus) Description() string {
	if d, ok := statusDescriptions[s]; ok {
		return d
	}
	return "Status updated"
}

// Order is a placed order. Customer fields are snapshotted at checkout and
// do not follow later edits to a Customer record.
type Order struct {
	ID              int64         `json:"id"`
	OrderNumber     string        `json:"order_number"`
	CustomerID      *int64        `json:"customer_id"`
	CustomerName    string        `json:"customer_name"`
	CustomerEmail   string        `json:"customer_email"`
	CustomerPhone   string        `json:"customer_phone"`
	ShippingAddress string        `json:"shipping_address"`
	Total           int64         `json:"total"`
	PaymentMethod   string        `json:"payment_method"`
	Status          OrderStatus   `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// IsPaid returns true once payment has been recorded.
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// OrderItem is one line of an order. ProductName and Price are copied from
// the product at checkout time.
type OrderItem struct {
	ID          int64  `json:"id"`
	OrderID     int64  `json:"order_id"`
	ProductID   *int64 `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
	Price       int64  `json:"price"`
}

// Subtotal is price times quantity.
func (i *OrderItem) Subtotal() int64 {
	return i.Price * i.Quantity
}

// OrderTracking is one append-only entry in an order's status history.
type OrderTracking struct {
	ID          int64       `json:"id"`
	OrderID     int64       `json:"order_id"`
	Status      OrderStatus `json:"status"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"created_at"`
}

// OrderFromRow decodes an orders row.
func OrderFromRow(r Row) Order {
	return Order{
		ID:              r.Int("id"),
		OrderNumber:     r.String("order_number"),
		CustomerID:      r.NullInt("customer_id"),
		CustomerName:    r.String("customer_name"),
		CustomerEmail:   r.String("customer_email"),
		CustomerPhone:   r.String("customer_phone"),
		ShippingAddress: r.String("shipping_address"),
		Total:           r.Int("total"),
		PaymentMethod:   r.String("payment_method"),
		Status:          OrderStatus(r.String("status")),
		PaymentStatus:   PaymentStatus(r.String("payment_status")),
		CreatedAt:       r.Time("created_at"),
		UpdatedAt:       r.Time("updated_at"),
	}
}

// OrderItemFromRow decodes an order_items row.
func OrderItemFromRow(r Row) OrderItem {
	return OrderItem{
		ID:          r.Int("id"),
		OrderID:     r.Int("order_id"),
		ProductID:   r.NullInt("product_id"),
		ProductName: r.String("product_name"),
		Quantity:    r.Int("quantity"),
		Price:       r.Int("price"),
	}
}

// OrderTrackingFromRow decodes an order_tracking row.
func OrderTrackingFromRow(r Row) OrderTracking {
	return OrderTracking{
		ID:          r.Int("id"),
		OrderID:     r.Int("order_id"),
		Status:      OrderStatus(r.String("status")),
		Description: r.String("description"),
		CreatedAt:   r.Time("created_at"),
	}
}
