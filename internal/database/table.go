// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Entity names a table in the store.
type Entity string

const (
	Categories    Entity = "categories"
	Products      Entity = "products"
	Customers     Entity = "customers"
	Orders        Entity = "orders"
	OrderItems    Entity = "order_items"
	OrderTracking Entity = "order_tracking"
	AdminUsers    Entity = "admin_users"
	Settings      Entity = "settings"
)

// entities lists every table in snapshot order.
var entities = []Entity{
	Categories, Products, Customers, Orders, OrderItems, OrderTracking, AdminUsers, Settings,
}

// ColumnType is the storage type of a column.
type ColumnType int

const (
	TypeInt ColumnType = iota
	TypeText
	TypeFlag
	TypeTime
)

func (t ColumnType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeText:
		return "text"
	case TypeFlag:
		return "flag"
	case TypeTime:
		return "time"
	}
	return "unknown"
}

// Column describes one column of a table.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
	// Default replaces an omitted value on insert.
	Default any
	// Managed columns (id, timestamps) are assigned by the store only.
	Managed bool
	// Extra columns can be written by name but are not part of the
	// positional insert order.
	Extra bool
}

// table is the schema of one entity.
type table struct {
	entity  Entity
	columns []Column
	byName  map[string]int
}

func newTable(entity Entity, columns ...Column) *table {
	t := &table{entity: entity, columns: columns, byName: make(map[string]int, len(columns))}
	for i, c := range columns {
		t.byName[c.Name] = i
	}
	return t
}

func (t *table) column(name string) (Column, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

func (t *table) has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// autoID reports whether rows get a sequential id.
func (t *table) autoID() bool { return t.has("id") }

// insertOrder returns the positional column order used by Insert.
func (t *table) insertOrder() []string {
	var names []string
	for _, c := range t.columns {
		if !c.Managed && !c.Extra {
			names = append(names, c.Name)
		}
	}
	return names
}

var (
	idColumn      = Column{Name: "id", Type: TypeInt, Managed: true}
	createdColumn = Column{Name: "created_at", Type: TypeTime, Managed: true}
	updatedColumn = Column{Name: "updated_at", Type: TypeTime, Managed: true}
)

// schema holds every table definition. Column order within a table is the
// positional insert order.
var schema = map[Entity]*table{
	Categories: newTable(Categories,
		idColumn,
		Column{Name: "name", Type: TypeText},
		Column{Name: "slug", Type: TypeText},
		Column{Name: "image", Type: TypeText, Nullable: true},
	),
	Products: newTable(Products,
		idColumn,
		Column{Name: "name", Type: TypeText},
		Column{Name: "slug", Type: TypeText},
		Column{Name: "description", Type: TypeText},
		Column{Name: "price", Type: TypeInt},
		Column{Name: "sale_price", Type: TypeInt, Nullable: true},
		Column{Name: "category_id", Type: TypeInt, Nullable: true},
		Column{Name: "image", Type: TypeText, Nullable: true},
		Column{Name: "stock", Type: TypeInt},
		Column{Name: "featured", Type: TypeFlag},
		createdColumn,
	),
	Customers: newTable(Customers,
		idColumn,
		Column{Name: "name", Type: TypeText},
		Column{Name: "email", Type: TypeText},
		Column{Name: "phone", Type: TypeText},
		Column{Name: "address", Type: TypeText},
		Column{Name: "password", Type: TypeText},
		createdColumn,
	),
	Orders: newTable(Orders,
		idColumn,
		Column{Name: "order_number", Type: TypeText},
		Column{Name: "customer_id", Type: TypeInt, Nullable: true},
		Column{Name: "customer_name", Type: TypeText},
		Column{Name: "customer_email", Type: TypeText},
		Column{Name: "customer_phone", Type: TypeText},
		Column{Name: "shipping_address", Type: TypeText},
		Column{Name: "total", Type: TypeInt},
		Column{Name: "payment_method", Type: TypeText},
		Column{Name: "status", Type: TypeText, Default: "pending"},
		Column{Name: "payment_status", Type: TypeText, Default: "pending", Extra: true},
		createdColumn,
		updatedColumn,
	),
	OrderItems: newTable(OrderItems,
		idColumn,
		Column{Name: "order_id", Type: TypeInt},
		Column{Name: "product_id", Type: TypeInt, Nullable: true},
		Column{Name: "product_name", Type: TypeText},
		Column{Name: "quantity", Type: TypeInt},
		Column{Name: "price", Type: TypeInt},
	),
	OrderTracking: newTable(OrderTracking,
		idColumn,
		Column{Name: "order_id", Type: TypeInt},
		Column{Name: "status", Type: TypeText},
		Column{Name: "description", Type: TypeText},
		createdColumn,
	),
	AdminUsers: newTable(AdminUsers,
		idColumn,
		Column{Name: "username", Type: TypeText},
		Column{Name: "password", Type: TypeText},
	),
	Settings: newTable(Settings,
		Column{Name: "key", Type: TypeText},
		Column{Name: "value", Type: TypeText},
	),
}

// zero returns the value an omitted column takes on insert.
func (c Column) zero() any {
	if c.Default != nil {
		return c.Default
	}
	if c.Nullable {
		return nil
	}
	switch c.Type {
	case TypeInt:
		return int64(0)
	case TypeText:
		return ""
	case TypeFlag:
		return false
	case TypeTime:
		return time.Time{}
	}
	return nil
}

// coerce converts an incoming value to the column's storage type. Pointers
// are dereferenced, and nil or an empty string in a nullable numeric column
// becomes null.
func coerce(c Column, v any) (any, error) {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			v = nil
		} else {
			v = rv.Elem().Interface()
		}
	}
	if v == nil {
		if c.Nullable {
			return nil, nil
		}
		return c.zero(), nil
	}

	var (
		out any
		err error
	)
	switch c.Type {
	case TypeInt:
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			if c.Nullable {
				return nil, nil
			}
			return c.zero(), nil
		}
		out, err = toInt(v)
	case TypeText:
		out, err = toText(v)
	case TypeFlag:
		out, err = toFlag(v)
	case TypeTime:
		out, err = toTime(v)
	default:
		err = fmt.Errorf("unknown column type %d", c.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("column %s (%s): %w", c.Name, c.Type, err)
	}
	return out, nil
}

func toInt(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", x)
		}
		return int64(x), nil
	case float32:
		return floatToInt(float64(x))
	case float64:
		return floatToInt(x)
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", x)
		}
		return floatToInt(f)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid integer %q", x)
		}
		return n, nil
	}
	return 0, fmt.Errorf("cannot use %T as integer", v)
}

func floatToInt(f float64) (int64, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%v is not a whole number", f)
	}
	// float64(math.MaxInt64) rounds up to 1<<63, which int64 cannot hold.
	if f >= 1<<63 || f < math.MinInt64 {
		return 0, fmt.Errorf("%v overflows int64", f)
	}
	return int64(f), nil
}

func toText(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case fmt.Stringer:
		return x.String(), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return fmt.Sprint(x), nil
	}
	return "", fmt.Errorf("cannot use %T as text", v)
}

func toFlag(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "true", "on", "yes":
			return true, nil
		case "", "0", "false", "off", "no":
			return false, nil
		}
		return false, fmt.Errorf("invalid flag %q", x)
	}
	n, err := toInt(v)
	if err != nil {
		return false, fmt.Errorf("cannot use %T as flag", v)
	}
	return n != 0, nil
}

// timeLayouts are accepted when a timestamp arrives as text. The second
// is SQLite's CURRENT_TIMESTAMP format.
var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05"}

func toTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("invalid timestamp %q", x)
	}
	return time.Time{}, fmt.Errorf("cannot use %T as timestamp", v)
}
