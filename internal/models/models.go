package models

import "time"

// Customer type reference ids, fixed values shared with callers.
const (
	CustomerTypeIndividual   int64 = 10001
	CustomerTypeOrganization int64 = 10002
)

// Fiscal document digit counts by customer type.
const (
	DocumentDigitsIndividual   = 11
	DocumentDigitsOrganization = 14
)

// CustomerKey is the composite identity of a customer row.
type CustomerKey struct {
	CustomerID int64 `db:"customer_id" json:"customer_id,string"`
	CompanyID  int64 `db:"company_id" json:"company_id,string"`
	TypeID     int64 `db:"customer_type_id" json:"customer_type_id,string"`
}

// Customer represents a registered customer.
type Customer struct {
	CustomerID int64     `db:"customer_id" json:"customer_id,string"`
	CompanyID  int64     `db:"company_id" json:"company_id,string"`
	TypeID     int64     `db:"customer_type_id" json:"customer_type_id,string"`
	Name       string    `db:"name" json:"name"`
	ShortName  string    `db:"short_name" json:"short_name"`
	Document   int64     `db:"document" json:"document,string"`
	Phone      int64     `db:"phone" json:"phone,string"`
	Address    string    `db:"address" json:"address"`
	CreatedBy  string    `db:"created_by" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedBy  string    `db:"updated_by" json:"-"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ProductKey is the composite identity of a product row.
type ProductKey struct {
	ProductID int64 `db:"product_id" json:"product_id,string"`
	UnitID    int64 `db:"unit_id" json:"unit_id,string"`
}

// Product represents a catalog product. Identity fields are immutable
// after creation; only description and unit price may change.
type Product struct {
	ProductID   int64     `db:"product_id" json:"product_id,string"`
	UnitID      int64     `db:"unit_id" json:"unit_id,string"`
	Description string    `db:"description" json:"description"`
	UnitPrice   Cents     `db:"unit_price" json:"unit_price"`
	CreatedBy   string    `db:"created_by" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedBy   string    `db:"updated_by" json:"-"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Unit represents a unit of measure, read-only reference data.
type Unit struct {
	UnitID           int64  `db:"unit_id" json:"unit_id,string"`
	Description      string `db:"description" json:"description"`
	ShortDescription string `db:"short_description" json:"short_description"`
	Active           bool   `db:"active" json:"active"`
}

// InventoryKey is the composite identity of an inventory row.
type InventoryKey struct {
	InventoryID int64 `db:"inventory_id" json:"inventory_id,string"`
	ProductID   int64 `db:"product_id" json:"product_id,string"`
	UnitID      int64 `db:"unit_id" json:"unit_id,string"`
}

// Inventory tracks stock for exactly one product. OnHand and Reserved
// are never negative.
type Inventory struct {
	InventoryID int64     `db:"inventory_id" json:"inventory_id,string"`
	ProductID   int64     `db:"product_id" json:"product_id,string"`
	UnitID      int64     `db:"unit_id" json:"unit_id,string"`
	OnHand      int64     `db:"on_hand" json:"on_hand,string"`
	Reserved    int64     `db:"reserved" json:"reserved,string"`
	UpdatedBy   string    `db:"updated_by" json:"-"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Order is one customer-product-quantity-value line. Rows are append
// only: created by order placement, never updated or deleted.
type Order struct {
	OrderID     int64     `db:"order_id" json:"order_id,string"`
	OrderNumber int64     `db:"order_number" json:"order_number,string"`
	OrderedAt   time.Time `db:"ordered_at" json:"ordered_at"`
	Quantity    int64     `db:"quantity" json:"quantity,string"`
	Total       Cents     `db:"total" json:"total"`
	CustomerID  int64     `db:"customer_id" json:"customer_id,string"`
	CompanyID   int64     `db:"company_id" json:"company_id,string"`
	TypeID      int64     `db:"customer_type_id" json:"customer_type_id,string"`
	ProductID   int64     `db:"product_id" json:"product_id,string"`
	UnitID      int64     `db:"unit_id" json:"unit_id,string"`
}

// CustomerRef is the choice-list projection of a customer.
type CustomerRef struct {
	CustomerID int64  `db:"customer_id" json:"customer_id,string"`
	CompanyID  int64  `db:"company_id" json:"company_id,string"`
	TypeID     int64  `db:"customer_type_id" json:"customer_type_id,string"`
	ShortName  string `db:"short_name" json:"short_name"`
}

// ProductRef is the choice-list projection of a product.
type ProductRef struct {
	ProductID   int64  `db:"product_id" json:"product_id,string"`
	UnitID      int64  `db:"unit_id" json:"unit_id,string"`
	Description string `db:"description" json:"description"`
	UnitPrice   Cents  `db:"unit_price" json:"unit_price"`
}

// CustomerOrdersSummary aggregates order count and value per customer.
// CustomerName falls back to a placeholder when the customer row no
// longer exists.
type CustomerOrdersSummary struct {
	CustomerID   int64  `db:"customer_id" json:"customer_id,string"`
	CustomerName string `db:"customer_name" json:"customer_name"`
	OrderCount   int64  `db:"order_count" json:"order_count,string"`
	TotalValue   Cents  `db:"total_value" json:"total_value"`
}

// CustomerListing is the customer table projection with order counts.
type CustomerListing struct {
	Customer
	OrderCount int64 `db:"order_count" json:"order_count,string"`
}

// InventoryListing is the flat stock view joining each inventory row
// with its product description.
type InventoryListing struct {
	Inventory
	ProductDescription string `db:"product_description" json:"product_description"`
}
