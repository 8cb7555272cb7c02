package models

import "time"

// Event types
const (
	EventTypeOrderPlaced       = "ORDER_PLACED"
	EventTypeInventoryAdjusted = "INVENTORY_ADJUSTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent is published after an order placement transaction
// commits. It is a notification only; the transaction never waits on it.
type OrderPlacedEvent struct {
	BaseEvent
	OrderID    int64  `json:"order_id,string"`
	CustomerID int64  `json:"customer_id,string"`
	CompanyID  int64  `json:"company_id,string"`
	ProductID  int64  `json:"product_id,string"`
	UnitID     int64  `json:"unit_id,string"`
	Quantity   int64  `json:"quantity,string"`
	Total      string `json:"total"`
	OnHand     int64  `json:"on_hand,string"`
}

// InventoryAdjustedEvent is published after an administrative
// inventory overwrite commits.
type InventoryAdjustedEvent struct {
	BaseEvent
	InventoryID int64 `json:"inventory_id,string"`
	ProductID   int64 `json:"product_id,string"`
	UnitID      int64 `json:"unit_id,string"`
	OnHand      int64 `json:"on_hand,string"`
	Reserved    int64 `json:"reserved,string"`
}
