package store

import (
	"context"

	"sgp-service/internal/apperr"
	"sgp-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// OrderTx exposes the operations available inside an order placement
// transaction. InventoryForUpdate takes the row lock that serializes
// concurrent placements against the same inventory row.
type OrderTx interface {
	InventoryForUpdate(ctx context.Context, productID, unitID int64) (models.Inventory, error)
	DecrementOnHand(ctx context.Context, key models.InventoryKey, quantity int64, actor string) error
	NextOrderID(ctx context.Context) (int64, error)
	InsertOrder(ctx context.Context, o *models.Order) error
}

// WithOrderTx runs fn inside one transaction. Any error from fn rolls
// the whole unit back; stock decrement and order insert are never
// observable separately.
func (s *Store) WithOrderTx(ctx context.Context, fn func(context.Context, OrderTx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return classify("begin order tx", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, &orderTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return classify("commit order tx", err)
	}
	return nil
}

type orderTx struct {
	tx *sqlx.Tx
}

// InventoryForUpdate reads the inventory row under FOR UPDATE, blocking
// concurrent placements on the same row until this transaction ends.
func (t *orderTx) InventoryForUpdate(ctx context.Context, productID, unitID int64) (models.Inventory, error) {
	var inv models.Inventory
	err := t.tx.GetContext(ctx, &inv, `
		SELECT inventory_id, product_id, unit_id, on_hand, reserved, updated_by, updated_at
		FROM inventory WHERE product_id = $1 AND unit_id = $2
		FOR UPDATE`,
		productID, unitID)
	if err != nil {
		return inv, notFound("lock inventory", err,
			"no inventory for product %d unit %d", productID, unitID)
	}
	return inv, nil
}

// DecrementOnHand reduces on_hand by quantity. The predicate re-checks
// availability so the row can never go negative even if a caller skips
// the locked read.
func (t *orderTx) DecrementOnHand(ctx context.Context, key models.InventoryKey, quantity int64, actor string) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE inventory
		SET on_hand = on_hand - $1, updated_by = $2, updated_at = NOW()
		WHERE inventory_id = $3 AND product_id = $4 AND unit_id = $5 AND on_hand >= $1`,
		quantity, actor, key.InventoryID, key.ProductID, key.UnitID)
	if err != nil {
		return classify("decrement inventory", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return classify("decrement inventory", err)
	}
	if affected == 0 {
		var available int64
		err := t.tx.GetContext(ctx, &available, `
			SELECT on_hand FROM inventory
			WHERE inventory_id = $1 AND product_id = $2 AND unit_id = $3`,
			key.InventoryID, key.ProductID, key.UnitID)
		if err != nil {
			return notFound("re-read inventory", err, "inventory item %d not found", key.InventoryID)
		}
		return apperr.InsufficientStock(available)
	}
	return nil
}

// NextOrderID allocates the order identity from a database sequence,
// collision-free under concurrent placements.
func (t *orderTx) NextOrderID(ctx context.Context) (int64, error) {
	return nextID(ctx, t.tx, "order_id_seq")
}

func (t *orderTx) InsertOrder(ctx context.Context, o *models.Order) error {
	err := t.tx.QueryRowxContext(ctx, `
		INSERT INTO orders (order_id, order_number, ordered_at, quantity, total,
			customer_id, company_id, customer_type_id, product_id, unit_id)
		VALUES ($1, $2, NOW(), $3, $4, $5, $6, $7, $8, $9)
		RETURNING ordered_at`,
		o.OrderID, o.OrderNumber, o.Quantity, o.Total,
		o.CustomerID, o.CompanyID, o.TypeID, o.ProductID, o.UnitID,
	).Scan(&o.OrderedAt)
	if err != nil {
		return classifyInsert("insert order", err)
	}
	return nil
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	err := s.db.GetContext(ctx, &o, `
		SELECT order_id, order_number, ordered_at, quantity, total,
			customer_id, company_id, customer_type_id, product_id, unit_id
		FROM orders WHERE order_id = $1`, id)
	if err != nil {
		return nil, notFound("get order", err, "order %d not found", id)
	}
	return &o, nil
}

// ListOrdersByCustomer retrieves orders for one customer, newest first.
func (s *Store) ListOrdersByCustomer(ctx context.Context, key models.CustomerKey) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, `
		SELECT order_id, order_number, ordered_at, quantity, total,
			customer_id, company_id, customer_type_id, product_id, unit_id
		FROM orders
		WHERE customer_id = $1 AND company_id = $2 AND customer_type_id = $3
		ORDER BY ordered_at DESC`,
		key.CustomerID, key.CompanyID, key.TypeID)
	if err != nil {
		return nil, classify("list orders by customer", err)
	}
	return orders, nil
}

// OrdersByCustomer aggregates order count and summed value per
// customer. Customers deleted since their orders were placed keep their
// rows in the report under a fallback name.
func (s *Store) OrdersByCustomer(ctx context.Context) ([]models.CustomerOrdersSummary, error) {
	var rows []models.CustomerOrdersSummary
	err := s.db.SelectContext(ctx, &rows, `
		SELECT o.customer_id,
			COALESCE(MAX(c.short_name), 'removed customer') AS customer_name,
			COUNT(o.order_id) AS order_count,
			COALESCE(SUM(o.total), 0) AS total_value
		FROM orders o
		LEFT JOIN customers c
			ON c.customer_id = o.customer_id
			AND c.company_id = o.company_id
			AND c.customer_type_id = o.customer_type_id
		GROUP BY o.customer_id
		ORDER BY o.customer_id`)
	if err != nil {
		return nil, classify("orders by customer", err)
	}
	return rows, nil
}
