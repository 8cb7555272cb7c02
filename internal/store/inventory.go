package store

import (
	"context"

	"sgp-service/internal/models"
)

// GetInventoryByProduct retrieves the inventory row for a product+unit
// pair. A product with no inventory row is an invalid state for
// ordering, reported as NotFound.
func (s *Store) GetInventoryByProduct(ctx context.Context, productID, unitID int64) (*models.Inventory, error) {
	var inv models.Inventory
	err := s.db.GetContext(ctx, &inv, `
		SELECT inventory_id, product_id, unit_id, on_hand, reserved, updated_by, updated_at
		FROM inventory WHERE product_id = $1 AND unit_id = $2`,
		productID, unitID)
	if err != nil {
		return nil, notFound("get inventory", err,
			"no inventory for product %d unit %d", productID, unitID)
	}
	return &inv, nil
}

// SetQuantities is the administrative overwrite of both quantities,
// keyed by the full composite key and stamped with the acting user.
func (s *Store) SetQuantities(ctx context.Context, key models.InventoryKey, onHand, reserved int64, actor string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE inventory
		SET on_hand = $1, reserved = $2, updated_by = $3, updated_at = NOW()
		WHERE inventory_id = $4 AND product_id = $5 AND unit_id = $6`,
		onHand, reserved, actor, key.InventoryID, key.ProductID, key.UnitID)
	if err != nil {
		return classify("set inventory quantities", err)
	}
	return requireRows(res, "inventory item %d not found", key.InventoryID)
}

// ListInventory returns the flat stock view ordered by product id.
func (s *Store) ListInventory(ctx context.Context) ([]models.InventoryListing, error) {
	var rows []models.InventoryListing
	err := s.db.SelectContext(ctx, &rows, `
		SELECT i.inventory_id, i.product_id, i.unit_id, i.on_hand, i.reserved,
			i.updated_by, i.updated_at,
			p.description AS product_description
		FROM inventory i
		JOIN products p ON p.product_id = i.product_id AND p.unit_id = i.unit_id
		ORDER BY i.product_id`)
	if err != nil {
		return nil, classify("list inventory", err)
	}
	return rows, nil
}

// TotalInventoryValue computes the exact sum of on-hand quantity times
// unit price over the whole stock.
func (s *Store) TotalInventoryValue(ctx context.Context) (models.Cents, error) {
	var total models.Cents
	err := s.db.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(i.on_hand * p.unit_price), 0)
		FROM inventory i
		JOIN products p ON p.product_id = i.product_id AND p.unit_id = i.unit_id`)
	if err != nil {
		return 0, classify("total inventory value", err)
	}
	return total, nil
}
