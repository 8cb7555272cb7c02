package store

import (
	"context"

	"sgp-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// ProductTx exposes the operations available inside a product
// create/delete transaction.
type ProductTx interface {
	UnitExists(ctx context.Context, unitID int64) (bool, error)
	NextProductID(ctx context.Context) (int64, error)
	NextInventoryID(ctx context.Context) (int64, error)
	InsertProduct(ctx context.Context, p *models.Product) error
	InsertInventory(ctx context.Context, inv *models.Inventory) error
	DeleteInventoryForProduct(ctx context.Context, productID, unitID int64) error
	DeleteProduct(ctx context.Context, key models.ProductKey) error
}

// WithProductTx runs fn inside one transaction; product and inventory
// rows commit together or not at all.
func (s *Store) WithProductTx(ctx context.Context, fn func(context.Context, ProductTx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return classify("begin product tx", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, &productTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return classify("commit product tx", err)
	}
	return nil
}

type productTx struct {
	tx *sqlx.Tx
}

func (t *productTx) UnitExists(ctx context.Context, unitID int64) (bool, error) {
	var exists bool
	err := t.tx.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM units WHERE unit_id = $1)", unitID)
	if err != nil {
		return false, classify("check unit", err)
	}
	return exists, nil
}

func (t *productTx) NextProductID(ctx context.Context) (int64, error) {
	return nextID(ctx, t.tx, "product_id_seq")
}

func (t *productTx) NextInventoryID(ctx context.Context) (int64, error) {
	return nextID(ctx, t.tx, "inventory_id_seq")
}

func (t *productTx) InsertProduct(ctx context.Context, p *models.Product) error {
	err := t.tx.QueryRowxContext(ctx, `
		INSERT INTO products (product_id, unit_id, description, unit_price, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING created_at, updated_at`,
		p.ProductID, p.UnitID, p.Description, p.UnitPrice, p.CreatedBy,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return classifyInsert("insert product", err)
	}
	return nil
}

func (t *productTx) InsertInventory(ctx context.Context, inv *models.Inventory) error {
	err := t.tx.QueryRowxContext(ctx, `
		INSERT INTO inventory (inventory_id, product_id, unit_id, on_hand, reserved, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING updated_at`,
		inv.InventoryID, inv.ProductID, inv.UnitID, inv.OnHand, inv.Reserved, inv.UpdatedBy,
	).Scan(&inv.UpdatedAt)
	if err != nil {
		return classifyInsert("insert inventory", err)
	}
	return nil
}

func (t *productTx) DeleteInventoryForProduct(ctx context.Context, productID, unitID int64) error {
	_, err := t.tx.ExecContext(ctx,
		"DELETE FROM inventory WHERE product_id = $1 AND unit_id = $2",
		productID, unitID)
	if err != nil {
		return classify("delete inventory for product", err)
	}
	return nil
}

func (t *productTx) DeleteProduct(ctx context.Context, key models.ProductKey) error {
	res, err := t.tx.ExecContext(ctx,
		"DELETE FROM products WHERE product_id = $1 AND unit_id = $2",
		key.ProductID, key.UnitID)
	if err != nil {
		return classify("delete product", err)
	}
	return requireRows(res, "product %d not found", key.ProductID)
}

// GetProduct retrieves a product by its composite key.
func (s *Store) GetProduct(ctx context.Context, key models.ProductKey) (*models.Product, error) {
	var p models.Product
	err := s.db.GetContext(ctx, &p, `
		SELECT product_id, unit_id, description, unit_price,
			created_by, created_at, updated_by, updated_at
		FROM products WHERE product_id = $1 AND unit_id = $2`,
		key.ProductID, key.UnitID)
	if err != nil {
		return nil, notFound("get product", err, "product %d not found", key.ProductID)
	}
	return &p, nil
}

// UpdateProduct overwrites description and unit price; the composite
// identity is immutable.
func (s *Store) UpdateProduct(ctx context.Context, key models.ProductKey, description string, price models.Cents, actor string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET description = $1, unit_price = $2, updated_by = $3, updated_at = NOW()
		WHERE product_id = $4 AND unit_id = $5`,
		description, price, actor, key.ProductID, key.UnitID)
	if err != nil {
		return classify("update product", err)
	}
	return requireRows(res, "product %d not found", key.ProductID)
}

// ListProductRefs returns the choice-list projection ordered by description.
func (s *Store) ListProductRefs(ctx context.Context) ([]models.ProductRef, error) {
	var refs []models.ProductRef
	err := s.db.SelectContext(ctx, &refs, `
		SELECT product_id, unit_id, description, unit_price
		FROM products ORDER BY description`)
	if err != nil {
		return nil, classify("list product refs", err)
	}
	return refs, nil
}

// ListUnits returns all units of measure ordered by id.
func (s *Store) ListUnits(ctx context.Context) ([]models.Unit, error) {
	var units []models.Unit
	err := s.db.SelectContext(ctx, &units, `
		SELECT unit_id, description, short_description, active
		FROM units ORDER BY unit_id`)
	if err != nil {
		return nil, classify("list units", err)
	}
	return units, nil
}
