package store

import (
	"context"

	"sgp-service/internal/models"
)

const customerColumns = `customer_id, company_id, customer_type_id, name, short_name,
	document, phone, address, created_by, created_at, updated_by, updated_at`

// InsertCustomer persists a new customer row.
func (s *Store) InsertCustomer(ctx context.Context, c *models.Customer) error {
	query := `
		INSERT INTO customers (customer_id, company_id, customer_type_id, name, short_name,
			document, phone, address, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		c.CustomerID, c.CompanyID, c.TypeID, c.Name, c.ShortName,
		c.Document, c.Phone, c.Address, c.CreatedBy,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return classify("insert customer", err)
	}
	return nil
}

// GetCustomer retrieves a customer by its full composite key.
func (s *Store) GetCustomer(ctx context.Context, key models.CustomerKey) (*models.Customer, error) {
	var c models.Customer
	err := s.db.GetContext(ctx, &c,
		`SELECT `+customerColumns+` FROM customers
		 WHERE customer_id = $1 AND company_id = $2 AND customer_type_id = $3`,
		key.CustomerID, key.CompanyID, key.TypeID)
	if err != nil {
		return nil, notFound("get customer", err, "customer %d not found", key.CustomerID)
	}
	return &c, nil
}

// UpdateCustomer overwrites the mutable customer fields. Zero matched
// rows report NotFound, never a silent success.
func (s *Store) UpdateCustomer(ctx context.Context, key models.CustomerKey, c *models.Customer) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET name = $1, short_name = $2, document = $3, phone = $4, address = $5,
			customer_type_id = $6, updated_by = $7, updated_at = NOW()
		WHERE customer_id = $8 AND company_id = $9 AND customer_type_id = $10`,
		c.Name, c.ShortName, c.Document, c.Phone, c.Address,
		c.TypeID, c.UpdatedBy,
		key.CustomerID, key.CompanyID, key.TypeID)
	if err != nil {
		return classify("update customer", err)
	}
	return requireRows(res, "customer %d not found", key.CustomerID)
}

// DeleteCustomer removes a customer row. A foreign-key violation from
// referencing orders surfaces as ReferentialConflict via classify.
func (s *Store) DeleteCustomer(ctx context.Context, key models.CustomerKey) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM customers
		WHERE customer_id = $1 AND company_id = $2 AND customer_type_id = $3`,
		key.CustomerID, key.CompanyID, key.TypeID)
	if err != nil {
		return classify("delete customer", err)
	}
	return requireRows(res, "customer %d not found", key.CustomerID)
}

// ListCustomers returns all customers with their order counts, ordered
// by name.
func (s *Store) ListCustomers(ctx context.Context) ([]models.CustomerListing, error) {
	var rows []models.CustomerListing
	err := s.db.SelectContext(ctx, &rows, `
		SELECT c.customer_id, c.company_id, c.customer_type_id, c.name, c.short_name,
			c.document, c.phone, c.address, c.created_by, c.created_at, c.updated_by, c.updated_at,
			COUNT(o.order_id) AS order_count
		FROM customers c
		LEFT JOIN orders o
			ON o.customer_id = c.customer_id
			AND o.company_id = c.company_id
			AND o.customer_type_id = c.customer_type_id
		GROUP BY c.customer_id, c.company_id, c.customer_type_id
		ORDER BY c.name`)
	if err != nil {
		return nil, classify("list customers", err)
	}
	return rows, nil
}

// ListCustomerRefs returns the choice-list projection ordered by short name.
func (s *Store) ListCustomerRefs(ctx context.Context) ([]models.CustomerRef, error) {
	var refs []models.CustomerRef
	err := s.db.SelectContext(ctx, &refs, `
		SELECT customer_id, company_id, customer_type_id, short_name
		FROM customers ORDER BY short_name`)
	if err != nil {
		return nil, classify("list customer refs", err)
	}
	return refs, nil
}

// CountCustomers returns the total number of registered customers.
func (s *Store) CountCustomers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM customers"); err != nil {
		return 0, classify("count customers", err)
	}
	return count, nil
}
