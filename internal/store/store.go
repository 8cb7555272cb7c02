package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sgp-service/internal/apperr"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// classify maps a driver error onto the tagged taxonomy. Constraint
// violations surface as their business meaning; anything else is an
// unclassified persistence failure whose detail stays server-side.
func classify(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return apperr.Wrap(apperr.KindUniqueConflict, err, "%s: identity already exists", op)
		case "23503": // foreign_key_violation
			return apperr.Wrap(apperr.KindReferentialConflict, err, "%s: dependent rows exist", op)
		case "23514": // check_violation
			return apperr.Wrap(apperr.KindValidation, err, "%s: constraint violated", op)
		}
	}
	return apperr.Wrap(apperr.KindPersistence, err, "%s", op)
}

// classifyInsert is classify for insert paths, where a foreign-key
// violation means the referenced row is missing rather than dependent
// rows blocking a delete.
func classifyInsert(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return apperr.Wrap(apperr.KindReferenceNotFound, err, "%s: referenced row not found", op)
	}
	return classify(op, err)
}

// nextID draws the next value from a named sequence. Sequences are the
// collision-free identity source for every row this store creates.
func nextID(ctx context.Context, q sqlx.QueryerContext, sequence string) (int64, error) {
	var id int64
	err := sqlx.GetContext(ctx, q, &id, "SELECT nextval($1)", sequence)
	if err != nil {
		return 0, classify("next id from "+sequence, err)
	}
	return id, nil
}

// NextCustomerID allocates a fresh customer identity.
func (s *Store) NextCustomerID(ctx context.Context) (int64, error) {
	return nextID(ctx, s.db, "customer_id_seq")
}

// notFound converts sql.ErrNoRows into the tagged kind, leaving other
// errors to classify.
func notFound(op string, err error, format string, args ...interface{}) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.KindNotFound, format, args...)
	}
	return classify(op, err)
}

// requireRows turns a zero-row mutation into NotFound so updates and
// deletes never report silent success.
func requireRows(res sql.Result, format string, args ...interface{}) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return classify("rows affected", err)
	}
	if affected == 0 {
		return apperr.New(apperr.KindNotFound, format, args...)
	}
	return nil
}
