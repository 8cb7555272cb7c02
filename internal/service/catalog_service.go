package service

import (
	"context"
	"time"

	"sgp-service/internal/models"
	"sgp-service/internal/util"

	"go.uber.org/zap"
)

// Cache keys for the reference and report projections. Inventory
// quantities are deliberately never cached; every placement re-reads
// stock inside its own transaction.
const (
	cacheKeyCustomerRefs     = "catalog:customers"
	cacheKeyProductRefs      = "catalog:products"
	cacheKeyUnits            = "catalog:units"
	cacheKeyOrdersByCustomer = "report:orders-by-customer"
	cacheKeyInventoryValue   = "report:inventory-value"
)

// CatalogCache is the read-through cache for choice lists and reports.
// Implementations may be nil-safe absent; services treat a miss and a
// cache failure identically.
type CatalogCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// CatalogRepository is the read-only persistence surface behind the
// choice lists and aggregate reports.
type CatalogRepository interface {
	ListCustomerRefs(ctx context.Context) ([]models.CustomerRef, error)
	ListProductRefs(ctx context.Context) ([]models.ProductRef, error)
	ListUnits(ctx context.Context) ([]models.Unit, error)
	OrdersByCustomer(ctx context.Context) ([]models.CustomerOrdersSummary, error)
	TotalInventoryValue(ctx context.Context) (models.Cents, error)
}

// CatalogService serves the reference projections that populate choice
// lists, plus the aggregate reports.
type CatalogService struct {
	repo   CatalogRepository
	cache  CatalogCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo CatalogRepository, cache CatalogCache, ttl time.Duration) *CatalogService {
	return &CatalogService{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: util.GetLogger(),
	}
}

// InventoryValue is the total-stock-value report in exact-text form.
type InventoryValue struct {
	TotalValue string `json:"total_value"`
}

// CustomerRefs returns the customer choice list.
func (s *CatalogService) CustomerRefs(ctx context.Context) ([]models.CustomerRef, error) {
	var refs []models.CustomerRef
	if s.cacheGet(ctx, cacheKeyCustomerRefs, &refs) {
		return refs, nil
	}
	refs, err := s.repo.ListCustomerRefs(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, cacheKeyCustomerRefs, refs)
	return refs, nil
}

// ProductRefs returns the product choice list.
func (s *CatalogService) ProductRefs(ctx context.Context) ([]models.ProductRef, error) {
	var refs []models.ProductRef
	if s.cacheGet(ctx, cacheKeyProductRefs, &refs) {
		return refs, nil
	}
	refs, err := s.repo.ListProductRefs(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, cacheKeyProductRefs, refs)
	return refs, nil
}

// Units returns the unit-of-measure reference list.
func (s *CatalogService) Units(ctx context.Context) ([]models.Unit, error) {
	var units []models.Unit
	if s.cacheGet(ctx, cacheKeyUnits, &units) {
		return units, nil
	}
	units, err := s.repo.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, cacheKeyUnits, units)
	return units, nil
}

// OrdersByCustomer returns the per-customer order aggregate.
func (s *CatalogService) OrdersByCustomer(ctx context.Context) ([]models.CustomerOrdersSummary, error) {
	var rows []models.CustomerOrdersSummary
	if s.cacheGet(ctx, cacheKeyOrdersByCustomer, &rows) {
		return rows, nil
	}
	rows, err := s.repo.OrdersByCustomer(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, cacheKeyOrdersByCustomer, rows)
	return rows, nil
}

// TotalInventoryValue returns the summed stock value in exact text.
func (s *CatalogService) TotalInventoryValue(ctx context.Context) (*InventoryValue, error) {
	var cached InventoryValue
	if s.cacheGet(ctx, cacheKeyInventoryValue, &cached) {
		return &cached, nil
	}
	total, err := s.repo.TotalInventoryValue(ctx)
	if err != nil {
		return nil, err
	}
	value := &InventoryValue{TotalValue: total.String()}
	s.cacheSet(ctx, cacheKeyInventoryValue, value)
	return value, nil
}

// RefreshReports drops the cached aggregates so the next read recomputes
// them. Called by the report worker when an order commits.
func (s *CatalogService) RefreshReports(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, cacheKeyOrdersByCustomer, cacheKeyInventoryValue)
}

func (s *CatalogService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.GetJSON(ctx, key, dest)
	if err != nil {
		s.logger.Warn("Catalog cache read failed", zap.String("key", key), zap.Error(err))
		util.CatalogCacheMisses.Inc()
		return false
	}
	if hit {
		util.CatalogCacheHits.Inc()
	} else {
		util.CatalogCacheMisses.Inc()
	}
	return hit
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("Catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
