package service

import (
	"context"
	"strconv"
	"strings"

	"sgp-service/internal/apperr"
	"sgp-service/internal/models"
	"sgp-service/internal/store"
	"sgp-service/internal/util"

	"go.uber.org/zap"
)

// Product descriptions are bounded by the column width.
const maxDescriptionLen = 45

// ProductRepository is the persistence surface product CRUD needs.
type ProductRepository interface {
	WithProductTx(ctx context.Context, fn func(context.Context, store.ProductTx) error) error
	GetProduct(ctx context.Context, key models.ProductKey) (*models.Product, error)
	UpdateProduct(ctx context.Context, key models.ProductKey, description string, price models.Cents, actor string) error
}

// ProductService handles product registration and maintenance. A
// product is always created together with its initial inventory row.
type ProductService struct {
	repo   ProductRepository
	cache  CatalogCache
	logger *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(repo ProductRepository, cache CatalogCache) *ProductService {
	return &ProductService{
		repo:   repo,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// RegisterProductRequest carries the creation fields plus the initial
// stock quantity for the paired inventory row.
type RegisterProductRequest struct {
	Description     string `json:"description" binding:"required"`
	UnitID          string `json:"unit_id" binding:"required"`
	UnitPrice       string `json:"unit_price" binding:"required"`
	InitialQuantity string `json:"initial_quantity" binding:"required"`
}

// UpdateProductRequest carries the mutable product fields; identity and
// unit of measure are immutable after creation.
type UpdateProductRequest struct {
	Description string `json:"description" binding:"required"`
	UnitPrice   string `json:"unit_price" binding:"required"`
	Actor       string `json:"-"`
}

// RegisteredProduct is the creation result in exact-text form.
type RegisteredProduct struct {
	ProductID   string `json:"product_id"`
	UnitID      string `json:"unit_id"`
	Description string `json:"description"`
	UnitPrice   string `json:"unit_price"`
	InventoryID string `json:"inventory_id"`
	OnHand      string `json:"on_hand"`
}

func normalizeDescription(raw string) (string, error) {
	desc := strings.TrimSpace(raw)
	if desc == "" {
		return "", apperr.New(apperr.KindValidation, "description is required")
	}
	// Truncate by characters, not bytes, so a multi-byte rune is never
	// split mid-sequence.
	if runes := []rune(desc); len(runes) > maxDescriptionLen {
		desc = string(runes[:maxDescriptionLen])
	}
	return desc, nil
}

func parsePrice(raw string) (models.Cents, error) {
	price, err := models.ParseCents(raw)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindValidation, err, "invalid unit price")
	}
	return price, nil
}

// parseQuantity accepts a non-negative integral quantity in exact text.
func parseQuantity(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, apperr.New(apperr.KindValidation, "quantity is required")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, apperr.New(apperr.KindValidation,
				"quantity must be a non-negative integer, got %q", raw)
		}
	}
	qty, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindValidation, err, "quantity out of range")
	}
	return qty, nil
}

// Register creates a product together with its initial inventory row in
// one transaction, after verifying the referenced unit of measure.
func (s *ProductService) Register(ctx context.Context, req *RegisterProductRequest, actor string) (*RegisteredProduct, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Register")
	defer span.End()

	description, err := normalizeDescription(req.Description)
	if err != nil {
		return nil, err
	}
	price, err := parsePrice(req.UnitPrice)
	if err != nil {
		return nil, err
	}
	initialQty, err := parseQuantity(req.InitialQuantity)
	if err != nil {
		return nil, err
	}
	unitID, err := models.ParseID(req.UnitID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "invalid unit id")
	}

	stamp := actorOrDefault(actor)
	var (
		product models.Product
		inv     models.Inventory
	)
	err = s.repo.WithProductTx(ctx, func(ctx context.Context, tx store.ProductTx) error {
		exists, err := tx.UnitExists(ctx, unitID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.New(apperr.KindReferenceNotFound, "unit of measure %d not found", unitID)
		}

		productID, err := tx.NextProductID(ctx)
		if err != nil {
			return err
		}
		product = models.Product{
			ProductID:   productID,
			UnitID:      unitID,
			Description: description,
			UnitPrice:   price,
			CreatedBy:   stamp,
		}
		if err := tx.InsertProduct(ctx, &product); err != nil {
			return err
		}

		inventoryID, err := tx.NextInventoryID(ctx)
		if err != nil {
			return err
		}
		inv = models.Inventory{
			InventoryID: inventoryID,
			ProductID:   productID,
			UnitID:      unitID,
			OnHand:      initialQty,
			Reserved:    0,
			UpdatedBy:   stamp,
		}
		return tx.InsertInventory(ctx, &inv)
	})
	if err != nil {
		return nil, err
	}

	util.ProductsRegisteredTotal.Inc()
	s.invalidateRefs(ctx)
	s.logger.Info("Product registered",
		zap.Int64("product_id", product.ProductID),
		zap.Int64("unit_id", product.UnitID),
		zap.Int64("initial_on_hand", inv.OnHand))

	return &RegisteredProduct{
		ProductID:   models.FormatID(product.ProductID),
		UnitID:      models.FormatID(product.UnitID),
		Description: product.Description,
		UnitPrice:   product.UnitPrice.String(),
		InventoryID: models.FormatID(inv.InventoryID),
		OnHand:      strconv.FormatInt(inv.OnHand, 10),
	}, nil
}

// Update overwrites description and unit price only.
func (s *ProductService) Update(ctx context.Context, productID, unitID string, req *UpdateProductRequest) error {
	ctx, span := util.StartSpan(ctx, "ProductService.Update")
	defer span.End()

	key, err := parseProductKey(productID, unitID)
	if err != nil {
		return err
	}
	description, err := normalizeDescription(req.Description)
	if err != nil {
		return err
	}
	price, err := parsePrice(req.UnitPrice)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateProduct(ctx, key, description, price, actorOrDefault(req.Actor)); err != nil {
		return err
	}

	s.invalidateRefs(ctx)
	s.logger.Info("Product updated", zap.Int64("product_id", key.ProductID))
	return nil
}

// Delete removes the product and its inventory row in one transaction.
// Products referenced by orders are protected: the order foreign key
// fires before anything is removed and the whole unit rolls back.
func (s *ProductService) Delete(ctx context.Context, productID, unitID string) error {
	ctx, span := util.StartSpan(ctx, "ProductService.Delete")
	defer span.End()

	key, err := parseProductKey(productID, unitID)
	if err != nil {
		return err
	}

	err = s.repo.WithProductTx(ctx, func(ctx context.Context, tx store.ProductTx) error {
		if err := tx.DeleteInventoryForProduct(ctx, key.ProductID, key.UnitID); err != nil {
			return err
		}
		return tx.DeleteProduct(ctx, key)
	})
	if err != nil {
		return err
	}

	s.invalidateRefs(ctx)
	s.logger.Info("Product deleted", zap.Int64("product_id", key.ProductID))
	return nil
}

// Get retrieves one product by its exact-text composite key.
func (s *ProductService) Get(ctx context.Context, productID, unitID string) (*models.Product, error) {
	key, err := parseProductKey(productID, unitID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetProduct(ctx, key)
}

func (s *ProductService) invalidateRefs(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cacheKeyProductRefs, cacheKeyInventoryValue); err != nil {
		s.logger.Warn("Failed to invalidate product ref cache", zap.Error(err))
	}
}
