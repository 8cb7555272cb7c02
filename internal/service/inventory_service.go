package service

import (
	"context"
	"strconv"

	"sgp-service/internal/apperr"
	"sgp-service/internal/models"
	"sgp-service/internal/util"

	"go.uber.org/zap"
)

// InventoryRepository is the persistence surface the stock ledger needs
// outside of order placement.
type InventoryRepository interface {
	GetInventoryByProduct(ctx context.Context, productID, unitID int64) (*models.Inventory, error)
	SetQuantities(ctx context.Context, key models.InventoryKey, onHand, reserved int64, actor string) error
	ListInventory(ctx context.Context) ([]models.InventoryListing, error)
}

// InventoryEventPublisher emits the post-commit adjustment
// notification. May be nil.
type InventoryEventPublisher interface {
	PublishInventoryAdjusted(ctx context.Context, event *models.InventoryAdjustedEvent) error
}

// InventoryService exposes stock reads and the administrative
// quantity overwrite.
type InventoryService struct {
	repo   InventoryRepository
	events InventoryEventPublisher
	logger *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(repo InventoryRepository, events InventoryEventPublisher) *InventoryService {
	return &InventoryService{
		repo:   repo,
		events: events,
		logger: util.GetLogger(),
	}
}

// CurrentQuantity is the stock lookup result in exact-text form.
type CurrentQuantity struct {
	InventoryID string `json:"inventory_id"`
	OnHand      string `json:"on_hand"`
}

// AdjustInventoryRequest carries the administrative overwrite of both
// quantities, in exact text.
type AdjustInventoryRequest struct {
	OnHand   string `json:"on_hand" binding:"required"`
	Reserved string `json:"reserved" binding:"required"`
	Actor    string `json:"-"`
}

// GetCurrentQuantity looks up the inventory row for a product+unit
// pair. Repeated calls with no intervening writes return identical
// values; nothing is cached between requests.
func (s *InventoryService) GetCurrentQuantity(ctx context.Context, productID, unitID string) (*CurrentQuantity, error) {
	key, err := parseProductKey(productID, unitID)
	if err != nil {
		return nil, err
	}
	inv, err := s.repo.GetInventoryByProduct(ctx, key.ProductID, key.UnitID)
	if err != nil {
		return nil, err
	}
	return &CurrentQuantity{
		InventoryID: models.FormatID(inv.InventoryID),
		OnHand:      strconv.FormatInt(inv.OnHand, 10),
	}, nil
}

// Adjust overwrites both quantities of one inventory row. Negative or
// non-integral values are rejected before any mutation.
func (s *InventoryService) Adjust(ctx context.Context, inventoryID, productID, unitID string, req *AdjustInventoryRequest) error {
	ctx, span := util.StartSpan(ctx, "InventoryService.Adjust")
	defer span.End()

	var key models.InventoryKey
	var err error
	if key.InventoryID, err = models.ParseID(inventoryID); err != nil {
		return apperr.Wrap(apperr.KindInvalidRequest, err, "invalid inventory id")
	}
	if key.ProductID, err = models.ParseID(productID); err != nil {
		return apperr.Wrap(apperr.KindInvalidRequest, err, "invalid product id")
	}
	if key.UnitID, err = models.ParseID(unitID); err != nil {
		return apperr.Wrap(apperr.KindInvalidRequest, err, "invalid unit id")
	}

	onHand, err := parseQuantity(req.OnHand)
	if err != nil {
		return err
	}
	reserved, err := parseQuantity(req.Reserved)
	if err != nil {
		return err
	}

	if err := s.repo.SetQuantities(ctx, key, onHand, reserved, actorOrDefault(req.Actor)); err != nil {
		return err
	}

	util.InventoryAdjustmentsTotal.Inc()
	s.logger.Info("Inventory adjusted",
		zap.Int64("inventory_id", key.InventoryID),
		zap.Int64("on_hand", onHand),
		zap.Int64("reserved", reserved))

	if s.events != nil {
		event := &models.InventoryAdjustedEvent{
			BaseEvent:   newBaseEvent(models.EventTypeInventoryAdjusted),
			InventoryID: key.InventoryID,
			ProductID:   key.ProductID,
			UnitID:      key.UnitID,
			OnHand:      onHand,
			Reserved:    reserved,
		}
		if err := s.events.PublishInventoryAdjusted(ctx, event); err != nil {
			s.logger.Error("Failed to publish InventoryAdjusted event", zap.Error(err))
		}
	}
	return nil
}

// List returns the flat stock view with product descriptions.
func (s *InventoryService) List(ctx context.Context) ([]models.InventoryListing, error) {
	return s.repo.ListInventory(ctx)
}
