package worker

import (
	"context"

	"sgp-service/internal/broker"
	"sgp-service/internal/models"
	"sgp-service/internal/service"
	"sgp-service/internal/util"

	"go.uber.org/zap"
)

// ReportWorker refreshes cached reports when orders or inventory change.
type ReportWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	catalog      *service.CatalogService
	logger       *zap.Logger
}

// NewReportWorker creates a new report worker
func NewReportWorker(
	consumer *broker.Consumer,
	catalog *service.CatalogService,
) *ReportWorker {
	eventHandler := broker.NewEventHandler()
	w := &ReportWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		catalog:      catalog,
		logger:       util.GetLogger(),
	}

	eventHandler.OnOrderPlaced(w.handleOrderPlaced)
	eventHandler.OnInventoryAdjusted(w.handleInventoryAdjusted)

	return w
}

func (w *ReportWorker) handleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	w.logger.Debug("Refreshing reports after order",
		zap.Int64("order_id", event.OrderID))

	if err := w.catalog.RefreshReports(ctx); err != nil {
		return err
	}
	util.ReportRefreshTotal.Inc()
	return nil
}

func (w *ReportWorker) handleInventoryAdjusted(ctx context.Context, event *models.InventoryAdjustedEvent) error {
	w.logger.Debug("Refreshing reports after inventory adjustment",
		zap.Int64("inventory_id", event.InventoryID))

	if err := w.catalog.RefreshReports(ctx); err != nil {
		return err
	}
	util.ReportRefreshTotal.Inc()
	return nil
}

// Start starts the worker
func (w *ReportWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting report worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *ReportWorker) Stop() error {
	w.logger.Info("Stopping report worker")
	return w.consumer.Close()
}
