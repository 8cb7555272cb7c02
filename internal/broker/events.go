package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"sgp-service/internal/models"
	"sgp-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderPlaced publishes OrderPlaced event
func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	key := fmt.Sprintf("order-%d", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishInventoryAdjusted publishes InventoryAdjusted event
func (ep *EventPublisher) PublishInventoryAdjusted(ctx context.Context, event *models.InventoryAdjustedEvent) error {
	key := fmt.Sprintf("inventory-%d", event.InventoryID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered callbacks.
type EventHandler struct {
	onOrderPlaced       func(context.Context, *models.OrderPlacedEvent) error
	onInventoryAdjusted func(context.Context, *models.InventoryAdjustedEvent) error
	logger              *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnOrderPlaced registers a handler for OrderPlaced events
func (eh *EventHandler) OnOrderPlaced(handler func(context.Context, *models.OrderPlacedEvent) error) {
	eh.onOrderPlaced = handler
}

// OnInventoryAdjusted registers a handler for InventoryAdjusted events
func (eh *EventHandler) OnInventoryAdjusted(handler func(context.Context, *models.InventoryAdjustedEvent) error) {
	eh.onInventoryAdjusted = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeOrderPlaced:
		if eh.onOrderPlaced != nil {
			var event models.OrderPlacedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderPlaced event: %w", err)
			}
			return eh.onOrderPlaced(ctx, &event)
		}

	case models.EventTypeInventoryAdjusted:
		if eh.onInventoryAdjusted != nil {
			var event models.InventoryAdjustedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal InventoryAdjusted event: %w", err)
			}
			return eh.onInventoryAdjusted(ctx, &event)
		}

	default:
		eh.logger.Warn("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
