package service

import (
	"time"

	"sgp-service/internal/apperr"
	"sgp-service/internal/models"

	"github.com/google/uuid"
)

// defaultActor stamps rows when the caller did not identify itself.
const defaultActor = "system"

func actorOrDefault(actor string) string {
	if actor == "" {
		return defaultActor
	}
	return actor
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

func parseCustomerKey(customerID, companyID, typeID string) (models.CustomerKey, error) {
	var key models.CustomerKey
	var err error
	if key.CustomerID, err = models.ParseID(customerID); err != nil {
		return key, apperr.Wrap(apperr.KindInvalidRequest, err, "invalid customer id")
	}
	if key.CompanyID, err = models.ParseID(companyID); err != nil {
		return key, apperr.Wrap(apperr.KindInvalidRequest, err, "invalid company id")
	}
	if key.TypeID, err = models.ParseID(typeID); err != nil {
		return key, apperr.Wrap(apperr.KindInvalidRequest, err, "invalid customer type id")
	}
	return key, nil
}

func parseProductKey(productID, unitID string) (models.ProductKey, error) {
	var key models.ProductKey
	var err error
	if key.ProductID, err = models.ParseID(productID); err != nil {
		return key, apperr.Wrap(apperr.KindInvalidRequest, err, "invalid product id")
	}
	if key.UnitID, err = models.ParseID(unitID); err != nil {
		return key, apperr.Wrap(apperr.KindInvalidRequest, err, "invalid unit id")
	}
	return key, nil
}
