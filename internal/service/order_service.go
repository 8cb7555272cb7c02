package service

import (
	"context"
	"strconv"
	"time"

	"sgp-service/internal/apperr"
	"sgp-service/internal/models"
	"sgp-service/internal/store"
	"sgp-service/internal/util"

	"go.uber.org/zap"
)

// Actor stamped on inventory rows mutated by order placement.
const orderActor = "system:order"

// OrderRepository is the persistence surface order placement needs.
type OrderRepository interface {
	WithOrderTx(ctx context.Context, fn func(context.Context, store.OrderTx) error) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	ListOrdersByCustomer(ctx context.Context, key models.CustomerKey) ([]models.Order, error)
}

// OrderEventPublisher emits the post-commit notification. May be nil.
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
}

// OrderService handles order placement business logic
type OrderService struct {
	repo   OrderRepository
	events OrderEventPublisher
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repo OrderRepository, events OrderEventPublisher) *OrderService {
	return &OrderService{
		repo:   repo,
		events: events,
		logger: util.GetLogger(),
	}
}

// PlaceOrderRequest carries one customer-product-quantity-value tuple.
// Identifiers and amounts cross this boundary as exact decimal text.
type PlaceOrderRequest struct {
	CustomerID        string `json:"customer_id" binding:"required"`
	CustomerCompanyID string `json:"customer_company_id" binding:"required"`
	CustomerTypeID    string `json:"customer_type_id" binding:"required"`
	ProductID         string `json:"product_id" binding:"required"`
	UnitID            string `json:"unit_id" binding:"required"`
	CompanyID         string `json:"company_id" binding:"required"`
	Quantity          string `json:"quantity" binding:"required"`
	Total             string `json:"total" binding:"required"`
}

// PlacedOrder is the success result with every field rendered into
// transport-safe exact text.
type PlacedOrder struct {
	OrderID         string `json:"order_id"`
	OrderNumber     string `json:"order_number"`
	OrderedAt       string `json:"ordered_at"`
	Quantity        string `json:"quantity"`
	Total           string `json:"total"`
	CustomerID      string `json:"customer_id"`
	CompanyID       string `json:"company_id"`
	ProductID       string `json:"product_id"`
	UnitID          string `json:"unit_id"`
	RemainingOnHand string `json:"remaining_on_hand"`
}

type placeOrderInput struct {
	customerID        int64
	customerCompanyID int64
	customerTypeID    int64
	productID         int64
	unitID            int64
	companyID         int64
	quantity          int64
	total             models.Cents
}

func parsePlaceOrder(req *PlaceOrderRequest) (placeOrderInput, error) {
	var in placeOrderInput
	var err error

	fields := []struct {
		name string
		dst  *int64
		raw  string
	}{
		{"customer_id", &in.customerID, req.CustomerID},
		{"customer_company_id", &in.customerCompanyID, req.CustomerCompanyID},
		{"customer_type_id", &in.customerTypeID, req.CustomerTypeID},
		{"product_id", &in.productID, req.ProductID},
		{"unit_id", &in.unitID, req.UnitID},
		{"company_id", &in.companyID, req.CompanyID},
	}
	for _, f := range fields {
		if *f.dst, err = models.ParseID(f.raw); err != nil {
			return in, apperr.Wrap(apperr.KindInvalidRequest, err, "invalid %s", f.name)
		}
	}

	if in.quantity, err = models.ParseID(req.Quantity); err != nil {
		return in, apperr.Wrap(apperr.KindInvalidRequest, err, "quantity must be a positive integer")
	}
	if in.total, err = models.ParseCents(req.Total); err != nil {
		return in, apperr.Wrap(apperr.KindInvalidRequest, err, "invalid total")
	}
	return in, nil
}

// PlaceOrder validates the request, then atomically checks stock,
// decrements it and inserts the order row. Either every step commits or
// none does; two concurrent placements on the same inventory row are
// serialized by the row lock taken inside the transaction.
func (s *OrderService) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*PlacedOrder, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.OrderPlacementLatency.Observe(time.Since(start).Seconds())
	}()

	in, err := parsePlaceOrder(req)
	if err != nil {
		util.OrdersRejectedTotal.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}

	var (
		order     models.Order
		remaining int64
	)
	err = s.repo.WithOrderTx(ctx, func(ctx context.Context, tx store.OrderTx) error {
		inv, err := tx.InventoryForUpdate(ctx, in.productID, in.unitID)
		if err != nil {
			return err
		}

		if in.quantity > inv.OnHand {
			return apperr.InsufficientStock(inv.OnHand)
		}

		key := models.InventoryKey{
			InventoryID: inv.InventoryID,
			ProductID:   inv.ProductID,
			UnitID:      inv.UnitID,
		}
		if err := tx.DecrementOnHand(ctx, key, in.quantity, orderActor); err != nil {
			return err
		}

		orderID, err := tx.NextOrderID(ctx)
		if err != nil {
			return err
		}

		order = models.Order{
			OrderID:     orderID,
			OrderNumber: orderID,
			Quantity:    in.quantity,
			Total:       in.total,
			CustomerID:  in.customerID,
			CompanyID:   in.companyID,
			TypeID:      in.customerTypeID,
			ProductID:   in.productID,
			UnitID:      in.unitID,
		}
		if err := tx.InsertOrder(ctx, &order); err != nil {
			return err
		}

		remaining = inv.OnHand - in.quantity
		return nil
	})
	if err != nil {
		util.OrdersRejectedTotal.WithLabelValues(rejectReason(err)).Inc()
		s.logger.Warn("Order placement rejected",
			zap.Int64("product_id", in.productID),
			zap.Int64("quantity", in.quantity),
			zap.String("reason", rejectReason(err)),
			zap.Error(err))
		return nil, err
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.Int64("order_id", order.OrderID),
		zap.Int64("customer_id", order.CustomerID),
		zap.Int64("product_id", order.ProductID),
		zap.Int64("quantity", order.Quantity),
		zap.Int64("remaining_on_hand", remaining))

	if s.events != nil {
		event := &models.OrderPlacedEvent{
			BaseEvent:  newBaseEvent(models.EventTypeOrderPlaced),
			OrderID:    order.OrderID,
			CustomerID: order.CustomerID,
			CompanyID:  order.CompanyID,
			ProductID:  order.ProductID,
			UnitID:     order.UnitID,
			Quantity:   order.Quantity,
			Total:      order.Total.String(),
			OnHand:     remaining,
		}
		if err := s.events.PublishOrderPlaced(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
		}
	}

	return renderPlacedOrder(&order, remaining), nil
}

func renderPlacedOrder(o *models.Order, remaining int64) *PlacedOrder {
	return &PlacedOrder{
		OrderID:         models.FormatID(o.OrderID),
		OrderNumber:     models.FormatID(o.OrderNumber),
		OrderedAt:       o.OrderedAt.UTC().Format(time.RFC3339Nano),
		Quantity:        strconv.FormatInt(o.Quantity, 10),
		Total:           o.Total.String(),
		CustomerID:      models.FormatID(o.CustomerID),
		CompanyID:       models.FormatID(o.CompanyID),
		ProductID:       models.FormatID(o.ProductID),
		UnitID:          models.FormatID(o.UnitID),
		RemainingOnHand: strconv.FormatInt(remaining, 10),
	}
}

// rejectReason maps an error kind onto the metrics label.
func rejectReason(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidRequest:
		return "invalid_request"
	case apperr.KindNotFound:
		return "stock_record_not_found"
	case apperr.KindInsufficientStock:
		return "insufficient_stock"
	case apperr.KindUniqueConflict:
		return "unique_conflict"
	default:
		return "persistence_error"
	}
}

// GetOrder retrieves an order by its exact-text id.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	orderID, err := models.ParseID(id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidRequest, err, "invalid order id")
	}
	return s.repo.GetOrderByID(ctx, orderID)
}

// ListCustomerOrders retrieves the orders of one customer, newest first.
func (s *OrderService) ListCustomerOrders(ctx context.Context, customerID, companyID, typeID string) ([]models.Order, error) {
	key, err := parseCustomerKey(customerID, companyID, typeID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListOrdersByCustomer(ctx, key)
}
