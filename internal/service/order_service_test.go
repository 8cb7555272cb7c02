package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"sgp-service/internal/apperr"
	"sgp-service/internal/models"
	"sgp-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOrderRepo keeps one inventory row and the inserted orders in
// memory. The mutex is held for the whole transaction callback, which
// mirrors the row lock the real store takes with FOR UPDATE.
type fakeOrderRepo struct {
	mu         sync.Mutex
	inv        models.Inventory
	orders     map[int64]models.Order
	nextOrder  int64
	insertFail error
}

func newFakeOrderRepo(onHand int64) *fakeOrderRepo {
	return &fakeOrderRepo{
		inv: models.Inventory{
			InventoryID: 501,
			ProductID:   301,
			UnitID:      401,
			OnHand:      onHand,
		},
		orders:    make(map[int64]models.Order),
		nextOrder: 9000,
	}
}

func (r *fakeOrderRepo) WithOrderTx(ctx context.Context, fn func(context.Context, store.OrderTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &fakeOrderTx{repo: r, pendingOrders: make(map[int64]models.Order)}
	tx.pendingOnHand = r.inv.OnHand
	if err := fn(ctx, tx); err != nil {
		return err
	}

	// Commit: apply staged changes only when the callback succeeded.
	r.inv.OnHand = tx.pendingOnHand
	for id, o := range tx.pendingOrders {
		r.orders[id] = o
	}
	return nil
}

func (r *fakeOrderRepo) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "order %d not found", id)
	}
	return &o, nil
}

func (r *fakeOrderRepo) ListOrdersByCustomer(ctx context.Context, key models.CustomerKey) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if o.CustomerID == key.CustomerID && o.CompanyID == key.CompanyID && o.TypeID == key.TypeID {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeOrderTx struct {
	repo          *fakeOrderRepo
	pendingOnHand int64
	pendingOrders map[int64]models.Order
}

func (t *fakeOrderTx) InventoryForUpdate(ctx context.Context, productID, unitID int64) (models.Inventory, error) {
	inv := t.repo.inv
	if inv.ProductID != productID || inv.UnitID != unitID {
		return models.Inventory{}, apperr.New(apperr.KindNotFound,
			"no inventory for product %d unit %d", productID, unitID)
	}
	inv.OnHand = t.pendingOnHand
	return inv, nil
}

func (t *fakeOrderTx) DecrementOnHand(ctx context.Context, key models.InventoryKey, quantity int64, actor string) error {
	if t.pendingOnHand < quantity {
		return apperr.InsufficientStock(t.pendingOnHand)
	}
	t.pendingOnHand -= quantity
	return nil
}

func (t *fakeOrderTx) NextOrderID(ctx context.Context) (int64, error) {
	t.repo.nextOrder++
	return t.repo.nextOrder, nil
}

func (t *fakeOrderTx) InsertOrder(ctx context.Context, o *models.Order) error {
	if t.repo.insertFail != nil {
		return t.repo.insertFail
	}
	o.OrderedAt = time.Now()
	t.pendingOrders[o.OrderID] = *o
	return nil
}

func validPlaceOrderRequest() *PlaceOrderRequest {
	return &PlaceOrderRequest{
		CustomerID:        "101",
		CustomerCompanyID: "10001",
		CustomerTypeID:    "10001",
		ProductID:         "301",
		UnitID:            "401",
		CompanyID:         "10001",
		Quantity:          "3",
		Total:             "45.90",
	}
}

func TestPlaceOrderDecrementsStock(t *testing.T) {
	repo := newFakeOrderRepo(10)
	svc := NewOrderService(repo, nil)

	placed, err := svc.PlaceOrder(context.Background(), validPlaceOrderRequest())
	require.NoError(t, err)

	assert.Equal(t, "3", placed.Quantity)
	assert.Equal(t, "45.90", placed.Total)
	assert.Equal(t, "7", placed.RemainingOnHand)
	assert.Equal(t, placed.OrderID, placed.OrderNumber)
	assert.Equal(t, int64(7), repo.inv.OnHand)
	assert.Len(t, repo.orders, 1)
}

func TestPlaceOrderExactStock(t *testing.T) {
	repo := newFakeOrderRepo(3)
	svc := NewOrderService(repo, nil)

	placed, err := svc.PlaceOrder(context.Background(), validPlaceOrderRequest())
	require.NoError(t, err)

	assert.Equal(t, "0", placed.RemainingOnHand)
	assert.Equal(t, int64(0), repo.inv.OnHand)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	repo := newFakeOrderRepo(2)
	svc := NewOrderService(repo, nil)

	_, err := svc.PlaceOrder(context.Background(), validPlaceOrderRequest())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInsufficientStock))

	var tagged *apperr.Error
	require.ErrorAs(t, err, &tagged)
	assert.Equal(t, int64(2), tagged.Available)

	// Nothing committed.
	assert.Equal(t, int64(2), repo.inv.OnHand)
	assert.Empty(t, repo.orders)
}

func TestPlaceOrderInsertFailureRollsBackStock(t *testing.T) {
	repo := newFakeOrderRepo(10)
	repo.insertFail = apperr.New(apperr.KindPersistence, "insert order failed")
	svc := NewOrderService(repo, nil)

	_, err := svc.PlaceOrder(context.Background(), validPlaceOrderRequest())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindPersistence))

	assert.Equal(t, int64(10), repo.inv.OnHand)
	assert.Empty(t, repo.orders)
}

func TestPlaceOrderMissingInventory(t *testing.T) {
	repo := newFakeOrderRepo(10)
	svc := NewOrderService(repo, nil)

	req := validPlaceOrderRequest()
	req.ProductID = "999"

	_, err := svc.PlaceOrder(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestPlaceOrderConcurrentOnLastStock(t *testing.T) {
	repo := newFakeOrderRepo(3)
	svc := NewOrderService(repo, nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.PlaceOrder(context.Background(), validPlaceOrderRequest())
		}(i)
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		if err == nil {
			ok++
		} else if apperr.Is(err, apperr.KindInsufficientStock) {
			rejected++
		}
	}

	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, int64(0), repo.inv.OnHand)
	assert.Len(t, repo.orders, 1)
}

func TestPlaceOrderRejectsBadInput(t *testing.T) {
	repo := newFakeOrderRepo(10)
	svc := NewOrderService(repo, nil)

	cases := map[string]func(*PlaceOrderRequest){
		"zero quantity":       func(r *PlaceOrderRequest) { r.Quantity = "0" },
		"negative quantity":   func(r *PlaceOrderRequest) { r.Quantity = "-1" },
		"fractional quantity": func(r *PlaceOrderRequest) { r.Quantity = "1.5" },
		"empty customer":      func(r *PlaceOrderRequest) { r.CustomerID = "" },
		"non numeric product": func(r *PlaceOrderRequest) { r.ProductID = "abc" },
		"negative total":      func(r *PlaceOrderRequest) { r.Total = "-1.00" },
		"malformed total":     func(r *PlaceOrderRequest) { r.Total = "1.2.3" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validPlaceOrderRequest()
			mutate(req)

			_, err := svc.PlaceOrder(context.Background(), req)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindInvalidRequest))
		})
	}

	// No request reached the repository.
	assert.Equal(t, int64(10), repo.inv.OnHand)
	assert.Empty(t, repo.orders)
}

func TestPlaceOrderAcceptsCommaDecimal(t *testing.T) {
	repo := newFakeOrderRepo(10)
	svc := NewOrderService(repo, nil)

	req := validPlaceOrderRequest()
	req.Total = "45,90"

	placed, err := svc.PlaceOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "45.90", placed.Total)
}

func TestGetOrderInvalidID(t *testing.T) {
	svc := NewOrderService(newFakeOrderRepo(1), nil)

	_, err := svc.GetOrder(context.Background(), "not-a-number")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInvalidRequest))
}

func TestGetOrderRoundTrip(t *testing.T) {
	repo := newFakeOrderRepo(10)
	svc := NewOrderService(repo, nil)

	placed, err := svc.PlaceOrder(context.Background(), validPlaceOrderRequest())
	require.NoError(t, err)

	order, err := svc.GetOrder(context.Background(), placed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), order.Quantity)
	assert.Equal(t, placed.Total, order.Total.String())
}
