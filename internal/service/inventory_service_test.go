package service

import (
	"context"
	"testing"

	"sgp-service/internal/apperr"
	"sgp-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInventoryRepo struct {
	rows map[models.InventoryKey]models.Inventory
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	key := models.InventoryKey{InventoryID: 501, ProductID: 301, UnitID: 401}
	return &fakeInventoryRepo{
		rows: map[models.InventoryKey]models.Inventory{
			key: {InventoryID: 501, ProductID: 301, UnitID: 401, OnHand: 20, Reserved: 2},
		},
	}
}

func (r *fakeInventoryRepo) GetInventoryByProduct(ctx context.Context, productID, unitID int64) (*models.Inventory, error) {
	for _, inv := range r.rows {
		if inv.ProductID == productID && inv.UnitID == unitID {
			out := inv
			return &out, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "no inventory for product %d unit %d", productID, unitID)
}

func (r *fakeInventoryRepo) SetQuantities(ctx context.Context, key models.InventoryKey, onHand, reserved int64, actor string) error {
	inv, ok := r.rows[key]
	if !ok {
		return apperr.New(apperr.KindNotFound, "inventory item %d not found", key.InventoryID)
	}
	inv.OnHand = onHand
	inv.Reserved = reserved
	inv.UpdatedBy = actor
	r.rows[key] = inv
	return nil
}

func (r *fakeInventoryRepo) ListInventory(ctx context.Context) ([]models.InventoryListing, error) {
	var out []models.InventoryListing
	for _, inv := range r.rows {
		out = append(out, models.InventoryListing{Inventory: inv})
	}
	return out, nil
}

func TestGetCurrentQuantity(t *testing.T) {
	svc := NewInventoryService(newFakeInventoryRepo(), nil)

	qty, err := svc.GetCurrentQuantity(context.Background(), "301", "401")
	require.NoError(t, err)
	assert.Equal(t, "501", qty.InventoryID)
	assert.Equal(t, "20", qty.OnHand)
}

func TestGetCurrentQuantityIdempotent(t *testing.T) {
	repo := newFakeInventoryRepo()
	svc := NewInventoryService(repo, nil)

	first, err := svc.GetCurrentQuantity(context.Background(), "301", "401")
	require.NoError(t, err)

	// No intervening write: repeated reads must return identical values.
	for i := 0; i < 3; i++ {
		again, err := svc.GetCurrentQuantity(context.Background(), "301", "401")
		require.NoError(t, err)
		assert.Equal(t, first.InventoryID, again.InventoryID)
		assert.Equal(t, first.OnHand, again.OnHand)
	}

	// A write changes what subsequent reads observe.
	err = svc.Adjust(context.Background(), "501", "301", "401", &AdjustInventoryRequest{
		OnHand: "7", Reserved: "0",
	})
	require.NoError(t, err)

	after, err := svc.GetCurrentQuantity(context.Background(), "301", "401")
	require.NoError(t, err)
	assert.Equal(t, "7", after.OnHand)
}

func TestGetCurrentQuantityMissingProduct(t *testing.T) {
	svc := NewInventoryService(newFakeInventoryRepo(), nil)

	_, err := svc.GetCurrentQuantity(context.Background(), "999", "401")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAdjustOverwritesQuantities(t *testing.T) {
	repo := newFakeInventoryRepo()
	svc := NewInventoryService(repo, nil)

	err := svc.Adjust(context.Background(), "501", "301", "401", &AdjustInventoryRequest{
		OnHand:   "35",
		Reserved: "0",
		Actor:    "erin",
	})
	require.NoError(t, err)

	key := models.InventoryKey{InventoryID: 501, ProductID: 301, UnitID: 401}
	inv := repo.rows[key]
	assert.Equal(t, int64(35), inv.OnHand)
	assert.Equal(t, int64(0), inv.Reserved)
	assert.Equal(t, "erin", inv.UpdatedBy)
}

func TestAdjustRejectsBadValues(t *testing.T) {
	repo := newFakeInventoryRepo()
	svc := NewInventoryService(repo, nil)

	cases := map[string]*AdjustInventoryRequest{
		"negative on hand":  {OnHand: "-5", Reserved: "0"},
		"fractional":        {OnHand: "1.5", Reserved: "0"},
		"negative reserved": {OnHand: "10", Reserved: "-1"},
		"non numeric":       {OnHand: "abc", Reserved: "0"},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			err := svc.Adjust(context.Background(), "501", "301", "401", req)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindValidation))
		})
	}

	// Row untouched.
	key := models.InventoryKey{InventoryID: 501, ProductID: 301, UnitID: 401}
	assert.Equal(t, int64(20), repo.rows[key].OnHand)
}

func TestAdjustBadKey(t *testing.T) {
	svc := NewInventoryService(newFakeInventoryRepo(), nil)

	err := svc.Adjust(context.Background(), "abc", "301", "401", &AdjustInventoryRequest{
		OnHand: "1", Reserved: "0",
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInvalidRequest))
}

func TestAdjustMissingRow(t *testing.T) {
	svc := NewInventoryService(newFakeInventoryRepo(), nil)

	err := svc.Adjust(context.Background(), "777", "301", "401", &AdjustInventoryRequest{
		OnHand: "1", Reserved: "0",
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
