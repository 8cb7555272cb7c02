package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"sgp-service/internal/apperr"
	"sgp-service/internal/models"
	"sgp-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProductRepo stages transaction work and applies it only when the
// callback succeeds, mirroring the real commit/rollback boundary.
type fakeProductRepo struct {
	units         map[int64]bool
	products      map[models.ProductKey]models.Product
	inventory     map[models.ProductKey]models.Inventory
	orderedKeys   map[models.ProductKey]bool
	nextProduct   int64
	nextInventory int64
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{
		units:         map[int64]bool{10001: true, 10003: true},
		products:      make(map[models.ProductKey]models.Product),
		inventory:     make(map[models.ProductKey]models.Inventory),
		orderedKeys:   make(map[models.ProductKey]bool),
		nextProduct:   10200,
		nextInventory: 10500,
	}
}

func (r *fakeProductRepo) WithProductTx(ctx context.Context, fn func(context.Context, store.ProductTx) error) error {
	tx := &fakeProductTx{
		repo:      r,
		products:  make(map[models.ProductKey]models.Product),
		inventory: make(map[models.ProductKey]models.Inventory),
		deleted:   make(map[models.ProductKey]bool),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	for key := range tx.deleted {
		delete(r.products, key)
		delete(r.inventory, key)
	}
	for key, p := range tx.products {
		r.products[key] = p
	}
	for key, inv := range tx.inventory {
		r.inventory[key] = inv
	}
	return nil
}

func (r *fakeProductRepo) GetProduct(ctx context.Context, key models.ProductKey) (*models.Product, error) {
	p, ok := r.products[key]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "product %d not found", key.ProductID)
	}
	return &p, nil
}

func (r *fakeProductRepo) UpdateProduct(ctx context.Context, key models.ProductKey, description string, price models.Cents, actor string) error {
	p, ok := r.products[key]
	if !ok {
		return apperr.New(apperr.KindNotFound, "product %d not found", key.ProductID)
	}
	p.Description = description
	p.UnitPrice = price
	p.UpdatedBy = actor
	r.products[key] = p
	return nil
}

type fakeProductTx struct {
	repo      *fakeProductRepo
	products  map[models.ProductKey]models.Product
	inventory map[models.ProductKey]models.Inventory
	deleted   map[models.ProductKey]bool
}

func (t *fakeProductTx) UnitExists(ctx context.Context, unitID int64) (bool, error) {
	return t.repo.units[unitID], nil
}

func (t *fakeProductTx) NextProductID(ctx context.Context) (int64, error) {
	t.repo.nextProduct++
	return t.repo.nextProduct, nil
}

func (t *fakeProductTx) NextInventoryID(ctx context.Context) (int64, error) {
	t.repo.nextInventory++
	return t.repo.nextInventory, nil
}

func (t *fakeProductTx) InsertProduct(ctx context.Context, p *models.Product) error {
	t.products[models.ProductKey{ProductID: p.ProductID, UnitID: p.UnitID}] = *p
	return nil
}

func (t *fakeProductTx) InsertInventory(ctx context.Context, inv *models.Inventory) error {
	t.inventory[models.ProductKey{ProductID: inv.ProductID, UnitID: inv.UnitID}] = *inv
	return nil
}

func (t *fakeProductTx) DeleteInventoryForProduct(ctx context.Context, productID, unitID int64) error {
	t.deleted[models.ProductKey{ProductID: productID, UnitID: unitID}] = true
	return nil
}

func (t *fakeProductTx) DeleteProduct(ctx context.Context, key models.ProductKey) error {
	if _, ok := t.repo.products[key]; !ok {
		return apperr.New(apperr.KindNotFound, "product %d not found", key.ProductID)
	}
	if t.repo.orderedKeys[key] {
		return apperr.New(apperr.KindReferentialConflict,
			"product %d is referenced by orders", key.ProductID)
	}
	t.deleted[key] = true
	return nil
}

func TestRegisterProductCreatesInventory(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewProductService(repo, nil)

	registered, err := svc.Register(context.Background(), &RegisterProductRequest{
		Description:     "Arroz Tipo 1",
		UnitID:          "10003",
		UnitPrice:       "25,90",
		InitialQuantity: "100",
	}, "carol")
	require.NoError(t, err)

	assert.Equal(t, "Arroz Tipo 1", registered.Description)
	assert.Equal(t, "25.90", registered.UnitPrice)
	assert.Equal(t, "100", registered.OnHand)

	productID, err := models.ParseID(registered.ProductID)
	require.NoError(t, err)
	key := models.ProductKey{ProductID: productID, UnitID: 10003}
	assert.Contains(t, repo.products, key)

	inv, ok := repo.inventory[key]
	require.True(t, ok)
	assert.Equal(t, int64(100), inv.OnHand)
	assert.Equal(t, int64(0), inv.Reserved)
	assert.Equal(t, "carol", inv.UpdatedBy)
}

func TestRegisterProductUnknownUnit(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewProductService(repo, nil)

	_, err := svc.Register(context.Background(), &RegisterProductRequest{
		Description:     "Feijao",
		UnitID:          "999",
		UnitPrice:       "8.50",
		InitialQuantity: "10",
	}, "")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindReferenceNotFound))

	// Nothing committed.
	assert.Empty(t, repo.products)
	assert.Empty(t, repo.inventory)
}

func TestRegisterProductTruncatesDescription(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewProductService(repo, nil)

	long := strings.Repeat("a", 60)
	registered, err := svc.Register(context.Background(), &RegisterProductRequest{
		Description:     long,
		UnitID:          "10001",
		UnitPrice:       "1.00",
		InitialQuantity: "0",
	}, "")
	require.NoError(t, err)
	assert.Len(t, registered.Description, 45)
}

func TestRegisterProductTruncatesByRunes(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewProductService(repo, nil)

	// 50 two-byte runes; a byte cut at 45 would land inside one.
	long := strings.Repeat("ç", 50)
	registered, err := svc.Register(context.Background(), &RegisterProductRequest{
		Description:     long,
		UnitID:          "10001",
		UnitPrice:       "1.00",
		InitialQuantity: "0",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("ç", 45), registered.Description)
	assert.True(t, utf8.ValidString(registered.Description))
	assert.Equal(t, 45, utf8.RuneCountInString(registered.Description))
}

func TestRegisterProductRejectsBadInput(t *testing.T) {
	svc := NewProductService(newFakeProductRepo(), nil)

	cases := map[string]*RegisterProductRequest{
		"blank description": {Description: "   ", UnitID: "10001", UnitPrice: "1.00", InitialQuantity: "1"},
		"negative price":    {Description: "x", UnitID: "10001", UnitPrice: "-1.00", InitialQuantity: "1"},
		"negative quantity": {Description: "x", UnitID: "10001", UnitPrice: "1.00", InitialQuantity: "-1"},
		"fraction quantity": {Description: "x", UnitID: "10001", UnitPrice: "1.00", InitialQuantity: "1.5"},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), req, "")
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindValidation))
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewProductService(repo, nil)

	registered, err := svc.Register(context.Background(), &RegisterProductRequest{
		Description:     "Cafe",
		UnitID:          "10001",
		UnitPrice:       "10.00",
		InitialQuantity: "5",
	}, "")
	require.NoError(t, err)

	err = svc.Update(context.Background(), registered.ProductID, "10001", &UpdateProductRequest{
		Description: "Cafe Torrado",
		UnitPrice:   "12.50",
		Actor:       "dave",
	})
	require.NoError(t, err)

	product, err := svc.Get(context.Background(), registered.ProductID, "10001")
	require.NoError(t, err)
	assert.Equal(t, "Cafe Torrado", product.Description)
	assert.Equal(t, "12.50", product.UnitPrice.String())
	assert.Equal(t, "dave", product.UpdatedBy)
}

func TestDeleteProductRemovesInventory(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewProductService(repo, nil)

	registered, err := svc.Register(context.Background(), &RegisterProductRequest{
		Description:     "Acucar",
		UnitID:          "10001",
		UnitPrice:       "4.20",
		InitialQuantity: "30",
	}, "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), registered.ProductID, "10001"))

	assert.Empty(t, repo.products)
	assert.Empty(t, repo.inventory)
}

func TestDeleteProductWithOrdersRollsBack(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewProductService(repo, nil)

	registered, err := svc.Register(context.Background(), &RegisterProductRequest{
		Description:     "Leite",
		UnitID:          "10001",
		UnitPrice:       "5.00",
		InitialQuantity: "12",
	}, "")
	require.NoError(t, err)

	productID, err := models.ParseID(registered.ProductID)
	require.NoError(t, err)
	key := models.ProductKey{ProductID: productID, UnitID: 10001}
	repo.orderedKeys[key] = true

	err = svc.Delete(context.Background(), registered.ProductID, "10001")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindReferentialConflict))

	// The inventory delete staged before the failure never applied.
	assert.Contains(t, repo.products, key)
	assert.Contains(t, repo.inventory, key)
}
