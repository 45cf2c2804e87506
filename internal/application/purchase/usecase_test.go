package purchase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/replenishment-api/internal/application/dto"
	"github.com/jhoicas/replenishment-api/internal/application/purchase"
	"github.com/jhoicas/replenishment-api/internal/domain"
	"github.com/jhoicas/replenishment-api/internal/domain/entity"
	"github.com/jhoicas/replenishment-api/internal/infrastructure/memory"
)

type fixture struct {
	store     *memory.Store
	uc        *purchase.PurchaseRequestUseCase
	central   *entity.Warehouse
	east      *entity.Warehouse
	icyMint   *entity.Product
	berry     *entity.Product
	noSKUProd *entity.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:     store,
		central:   store.AddWarehouse("Central Warehouse"),
		east:      store.AddWarehouse("East Warehouse"),
		icyMint:   store.AddProduct("Icy Mint", "ICYMINT"),
		berry:     store.AddProduct("Berry Blast", "BERRYB"),
		noSKUProd: store.AddProduct("Sin SKU", ""),
	}
	f.uc = purchase.NewPurchaseRequestUseCase(store, store.Repos().PurchaseRequests, "")
	return f
}

func (f *fixture) create(t *testing.T, items ...dto.PurchaseRequestItemInput) *entity.PurchaseRequest {
	t.Helper()
	pr, err := f.uc.Create(context.Background(), dto.CreatePurchaseRequest{
		WarehouseID: f.central.ID,
		Items:       items,
	})
	require.NoError(t, err)
	return pr
}

func item(productID, qty int64) dto.PurchaseRequestItemInput {
	return dto.PurchaseRequestItemInput{ProductID: productID, Quantity: qty}
}

func strPtr(s string) *string { return &s }
func int64Ptr(v int64) *int64 { return &v }

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "se esperaba ValidationError, obtuvo %v", err)
	return ve.Field
}

func TestCreate_AssignsReferenceAndDraft(t *testing.T) {
	f := newFixture(t)

	pr := f.create(t, item(f.icyMint.ID, 10), item(f.berry.ID, 5))

	assert.Equal(t, "PR00001", pr.Reference)
	assert.Equal(t, entity.StatusDraft, pr.Status)
	assert.Equal(t, entity.DefaultVendorName, pr.VendorName)
	assert.Equal(t, "Central Warehouse", pr.WarehouseName)
	require.Len(t, pr.Items, 2)
	assert.Equal(t, "ICYMINT", pr.Items[0].ProductSKU)
	assert.Equal(t, int64(15), pr.QuantityTotal())

	second := f.create(t, item(f.icyMint.ID, 1))
	assert.Equal(t, "PR00002", second.Reference)
}

func TestCreate_CustomVendor(t *testing.T) {
	f := newFixture(t)
	uc := purchase.NewPurchaseRequestUseCase(f.store, f.store.Repos().PurchaseRequests, "ACME")
	pr, err := uc.Create(context.Background(), dto.CreatePurchaseRequest{
		WarehouseID: f.central.ID, Items: []dto.PurchaseRequestItemInput{item(f.icyMint.ID, 1)},
	})
	require.NoError(t, err)
	assert.Equal(t, "ACME", pr.VendorName)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		in    dto.CreatePurchaseRequest
		field string
	}{
		{"sin ítems", dto.CreatePurchaseRequest{WarehouseID: f.central.ID}, "items"},
		{"bodega inexistente", dto.CreatePurchaseRequest{WarehouseID: 99, Items: []dto.PurchaseRequestItemInput{item(f.icyMint.ID, 1)}}, "warehouseId"},
		{"bodega vacía", dto.CreatePurchaseRequest{Items: []dto.PurchaseRequestItemInput{item(f.icyMint.ID, 1)}}, "warehouseId"},
		{"producto inexistente", dto.CreatePurchaseRequest{WarehouseID: f.central.ID, Items: []dto.PurchaseRequestItemInput{item(f.icyMint.ID, 1), item(404, 1)}}, "items[1].productId"},
		{"cantidad cero", dto.CreatePurchaseRequest{WarehouseID: f.central.ID, Items: []dto.PurchaseRequestItemInput{item(f.icyMint.ID, 0)}}, "items[0].quantity"},
		{"cantidad negativa", dto.CreatePurchaseRequest{WarehouseID: f.central.ID, Items: []dto.PurchaseRequestItemInput{item(f.icyMint.ID, -3)}}, "items[0].quantity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Create(ctx, tc.in)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, tc.field, fieldOf(t, err))
		})
	}

	list, err := f.uc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "ninguna creación fallida debe dejar filas")
}

func TestReplace_ItemsAndWarehouse(t *testing.T) {
	f := newFixture(t)
	pr := f.create(t, item(f.icyMint.ID, 10))

	res, err := f.uc.Replace(context.Background(), pr.ID, dto.UpdatePurchaseRequest{
		WarehouseID: int64Ptr(f.east.ID),
		Items:       []dto.PurchaseRequestItemInput{item(f.berry.ID, 4), item(f.icyMint.ID, 2)},
	})
	require.NoError(t, err)
	assert.False(t, res.NeedsNotification)

	got := res.PurchaseRequest
	assert.Equal(t, entity.StatusDraft, got.Status)
	assert.Equal(t, f.east.ID, got.WarehouseID)
	assert.Equal(t, "East Warehouse", got.WarehouseName)
	require.Len(t, got.Items, 2)
	assert.Equal(t, f.berry.ID, got.Items[0].ProductID)
	assert.Equal(t, int64(6), got.QuantityTotal())
	assert.Equal(t, "PR00001", got.Reference)
}

func TestReplace_NoItemsKeepsLines(t *testing.T) {
	f := newFixture(t)
	pr := f.create(t, item(f.icyMint.ID, 10))

	res, err := f.uc.Replace(context.Background(), pr.ID, dto.UpdatePurchaseRequest{WarehouseID: int64Ptr(f.east.ID)})
	require.NoError(t, err)
	require.Len(t, res.PurchaseRequest.Items, 1)
	assert.Equal(t, int64(10), res.PurchaseRequest.Items[0].Quantity)
}

func TestReplace_EmptyItemsRejected(t *testing.T) {
	f := newFixture(t)
	pr := f.create(t, item(f.icyMint.ID, 10))

	_, err := f.uc.Replace(context.Background(), pr.ID, dto.UpdatePurchaseRequest{Items: []dto.PurchaseRequestItemInput{}})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "items", fieldOf(t, err))
}

func TestReplace_ToPendingRequestsNotification(t *testing.T) {
	f := newFixture(t)
	pr := f.create(t, item(f.icyMint.ID, 10))

	res, err := f.uc.Replace(context.Background(), pr.ID, dto.UpdatePurchaseRequest{Status: strPtr("PENDING")})
	require.NoError(t, err)
	assert.True(t, res.NeedsNotification)
	assert.Equal(t, entity.StatusPending, res.PurchaseRequest.Status)
	assert.Equal(t, entity.StatusPending, f.store.Status(pr.ID))
}

func TestReplace_RejectedTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pr := f.create(t, item(f.icyMint.ID, 10))

	_, err := f.uc.Replace(ctx, pr.ID, dto.UpdatePurchaseRequest{Status: strPtr("COMPLETED")})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.uc.Replace(ctx, pr.ID, dto.UpdatePurchaseRequest{Status: strPtr("DRAFT")})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.uc.Replace(ctx, pr.ID, dto.UpdatePurchaseRequest{Status: strPtr("SHIPPED")})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.uc.Replace(ctx, pr.ID, dto.UpdatePurchaseRequest{Status: strPtr("pending")})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	assert.Equal(t, entity.StatusDraft, f.store.Status(pr.ID))
}

func TestReplace_EmptyStatusIsIgnored(t *testing.T) {
	f := newFixture(t)
	pr := f.create(t, item(f.icyMint.ID, 10))

	res, err := f.uc.Replace(context.Background(), pr.ID, dto.UpdatePurchaseRequest{
		Status: strPtr(""),
		Items:  []dto.PurchaseRequestItemInput{item(f.berry.ID, 4)},
	})
	require.NoError(t, err)
	assert.False(t, res.NeedsNotification)
	assert.Equal(t, entity.StatusDraft, res.PurchaseRequest.Status)
	require.Len(t, res.PurchaseRequest.Items, 1)
	assert.Equal(t, int64(4), res.PurchaseRequest.Items[0].Quantity)
}

func TestReplace_NotDraftFailsWhateverTheFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pr := f.create(t, item(f.icyMint.ID, 10))
	_, err := f.uc.Replace(ctx, pr.ID, dto.UpdatePurchaseRequest{Status: strPtr("PENDING")})
	require.NoError(t, err)

	_, err = f.uc.Replace(ctx, pr.ID, dto.UpdatePurchaseRequest{Items: []dto.PurchaseRequestItemInput{item(f.berry.ID, 1)}})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.uc.Replace(ctx, pr.ID, dto.UpdatePurchaseRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	got, err := f.uc.Get(ctx, pr.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, f.icyMint.ID, got.Items[0].ProductID)
}

func TestReplace_FailureRollsBackItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pr := f.create(t, item(f.icyMint.ID, 10))

	// ítems válidos + estado inválido: nada debe persistir
	_, err := f.uc.Replace(ctx, pr.ID, dto.UpdatePurchaseRequest{
		Items:  []dto.PurchaseRequestItemInput{item(f.berry.ID, 99)},
		Status: strPtr("COMPLETED"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidState)

	got, err := f.uc.Get(ctx, pr.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(10), got.Items[0].Quantity)
}

func TestReplace_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Replace(context.Background(), 404, dto.UpdatePurchaseRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pr := f.create(t, item(f.icyMint.ID, 10))

	require.NoError(t, f.uc.Delete(ctx, pr.ID))
	_, err := f.uc.Get(ctx, pr.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, f.uc.Delete(ctx, pr.ID), domain.ErrNotFound)
}

func TestDelete_OnlyDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pr := f.create(t, item(f.icyMint.ID, 10))
	_, err := f.uc.Replace(ctx, pr.ID, dto.UpdatePurchaseRequest{Status: strPtr("PENDING")})
	require.NoError(t, err)

	assert.ErrorIs(t, f.uc.Delete(ctx, pr.ID), domain.ErrInvalidState)
	_, err = f.uc.Get(ctx, pr.ID)
	assert.NoError(t, err)
}

func TestList_SummaryTotals(t *testing.T) {
	f := newFixture(t)
	f.create(t, item(f.icyMint.ID, 10), item(f.berry.ID, 5))
	f.create(t, item(f.berry.ID, 1))

	list, err := f.uc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "PR00001", list[0].Reference)
	assert.Equal(t, int64(15), list[0].QuantityTotal)
	assert.Equal(t, "Central Warehouse", list[0].WarehouseName)
	assert.Equal(t, int64(1), list[1].QuantityTotal)

	out := purchase.ToSummaryResponses(list)
	assert.Equal(t, "DRAFT", out[0].Status)
}
