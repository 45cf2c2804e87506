package receiving_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/replenishment-api/internal/application/dto"
	"github.com/jhoicas/replenishment-api/internal/application/purchase"
	"github.com/jhoicas/replenishment-api/internal/application/receiving"
	"github.com/jhoicas/replenishment-api/internal/application/stock"
	"github.com/jhoicas/replenishment-api/internal/domain"
	"github.com/jhoicas/replenishment-api/internal/domain/entity"
	"github.com/jhoicas/replenishment-api/internal/infrastructure/memory"
	"github.com/jhoicas/replenishment-api/pkg/logger"
)

type env struct {
	store     *memory.Store
	requests  *purchase.PurchaseRequestUseCase
	processor *receiving.ConfirmationProcessor
	wh        *entity.Warehouse
	mint      *entity.Product
	berry     *entity.Product
}

func newEnv(t *testing.T, locker receiving.ReferenceLocker) *env {
	t.Helper()
	store := memory.NewStore()
	e := &env{
		store: store,
		wh:    store.AddWarehouse("Central Warehouse"),
		mint:  store.AddProduct("Icy Mint", "ICYMINT"),
		berry: store.AddProduct("Berry Blast", "BERRYB"),
	}
	e.requests = purchase.NewPurchaseRequestUseCase(store, store.Repos().PurchaseRequests, "")
	ledger := stock.NewLedger(store.Repos().Stock)
	e.processor = receiving.NewConfirmationProcessor(store, ledger, locker, logger.Nop())
	return e
}

// pending crea una solicitud con las líneas indicadas y la pasa a PENDING.
func (e *env) pending(t *testing.T, lines map[int64]int64) *entity.PurchaseRequest {
	t.Helper()
	pr := e.draft(t, lines)
	status := "PENDING"
	res, err := e.requests.Replace(context.Background(), pr.ID, dto.UpdatePurchaseRequest{Status: &status})
	require.NoError(t, err)
	return res.PurchaseRequest
}

func (e *env) draft(t *testing.T, lines map[int64]int64) *entity.PurchaseRequest {
	t.Helper()
	items := make([]dto.PurchaseRequestItemInput, 0, len(lines))
	for _, pid := range []int64{e.mint.ID, e.berry.ID} {
		if q, ok := lines[pid]; ok {
			items = append(items, dto.PurchaseRequestItemInput{ProductID: pid, Quantity: q})
		}
	}
	pr, err := e.requests.Create(context.Background(), dto.CreatePurchaseRequest{WarehouseID: e.wh.ID, Items: items})
	require.NoError(t, err)
	return pr
}

func qty(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func confirmation(ref string, lines ...receiving.ConfirmationLine) receiving.Confirmation {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Quantity)
	}
	return receiving.Confirmation{Reference: ref, Vendor: entity.DefaultVendorName, QuantityTotal: &total, Lines: lines}
}

func TestProcess_AppliesStockAndCompletes(t *testing.T) {
	e := newEnv(t, nil)
	pr := e.pending(t, map[int64]int64{e.mint.ID: 10, e.berry.ID: 5})

	res, err := e.processor.Process(context.Background(), confirmation(pr.Reference,
		receiving.ConfirmationLine{SKU: "ICYMINT", Quantity: qty(10)},
		receiving.ConfirmationLine{SKU: "BERRYB", Quantity: qty(5)},
	))
	require.NoError(t, err)
	assert.Equal(t, receiving.OutcomeProcessed, res.Outcome)
	assert.Equal(t, pr.ID, res.PurchaseRequestID)
	assert.Equal(t, int64(15), res.UnitsReceived)

	assert.Equal(t, int64(10), e.store.Quantity(e.wh.ID, e.mint.ID))
	assert.Equal(t, int64(5), e.store.Quantity(e.wh.ID, e.berry.ID))
	assert.Equal(t, entity.StatusCompleted, e.store.Status(pr.ID))
	assert.Contains(t, e.store.Transactions(), "serializable:commit")
}

func TestProcess_DuplicateIsSkipped(t *testing.T) {
	e := newEnv(t, nil)
	pr := e.pending(t, map[int64]int64{e.mint.ID: 10})
	c := confirmation(pr.Reference, receiving.ConfirmationLine{SKU: "ICYMINT", Quantity: qty(10)})

	first, err := e.processor.Process(context.Background(), c)
	require.NoError(t, err)
	assert.False(t, first.Skipped())

	second, err := e.processor.Process(context.Background(), c)
	require.NoError(t, err)
	assert.True(t, second.Skipped())
	assert.Zero(t, second.UnitsReceived)

	assert.Equal(t, int64(10), e.store.Quantity(e.wh.ID, e.mint.ID), "el stock se aplica una sola vez")
}

func TestProcess_ConcurrentDeliveriesApplyOnce(t *testing.T) {
	e := newEnv(t, nil)
	pr := e.pending(t, map[int64]int64{e.mint.ID: 10})
	c := confirmation(pr.Reference, receiving.ConfirmationLine{SKU: "ICYMINT", Quantity: qty(10)})

	const deliveries = 8
	var wg sync.WaitGroup
	results := make([]*receiving.Result, deliveries)
	errs := make([]error, deliveries)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = e.processor.Process(context.Background(), c)
		}(i)
	}
	wg.Wait()

	processed := 0
	for i := range results {
		require.NoError(t, errs[i])
		if !results[i].Skipped() {
			processed++
		}
	}
	assert.Equal(t, 1, processed)
	assert.Equal(t, int64(10), e.store.Quantity(e.wh.ID, e.mint.ID))
}

func TestProcess_DraftIsInvalidState(t *testing.T) {
	e := newEnv(t, nil)
	pr := e.draft(t, map[int64]int64{e.mint.ID: 10})

	_, err := e.processor.Process(context.Background(), confirmation(pr.Reference,
		receiving.ConfirmationLine{SKU: "ICYMINT", Quantity: qty(10)}))
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Zero(t, e.store.Quantity(e.wh.ID, e.mint.ID))
	assert.Equal(t, entity.StatusDraft, e.store.Status(pr.ID))
}

func TestProcess_UnknownSKUIsAllOrNothing(t *testing.T) {
	e := newEnv(t, nil)
	pr := e.pending(t, map[int64]int64{e.mint.ID: 10, e.berry.ID: 5})

	_, err := e.processor.Process(context.Background(), confirmation(pr.Reference,
		receiving.ConfirmationLine{SKU: "ICYMINT", Quantity: qty(10)},
		receiving.ConfirmationLine{SKU: "NOPE", Quantity: qty(5)},
	))
	require.ErrorIs(t, err, domain.ErrValidation)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "details[1].sku_barcode", ve.Field)
	assert.Contains(t, ve.Message, "NOPE")

	assert.Zero(t, e.store.StockRows(), "la primera línea no debe quedar aplicada")
	assert.Equal(t, entity.StatusPending, e.store.Status(pr.ID))
}

func TestProcess_Validation(t *testing.T) {
	e := newEnv(t, nil)
	pr := e.pending(t, map[int64]int64{e.mint.ID: 10})
	wrongTotal := qty(11)
	half := decimal.RequireFromString("2.5")

	cases := []struct {
		name  string
		c     receiving.Confirmation
		field string
	}{
		{"sin referencia", receiving.Confirmation{Lines: []receiving.ConfirmationLine{{SKU: "ICYMINT", Quantity: qty(1)}}}, "reference"},
		{"sin líneas", receiving.Confirmation{Reference: pr.Reference}, "details"},
		{"qty_total no cuadra", receiving.Confirmation{Reference: pr.Reference, QuantityTotal: &wrongTotal,
			Lines: []receiving.ConfirmationLine{{SKU: "ICYMINT", Quantity: qty(10)}}}, "qty_total"},
		{"sku vacío", confirmation(pr.Reference, receiving.ConfirmationLine{Quantity: qty(10)}), "details[0].sku_barcode"},
		{"cantidad fraccionaria", confirmation(pr.Reference, receiving.ConfirmationLine{SKU: "ICYMINT", Quantity: half}), "details[0].qty"},
		{"cantidad cero", confirmation(pr.Reference, receiving.ConfirmationLine{SKU: "ICYMINT", Quantity: qty(0)}), "details[0].qty"},
		{"proveedor distinto", receiving.Confirmation{Reference: pr.Reference, Vendor: "OTRO",
			Lines: []receiving.ConfirmationLine{{SKU: "ICYMINT", Quantity: qty(10)}}}, "vendor"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.processor.Process(context.Background(), tc.c)
			require.ErrorIs(t, err, domain.ErrValidation)
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
		})
	}
	assert.Equal(t, entity.StatusPending, e.store.Status(pr.ID))
	assert.Zero(t, e.store.StockRows())
}

func TestProcess_UnknownReference(t *testing.T) {
	e := newEnv(t, nil)
	_, err := e.processor.Process(context.Background(), confirmation("PR09999",
		receiving.ConfirmationLine{SKU: "ICYMINT", Quantity: qty(1)}))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProcess_DeletedReferenceIsNotFound(t *testing.T) {
	e := newEnv(t, nil)
	pr := e.draft(t, map[int64]int64{e.mint.ID: 1})
	require.NoError(t, e.requests.Delete(context.Background(), pr.ID))

	_, err := e.processor.Process(context.Background(), confirmation(pr.Reference,
		receiving.ConfirmationLine{SKU: "ICYMINT", Quantity: qty(1)}))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type countingLocker struct {
	mu       sync.Mutex
	locked   []string
	released int
	err      error
}

func (l *countingLocker) Lock(_ context.Context, reference string) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.locked = append(l.locked, reference)
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.released++
		return nil
	}, nil
}

func TestProcess_UsesReferenceLocker(t *testing.T) {
	locker := &countingLocker{}
	e := newEnv(t, locker)
	pr := e.pending(t, map[int64]int64{e.mint.ID: 2})

	_, err := e.processor.Process(context.Background(), confirmation(pr.Reference,
		receiving.ConfirmationLine{SKU: "ICYMINT", Quantity: qty(2)}))
	require.NoError(t, err)
	assert.Equal(t, []string{pr.Reference}, locker.locked)
	assert.Equal(t, 1, locker.released)
}

func TestProcess_LockNotObtainedIsConcurrency(t *testing.T) {
	locker := &countingLocker{err: domain.ErrConcurrency}
	e := newEnv(t, locker)
	pr := e.pending(t, map[int64]int64{e.mint.ID: 2})

	_, err := e.processor.Process(context.Background(), confirmation(pr.Reference,
		receiving.ConfirmationLine{SKU: "ICYMINT", Quantity: qty(2)}))
	assert.ErrorIs(t, err, domain.ErrConcurrency)
	assert.Equal(t, entity.StatusPending, e.store.Status(pr.ID))
}

func TestFromRequest_Envelope(t *testing.T) {
	var req dto.ReceiveStockRequest
	body := `{"vendor":"PT FOOM LAB GLOBAL","data":{"reference":" PR00001 ","qty_total":"15",
		"details":[{"product_name":"Icy Mint","sku_barcode":"ICYMINT","qty":10},{"sku_barcode":"BERRYB","qty":"5"}]}}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	c := receiving.FromRequest(req)
	assert.Equal(t, "PR00001", c.Reference)
	assert.Equal(t, "PT FOOM LAB GLOBAL", c.Vendor)
	require.NotNil(t, c.QuantityTotal)
	assert.True(t, c.QuantityTotal.Equal(qty(15)))
	require.Len(t, c.Lines, 2)
	assert.Equal(t, "BERRYB", c.Lines[1].SKU)
	assert.True(t, c.Lines[1].Quantity.Equal(qty(5)))
}

func TestFromRequest_Flat(t *testing.T) {
	var req dto.ReceiveStockRequest
	require.NoError(t, json.Unmarshal([]byte(`{"reference":"PR00002","details":[{"sku_barcode":"TROP","qty":1}]}`), &req))

	c := receiving.FromRequest(req)
	assert.Equal(t, "PR00002", c.Reference)
	assert.Nil(t, c.QuantityTotal)
	assert.Empty(t, c.Vendor)
}
