package stock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/replenishment-api/internal/application/stock"
	"github.com/jhoicas/replenishment-api/internal/domain"
	"github.com/jhoicas/replenishment-api/internal/domain/repository"
	"github.com/jhoicas/replenishment-api/internal/infrastructure/memory"
)

func TestIncrementStock_CreatesAndAccumulates(t *testing.T) {
	store := memory.NewStore()
	wh := store.AddWarehouse("Central Warehouse")
	p := store.AddProduct("Icy Mint", "ICYMINT")
	ledger := stock.NewLedger(store.Repos().Stock)
	ctx := context.Background()

	for _, qty := range []int64{5, 7} {
		err := store.Run(ctx, func(repos repository.Repos) error {
			_, err := ledger.IncrementStock(ctx, repos.Stock, wh.ID, p.ID, qty)
			return err
		})
		require.NoError(t, err)
	}

	assert.Equal(t, int64(12), store.Quantity(wh.ID, p.ID))
	assert.Equal(t, 1, store.StockRows(), "una sola fila por (bodega, producto)")
}

func TestIncrementStock_RejectsNonPositive(t *testing.T) {
	store := memory.NewStore()
	wh := store.AddWarehouse("Central Warehouse")
	p := store.AddProduct("Icy Mint", "ICYMINT")
	ledger := stock.NewLedger(store.Repos().Stock)
	ctx := context.Background()

	for _, qty := range []int64{0, -4} {
		err := store.Run(ctx, func(repos repository.Repos) error {
			_, err := ledger.IncrementStock(ctx, repos.Stock, wh.ID, p.ID, qty)
			return err
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	assert.Zero(t, store.StockRows())
}

func TestIncrementStock_RollbackWithCaller(t *testing.T) {
	store := memory.NewStore()
	wh := store.AddWarehouse("Central Warehouse")
	p := store.AddProduct("Icy Mint", "ICYMINT")
	ledger := stock.NewLedger(store.Repos().Stock)
	ctx := context.Background()

	err := store.Run(ctx, func(repos repository.Repos) error {
		if _, err := ledger.IncrementStock(ctx, repos.Stock, wh.ID, p.ID, 3); err != nil {
			return err
		}
		return domain.ErrInvalidState
	})
	require.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Zero(t, store.Quantity(wh.ID, p.ID))
	assert.Zero(t, store.StockRows())
}

func TestListStock_Ordered(t *testing.T) {
	store := memory.NewStore()
	central := store.AddWarehouse("Central Warehouse")
	east := store.AddWarehouse("East Warehouse")
	mint := store.AddProduct("Icy Mint", "ICYMINT")
	berry := store.AddProduct("Berry Blast", "BERRYB")
	ledger := stock.NewLedger(store.Repos().Stock)
	ctx := context.Background()

	require.NoError(t, store.Run(ctx, func(repos repository.Repos) error {
		for _, row := range [][3]int64{{east.ID, mint.ID, 1}, {central.ID, berry.ID, 2}, {central.ID, mint.ID, 3}} {
			if _, err := ledger.IncrementStock(ctx, repos.Stock, row[0], row[1], row[2]); err != nil {
				return err
			}
		}
		return nil
	}))

	rows, err := ledger.ListStock(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, [2]int64{central.ID, mint.ID}, [2]int64{rows[0].WarehouseID, rows[0].ProductID})
	assert.Equal(t, [2]int64{central.ID, berry.ID}, [2]int64{rows[1].WarehouseID, rows[1].ProductID})
	assert.Equal(t, "East Warehouse", rows[2].WarehouseName)
	assert.Equal(t, "ICYMINT", rows[2].SKU)
}
