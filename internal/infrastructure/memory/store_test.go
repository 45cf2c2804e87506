package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/replenishment-api/internal/domain"
	"github.com/jhoicas/replenishment-api/internal/domain/entity"
	"github.com/jhoicas/replenishment-api/internal/domain/repository"
)

func TestRun_RollbackDiscardsWrites(t *testing.T) {
	s := NewStore()
	wh := s.AddWarehouse("Central Warehouse")
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Run(ctx, func(repos repository.Repos) error {
		pr := &entity.PurchaseRequest{Reference: "PR00001", WarehouseID: wh.ID, Status: entity.StatusDraft, CreatedAt: time.Now()}
		require.NoError(t, repos.PurchaseRequests.Create(ctx, pr))
		return boom
	})
	require.ErrorIs(t, err, boom)

	list, err := s.Repos().PurchaseRequests.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, []string{"read_committed:rollback"}, s.Transactions())
}

func TestRun_IDsNotReusedAfterCommit(t *testing.T) {
	s := NewStore()
	wh := s.AddWarehouse("Central Warehouse")
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 2; i++ {
		require.NoError(t, s.Run(ctx, func(repos repository.Repos) error {
			pr := &entity.PurchaseRequest{Reference: entity.NewTemporaryReference(time.Now()), WarehouseID: wh.ID}
			if err := repos.PurchaseRequests.Create(ctx, pr); err != nil {
				return err
			}
			ids = append(ids, pr.ID)
			return nil
		}))
	}
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestCreate_DuplicateReference(t *testing.T) {
	s := NewStore()
	wh := s.AddWarehouse("Central Warehouse")
	ctx := context.Background()
	repo := s.Repos().PurchaseRequests

	require.NoError(t, repo.Create(ctx, &entity.PurchaseRequest{Reference: "PR00001", WarehouseID: wh.ID}))
	err := repo.Create(ctx, &entity.PurchaseRequest{Reference: "PR00001", WarehouseID: wh.ID})
	assert.ErrorIs(t, err, domain.ErrConcurrency)
}

func TestRun_CanceledContext(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := s.RunSerializable(ctx, func(repository.Repos) error { called = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
