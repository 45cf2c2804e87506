package repository

import (
	"context"

	"github.com/jhoicas/replenishment-api/internal/domain/entity"
)

// StockRepository puerto del ledger de stock por bodega+producto.
// Las operaciones de escritura solo se usan dentro de transacciones.
type StockRepository interface {
	// EnsureRow crea la fila con cantidad 0 si no existe (sin error si ya existe).
	EnsureRow(ctx context.Context, warehouseID, productID int64) error
	// GetForUpdate obtiene la fila y la bloquea (SELECT FOR UPDATE). (nil, nil) si no existe.
	GetForUpdate(ctx context.Context, warehouseID, productID int64) (*entity.Stock, error)
	UpdateQuantity(ctx context.Context, stock *entity.Stock) error
	ListDetailed(ctx context.Context) ([]*entity.StockDetail, error)
}
