package repository

import (
	"context"

	"github.com/jhoicas/replenishment-api/internal/domain/entity"
)

// WarehouseRepository puerto de lectura de bodegas. GetByID devuelve (nil, nil) si no existe.
type WarehouseRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Warehouse, error)
	List(ctx context.Context) ([]*entity.Warehouse, error)
}
