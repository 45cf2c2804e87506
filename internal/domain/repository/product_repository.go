package repository

import (
	"context"

	"github.com/jhoicas/replenishment-api/internal/domain/entity"
)

// ProductRepository puerto de lectura del catálogo de productos.
// GetByID y GetBySKU devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	List(ctx context.Context) ([]*entity.Product, error)
}
