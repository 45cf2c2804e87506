package repository

import (
	"context"

	"github.com/jhoicas/replenishment-api/internal/domain/entity"
)

// PurchaseRequestRepository puerto de persistencia del agregado PurchaseRequest.
// Los métodos Get* devuelven (nil, nil) si la solicitud no existe.
type PurchaseRequestRepository interface {
	// Create inserta la cabecera y llena ID, CreatedAt y UpdatedAt.
	Create(ctx context.Context, pr *entity.PurchaseRequest) error
	// Update persiste referencia, bodega, estado y updated_at de la cabecera.
	Update(ctx context.Context, pr *entity.PurchaseRequest) error
	// GetForUpdate carga la cabecera (sin ítems) con bloqueo exclusivo de fila.
	GetForUpdate(ctx context.Context, id int64) (*entity.PurchaseRequest, error)
	// GetByReferenceForUpdate igual que GetForUpdate pero buscando por referencia.
	GetByReferenceForUpdate(ctx context.Context, reference string) (*entity.PurchaseRequest, error)
	// ReplaceItems borra todas las líneas de la solicitud e inserta las nuevas (llena sus IDs).
	ReplaceItems(ctx context.Context, purchaseRequestID int64, items []entity.PurchaseRequestItem) error
	// Delete borra las líneas y luego la cabecera.
	Delete(ctx context.Context, id int64) error
	// GetDetail hidrata la solicitud completa: ítems con nombre/SKU de producto y nombre de bodega.
	GetDetail(ctx context.Context, id int64) (*entity.PurchaseRequest, error)
	List(ctx context.Context) ([]*entity.PurchaseRequestSummary, error)
}

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	PurchaseRequests PurchaseRequestRepository
	Stock            StockRepository
	Products         ProductRepository
	Warehouses       WarehouseRepository
}
