package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/replenishment-api/internal/application/dto"
	"github.com/jhoicas/replenishment-api/internal/domain"
	"github.com/jhoicas/replenishment-api/internal/domain/entity"
	"github.com/jhoicas/replenishment-api/internal/domain/repository"
)

// Ledger mantiene la cantidad por (bodega, producto).
// IncrementStock siempre recibe el repositorio de la transacción del llamador,
// de modo que el stock y el cambio de estado de la solicitud se confirman o revierten juntos.
type Ledger struct {
	stockRepo repository.StockRepository
	now       func() time.Time
}

// NewLedger construye el ledger. stockRepo (pool) se usa solo para ListStock.
func NewLedger(stockRepo repository.StockRepository) *Ledger {
	return &Ledger{stockRepo: stockRepo, now: time.Now}
}

// IncrementStock crea la fila en 0 si no existe, la bloquea (SELECT FOR UPDATE) y suma quantity.
func (l *Ledger) IncrementStock(
	ctx context.Context,
	txStock repository.StockRepository,
	warehouseID, productID, quantity int64,
) (*entity.Stock, error) {
	if quantity <= 0 {
		return nil, domain.Invalid("quantity", "la cantidad debe ser un entero positivo")
	}
	if err := txStock.EnsureRow(ctx, warehouseID, productID); err != nil {
		return nil, err
	}
	stock, err := txStock.GetForUpdate(ctx, warehouseID, productID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, fmt.Errorf("stock (%d, %d) no encontrado tras crearlo", warehouseID, productID)
	}
	stock.Quantity += quantity
	stock.UpdatedAt = l.now()
	if err := txStock.UpdateQuantity(ctx, stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// ListStock devuelve todas las filas ordenadas por (warehouse_id, product_id).
func (l *Ledger) ListStock(ctx context.Context) ([]dto.StockResponse, error) {
	rows, err := l.stockRepo.ListDetailed(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.StockResponse{
			WarehouseID:   r.WarehouseID,
			WarehouseName: r.WarehouseName,
			ProductID:     r.ProductID,
			ProductName:   r.ProductName,
			SKU:           r.ProductSKU,
			Quantity:      r.Quantity,
		})
	}
	return out, nil
}
