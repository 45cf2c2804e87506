package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/replenishment-api/internal/domain/entity"
	"github.com/jhoicas/replenishment-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// EnsureRow crea la fila (bodega, producto) con cantidad 0; si ya existe no hace nada.
func (r *StockRepo) EnsureRow(ctx context.Context, warehouseID, productID int64) error {
	query := `
		INSERT INTO stocks (warehouse_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, 0, now(), now())
		ON CONFLICT (warehouse_id, product_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, warehouseID, productID); err != nil {
		return fmt.Errorf("ensure stock row: %w", err)
	}
	return nil
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, warehouseID, productID int64) (*entity.Stock, error) {
	query := `
		SELECT id, warehouse_id, product_id, quantity, created_at, updated_at
		FROM stocks WHERE warehouse_id = $1 AND product_id = $2
		FOR UPDATE`
	var s entity.Stock
	err := r.q.QueryRow(ctx, query, warehouseID, productID).Scan(
		&s.ID, &s.WarehouseID, &s.ProductID, &s.Quantity, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// UpdateQuantity persiste la nueva cantidad de una fila ya bloqueada.
func (r *StockRepo) UpdateQuantity(ctx context.Context, stock *entity.Stock) error {
	query := `UPDATE stocks SET quantity = $2, updated_at = $3 WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, stock.ID, stock.Quantity, stock.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update stock: fila %d no encontrada", stock.ID)
	}
	return nil
}

// ListDetailed lista el stock con nombres de producto y bodega, ordenado por (warehouse_id, product_id).
func (r *StockRepo) ListDetailed(ctx context.Context) ([]*entity.StockDetail, error) {
	query := `
		SELECT s.warehouse_id, w.name, s.product_id, p.name, p.sku, s.quantity
		FROM stocks s
		JOIN warehouses w ON w.id = s.warehouse_id
		JOIN products p ON p.id = s.product_id
		ORDER BY s.warehouse_id ASC, s.product_id ASC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockDetail
	for rows.Next() {
		var d entity.StockDetail
		if err := rows.Scan(&d.WarehouseID, &d.WarehouseName, &d.ProductID, &d.ProductName, &d.ProductSKU, &d.Quantity); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}
