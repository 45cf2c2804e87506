package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/replenishment-api/internal/domain"
	"github.com/jhoicas/replenishment-api/internal/domain/entity"
	"github.com/jhoicas/replenishment-api/internal/domain/repository"
)

var _ repository.PurchaseRequestRepository = (*PurchaseRequestRepo)(nil)

const purchaseRequestColumns = `id, reference, warehouse_id, status, vendor_name, created_at, updated_at`

// PurchaseRequestRepo implementación de PurchaseRequestRepository (usable con pool o tx).
type PurchaseRequestRepo struct {
	q Querier
}

// NewPurchaseRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRequestRepository(q Querier) *PurchaseRequestRepo {
	return &PurchaseRequestRepo{q: q}
}

// Create inserta la cabecera y llena el ID generado.
func (r *PurchaseRequestRepo) Create(ctx context.Context, pr *entity.PurchaseRequest) error {
	query := `
		INSERT INTO purchase_requests (reference, warehouse_id, status, vendor_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		pr.Reference, pr.WarehouseID, string(pr.Status), pr.VendorName, pr.CreatedAt, pr.UpdatedAt,
	).Scan(&pr.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: referencia %s duplicada", domain.ErrConcurrency, pr.Reference)
		}
		return fmt.Errorf("insert purchase request: %w", err)
	}
	return nil
}

// Update persiste referencia, bodega, estado y updated_at.
func (r *PurchaseRequestRepo) Update(ctx context.Context, pr *entity.PurchaseRequest) error {
	query := `
		UPDATE purchase_requests
		SET reference = $2, warehouse_id = $3, status = $4, updated_at = $5
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, pr.ID, pr.Reference, pr.WarehouseID, string(pr.Status), pr.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update purchase request: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: solicitud de compra %d", domain.ErrNotFound, pr.ID)
	}
	return nil
}

// GetForUpdate carga la cabecera con SELECT ... FOR UPDATE.
func (r *PurchaseRequestRepo) GetForUpdate(ctx context.Context, id int64) (*entity.PurchaseRequest, error) {
	query := `SELECT ` + purchaseRequestColumns + ` FROM purchase_requests WHERE id = $1 FOR UPDATE`
	return r.getHeader(ctx, query, id)
}

// GetByReferenceForUpdate carga la cabecera por referencia con SELECT ... FOR UPDATE.
func (r *PurchaseRequestRepo) GetByReferenceForUpdate(ctx context.Context, reference string) (*entity.PurchaseRequest, error) {
	query := `SELECT ` + purchaseRequestColumns + ` FROM purchase_requests WHERE reference = $1 FOR UPDATE`
	return r.getHeader(ctx, query, reference)
}

func (r *PurchaseRequestRepo) getHeader(ctx context.Context, query string, arg any) (*entity.PurchaseRequest, error) {
	var pr entity.PurchaseRequest
	var status string
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&pr.ID, &pr.Reference, &pr.WarehouseID, &status, &pr.VendorName, &pr.CreatedAt, &pr.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase request: %w", err)
	}
	pr.Status = entity.PurchaseRequestStatus(status)
	return &pr, nil
}

// ReplaceItems borra las líneas existentes e inserta las nuevas.
func (r *PurchaseRequestRepo) ReplaceItems(ctx context.Context, purchaseRequestID int64, items []entity.PurchaseRequestItem) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM purchase_request_items WHERE purchase_request_id = $1`, purchaseRequestID); err != nil {
		return fmt.Errorf("delete purchase request items: %w", err)
	}
	query := `
		INSERT INTO purchase_request_items (purchase_request_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	for i := range items {
		it := &items[i]
		it.PurchaseRequestID = purchaseRequestID
		if err := r.q.QueryRow(ctx, query,
			purchaseRequestID, it.ProductID, it.Quantity, it.CreatedAt, it.UpdatedAt,
		).Scan(&it.ID); err != nil {
			return fmt.Errorf("insert purchase request item: %w", err)
		}
	}
	return nil
}

// Delete borra las líneas y luego la cabecera.
func (r *PurchaseRequestRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM purchase_request_items WHERE purchase_request_id = $1`, id); err != nil {
		return fmt.Errorf("delete purchase request items: %w", err)
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM purchase_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete purchase request: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: solicitud de compra %d", domain.ErrNotFound, id)
	}
	return nil
}

// GetDetail carga cabecera + bodega y luego las líneas con su producto, en dos consultas explícitas.
func (r *PurchaseRequestRepo) GetDetail(ctx context.Context, id int64) (*entity.PurchaseRequest, error) {
	header := `
		SELECT pr.id, pr.reference, pr.warehouse_id, w.name, pr.status, pr.vendor_name, pr.created_at, pr.updated_at
		FROM purchase_requests pr
		JOIN warehouses w ON w.id = pr.warehouse_id
		WHERE pr.id = $1`
	var pr entity.PurchaseRequest
	var status string
	err := r.q.QueryRow(ctx, header, id).Scan(
		&pr.ID, &pr.Reference, &pr.WarehouseID, &pr.WarehouseName, &status, &pr.VendorName, &pr.CreatedAt, &pr.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase request detail: %w", err)
	}
	pr.Status = entity.PurchaseRequestStatus(status)

	items := `
		SELECT i.id, i.purchase_request_id, i.product_id, p.name, p.sku, i.quantity, i.created_at, i.updated_at
		FROM purchase_request_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.purchase_request_id = $1
		ORDER BY i.id ASC`
	rows, err := r.q.Query(ctx, items, id)
	if err != nil {
		return nil, fmt.Errorf("list purchase request items: %w", err)
	}
	defer rows.Close()
	pr.Items = make([]entity.PurchaseRequestItem, 0)
	for rows.Next() {
		var it entity.PurchaseRequestItem
		if err := rows.Scan(
			&it.ID, &it.PurchaseRequestID, &it.ProductID, &it.ProductName, &it.ProductSKU,
			&it.Quantity, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan purchase request item: %w", err)
		}
		pr.Items = append(pr.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &pr, nil
}

// List devuelve el resumen de todas las solicitudes con la suma de cantidades de sus líneas.
func (r *PurchaseRequestRepo) List(ctx context.Context) ([]*entity.PurchaseRequestSummary, error) {
	query := `
		SELECT pr.id, pr.reference, pr.vendor_name, pr.status, pr.warehouse_id, w.name,
		       COALESCE(SUM(i.quantity), 0) AS quantity_total, pr.created_at
		FROM purchase_requests pr
		JOIN warehouses w ON w.id = pr.warehouse_id
		LEFT JOIN purchase_request_items i ON i.purchase_request_id = pr.id
		GROUP BY pr.id, w.name
		ORDER BY pr.id ASC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list purchase requests: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseRequestSummary
	for rows.Next() {
		var s entity.PurchaseRequestSummary
		var status string
		if err := rows.Scan(
			&s.ID, &s.Reference, &s.VendorName, &status, &s.WarehouseID, &s.WarehouseName,
			&s.QuantityTotal, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan purchase request: %w", err)
		}
		s.Status = entity.PurchaseRequestStatus(status)
		list = append(list, &s)
	}
	return list, rows.Err()
}
