package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/replenishment-api/internal/domain"
	"github.com/jhoicas/replenishment-api/internal/domain/entity"
)

type warehouseRepo struct {
	acquire func() (*state, func())
}

func (r *warehouseRepo) GetByID(_ context.Context, id int64) (*entity.Warehouse, error) {
	st, done := r.acquire()
	defer done()
	w, ok := st.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *warehouseRepo) List(_ context.Context) ([]*entity.Warehouse, error) {
	st, done := r.acquire()
	defer done()
	var out []*entity.Warehouse
	for _, id := range sortedKeys(st.warehouses) {
		w := st.warehouses[id]
		out = append(out, &w)
	}
	return out, nil
}

type productRepo struct {
	acquire func() (*state, func())
}

func (r *productRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	st, done := r.acquire()
	defer done()
	p, ok := st.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	st, done := r.acquire()
	defer done()
	for _, id := range sortedKeys(st.products) {
		if p := st.products[id]; p.SKU == sku {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *productRepo) List(_ context.Context) ([]*entity.Product, error) {
	st, done := r.acquire()
	defer done()
	var out []*entity.Product
	for _, id := range sortedKeys(st.products) {
		p := st.products[id]
		out = append(out, &p)
	}
	return out, nil
}

type stockRepo struct {
	acquire func() (*state, func())
	now     func() time.Time
}

func (r *stockRepo) EnsureRow(_ context.Context, warehouseID, productID int64) error {
	st, done := r.acquire()
	defer done()
	key := stockKey{warehouseID, productID}
	if _, ok := st.stocks[key]; ok {
		return nil
	}
	if _, ok := st.warehouses[warehouseID]; !ok {
		return fmt.Errorf("stock: bodega %d no existe", warehouseID)
	}
	if _, ok := st.products[productID]; !ok {
		return fmt.Errorf("stock: producto %d no existe", productID)
	}
	st.nextStock++
	now := r.now()
	st.stocks[key] = entity.Stock{
		ID: st.nextStock, WarehouseID: warehouseID, ProductID: productID,
		CreatedAt: now, UpdatedAt: now,
	}
	return nil
}

func (r *stockRepo) GetForUpdate(_ context.Context, warehouseID, productID int64) (*entity.Stock, error) {
	st, done := r.acquire()
	defer done()
	s, ok := st.stocks[stockKey{warehouseID, productID}]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *stockRepo) UpdateQuantity(_ context.Context, s *entity.Stock) error {
	st, done := r.acquire()
	defer done()
	key := stockKey{s.WarehouseID, s.ProductID}
	cur, ok := st.stocks[key]
	if !ok || cur.ID != s.ID {
		return fmt.Errorf("%w: stock %d", domain.ErrNotFound, s.ID)
	}
	if s.Quantity < 0 {
		return fmt.Errorf("stock: cantidad negativa")
	}
	cur.Quantity = s.Quantity
	cur.UpdatedAt = s.UpdatedAt
	st.stocks[key] = cur
	return nil
}

func (r *stockRepo) ListDetailed(_ context.Context) ([]*entity.StockDetail, error) {
	st, done := r.acquire()
	defer done()
	out := make([]*entity.StockDetail, 0, len(st.stocks))
	for _, s := range st.stocks {
		out = append(out, &entity.StockDetail{
			WarehouseID:   s.WarehouseID,
			WarehouseName: st.warehouses[s.WarehouseID].Name,
			ProductID:     s.ProductID,
			ProductName:   st.products[s.ProductID].Name,
			ProductSKU:    st.products[s.ProductID].SKU,
			Quantity:      s.Quantity,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WarehouseID != out[j].WarehouseID {
			return out[i].WarehouseID < out[j].WarehouseID
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out, nil
}

type purchaseRequestRepo struct {
	acquire func() (*state, func())
}

func (r *purchaseRequestRepo) Create(_ context.Context, pr *entity.PurchaseRequest) error {
	st, done := r.acquire()
	defer done()
	if referenceTaken(st, pr.Reference, 0) {
		return fmt.Errorf("%w: referencia %s duplicada", domain.ErrConcurrency, pr.Reference)
	}
	if _, ok := st.warehouses[pr.WarehouseID]; !ok {
		return fmt.Errorf("purchase request: bodega %d no existe", pr.WarehouseID)
	}
	st.nextRequest++
	pr.ID = st.nextRequest
	row := *pr
	row.Items = nil
	row.WarehouseName = ""
	st.requests[pr.ID] = row
	return nil
}

func (r *purchaseRequestRepo) Update(_ context.Context, pr *entity.PurchaseRequest) error {
	st, done := r.acquire()
	defer done()
	cur, ok := st.requests[pr.ID]
	if !ok {
		return fmt.Errorf("%w: solicitud de compra %d", domain.ErrNotFound, pr.ID)
	}
	if referenceTaken(st, pr.Reference, pr.ID) {
		return fmt.Errorf("%w: referencia %s duplicada", domain.ErrConcurrency, pr.Reference)
	}
	cur.Reference = pr.Reference
	cur.WarehouseID = pr.WarehouseID
	cur.Status = pr.Status
	cur.UpdatedAt = pr.UpdatedAt
	st.requests[pr.ID] = cur
	return nil
}

func (r *purchaseRequestRepo) GetForUpdate(_ context.Context, id int64) (*entity.PurchaseRequest, error) {
	st, done := r.acquire()
	defer done()
	pr, ok := st.requests[id]
	if !ok {
		return nil, nil
	}
	return &pr, nil
}

func (r *purchaseRequestRepo) GetByReferenceForUpdate(_ context.Context, reference string) (*entity.PurchaseRequest, error) {
	st, done := r.acquire()
	defer done()
	for _, id := range sortedKeys(st.requests) {
		if pr := st.requests[id]; pr.Reference == reference {
			return &pr, nil
		}
	}
	return nil, nil
}

func (r *purchaseRequestRepo) ReplaceItems(_ context.Context, purchaseRequestID int64, items []entity.PurchaseRequestItem) error {
	st, done := r.acquire()
	defer done()
	if _, ok := st.requests[purchaseRequestID]; !ok {
		return fmt.Errorf("%w: solicitud de compra %d", domain.ErrNotFound, purchaseRequestID)
	}
	stored := make([]entity.PurchaseRequestItem, 0, len(items))
	for i := range items {
		if items[i].Quantity <= 0 {
			return fmt.Errorf("purchase request item: cantidad debe ser positiva")
		}
		st.nextItem++
		items[i].ID = st.nextItem
		items[i].PurchaseRequestID = purchaseRequestID
		row := items[i]
		row.ProductName, row.ProductSKU = "", ""
		stored = append(stored, row)
	}
	st.items[purchaseRequestID] = stored
	return nil
}

func (r *purchaseRequestRepo) Delete(_ context.Context, id int64) error {
	st, done := r.acquire()
	defer done()
	if _, ok := st.requests[id]; !ok {
		return fmt.Errorf("%w: solicitud de compra %d", domain.ErrNotFound, id)
	}
	delete(st.items, id)
	delete(st.requests, id)
	return nil
}

func (r *purchaseRequestRepo) GetDetail(_ context.Context, id int64) (*entity.PurchaseRequest, error) {
	st, done := r.acquire()
	defer done()
	pr, ok := st.requests[id]
	if !ok {
		return nil, nil
	}
	pr.WarehouseName = st.warehouses[pr.WarehouseID].Name
	pr.Items = make([]entity.PurchaseRequestItem, 0, len(st.items[id]))
	for _, it := range st.items[id] {
		p := st.products[it.ProductID]
		it.ProductName, it.ProductSKU = p.Name, p.SKU
		pr.Items = append(pr.Items, it)
	}
	return &pr, nil
}

func (r *purchaseRequestRepo) List(_ context.Context) ([]*entity.PurchaseRequestSummary, error) {
	st, done := r.acquire()
	defer done()
	var out []*entity.PurchaseRequestSummary
	for _, id := range sortedKeys(st.requests) {
		pr := st.requests[id]
		var total int64
		for _, it := range st.items[id] {
			total += it.Quantity
		}
		out = append(out, &entity.PurchaseRequestSummary{
			ID:            pr.ID,
			Reference:     pr.Reference,
			VendorName:    pr.VendorName,
			Status:        pr.Status,
			WarehouseID:   pr.WarehouseID,
			WarehouseName: st.warehouses[pr.WarehouseID].Name,
			QuantityTotal: total,
			CreatedAt:     pr.CreatedAt,
		})
	}
	return out, nil
}

func referenceTaken(st *state, reference string, exceptID int64) bool {
	for id, pr := range st.requests {
		if id != exceptID && pr.Reference == reference {
			return true
		}
	}
	return false
}
