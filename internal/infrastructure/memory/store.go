// Package memory implementa los repositorios y el TxRunner en memoria.
// Cada transacción trabaja sobre una copia del estado que solo se publica en Commit;
// un mutex global serializa las transacciones, lo que equivale a bloquear todas las filas.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/replenishment-api/internal/application/ports"
	"github.com/jhoicas/replenishment-api/internal/domain/entity"
	"github.com/jhoicas/replenishment-api/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

type stockKey struct{ warehouseID, productID int64 }

type state struct {
	warehouses map[int64]entity.Warehouse
	products   map[int64]entity.Product
	stocks     map[stockKey]entity.Stock
	requests   map[int64]entity.PurchaseRequest
	items      map[int64][]entity.PurchaseRequestItem

	nextWarehouse, nextProduct, nextStock, nextRequest, nextItem int64
}

func newState() *state {
	return &state{
		warehouses: map[int64]entity.Warehouse{},
		products:   map[int64]entity.Product{},
		stocks:     map[stockKey]entity.Stock{},
		requests:   map[int64]entity.PurchaseRequest{},
		items:      map[int64][]entity.PurchaseRequestItem{},
	}
}

func (s *state) clone() *state {
	c := *s
	c.warehouses = make(map[int64]entity.Warehouse, len(s.warehouses))
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	c.products = make(map[int64]entity.Product, len(s.products))
	for k, v := range s.products {
		c.products[k] = v
	}
	c.stocks = make(map[stockKey]entity.Stock, len(s.stocks))
	for k, v := range s.stocks {
		c.stocks[k] = v
	}
	c.requests = make(map[int64]entity.PurchaseRequest, len(s.requests))
	for k, v := range s.requests {
		v.Items = nil
		c.requests[k] = v
	}
	c.items = make(map[int64][]entity.PurchaseRequestItem, len(s.items))
	for k, v := range s.items {
		c.items[k] = append([]entity.PurchaseRequestItem(nil), v...)
	}
	return &c
}

// Store base de datos en memoria. El valor cero no es usable; usar NewStore.
type Store struct {
	mu    sync.Mutex
	data  *state
	now   func() time.Time
	txLog []string
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{data: newState(), now: time.Now}
}

// Run ejecuta fn sobre una copia del estado y la publica si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	return s.run(ctx, "read_committed", fn)
}

// RunSerializable igual que Run; el mutex global ya serializa todas las transacciones.
func (s *Store) RunSerializable(ctx context.Context, fn func(repos repository.Repos) error) error {
	return s.run(ctx, "serializable", fn)
}

func (s *Store) run(ctx context.Context, isolation string, fn func(repos repository.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.data.clone()
	if err := fn(s.repos(func() (*state, func()) { return work, func() {} })); err != nil {
		s.txLog = append(s.txLog, isolation+":rollback")
		return err
	}
	s.data = work
	s.txLog = append(s.txLog, isolation+":commit")
	return nil
}

// Transactions devuelve el historial de transacciones ("<aislamiento>:commit|rollback").
func (s *Store) Transactions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.txLog...)
}

// Repos devuelve repositorios fuera de transacción (cada llamada toma el mutex).
func (s *Store) Repos() repository.Repos {
	return s.repos(func() (*state, func()) {
		s.mu.Lock()
		return s.data, s.mu.Unlock
	})
}

func (s *Store) repos(acquire func() (*state, func())) repository.Repos {
	return repository.Repos{
		PurchaseRequests: &purchaseRequestRepo{acquire: acquire},
		Stock:            &stockRepo{acquire: acquire, now: s.now},
		Products:         &productRepo{acquire: acquire},
		Warehouses:       &warehouseRepo{acquire: acquire},
	}
}

// AddWarehouse inserta una bodega (datos de prueba o seed).
func (s *Store) AddWarehouse(name string) *entity.Warehouse {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.nextWarehouse++
	now := s.now()
	w := entity.Warehouse{ID: s.data.nextWarehouse, Name: name, CreatedAt: now, UpdatedAt: now}
	s.data.warehouses[w.ID] = w
	return &w
}

// AddProduct inserta un producto.
func (s *Store) AddProduct(name, sku string) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.nextProduct++
	now := s.now()
	p := entity.Product{ID: s.data.nextProduct, Name: name, SKU: sku, CreatedAt: now, UpdatedAt: now}
	s.data.products[p.ID] = p
	return &p
}

// Quantity devuelve el stock de (bodega, producto); 0 si no hay fila.
func (s *Store) Quantity(warehouseID, productID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.stocks[stockKey{warehouseID, productID}].Quantity
}

// StockRows devuelve cuántas filas de stock existen.
func (s *Store) StockRows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.stocks)
}

// Status devuelve el estado persistido de la solicitud ("" si no existe).
func (s *Store) Status(id int64) entity.PurchaseRequestStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.requests[id].Status
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
