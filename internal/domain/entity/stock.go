package entity

import "time"

// Stock representa la cantidad disponible de un producto en una bodega.
// Existe a lo sumo una fila por (WarehouseID, ProductID) y Quantity nunca es negativa.
type Stock struct {
	ID          int64
	WarehouseID int64
	ProductID   int64
	Quantity    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StockDetail fila del ledger con los nombres de producto y bodega para reportes.
type StockDetail struct {
	WarehouseID   int64
	WarehouseName string
	ProductID     int64
	ProductName   string
	ProductSKU    string
	Quantity      int64
}
