package entity

import "time"

// Warehouse representa una bodega destino de las solicitudes de compra.
type Warehouse struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
