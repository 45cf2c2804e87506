package entity

import "time"

// Product representa un producto del catálogo. SKU es la clave de negocio inmutable
// que usa el hub de fulfillment para referirse al producto.
type Product struct {
	ID        int64
	Name      string
	SKU       string
	CreatedAt time.Time
	UpdatedAt time.Time
}
