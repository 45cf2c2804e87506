package dto

import "github.com/shopspring/decimal"

// ReceiveStockLine línea de la confirmación del hub. qty llega como número o string numérico.
type ReceiveStockLine struct {
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku_barcode"`
	Qty         decimal.Decimal `json:"qty"`
}

// ReceiveStockData sobre interno que algunos envíos del hub usan ({"data": {...}}).
type ReceiveStockData struct {
	Vendor    string             `json:"vendor"`
	Reference string             `json:"reference"`
	QtyTotal  *decimal.Decimal   `json:"qty_total"`
	Details   []ReceiveStockLine `json:"details"`
}

// ReceiveStockRequest body para POST /api/receive-stock (plano o con sobre "data").
type ReceiveStockRequest struct {
	Vendor    string             `json:"vendor"`
	Reference string             `json:"reference"`
	QtyTotal  *decimal.Decimal   `json:"qty_total"`
	Details   []ReceiveStockLine `json:"details"`
	Data      *ReceiveStockData  `json:"data"`
}

// Normalize desenvuelve el sobre "data" si existe. El vendor del nivel superior tiene prioridad.
func (r ReceiveStockRequest) Normalize() ReceiveStockRequest {
	if r.Data == nil {
		return r
	}
	vendor := r.Vendor
	if vendor == "" {
		vendor = r.Data.Vendor
	}
	return ReceiveStockRequest{
		Vendor:    vendor,
		Reference: r.Data.Reference,
		QtyTotal:  r.Data.QtyTotal,
		Details:   r.Data.Details,
	}
}

// ReceiveStockResponse respuesta 202 al hub.
type ReceiveStockResponse struct {
	APIID   string `json:"API_ID"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}
