package ports

import "context"

// HubPurchaseRequest cuerpo que se envía al hub de fulfillment cuando una solicitud pasa a PENDING.
type HubPurchaseRequest struct {
	Vendor        string          `json:"vendor"`
	Reference     string          `json:"reference"`
	QuantityTotal int64           `json:"qty_total"`
	Details       []HubLineDetail `json:"details"`
}

// HubLineDetail una línea del pedido enviado al hub.
type HubLineDetail struct {
	ProductName string `json:"product_name"`
	SKU         string `json:"sku_barcode"`
	Quantity    int64  `json:"qty"`
}

// HubAck respuesta del hub. Body conserva el JSON tal como llegó.
type HubAck struct {
	StatusCode int
	Body       []byte
}

// HubNotifier puerto de salida hacia el hub de fulfillment externo.
// La implementación maneja sus propios timeouts y reintentos; un error aquí
// nunca revierte el estado ya confirmado de la solicitud.
type HubNotifier interface {
	NotifyPurchaseRequest(ctx context.Context, req HubPurchaseRequest) (*HubAck, error)
}
