package dto

import "time"

// PurchaseRequestItemInput línea de entrada para crear o reemplazar ítems.
type PurchaseRequestItemInput struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required,gt=0"`
}

// CreatePurchaseRequest body para POST /api/purchase/request.
type CreatePurchaseRequest struct {
	WarehouseID int64                      `json:"warehouseId" validate:"required,gt=0"`
	Items       []PurchaseRequestItemInput `json:"items" validate:"required,min=1,dive"`
}

// UpdatePurchaseRequest body para PUT /api/purchase/request/:id.
// Un campo nil significa "no enviado" (Status "" también); Items vacío pero no nil es un reemplazo por lista vacía.
type UpdatePurchaseRequest struct {
	WarehouseID *int64                     `json:"warehouseId" validate:"omitempty,gt=0"`
	Items       []PurchaseRequestItemInput `json:"items" validate:"omitempty,dive"`
	Status      *string                    `json:"status"`
}

// PurchaseRequestItemResponse línea hidratada con los datos del producto.
type PurchaseRequestItemResponse struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	SKU         string `json:"sku"`
	Quantity    int64  `json:"quantity"`
}

// PurchaseRequestResponse solicitud hidratada.
type PurchaseRequestResponse struct {
	ID            int64                         `json:"id"`
	Reference     string                        `json:"reference"`
	WarehouseID   int64                         `json:"warehouse_id"`
	WarehouseName string                        `json:"warehouse_name"`
	Status        string                        `json:"status"`
	Vendor        string                        `json:"vendor"`
	QuantityTotal int64                         `json:"quantity_total"`
	Items         []PurchaseRequestItemResponse `json:"items"`
	CreatedAt     time.Time                     `json:"created_at"`
	UpdatedAt     time.Time                     `json:"updated_at"`
}

// PurchaseRequestSummaryResponse fila del listado de solicitudes.
type PurchaseRequestSummaryResponse struct {
	ID            int64     `json:"id"`
	Reference     string    `json:"reference"`
	Vendor        string    `json:"vendor"`
	Status        string    `json:"status"`
	WarehouseID   int64     `json:"warehouse_id"`
	WarehouseName string    `json:"warehouse_name"`
	QuantityTotal int64     `json:"quantity_total"`
	CreatedAt     time.Time `json:"created_at"`
}

// HubNotice resultado de la notificación al hub tras pasar a PENDING.
// Error no vacío significa que la solicitud quedó PENDING pero el hub no fue notificado.
type HubNotice struct {
	StatusCode int    `json:"status_code,omitempty"`
	Response   any    `json:"response,omitempty"`
	Error      string `json:"error,omitempty"`
}

// UpdatePurchaseRequestResponse respuesta de PUT /api/purchase/request/:id.
type UpdatePurchaseRequestResponse struct {
	PurchaseRequest PurchaseRequestResponse `json:"purchaseRequest"`
	HubResponse     *HubNotice              `json:"hubResponse"`
}
