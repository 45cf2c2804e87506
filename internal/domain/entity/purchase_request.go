package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/replenishment-api/internal/domain"
)

// PurchaseRequestStatus estado del ciclo de vida de una solicitud de compra.
// Las transiciones son monótonas: DRAFT → PENDING → COMPLETED.
type PurchaseRequestStatus string

const (
	StatusDraft     PurchaseRequestStatus = "DRAFT"
	StatusPending   PurchaseRequestStatus = "PENDING"
	StatusCompleted PurchaseRequestStatus = "COMPLETED"
)

// DefaultVendorName proveedor asignado a toda solicitud nueva.
const DefaultVendorName = "PT FOOM LAB GLOBAL"

// ParseStatus convierte un string al estado tipado. Un valor fuera del ciclo de vida es ErrInvalidState.
func ParseStatus(s string) (PurchaseRequestStatus, error) {
	switch PurchaseRequestStatus(s) {
	case StatusDraft, StatusPending, StatusCompleted:
		return PurchaseRequestStatus(s), nil
	}
	return "", fmt.Errorf("%w: estado desconocido %q", domain.ErrInvalidState, s)
}

// ReferenceFor deriva la referencia pública a partir del ID asignado por la base de datos (ej: PR00001).
func ReferenceFor(id int64) string {
	return fmt.Sprintf("PR%05d", id)
}

// PurchaseRequest agregado raíz: la solicitud y sus líneas.
// WarehouseName y los datos de producto de cada ítem solo se llenan al hidratar (GetDetail).
type PurchaseRequest struct {
	ID            int64
	Reference     string
	WarehouseID   int64
	WarehouseName string
	Status        PurchaseRequestStatus
	VendorName    string
	Items         []PurchaseRequestItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PurchaseRequestItem línea de la solicitud. Quantity siempre es positiva.
type PurchaseRequestItem struct {
	ID                int64
	PurchaseRequestID int64
	ProductID         int64
	ProductName       string
	ProductSKU        string
	Quantity          int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PurchaseRequestSummary fila del listado con el total de unidades.
type PurchaseRequestSummary struct {
	ID            int64
	Reference     string
	VendorName    string
	Status        PurchaseRequestStatus
	WarehouseID   int64
	WarehouseName string
	QuantityTotal int64
	CreatedAt     time.Time
}

// IsEditable indica si la solicitud admite cambios de bodega o de ítems.
func (pr *PurchaseRequest) IsEditable() bool {
	return pr.Status == StatusDraft
}

// EnsureEditable falla con ErrInvalidState si la solicitud ya salió de DRAFT.
func (pr *PurchaseRequest) EnsureEditable() error {
	if !pr.IsEditable() {
		return fmt.Errorf("%w: la solicitud %s está en %s, solo se modifican solicitudes DRAFT",
			domain.ErrInvalidState, pr.Reference, pr.Status)
	}
	return nil
}

// AssignReference fija la referencia definitiva. Solo se permite una vez, sobre la referencia temporal.
func (pr *PurchaseRequest) AssignReference() error {
	if pr.ID <= 0 {
		return fmt.Errorf("asignar referencia: la solicitud no tiene ID")
	}
	ref := ReferenceFor(pr.ID)
	if pr.Reference == ref {
		return nil
	}
	if pr.Reference != "" && !IsTemporaryReference(pr.Reference) {
		return fmt.Errorf("%w: la referencia %s ya fue asignada", domain.ErrInvalidState, pr.Reference)
	}
	pr.Reference = ref
	return nil
}

// RequestStatus aplica un cambio de estado pedido por el cliente.
// Solo DRAFT → PENDING es válido; devuelve true cuando hay que notificar al hub.
// COMPLETED lo fija exclusivamente la confirmación del hub (Complete).
func (pr *PurchaseRequest) RequestStatus(next PurchaseRequestStatus) (bool, error) {
	if err := pr.EnsureEditable(); err != nil {
		return false, err
	}
	switch next {
	case StatusPending:
		pr.Status = StatusPending
		return true, nil
	case StatusCompleted:
		return false, fmt.Errorf("%w: el estado no puede fijarse directamente a COMPLETED", domain.ErrInvalidState)
	default:
		return false, fmt.Errorf("%w: transición %s → %s no permitida", domain.ErrInvalidState, pr.Status, next)
	}
}

// Complete marca la solicitud como recibida. Solo desde PENDING.
func (pr *PurchaseRequest) Complete() error {
	if pr.Status != StatusPending {
		return fmt.Errorf("%w: la solicitud %s debe estar PENDING para recibir stock (actual %s)",
			domain.ErrInvalidState, pr.Reference, pr.Status)
	}
	pr.Status = StatusCompleted
	return nil
}

// QuantityTotal suma las cantidades de todas las líneas.
func (pr *PurchaseRequest) QuantityTotal() int64 {
	var total int64
	for _, it := range pr.Items {
		total += it.Quantity
	}
	return total
}
