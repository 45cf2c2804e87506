package purchase

import (
	"github.com/jhoicas/replenishment-api/internal/application/dto"
	"github.com/jhoicas/replenishment-api/internal/domain/entity"
)

// ToResponse convierte el agregado hidratado a su DTO de salida.
func ToResponse(pr *entity.PurchaseRequest) dto.PurchaseRequestResponse {
	items := make([]dto.PurchaseRequestItemResponse, 0, len(pr.Items))
	for _, it := range pr.Items {
		items = append(items, dto.PurchaseRequestItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			SKU:         it.ProductSKU,
			Quantity:    it.Quantity,
		})
	}
	return dto.PurchaseRequestResponse{
		ID:            pr.ID,
		Reference:     pr.Reference,
		WarehouseID:   pr.WarehouseID,
		WarehouseName: pr.WarehouseName,
		Status:        string(pr.Status),
		Vendor:        pr.VendorName,
		QuantityTotal: pr.QuantityTotal(),
		Items:         items,
		CreatedAt:     pr.CreatedAt,
		UpdatedAt:     pr.UpdatedAt,
	}
}

// ToSummaryResponses convierte el listado.
func ToSummaryResponses(list []*entity.PurchaseRequestSummary) []dto.PurchaseRequestSummaryResponse {
	out := make([]dto.PurchaseRequestSummaryResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.PurchaseRequestSummaryResponse{
			ID:            s.ID,
			Reference:     s.Reference,
			Vendor:        s.VendorName,
			Status:        string(s.Status),
			WarehouseID:   s.WarehouseID,
			WarehouseName: s.WarehouseName,
			QuantityTotal: s.QuantityTotal,
			CreatedAt:     s.CreatedAt,
		})
	}
	return out
}
