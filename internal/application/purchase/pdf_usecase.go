package purchase

import (
	"context"
	"fmt"

	"github.com/jhoicas/replenishment-api/internal/domain/entity"
)

// PurchaseOrderPDFGenerator puerto de salida para el documento imprimible de la orden.
type PurchaseOrderPDFGenerator interface {
	GeneratePurchaseOrderPDF(ctx context.Context, pr *entity.PurchaseRequest) ([]byte, error)
}

// PDFUseCase genera la orden de compra en PDF a partir de la solicitud hidratada.
type PDFUseCase struct {
	requests  *PurchaseRequestUseCase
	generator PurchaseOrderPDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(requests *PurchaseRequestUseCase, generator PurchaseOrderPDFGenerator) *PDFUseCase {
	return &PDFUseCase{requests: requests, generator: generator}
}

// DownloadPurchaseOrderPDF devuelve los bytes del PDF y el nombre de archivo (<referencia>.pdf).
// Retorna domain.ErrNotFound si la solicitud no existe.
func (uc *PDFUseCase) DownloadPurchaseOrderPDF(ctx context.Context, id int64) ([]byte, string, error) {
	pr, err := uc.requests.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	doc, err := uc.generator.GeneratePurchaseOrderPDF(ctx, pr)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generar orden %s: %w", pr.Reference, err)
	}
	return doc, pr.Reference + ".pdf", nil
}
