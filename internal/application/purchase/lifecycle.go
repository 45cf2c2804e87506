package purchase

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/replenishment-api/internal/application/dto"
	"github.com/jhoicas/replenishment-api/internal/application/ports"
	"github.com/jhoicas/replenishment-api/internal/domain/entity"
	"github.com/jhoicas/replenishment-api/pkg/logger"
)

// ErrHubNotConfigured se reporta como aviso cuando no hay notificador de hub configurado.
var ErrHubNotConfigured = errors.New("hub de fulfillment no configurado")

// LifecycleEngine orquesta las transiciones pedidas por el cliente.
// La notificación al hub ocurre después del commit local: si falla, la solicitud queda PENDING
// y el error se devuelve como aviso (UpdateResult.HubError), nunca como error de la operación.
type LifecycleEngine struct {
	requests *PurchaseRequestUseCase
	notifier ports.HubNotifier
	log      *logger.Logger
	tracer   trace.Tracer
}

// NewLifecycleEngine construye el motor. notifier puede ser nil (hub no configurado).
func NewLifecycleEngine(requests *PurchaseRequestUseCase, notifier ports.HubNotifier, log *logger.Logger) *LifecycleEngine {
	return &LifecycleEngine{
		requests: requests,
		notifier: notifier,
		log:      log,
		tracer:   otel.Tracer("replenishment-api/purchase"),
	}
}

// UpdateResult solicitud ya confirmada más el resultado de la notificación (si hubo).
type UpdateResult struct {
	PurchaseRequest *entity.PurchaseRequest
	Notified        bool
	HubAck          *ports.HubAck
	HubError        error
}

// Update aplica Replace y, si la solicitud pasó a PENDING, notifica al hub.
func (e *LifecycleEngine) Update(ctx context.Context, id int64, in dto.UpdatePurchaseRequest) (*UpdateResult, error) {
	ctx, span := e.tracer.Start(ctx, "purchase_request.update")
	defer span.End()
	span.SetAttributes(attribute.Int64("purchase_request.id", id))

	replaced, err := e.requests.Replace(ctx, id, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "replace")
		return nil, err
	}

	pr := replaced.PurchaseRequest
	out := &UpdateResult{PurchaseRequest: pr}
	span.SetAttributes(
		attribute.String("purchase_request.reference", pr.Reference),
		attribute.String("purchase_request.status", string(pr.Status)),
	)
	if !replaced.NeedsNotification {
		return out, nil
	}

	out.Notified = true
	out.HubAck, out.HubError = e.notify(ctx, pr)
	if out.HubError != nil {
		span.RecordError(out.HubError)
		e.log.Warn().
			Err(out.HubError).
			Int64("purchase_request_id", pr.ID).
			Str("reference", pr.Reference).
			Msg("solicitud PENDING sin notificar al hub; reintentar manualmente")
		return out, nil
	}
	e.log.Info().
		Str("reference", pr.Reference).
		Int("hub_status", out.HubAck.StatusCode).
		Msg("solicitud enviada al hub")
	return out, nil
}

func (e *LifecycleEngine) notify(ctx context.Context, pr *entity.PurchaseRequest) (*ports.HubAck, error) {
	if e.notifier == nil {
		return nil, ErrHubNotConfigured
	}
	payload, err := BuildHubPayload(pr)
	if err != nil {
		return nil, err
	}
	return e.notifier.NotifyPurchaseRequest(ctx, payload)
}

// BuildHubPayload arma el cuerpo para el hub a partir de la solicitud hidratada.
// Falla si no hay líneas o si algún producto no tiene SKU o nombre.
func BuildHubPayload(pr *entity.PurchaseRequest) (ports.HubPurchaseRequest, error) {
	if len(pr.Items) == 0 {
		return ports.HubPurchaseRequest{}, fmt.Errorf("no se puede enviar la solicitud %s sin líneas", pr.Reference)
	}
	details := make([]ports.HubLineDetail, 0, len(pr.Items))
	var total int64
	for _, it := range pr.Items {
		if it.ProductSKU == "" {
			return ports.HubPurchaseRequest{}, fmt.Errorf("producto %d sin SKU", it.ProductID)
		}
		if it.ProductName == "" {
			return ports.HubPurchaseRequest{}, fmt.Errorf("producto %d sin nombre", it.ProductID)
		}
		details = append(details, ports.HubLineDetail{
			ProductName: it.ProductName,
			SKU:         it.ProductSKU,
			Quantity:    it.Quantity,
		})
		total += it.Quantity
	}
	vendor := pr.VendorName
	if vendor == "" {
		vendor = entity.DefaultVendorName
	}
	return ports.HubPurchaseRequest{
		Vendor:        vendor,
		Reference:     pr.Reference,
		QuantityTotal: total,
		Details:       details,
	}, nil
}
