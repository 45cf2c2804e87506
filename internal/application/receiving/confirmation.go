package receiving

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/replenishment-api/internal/application/dto"
	"github.com/jhoicas/replenishment-api/internal/application/ports"
	"github.com/jhoicas/replenishment-api/internal/application/stock"
	"github.com/jhoicas/replenishment-api/internal/domain"
	"github.com/jhoicas/replenishment-api/internal/domain/entity"
	"github.com/jhoicas/replenishment-api/internal/domain/repository"
	"github.com/jhoicas/replenishment-api/pkg/logger"
)

// Outcome resultado exitoso de procesar una confirmación.
type Outcome string

const (
	// OutcomeProcessed el stock se aplicó y la solicitud quedó COMPLETED.
	OutcomeProcessed Outcome = "processed"
	// OutcomeSkipped la solicitud ya estaba COMPLETED; no se aplicó nada (entrega duplicada).
	OutcomeSkipped Outcome = "skipped"
)

// Confirmation confirmación lógica de "stock recibido" enviada por el hub.
type Confirmation struct {
	Reference     string
	Vendor        string
	QuantityTotal *decimal.Decimal
	Lines         []ConfirmationLine
}

// ConfirmationLine una línea recibida. Quantity debe ser entera y positiva.
type ConfirmationLine struct {
	SKU      string
	Quantity decimal.Decimal
}

// Result resultado de Process.
type Result struct {
	Outcome           Outcome
	Reference         string
	PurchaseRequestID int64
	UnitsReceived     int64
}

// Skipped indica si la confirmación fue un duplicado.
func (r *Result) Skipped() bool { return r.Outcome == OutcomeSkipped }

// FromRequest convierte el body (ya normalizado) del webhook a Confirmation.
func FromRequest(in dto.ReceiveStockRequest) Confirmation {
	in = in.Normalize()
	lines := make([]ConfirmationLine, 0, len(in.Details))
	for _, d := range in.Details {
		lines = append(lines, ConfirmationLine{SKU: strings.TrimSpace(d.SKU), Quantity: d.Qty})
	}
	return Confirmation{
		Reference:     strings.TrimSpace(in.Reference),
		Vendor:        strings.TrimSpace(in.Vendor),
		QuantityTotal: in.QtyTotal,
		Lines:         lines,
	}
}

// ConfirmationProcessor aplica las confirmaciones del hub al ledger exactamente una vez por solicitud.
type ConfirmationProcessor struct {
	txRunner ports.TxRunner
	ledger   *stock.Ledger
	locker   ReferenceLocker
	log      *logger.Logger
	tracer   trace.Tracer
}

// NewConfirmationProcessor construye el procesador. locker nil equivale a NoopLocker.
func NewConfirmationProcessor(txRunner ports.TxRunner, ledger *stock.Ledger, locker ReferenceLocker, log *logger.Logger) *ConfirmationProcessor {
	if locker == nil {
		locker = NoopLocker{}
	}
	return &ConfirmationProcessor{
		txRunner: txRunner,
		ledger:   ledger,
		locker:   locker,
		log:      log,
		tracer:   otel.Tracer("replenishment-api/receiving"),
	}
}

// Process valida la confirmación y, en una transacción SERIALIZABLE con la solicitud bloqueada,
// suma el stock de cada línea y marca la solicitud COMPLETED.
// Una solicitud ya COMPLETED devuelve OutcomeSkipped sin error.
func (p *ConfirmationProcessor) Process(ctx context.Context, c Confirmation) (*Result, error) {
	ctx, span := p.tracer.Start(ctx, "receive_stock.process")
	defer span.End()
	span.SetAttributes(
		attribute.String("purchase_request.reference", c.Reference),
		attribute.Int("confirmation.lines", len(c.Lines)),
	)

	res, err := p.process(ctx, c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "confirmación rechazada")
		p.log.Warn().Err(err).Str("reference", c.Reference).Msg("confirmación de stock rechazada")
		return nil, err
	}
	span.SetAttributes(attribute.String("confirmation.outcome", string(res.Outcome)))
	if res.Skipped() {
		p.log.Info().Str("reference", res.Reference).Msg("confirmación duplicada, ya procesada")
	} else {
		p.log.Info().
			Str("reference", res.Reference).
			Int64("units", res.UnitsReceived).
			Msg("stock recibido, solicitud completada")
	}
	return res, nil
}

func (p *ConfirmationProcessor) process(ctx context.Context, c Confirmation) (*Result, error) {
	if err := validate(c); err != nil {
		return nil, err
	}

	unlock, err := p.locker.Lock(ctx, c.Reference)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			p.log.Warn().Err(err).Str("reference", c.Reference).Msg("liberar lock de referencia")
		}
	}()

	res := &Result{Reference: c.Reference}
	err = p.txRunner.RunSerializable(ctx, func(repos repository.Repos) error {
		// Reinicia por si el TxRunner reintenta la función.
		*res = Result{Reference: c.Reference}

		pr, err := repos.PurchaseRequests.GetByReferenceForUpdate(ctx, c.Reference)
		if err != nil {
			return err
		}
		if pr == nil {
			return fmt.Errorf("%w: referencia %s", domain.ErrNotFound, c.Reference)
		}
		res.PurchaseRequestID = pr.ID

		if c.Vendor != "" && pr.VendorName != "" && c.Vendor != pr.VendorName {
			return domain.Invalid("vendor", "el proveedor %q no coincide con el de la solicitud %s", c.Vendor, pr.Reference)
		}

		if pr.Status == entity.StatusCompleted {
			res.Outcome = OutcomeSkipped
			return nil
		}
		if pr.Status != entity.StatusPending {
			return fmt.Errorf("%w: la solicitud %s debe estar PENDING para recibir stock (actual %s)",
				domain.ErrInvalidState, pr.Reference, pr.Status)
		}

		for i, line := range c.Lines {
			field := fmt.Sprintf("details[%d]", i)
			if line.SKU == "" {
				return domain.Invalid(field+".sku_barcode", "es requerido")
			}
			product, err := repos.Products.GetBySKU(ctx, line.SKU)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.Invalid(field+".sku_barcode", "producto con SKU %s no encontrado", line.SKU)
			}
			qty, err := positiveInt(field+".qty", line.Quantity)
			if err != nil {
				return err
			}
			if _, err := p.ledger.IncrementStock(ctx, repos.Stock, pr.WarehouseID, product.ID, qty); err != nil {
				return err
			}
			res.UnitsReceived += qty
		}

		if err := pr.Complete(); err != nil {
			return err
		}
		if err := repos.PurchaseRequests.Update(ctx, pr); err != nil {
			return err
		}
		res.Outcome = OutcomeProcessed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// validate revisa la forma del payload antes de abrir la transacción.
func validate(c Confirmation) error {
	if c.Reference == "" {
		return domain.Invalid("reference", "es requerido")
	}
	if len(c.Lines) == 0 {
		return domain.Invalid("details", "se requiere al menos una línea")
	}
	if c.QuantityTotal != nil {
		sum := decimal.Zero
		for _, l := range c.Lines {
			sum = sum.Add(l.Quantity)
		}
		if !c.QuantityTotal.Equal(sum) {
			return domain.Invalid("qty_total", "qty_total %s no coincide con la suma de las líneas %s",
				c.QuantityTotal.String(), sum.String())
		}
	}
	return nil
}

func positiveInt(field string, q decimal.Decimal) (int64, error) {
	if !q.IsInteger() || !q.IsPositive() {
		return 0, domain.Invalid(field, "la cantidad debe ser un entero positivo (recibido %s)", q.String())
	}
	if !q.BigInt().IsInt64() {
		return 0, domain.Invalid(field, "cantidad fuera de rango")
	}
	return q.IntPart(), nil
}
