package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/replenishment-api/internal/application/dto"
	"github.com/jhoicas/replenishment-api/internal/application/receiving"
)

const (
	msgAccepted         = "Purchase request accepted. Processing flow started."
	msgAlreadyProcessed = "Purchase request already processed."
)

// ReceiveStockHandler webhook del hub: confirmación de mercancía recibida.
type ReceiveStockHandler struct {
	processor *receiving.ConfirmationProcessor
	now       func() time.Time
}

// NewReceiveStockHandler construye el handler.
func NewReceiveStockHandler(processor *receiving.ConfirmationProcessor) *ReceiveStockHandler {
	return &ReceiveStockHandler{processor: processor, now: time.Now}
}

// Receive godoc
// @Summary      Confirmación de stock recibido (webhook del hub)
// @Description  Acepta el payload plano o envuelto en "data". Una entrega duplicada responde 202 sin aplicar stock.
// @Tags         webhook
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveStockRequest  true  "Confirmación"
// @Success      202   {object}  dto.ReceiveStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/receive-stock [post]
func (h *ReceiveStockHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.processor.Process(c.UserContext(), receiving.FromRequest(in))
	if err != nil {
		return respondError(c, err)
	}
	ev := requestLogger(c).Info().
		Str("reference", res.Reference).
		Str("outcome", string(res.Outcome))
	if subject := GetHubSubject(c); subject != "" {
		ev = ev.Str("hub_subject", subject)
	}
	ev.Msg("webhook de stock recibido")

	msg := msgAccepted
	if res.Skipped() {
		msg = msgAlreadyProcessed
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ReceiveStockResponse{
		APIID:   "API_" + h.now().UTC().Format("20060102T150405"),
		Status:  fiber.StatusAccepted,
		Message: msg,
	})
}
