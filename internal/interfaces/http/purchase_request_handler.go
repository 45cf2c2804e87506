package http

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/replenishment-api/internal/application/dto"
	"github.com/jhoicas/replenishment-api/internal/application/purchase"
)

// PurchaseRequestHandler maneja el CRUD y el ciclo de vida de las solicitudes de compra.
type PurchaseRequestHandler struct {
	requests  *purchase.PurchaseRequestUseCase
	lifecycle *purchase.LifecycleEngine
	pdf       *purchase.PDFUseCase
}

// NewPurchaseRequestHandler construye el handler. pdf puede ser nil (endpoint deshabilitado).
func NewPurchaseRequestHandler(requests *purchase.PurchaseRequestUseCase, lifecycle *purchase.LifecycleEngine, pdf *purchase.PDFUseCase) *PurchaseRequestHandler {
	return &PurchaseRequestHandler{requests: requests, lifecycle: lifecycle, pdf: pdf}
}

// List godoc
// @Summary      Listar solicitudes de compra
// @Tags         purchase
// @Produce      json
// @Success      200  {array}   dto.PurchaseRequestSummaryResponse
// @Router       /api/purchase/requests [get]
func (h *PurchaseRequestHandler) List(c *fiber.Ctx) error {
	list, err := h.requests.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(purchase.ToSummaryResponses(list))
}

// Get godoc
// @Summary      Obtener solicitud con sus ítems
// @Tags         purchase
// @Produce      json
// @Param        id   path  int  true  "ID de la solicitud"
// @Success      200  {object}  dto.PurchaseRequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase/request/{id} [get]
func (h *PurchaseRequestHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	pr, err := h.requests.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(purchase.ToResponse(pr))
}

// Create godoc
// @Summary      Crear solicitud en DRAFT
// @Tags         purchase
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseRequest  true  "Bodega e ítems"
// @Success      201   {object}  dto.PurchaseRequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/purchase/request [post]
func (h *PurchaseRequestHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validateStruct(in); err != nil {
		return respondError(c, err)
	}
	pr, err := h.requests.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(purchase.ToResponse(pr))
}

// Update godoc
// @Summary      Editar solicitud DRAFT o pasarla a PENDING (notifica al hub)
// @Tags         purchase
// @Accept       json
// @Produce      json
// @Param        id    path  int                        true  "ID de la solicitud"
// @Param        body  body  dto.UpdatePurchaseRequest  true  "Campos a reemplazar"
// @Success      200   {object}  dto.UpdatePurchaseRequestResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchase/request/{id} [put]
func (h *PurchaseRequestHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.UpdatePurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validateStruct(in); err != nil {
		return respondError(c, err)
	}
	res, err := h.lifecycle.Update(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.UpdatePurchaseRequestResponse{
		PurchaseRequest: purchase.ToResponse(res.PurchaseRequest),
		HubResponse:     hubNotice(res),
	})
}

// Delete godoc
// @Summary      Eliminar solicitud DRAFT
// @Tags         purchase
// @Param        id   path  int  true  "ID de la solicitud"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase/request/{id} [delete]
func (h *PurchaseRequestHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.requests.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PDF godoc
// @Summary      Descargar orden de compra en PDF
// @Tags         purchase
// @Produce      application/pdf
// @Param        id   path  int  true  "ID de la solicitud"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase/request/{id}/pdf [get]
func (h *PurchaseRequestHandler) PDF(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	doc, filename, err := h.pdf.DownloadPurchaseOrderPDF(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(doc)
}

// hubNotice arma el bloque hubResponse; nil si no hubo transición a PENDING.
func hubNotice(res *purchase.UpdateResult) *dto.HubNotice {
	if !res.Notified {
		return nil
	}
	if res.HubError != nil {
		return &dto.HubNotice{Error: res.HubError.Error()}
	}
	if res.HubAck == nil {
		return &dto.HubNotice{}
	}
	notice := &dto.HubNotice{StatusCode: res.HubAck.StatusCode}
	var body any
	if len(res.HubAck.Body) > 0 && json.Unmarshal(res.HubAck.Body, &body) == nil {
		notice.Response = body
	} else if len(res.HubAck.Body) > 0 {
		notice.Response = string(res.HubAck.Body)
	}
	return notice
}
