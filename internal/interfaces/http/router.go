package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/replenishment-api/internal/application/purchase"
	"github.com/jhoicas/replenishment-api/internal/application/receiving"
	"github.com/jhoicas/replenishment-api/internal/application/stock"
	"github.com/jhoicas/replenishment-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC      *usecase.WarehouseUseCase
	ProductUC        *usecase.ProductUseCase
	Ledger           *stock.Ledger
	PurchaseRequests *purchase.PurchaseRequestUseCase
	Lifecycle        *purchase.LifecycleEngine
	PurchasePDF      *purchase.PDFUseCase
	Confirmations    *receiving.ConfirmationProcessor
	WebhookSecret    string
	WebhookIssuer    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Catálogo (solo lectura)
	api.Get("/warehouses", NewWarehouseHandler(deps.WarehouseUC).List)
	api.Get("/products", NewProductHandler(deps.ProductUC).List)
	api.Get("/stocks", NewStockHandler(deps.Ledger).List)

	// Solicitudes de compra
	prHandler := NewPurchaseRequestHandler(deps.PurchaseRequests, deps.Lifecycle, deps.PurchasePDF)
	api.Get("/purchase/requests", prHandler.List)
	api.Post("/purchase/request", prHandler.Create)
	api.Get("/purchase/request/:id", prHandler.Get)
	api.Put("/purchase/request/:id", prHandler.Update)
	api.Delete("/purchase/request/:id", prHandler.Delete)
	if deps.PurchasePDF != nil {
		api.Get("/purchase/request/:id/pdf", prHandler.PDF)
	}

	// Webhook del hub (firmado con JWT si hay secret)
	receiveHandler := NewReceiveStockHandler(deps.Confirmations)
	api.Post("/receive-stock", WebhookAuth(deps.WebhookSecret, deps.WebhookIssuer), receiveHandler.Receive)
}
