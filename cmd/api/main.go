package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/replenishment-api/internal/application/ports"
	"github.com/jhoicas/replenishment-api/internal/application/purchase"
	"github.com/jhoicas/replenishment-api/internal/application/receiving"
	"github.com/jhoicas/replenishment-api/internal/application/stock"
	"github.com/jhoicas/replenishment-api/internal/application/usecase"
	"github.com/jhoicas/replenishment-api/internal/infrastructure/hub"
	infrapdf "github.com/jhoicas/replenishment-api/internal/infrastructure/pdf"
	"github.com/jhoicas/replenishment-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/replenishment-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/replenishment-api/internal/interfaces/http"
	"github.com/jhoicas/replenishment-api/pkg/config"
	"github.com/jhoicas/replenishment-api/pkg/logger"
	"github.com/jhoicas/replenishment-api/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("version", cfg.App.Version).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	warehouseRepo := postgres.NewWarehouseRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	purchaseRequestRepo := postgres.NewPurchaseRequestRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.DB.LockTimeout)

	// Lock distribuido por referencia: solo si hay Redis. Sin Redis basta el FOR UPDATE de la tx.
	var locker receiving.ReferenceLocker
	if cfg.Redis.Address != "" {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis.Address)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = infraredis.NewReferenceLocker(rdb, cfg.Redis.LockTTL)
		log.Info().Str("redis", cfg.Redis.Address).Msg("lock distribuido de recepciones habilitado")
	}

	// Hub de fulfillment: sin HUB_BASE_URL las transiciones a PENDING se devuelven con aviso.
	var notifier ports.HubNotifier
	if cfg.Hub.Enabled() {
		notifier = hub.NewClient(hub.Config{
			BaseURL:    cfg.Hub.BaseURL,
			APIKey:     cfg.Hub.APIKey,
			Timeout:    cfg.Hub.Timeout,
			MaxRetries: cfg.Hub.MaxRetries,
		})
	} else {
		log.Warn().Msg("HUB_BASE_URL vacío: las solicitudes PENDING no se notificarán")
	}

	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo)
	productUC := usecase.NewProductUseCase(productRepo)
	ledger := stock.NewLedger(stockRepo)
	purchaseRequestUC := purchase.NewPurchaseRequestUseCase(txRunner, purchaseRequestRepo, cfg.App.DefaultVendorName)
	lifecycle := purchase.NewLifecycleEngine(purchaseRequestUC, notifier, log)
	confirmations := receiving.NewConfirmationProcessor(txRunner, ledger, locker, log)

	// PDF: orden de compra imprimible
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	purchasePDFUC := purchase.NewPDFUseCase(purchaseRequestUC, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(cfg.HTTP.FrontendOrigin),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + httpRouter.HeaderRequestID,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Replenishment API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "version": cfg.App.Version})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		WarehouseUC:      warehouseUC,
		ProductUC:        productUC,
		Ledger:           ledger,
		PurchaseRequests: purchaseRequestUC,
		Lifecycle:        lifecycle,
		PurchasePDF:      purchasePDFUC,
		Confirmations:    confirmations,
		WebhookSecret:    cfg.Webhook.Secret,
		WebhookIssuer:    cfg.Webhook.Issuer,
	})
	if cfg.Webhook.Secret == "" {
		log.Warn().Msg("HUB_WEBHOOK_SECRET vacío: /api/receive-stock acepta llamadas sin token")
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cerrar exportador de trazas")
	}

	log.Info().Msg("aplicación detenida")
}

func corsOrigins(origin string) string {
	if origin == "" {
		return "*"
	}
	return origin
}
