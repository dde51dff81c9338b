package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/Inventario-sucursales/internal/application/analytics"
	"github.com/jhoicas/Inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/Inventario-sucursales/internal/application/orders"
	"github.com/jhoicas/Inventario-sucursales/internal/application/ports"
	"github.com/jhoicas/Inventario-sucursales/internal/application/usecase"
	"github.com/jhoicas/Inventario-sucursales/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Inventario-sucursales/internal/infrastructure/pdf"
	"github.com/jhoicas/Inventario-sucursales/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Inventario-sucursales/internal/interfaces/http"
	"github.com/jhoicas/Inventario-sucursales/internal/observability"
	"github.com/jhoicas/Inventario-sucursales/pkg/config"
	"github.com/jhoicas/Inventario-sucursales/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		tx   ports.TxRunner
		read ports.Repos
	)
	switch cfg.DB.Driver {
	case config.StoreDriverMemory:
		store := memory.NewStore()
		tx, read = store, store.Repos()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("aplicar esquema")
			}
			log.Info().Msg("esquema aplicado")
		}
		runner := postgres.NewTxRunner(pool)
		tx, read = runner, runner.Repos()
	}

	metrics := observability.NewMetrics()
	runner := inventory.NewRunner(tx, cfg.Stock.IDRetryAttempts, log.Component("tx"), metrics)
	stockSvc := inventory.NewStockService(runner, read, log.Component("stock"), metrics)
	transferSvc := inventory.NewTransferService(runner, stockSvc, read, log.Component("transfers"), metrics)
	orderSvc := orders.NewService(runner, stockSvc, read, log.Component("orders"))

	// PDF: remisión de traslado entre sucursales
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	transferDocUC := inventory.NewTransferDocumentUseCase(read, pdfGenerator)
	replenishmentUC := inventory.NewReplenishmentUseCase(read.Stock)
	branchUC := usecase.NewBranchUseCase(read.Branches)
	dashboardUC := appanalytics.NewDashboardUseCase(read)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(metrics.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs (requiere `swag init`)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Inventario Sucursales API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		BranchUC:      branchUC,
		Dashboard:     dashboardUC,
		Stock:         stockSvc,
		Transfers:     transferSvc,
		TransferDoc:   transferDocUC,
		Replenishment: replenishmentUC,
		Orders:        orderSvc,
		Metrics:       metrics,
		JWTSecret:     cfg.JWT.Secret,
	})

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

	log.Info().Msg("aplicación detenida")
}
