package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-sucursales/internal/application/analytics"
	"github.com/jhoicas/Inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/Inventario-sucursales/internal/application/orders"
	"github.com/jhoicas/Inventario-sucursales/internal/application/usecase"
	"github.com/jhoicas/Inventario-sucursales/internal/observability"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	BranchUC      *usecase.BranchUseCase
	Dashboard     *analytics.DashboardUseCase
	Stock         *inventory.StockService
	Transfers     *inventory.TransferService
	TransferDoc   *inventory.TransferDocumentUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Orders        *orders.Service
	Metrics       *observability.Metrics
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics.FiberHandler())
	}

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	admin := RequireRole(RoleAdmin)
	warehouse := RequireRole(RoleAdmin, RoleBodeguero)
	sales := RequireRole(RoleAdmin, RoleVendedor, RoleTecnico)
	anyRole := RequireRole(RoleAdmin, RoleBodeguero, RoleVendedor, RoleTecnico)

	branchHandler := NewBranchHandler(deps.BranchUC, deps.Dashboard)
	stockHandler := NewStockHandler(deps.Stock, deps.Replenishment)
	transferHandler := NewTransferHandler(deps.Transfers, deps.TransferDoc)
	orderHandler := NewOrderHandler(deps.Orders)

	// Branches
	branches := api.Group("/branches")
	branches.Get("/", anyRole, branchHandler.List)
	branches.Post("/", admin, branchHandler.Create)
	branches.Get("/:id", anyRole, branchHandler.GetByID)
	branches.Put("/:id", admin, branchHandler.Update)
	branches.Get("/:id/stock", anyRole, stockHandler.ListByBranch)
	branches.Get("/:id/movements", warehouse, stockHandler.ListBranchMovements)
	branches.Get("/:id/replenishment", warehouse, stockHandler.GetReplenishmentList)
	branches.Get("/:id/summary", warehouse, branchHandler.Summary)

	// Stock
	stock := api.Group("/stock")
	stock.Post("/", warehouse, stockHandler.Create)
	stock.Get("/lookup", anyRole, stockHandler.Lookup)
	stock.Get("/:id", anyRole, stockHandler.GetByID)
	stock.Get("/:id/movements", warehouse, stockHandler.ListMovements)
	stock.Post("/:id/reserve", anyRole, stockHandler.Reserve)
	stock.Post("/:id/release", anyRole, stockHandler.Release)
	stock.Post("/:id/deduct", anyRole, stockHandler.Deduct)
	stock.Post("/:id/add", warehouse, stockHandler.Add)
	stock.Post("/:id/adjust", warehouse, stockHandler.Adjust)

	// Kardex
	movements := api.Group("/movements", warehouse)
	movements.Get("/", stockHandler.MovementsByReference)
	movements.Get("/:movementId", stockHandler.GetMovement)

	// Transfers
	transfers := api.Group("/transfers")
	transfers.Get("/", anyRole, transferHandler.List)
	transfers.Post("/", warehouse, transferHandler.Create)
	transfers.Get("/:id", anyRole, transferHandler.GetByID)
	transfers.Get("/:id/pdf", anyRole, transferHandler.DownloadPDF)
	transfers.Post("/:id/ship", warehouse, transferHandler.Ship)
	transfers.Post("/:id/receive", warehouse, transferHandler.Receive)
	transfers.Post("/:id/cancel", warehouse, transferHandler.Cancel)

	// Orders
	ordersGroup := api.Group("/orders", sales)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Put("/:id/items", orderHandler.UpdateItems)
	ordersGroup.Post("/:id/payments", orderHandler.RecordPayment)
	ordersGroup.Post("/:id/complete", orderHandler.Complete)
	ordersGroup.Post("/:id/cancel", orderHandler.Cancel)
}
