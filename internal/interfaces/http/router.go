package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/taller-stock/internal/application/stock"
	"github.com/jhoicas/taller-stock/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Adjustments    *stock.AdjustmentUseCase
	PurchaseOrders *stock.PurchaseOrderUseCase
	Transfers      *stock.TransferUseCase
	Consumption    *stock.ConsumptionUseCase
	Queries        *stock.QueryUseCase
	JWTSecret      string
	ServiceName    string
	Log            *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	// Todas las rutas de /api requieren Bearer Token
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	warehouse := RequireRole(RoleAdmin, RoleBodeguero)
	anyRole := RequireRole(RoleAdmin, RoleBodeguero, RoleTecnico)

	// Stock: saldos, libro y ajustes
	stockHandler := NewStockHandler(deps.Adjustments, deps.Queries, log.Component("http.stock"))
	stockGroup := api.Group("/stock")
	stockGroup.Get("/", anyRole, stockHandler.GetStock)
	stockGroup.Get("/ledger", anyRole, stockHandler.GetLedger)
	stockGroup.Get("/reconciliation", warehouse, stockHandler.Reconcile)
	stockGroup.Post("/adjustments", warehouse, stockHandler.Adjust)

	// Órdenes de compra
	poHandler := NewPurchaseOrderHandler(deps.PurchaseOrders, log.Component("http.purchase_orders"))
	orders := api.Group("/purchase-orders", warehouse)
	orders.Post("/", poHandler.Create)
	orders.Get("/", poHandler.List)
	orders.Get("/:id", poHandler.GetByID)
	orders.Post("/:id/submit", poHandler.Submit)
	orders.Post("/:id/receive", poHandler.Receive)
	orders.Post("/:id/cancel", poHandler.Cancel)

	// Traslados; /in-transit va antes de /:id
	trHandler := NewTransferHandler(deps.Transfers, log.Component("http.transfers"))
	transfers := api.Group("/transfers", warehouse)
	transfers.Post("/", trHandler.Create)
	transfers.Get("/", trHandler.List)
	transfers.Get("/in-transit", trHandler.InTransit)
	transfers.Get("/:id", trHandler.GetByID)
	transfers.Get("/:id/manifest", trHandler.Manifest)
	transfers.Post("/:id/request", trHandler.Request)
	transfers.Post("/:id/ship", trHandler.Ship)
	transfers.Post("/:id/receive", trHandler.Receive)
	transfers.Post("/:id/cancel", trHandler.Cancel)

	// Consumo en órdenes de trabajo
	jobHandler := NewJobHandler(deps.Consumption, log.Component("http.jobs"))
	jobs := api.Group("/jobs", anyRole)
	jobs.Post("/:jobId/parts", jobHandler.ConsumePart)
	jobs.Get("/:jobId/parts", jobHandler.ListParts)
}
