package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fulfillment-ledger/internal/application/inventory"
	"github.com/jhoicas/fulfillment-ledger/internal/application/sales"
	"github.com/jhoicas/fulfillment-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *inventory.StockLedger
	Transfers *inventory.TransferEngine
	Lots      *inventory.LotTracker
	Alerts    *inventory.AlertEngine
	Stats     *inventory.StockStatistics
	Orders    *sales.OrderLifecycle
	Locations inventory.Locations
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Todas las rutas requieren Bearer Token con una ubicación conocida (o ninguna).
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), RequireKnownLocation(deps.Locations))

	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleVendedor)
	stockRole := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	salesRole := RequireRole(jwt.RoleAdmin, jwt.RoleVendedor)
	adminOnly := RequireRole(jwt.RoleAdmin)

	// Inventario
	inv := protected.Group("/inventory")
	invHandler := NewInventoryHandler(deps.Ledger, deps.Transfers, deps.Lots, deps.Alerts, deps.Stats)
	inv.Post("/entries", stockRole, invHandler.RecordEntry)
	inv.Post("/exits", stockRole, invHandler.RecordExit)
	inv.Post("/adjustments", stockRole, invHandler.RecordAdjust)
	inv.Post("/transfers", stockRole, invHandler.Transfer)
	inv.Post("/transfers/batch", stockRole, invHandler.TransferBatch)
	inv.Post("/operational-exits", stockRole, invHandler.RecordOperationalExits)
	inv.Post("/counts", stockRole, invHandler.ApplyStockCount)
	inv.Post("/purchases", stockRole, invHandler.ReceivePurchase)
	inv.Put("/products/:id/thresholds", adminOnly, invHandler.SetThresholds)
	inv.Get("/products/:id", anyRole, invHandler.GetBalance)
	inv.Get("/products/:id/movements", anyRole, invHandler.ListMovements)
	inv.Get("/products/:id/reconciliation", stockRole, invHandler.Reconcile)
	inv.Get("/products/:id/lots", anyRole, invHandler.LotAging)
	inv.Get("/products/:id/statistics", anyRole, invHandler.GetProductStatistics)
	inv.Get("/alerts", anyRole, invHandler.ListAlerts)
	inv.Post("/alerts/evaluate", stockRole, invHandler.EvaluateAlerts)
	inv.Get("/replenishment", stockRole, invHandler.GetReplenishmentList)
	inv.Get("/statistics", stockRole, invHandler.GetStatistics)

	// Pedidos
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.Orders)
	orders.Post("/", salesRole, orderHandler.Create)
	orders.Get("/:id", anyRole, orderHandler.Get)
	orders.Put("/:id/lines", salesRole, orderHandler.ReplaceLines)
	orders.Post("/:id/confirm", salesRole, orderHandler.Confirm)
	orders.Post("/:id/convert", salesRole, orderHandler.Convert)
	orders.Post("/:id/bill", salesRole, orderHandler.Bill)
	orders.Post("/:id/complete", salesRole, orderHandler.Complete)
	orders.Post("/:id/cancel", salesRole, orderHandler.Cancel)
	orders.Post("/:id/notes", anyRole, orderHandler.AddNote)
}
