package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/stockledger-api/internal/application/auth"
	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/application/usecase"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC   *usecase.WarehouseUseCase
	ProductUC     *usecase.ProductUseCase
	StockMovement *inventory.StockMovementUseCase
	Reports       *inventory.ReportUseCase
	AuthUC        *auth.AuthUseCase
	Auth          AuthConfig
	Cookie        SessionCookie
	Logger        *logger.Logger
	// Opcionales: sin MetricsHandler no se expone /metrics.
	HTTPRecorder   HTTPRecorder
	MetricsHandler http.Handler
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(TracingMiddleware())
	if deps.HTTPRecorder != nil {
		app.Use(MetricsMiddleware(deps.HTTPRecorder))
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api")
	if deps.Cookie.Name == "" {
		deps.Cookie.Name = deps.Auth.CookieName
	}

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.Cookie, deps.Logger)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)

	// Rutas protegidas (Bearer Token o cookie de sesión)
	protected := api.Group("/", AuthMiddleware(deps.Auth))
	protected.Get("/auth/check", authHandler.Check)
	protected.Get("/users/:id/username", authHandler.UsernameByID)

	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC, deps.Logger)
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", warehouseHandler.Update)
	warehouses.Delete("/:id", warehouseHandler.Delete)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Logger)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Inventario: todas las mutaciones pasan por el motor de movimientos.
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.StockMovement, deps.Reports, deps.Logger)
	invGroup.Get("/", inventoryHandler.List)
	invGroup.Post("/", inventoryHandler.Create)
	invGroup.Get("/low-stock", inventoryHandler.LowStock)
	invGroup.Post("/restock", inventoryHandler.Restock)
	invGroup.Post("/deplete", inventoryHandler.Deplete)
	invGroup.Post("/transfer", inventoryHandler.Transfer)
	invGroup.Get("/:productId/:warehouseId", inventoryHandler.Get)

	// Ledger (solo Admin y Warehouse)
	logs := protected.Group("/stock-logs", RequireRole(entity.RoleAdmin, entity.RoleWarehouse))
	stockLogHandler := NewStockLogHandler(deps.Reports, deps.Logger)
	logs.Get("/", stockLogHandler.Page)
	logs.Get("/sales/today", stockLogHandler.SalesToday)
}
