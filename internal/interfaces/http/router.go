package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/inventario-dashboard/internal/application/analytics"
	"github.com/jhoicas/inventario-dashboard/internal/application/inventory"
	"github.com/jhoicas/inventario-dashboard/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InventoryUC *inventory.UseCase
	DashboardUC *appanalytics.DashboardUseCase
	JWTSecret   string
	JWTIssuer   string
	Log         *logger.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token; las escrituras
// además exigen rol admin o manager.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	writers := RequireRole(RoleAdmin, RoleManager)

	catalogHandler := NewCatalogHandler(deps.InventoryUC)
	api.Get("/branches", catalogHandler.ListBranches)
	api.Get("/categories", catalogHandler.ListCategories)
	api.Put("/categories/:id/active", writers, catalogHandler.SetCategoryActive)
	api.Put("/products/:id/active", writers, catalogHandler.SetProductActive)

	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.InventoryUC, deps.Log)
	invGroup.Get("/", inventoryHandler.Query)
	invGroup.Get("/groups", inventoryHandler.Groups)
	invGroup.Get("/statistics", inventoryHandler.Statistics)
	invGroup.Get("/edits", inventoryHandler.ListEdits)
	invGroup.Put("/edits/:inventory_id", writers, inventoryHandler.SetEdit)
	invGroup.Delete("/edits", writers, inventoryHandler.DiscardEdits)
	invGroup.Post("/edits/commit", writers, inventoryHandler.Commit)
	invGroup.Get("/bulk-saves", inventoryHandler.ListBulkSaves)
	invGroup.Get("/report.pdf", inventoryHandler.Report)

	if deps.DashboardUC != nil {
		dashboardHandler := NewDashboardHandler(deps.DashboardUC)
		api.Get("/dashboard/summary", dashboardHandler.GetSummary)
	}
}
