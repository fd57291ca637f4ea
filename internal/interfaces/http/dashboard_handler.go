package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/inventario-dashboard/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve el resumen de inventario de la tienda.
// GET /api/dashboard/summary?branch_id=
//
// Respuesta: DashboardSummaryDTO (statistics, porcentajes por estado de stock,
// conteo de sucursales y categorías, ediciones pendientes de la sesión).
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	storeID, ok := requireStore(c)
	if !ok {
		return nil
	}

	summary, err := h.uc.GetSummary(c.UserContext(), GetUserID(c), storeID, c.Query("branch_id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(summary)
}
