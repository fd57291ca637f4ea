package dto

import (
	"time"

	"github.com/jhoicas/inventario-dashboard/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// Estadísticas del backend más conteos de referencia y el estado de la sesión del usuario.
type DashboardSummaryDTO struct {
	BranchID   string                     `json:"branch_id,omitempty"`
	Statistics entity.InventoryStatistics `json:"statistics"`

	// Salud del stock: porcentaje de filas en cada estado (0–100, 2 decimales)
	InStockPct    decimal.Decimal `json:"in_stock_pct"`
	LowStockPct   decimal.Decimal `json:"low_stock_pct"`
	OutOfStockPct decimal.Decimal `json:"out_of_stock_pct"`

	// Referencias
	BranchCount         int `json:"branch_count"`
	CategoryCount       int `json:"category_count"`
	ActiveCategoryCount int `json:"active_category_count"`

	PendingEdits int       `json:"pending_edits"` // ediciones sin guardar del usuario
	GeneratedAt  time.Time `json:"generated_at"`
}
