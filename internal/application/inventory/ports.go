package inventory

import (
	"context"
	"time"

	inv "github.com/jhoicas/inventario-dashboard/internal/domain/inventory"
)

// ReportGenerator puerto para generar el reporte PDF del inventario agrupado.
// Lo implementa infrastructure/pdf.
type ReportGenerator interface {
	GenerateInventoryReport(ctx context.Context, report InventoryReport) ([]byte, error)
}

// InventoryReport datos que necesita el generador: árbol agrupado y ediciones pendientes
// (el stock mostrado es el pendiente si existe).
type InventoryReport struct {
	StoreID     string
	Groups      []inv.CategoryGroup
	Edits       inv.PendingEdits
	Filter      inv.FilterState
	GeneratedAt time.Time
}
