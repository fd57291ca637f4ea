// Package analytics contiene el resumen del Dashboard de inventario.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-dashboard/internal/application/dto"
	"github.com/jhoicas/inventario-dashboard/internal/application/inventory"
	"github.com/jhoicas/inventario-dashboard/internal/application/ports"
	"github.com/jhoicas/inventario-dashboard/internal/domain"
	"github.com/jhoicas/inventario-dashboard/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DashboardUseCase genera el resumen de inventario de una tienda.
//
// Fuente de datos: StoreBackend (solo lectura). Las ediciones pendientes salen de la
// sesión del usuario si existe; consultar el dashboard no crea sesión.
type DashboardUseCase struct {
	backend  ports.StoreBackend
	sessions *inventory.SessionStore
}

// NewDashboardUseCase construye el caso de uso. sessions puede ser nil.
func NewDashboardUseCase(backend ports.StoreBackend, sessions *inventory.SessionStore) *DashboardUseCase {
	return &DashboardUseCase{backend: backend, sessions: sessions}
}

// GetSummary construye el DashboardSummaryDTO para la tienda (y sucursal opcional).
//
// Tres llamadas en paralelo:
//  1. GetStatistics(branch) → conteos por estado de stock
//  2. ListBranches          → BranchCount
//  3. ListCategories        → CategoryCount / ActiveCategoryCount
func (uc *DashboardUseCase) GetSummary(
	ctx context.Context,
	userID, storeID, branchID string,
) (*dto.DashboardSummaryDTO, error) {
	if storeID == "" {
		return nil, fmt.Errorf("%w: store_id requerido", domain.ErrInvalidInput)
	}

	// ── Goroutines para paralelizar las 3 llamadas al backend ──────────────────
	type statsResult struct {
		stats *entity.InventoryStatistics
		err   error
	}
	type branchesResult struct {
		branches []entity.Branch
		err      error
	}
	type categoriesResult struct {
		categories []entity.CategoryMeta
		err        error
	}

	statsCh := make(chan statsResult, 1)
	branchesCh := make(chan branchesResult, 1)
	categoriesCh := make(chan categoriesResult, 1)

	go func() {
		s, err := uc.backend.GetStatistics(ctx, storeID, branchID)
		statsCh <- statsResult{s, err}
	}()
	go func() {
		b, err := uc.backend.ListBranches(ctx, storeID)
		branchesCh <- branchesResult{b, err}
	}()
	go func() {
		c, err := uc.backend.ListCategories(ctx, storeID)
		categoriesCh <- categoriesResult{c, err}
	}()

	stats := <-statsCh
	branches := <-branchesCh
	categories := <-categoriesCh

	if stats.err != nil {
		return nil, fmt.Errorf("dashboard: estadísticas: %w", stats.err)
	}
	if branches.err != nil {
		return nil, fmt.Errorf("dashboard: sucursales: %w", branches.err)
	}
	if categories.err != nil {
		return nil, fmt.Errorf("dashboard: categorías: %w", categories.err)
	}

	active := 0
	for _, c := range categories.categories {
		if c.IsActive {
			active++
		}
	}

	pending := 0
	if uc.sessions != nil {
		if vm, ok := uc.sessions.Peek(userID, storeID); ok {
			pending = len(vm.PendingEdits())
		}
	}

	s := entity.InventoryStatistics{}
	if stats.stats != nil {
		s = *stats.stats
	}

	// ── Construir DTO ──────────────────────────────────────────────────────────
	return &dto.DashboardSummaryDTO{
		BranchID:            branchID,
		Statistics:          s,
		InStockPct:          percent(s.InStockCount, s.TotalItems),
		LowStockPct:         percent(s.LowStockCount, s.TotalItems),
		OutOfStockPct:       percent(s.OutOfStockCount, s.TotalItems),
		BranchCount:         len(branches.branches),
		CategoryCount:       len(categories.categories),
		ActiveCategoryCount: active,
		PendingEdits:        pending,
		GeneratedAt:         time.Now(),
	}, nil
}

// percent part/total * 100 redondeado a 2 decimales; 0 si total es 0.
func percent(part, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2)
}
