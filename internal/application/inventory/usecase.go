package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-dashboard/internal/application/dto"
	"github.com/jhoicas/inventario-dashboard/internal/application/ports"
	"github.com/jhoicas/inventario-dashboard/internal/domain"
	"github.com/jhoicas/inventario-dashboard/internal/domain/entity"
	inv "github.com/jhoicas/inventario-dashboard/internal/domain/inventory"
	"github.com/jhoicas/inventario-dashboard/internal/domain/repository"
	"github.com/jhoicas/inventario-dashboard/pkg/logger"
	"github.com/shopspring/decimal"
)

const maxPageSize = 200

// Config parámetros del caso de uso de inventario.
type Config struct {
	LowStockThreshold int
	PageSize          int
	FetchLimit        int
	SessionTTL        time.Duration
}

// UseCase casos de uso del dashboard de inventario.
//
// Mantiene un ViewModel por (usuario, tienda) en un SessionStore; la primera petición de
// una sesión carga referencias e inventario. auditRepo es opcional (nil = sin bitácora).
type UseCase struct {
	backend   ports.StoreBackend
	sessions  *SessionStore
	auditRepo repository.BulkSaveLogRepository
	reports   ReportGenerator
	cfg       Config
	log       *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	backend ports.StoreBackend,
	auditRepo repository.BulkSaveLogRepository,
	reports ReportGenerator,
	cfg Config,
	log *logger.Logger,
) *UseCase {
	if cfg.PageSize <= 0 {
		cfg.PageSize = inv.DefaultPageSize
	}
	if log == nil {
		log = logger.Nop()
	}
	uc := &UseCase{
		backend:   backend,
		auditRepo: auditRepo,
		reports:   reports,
		cfg:       cfg,
		log:       log,
	}
	uc.sessions = NewSessionStore(cfg.SessionTTL, func(storeID string) *ViewModel {
		return NewViewModel(backend, ViewModelConfig{
			StoreID:           storeID,
			LowStockThreshold: cfg.LowStockThreshold,
			FetchLimit:        cfg.FetchLimit,
		}, log)
	})
	return uc
}

// Sessions store de sesiones (para el janitor y el dashboard).
func (uc *UseCase) Sessions() *SessionStore { return uc.sessions }

// viewModel devuelve el ViewModel de la sesión; si es nueva la carga completa antes de
// entregarla. Si la carga inicial falla la sesión se descarta para reintentar en la próxima petición.
func (uc *UseCase) viewModel(ctx context.Context, userID, storeID string) (*ViewModel, error) {
	if storeID == "" {
		return nil, fmt.Errorf("%w: store_id requerido", domain.ErrInvalidInput)
	}
	return uc.sessions.Acquire(ctx, userID, storeID, func(ctx context.Context, vm *ViewModel) error {
		if err := vm.LoadReferences(ctx); err != nil {
			return err
		}
		if err := vm.Refresh(ctx); err != nil && !errors.Is(err, domain.ErrStaleResponse) {
			return err
		}
		uc.log.Debug().Str("user_id", userID).Str("store_id", storeID).Msg("sesión de inventario creada")
		return nil
	})
}

// ── Consultas ──────────────────────────────────────────────────────────────

// Branches sucursales de la tienda.
func (uc *UseCase) Branches(ctx context.Context, userID, storeID string) (*dto.BranchListResponse, error) {
	vm, err := uc.viewModel(ctx, userID, storeID)
	if err != nil {
		return nil, err
	}
	return &dto.BranchListResponse{Items: vm.Snapshot().Branches}, nil
}

// Categories categorías con su flag activo (refleja los cambios optimistas).
func (uc *UseCase) Categories(ctx context.Context, userID, storeID string) (*dto.CategoryListResponse, error) {
	vm, err := uc.viewModel(ctx, userID, storeID)
	if err != nil {
		return nil, err
	}
	return &dto.CategoryListResponse{Items: vm.Snapshot().Categories}, nil
}

// applyQuery fija los filtros de la petición y devuelve un Snapshot.
// Una recarga descartada por obsoleta no es error: otra petición más nueva ya está cargando.
func (uc *UseCase) applyQuery(ctx context.Context, userID, storeID string, in dto.InventoryQueryRequest) (Snapshot, error) {
	vm, err := uc.viewModel(ctx, userID, storeID)
	if err != nil {
		return Snapshot{}, err
	}
	f := toFilterState(in)
	if in.Refresh {
		err = vm.ReloadWithFilter(ctx, f)
	} else {
		err = vm.SetFilter(ctx, f)
	}
	if err != nil && !errors.Is(err, domain.ErrStaleResponse) {
		return Snapshot{}, err
	}
	return vm.Snapshot(), nil
}

// Query lista filtrada, ordenada y paginada.
func (uc *UseCase) Query(ctx context.Context, userID, storeID string, in dto.InventoryQueryRequest) (*dto.InventoryPageResponse, error) {
	snap, err := uc.applyQuery(ctx, userID, storeID, in)
	if err != nil {
		return nil, err
	}
	pageSize := in.PageSize
	if pageSize <= 0 {
		pageSize = uc.cfg.PageSize
	}
	pageSize = min(pageSize, maxPageSize)
	page := snap.Paginated(in.Page, pageSize)

	return &dto.InventoryPageResponse{
		Items:        toRows(page.Records, snap.Edits),
		Page:         page.Page,
		PageSize:     page.PageSize,
		TotalPages:   page.TotalPages,
		TotalCount:   page.TotalCount,
		Filter:       snap.Filter,
		PendingCount: len(snap.Edits),
		RefreshedAt:  snap.RefreshedAt,
	}, nil
}

// Groups árbol Categoría → Producto → Variante de la lista filtrada.
func (uc *UseCase) Groups(ctx context.Context, userID, storeID string, in dto.InventoryQueryRequest) (*dto.InventoryGroupsResponse, error) {
	snap, err := uc.applyQuery(ctx, userID, storeID, in)
	if err != nil {
		return nil, err
	}
	groups := snap.Grouped()
	return &dto.InventoryGroupsResponse{
		Groups:        toGroupDTOs(groups, snap.Edits),
		TotalVariants: inv.CountVariants(groups),
		PendingCount:  len(snap.Edits),
	}, nil
}

// Statistics estadísticas del backend; no usa la sesión.
func (uc *UseCase) Statistics(ctx context.Context, storeID, branchID string) (*entity.InventoryStatistics, error) {
	if storeID == "" {
		return nil, fmt.Errorf("%w: store_id requerido", domain.ErrInvalidInput)
	}
	return uc.backend.GetStatistics(ctx, storeID, branchID)
}

// ── Ediciones ──────────────────────────────────────────────────────────────

// SetEdit registra un stock propuesto y devuelve las ediciones pendientes.
func (uc *UseCase) SetEdit(ctx context.Context, userID, storeID, inventoryID string, stock int) (*dto.PendingEditsResponse, error) {
	vm, err := uc.viewModel(ctx, userID, storeID)
	if err != nil {
		return nil, err
	}
	if err := vm.SetEdit(inventoryID, stock); err != nil {
		return nil, err
	}
	return pendingEditsResponse(vm), nil
}

// ListEdits ediciones pendientes con el contexto de cada fila.
func (uc *UseCase) ListEdits(ctx context.Context, userID, storeID string) (*dto.PendingEditsResponse, error) {
	vm, err := uc.viewModel(ctx, userID, storeID)
	if err != nil {
		return nil, err
	}
	return pendingEditsResponse(vm), nil
}

// DiscardEdits descarta las ediciones pendientes; devuelve cuántas había.
func (uc *UseCase) DiscardEdits(ctx context.Context, userID, storeID string) (int, error) {
	vm, err := uc.viewModel(ctx, userID, storeID)
	if err != nil {
		return 0, err
	}
	return vm.DiscardEdits(), nil
}

// Commit envía las ediciones pendientes en un bulk-update y registra el intento en la
// bitácora. Si el backend falla las ediciones quedan intactas y se devuelve el error.
func (uc *UseCase) Commit(ctx context.Context, userID, storeID string) (*dto.BulkSaveResponse, error) {
	vm, err := uc.viewModel(ctx, userID, storeID)
	if err != nil {
		return nil, err
	}
	out, saveErr := vm.Save(ctx)
	if errors.Is(saveErr, domain.ErrNothingToSave) {
		return nil, saveErr
	}

	auditID := uc.audit(ctx, storeID, userID, out, saveErr)
	if saveErr != nil {
		uc.log.Warn().Err(saveErr).Str("store_id", storeID).Int("rows", len(out.Updates)).Msg("bulk-save fallido; ediciones conservadas")
		return nil, saveErr
	}

	uc.log.Info().
		Str("store_id", storeID).
		Int("success", out.Result.SuccessCount).
		Int("errors", len(out.Result.Errors)).
		Msg("bulk-save aplicado")
	return &dto.BulkSaveResponse{
		SuccessCount: out.Result.SuccessCount,
		Errors:       out.Result.Errors,
		Remaining:    out.Remaining,
		Refreshed:    out.Refreshed,
		AuditID:      auditID,
	}, nil
}

// audit guarda el intento en la bitácora. Un fallo de la bitácora se registra en el log
// pero no cambia el resultado del guardado.
func (uc *UseCase) audit(ctx context.Context, storeID, userID string, out *SaveOutcome, saveErr error) string {
	if uc.auditRepo == nil || out == nil {
		return ""
	}
	entry := buildBulkSaveLog(storeID, userID, out, saveErr)
	// El registro se escribe aunque el cliente haya cortado la petición.
	if err := uc.auditRepo.Create(context.WithoutCancel(ctx), entry); err != nil {
		uc.log.Error().Err(err).Str("store_id", storeID).Msg("no se pudo registrar el bulk-save")
		return ""
	}
	return entry.ID
}

func buildBulkSaveLog(storeID, userID string, out *SaveOutcome, saveErr error) *entity.BulkSaveLog {
	rowErrors := map[string]string{}
	entry := &entity.BulkSaveLog{
		ID:        uuid.New().String(),
		StoreID:   storeID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	switch {
	case saveErr != nil:
		entry.Status = entity.BulkSaveStatusFailed
		entry.ErrorCount = len(out.Updates)
		entry.Message = saveErr.Error()
	default:
		for _, e := range out.Result.Errors {
			rowErrors[e.InventoryID] = e.Message
		}
		entry.SuccessCount = out.Result.SuccessCount
		entry.ErrorCount = len(out.Result.Errors)
		switch {
		case entry.ErrorCount == 0:
			entry.Status = entity.BulkSaveStatusSucceeded
		case entry.SuccessCount > 0:
			entry.Status = entity.BulkSaveStatusPartial
		default:
			entry.Status = entity.BulkSaveStatusFailed
		}
	}

	entry.Items = make([]entity.BulkSaveLogItem, 0, len(out.Updates))
	for _, u := range out.Updates {
		base := out.Baselines[u.InventoryID]
		item := entity.BulkSaveLogItem{
			InventoryID: u.InventoryID,
			OldStock:    base.Stock,
			NewStock:    u.Stock,
			UnitPrice:   base.VariantPrice,
			ValueDelta:  decimal.Zero,
			Error:       rowErrors[u.InventoryID],
		}
		if saveErr == nil && item.Error == "" {
			item.ValueDelta = inv.StockValueDelta(base.Stock, u.Stock, base.VariantPrice)
		}
		entry.Items = append(entry.Items, item)
	}
	return entry
}

// ListBulkSaves bitácora de bulk-saves de la tienda, más recientes primero.
func (uc *UseCase) ListBulkSaves(ctx context.Context, storeID string, page dto.PageRequest) (*dto.BulkSaveLogListResponse, error) {
	page.DefaultPage()
	resp := &dto.BulkSaveLogListResponse{
		Items: []dto.BulkSaveLogDTO{},
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	if uc.auditRepo == nil {
		return resp, nil
	}
	list, err := uc.auditRepo.ListByStore(ctx, storeID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	for _, l := range list {
		resp.Items = append(resp.Items, toBulkSaveLogDTO(l))
	}
	return resp, nil
}

// ── Flags activos ──────────────────────────────────────────────────────────

// SetCategoryActive cambio optimista del flag activo de una categoría.
func (uc *UseCase) SetCategoryActive(ctx context.Context, userID, storeID, categoryID string, active bool) error {
	vm, err := uc.viewModel(ctx, userID, storeID)
	if err != nil {
		return err
	}
	return vm.SetCategoryActive(ctx, categoryID, active)
}

// SetProductActive cambio optimista del flag activo de un producto.
func (uc *UseCase) SetProductActive(ctx context.Context, userID, storeID, productID string, active bool) error {
	vm, err := uc.viewModel(ctx, userID, storeID)
	if err != nil {
		return err
	}
	return vm.SetProductActive(ctx, productID, active)
}

// ── Reporte ────────────────────────────────────────────────────────────────

// Report PDF del árbol agrupado con los filtros vigentes de la sesión.
func (uc *UseCase) Report(ctx context.Context, userID, storeID string) ([]byte, error) {
	if uc.reports == nil {
		return nil, fmt.Errorf("reporte PDF no configurado")
	}
	vm, err := uc.viewModel(ctx, userID, storeID)
	if err != nil {
		return nil, err
	}
	snap := vm.Snapshot()
	return uc.reports.GenerateInventoryReport(ctx, InventoryReport{
		StoreID:     storeID,
		Groups:      snap.Grouped(),
		Edits:       snap.Edits,
		Filter:      snap.Filter,
		GeneratedAt: time.Now(),
	})
}

// ── Mapeos ─────────────────────────────────────────────────────────────────

func toFilterState(in dto.InventoryQueryRequest) inv.FilterState {
	return inv.FilterState{
		ServerFilters: inv.ServerFilters{
			BranchID:          in.BranchID,
			CategoryID:        in.CategoryID,
			ProductID:         in.ProductID,
			VariantID:         in.VariantID,
			LowStockOnly:      in.LowStockOnly,
			OutOfStockOnly:    in.OutOfStockOnly,
			LowStockThreshold: in.LowStockThreshold,
		},
		SearchTerm: in.Search,
		SortBy:     inv.SortBy(in.SortBy),
	}
}

func toRows(records []entity.InventoryRecord, edits inv.PendingEdits) []dto.InventoryRowDTO {
	out := make([]dto.InventoryRowDTO, 0, len(records))
	for _, r := range records {
		_, pending := edits[r.InventoryID]
		out = append(out, dto.InventoryRowDTO{
			InventoryRecord: r,
			DisplayStock:    inv.DisplayStock(edits, r),
			Pending:         pending,
		})
	}
	return out
}

func toGroupDTOs(groups []inv.CategoryGroup, edits inv.PendingEdits) []dto.CategoryGroupDTO {
	out := make([]dto.CategoryGroupDTO, 0, len(groups))
	for _, g := range groups {
		products := make([]dto.ProductGroupDTO, 0, len(g.Products))
		for _, p := range g.Products {
			products = append(products, dto.ProductGroupDTO{
				ProductID:    p.ProductID,
				ProductName:  p.ProductName,
				IsActive:     p.IsActive,
				ProductImage: p.ProductImage,
				Variants:     toRows(p.Variants, edits),
			})
		}
		out = append(out, dto.CategoryGroupDTO{
			Key:           g.Key,
			CategoryID:    g.CategoryID,
			CategoryName:  g.CategoryName,
			IsActive:      g.IsActive,
			CategoryImage: g.CategoryImage,
			Products:      products,
		})
	}
	return out
}

func pendingEditsResponse(vm *ViewModel) *dto.PendingEditsResponse {
	updates := inv.Commit(vm.PendingEdits())
	items := make([]dto.PendingEditDTO, 0, len(updates))
	for _, u := range updates {
		item := dto.PendingEditDTO{InventoryID: u.InventoryID, Stock: u.Stock}
		if r, ok := vm.Record(u.InventoryID); ok {
			item.ProductName = r.ProductName
			item.VariantName = r.VariantName
			item.BranchName = r.BranchName
			item.BaselineStock = r.Stock
		}
		items = append(items, item)
	}
	return &dto.PendingEditsResponse{Items: items, Count: len(items)}
}

func toBulkSaveLogDTO(l *entity.BulkSaveLog) dto.BulkSaveLogDTO {
	d := dto.BulkSaveLogDTO{
		ID:           l.ID,
		UserID:       l.UserID,
		Status:       l.Status,
		SuccessCount: l.SuccessCount,
		ErrorCount:   l.ErrorCount,
		Message:      l.Message,
		ValueDelta:   decimal.Zero,
		Items:        make([]dto.BulkSaveLogItemDTO, 0, len(l.Items)),
		CreatedAt:    l.CreatedAt,
	}
	for _, it := range l.Items {
		d.ValueDelta = d.ValueDelta.Add(it.ValueDelta)
		d.Items = append(d.Items, dto.BulkSaveLogItemDTO{
			InventoryID: it.InventoryID,
			OldStock:    it.OldStock,
			NewStock:    it.NewStock,
			UnitPrice:   it.UnitPrice,
			ValueDelta:  it.ValueDelta,
			Error:       it.Error,
		})
	}
	return d
}
