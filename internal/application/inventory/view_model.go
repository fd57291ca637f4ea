package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/inventario-dashboard/internal/application/ports"
	"github.com/jhoicas/inventario-dashboard/internal/domain"
	"github.com/jhoicas/inventario-dashboard/internal/domain/entity"
	inv "github.com/jhoicas/inventario-dashboard/internal/domain/inventory"
	"github.com/jhoicas/inventario-dashboard/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// ViewModelConfig parámetros de un ViewModel.
type ViewModelConfig struct {
	StoreID           string
	LowStockThreshold int // umbral por defecto si el filtro no trae uno
	FetchLimit        int // límite de filas pedidas al backend por recarga
}

// ViewModel estado del inventario de una tienda para un usuario: filas del servidor,
// filtros, ediciones pendientes y listas de referencia.
//
// Las llamadas de red se hacen fuera del lock. Cada recarga de inventario lleva un número
// de generación monótono; al iniciar una recarga se cancela la anterior y una respuesta
// cuya generación ya no es la vigente se descarta (domain.ErrStaleResponse).
type ViewModel struct {
	backend ports.StoreBackend
	cfg     ViewModelConfig
	log     *logger.Logger

	mu          sync.Mutex
	records     []entity.InventoryRecord
	filter      inv.FilterState
	edits       inv.PendingEdits
	branches    []entity.Branch
	categories  []entity.CategoryMeta
	products    []entity.ProductMeta
	generation  uint64
	cancelFetch context.CancelFunc
	loaded      bool
	refreshedAt time.Time
	// fetched filtros de servidor con los que se obtuvieron records; puede diferir de
	// filter.ServerFilters si la última recarga falló.
	fetched inv.ServerFilters
}

// NewViewModel construye el ViewModel vacío; llamar LoadReferences y Refresh para poblarlo.
func NewViewModel(backend ports.StoreBackend, cfg ViewModelConfig, log *logger.Logger) *ViewModel {
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = 1000
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ViewModel{
		backend: backend,
		cfg:     cfg,
		log:     log.Store(cfg.StoreID),
		edits:   inv.PendingEdits{},
		filter: inv.FilterState{
			ServerFilters: inv.ServerFilters{LowStockThreshold: cfg.LowStockThreshold},
		},
	}
}

// StoreID tienda a la que pertenece el ViewModel.
func (vm *ViewModel) StoreID() string { return vm.cfg.StoreID }

// Loaded indica si ya hubo al menos una recarga de inventario exitosa.
func (vm *ViewModel) Loaded() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.loaded
}

// LoadReferences pide sucursales, categorías y productos en paralelo.
// Si alguna falla no se modifica ninguna de las tres listas.
func (vm *ViewModel) LoadReferences(ctx context.Context) error {
	vm.mu.Lock()
	categoryID := vm.filter.CategoryID
	vm.mu.Unlock()

	var (
		branches   []entity.Branch
		categories []entity.CategoryMeta
		products   []entity.ProductMeta
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		branches, err = vm.backend.ListBranches(gctx, vm.cfg.StoreID)
		if err != nil {
			return fmt.Errorf("sucursales: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		categories, err = vm.backend.ListCategories(gctx, vm.cfg.StoreID)
		if err != nil {
			return fmt.Errorf("categorías: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		products, err = vm.backend.ListProducts(gctx, vm.cfg.StoreID, categoryID, vm.cfg.FetchLimit)
		if err != nil {
			return fmt.Errorf("productos: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("referencias: %w", err)
	}

	vm.mu.Lock()
	vm.branches = branches
	vm.categories = categories
	vm.products = products
	vm.mu.Unlock()
	return nil
}

// Refresh vuelve a pedir el inventario con los filtros de servidor vigentes.
func (vm *ViewModel) Refresh(ctx context.Context) error {
	vm.mu.Lock()
	vm.generation++
	gen := vm.generation
	if vm.cancelFetch != nil {
		vm.cancelFetch()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	vm.cancelFetch = cancel
	query := ports.InventoryQuery{
		StoreID:       vm.cfg.StoreID,
		ServerFilters: vm.filter.ServerFilters,
		Limit:         vm.cfg.FetchLimit,
		Page:          1,
	}
	vm.mu.Unlock()
	defer cancel()

	records, err := vm.backend.ListInventory(fetchCtx, query)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if gen != vm.generation {
		vm.log.Debug().Uint64("generation", gen).Uint64("current", vm.generation).Msg("respuesta de inventario obsoleta descartada")
		return domain.ErrStaleResponse
	}
	vm.cancelFetch = nil
	if err != nil {
		return fmt.Errorf("inventario: %w", err)
	}

	vm.records = records
	vm.fetched = query.ServerFilters
	vm.loaded = true
	vm.refreshedAt = time.Now()
	vm.edits = pruneEdits(vm.edits, records)

	if names := inv.NameJoinCollisions(records, vm.categories); len(names) > 0 {
		vm.log.Warn().Strs("categories", names).Msg("filas sin category_id con nombre de categoría ambiguo; se agrupan juntas")
	}
	return nil
}

// pruneEdits quita las ediciones que, con el stock recién recibido, ya no son cambios.
// Las ediciones de filas que no vinieron (otro filtro) se conservan.
func pruneEdits(edits inv.PendingEdits, records []entity.InventoryRecord) inv.PendingEdits {
	if len(edits) == 0 {
		return edits
	}
	var same []string
	for _, r := range records {
		if v, ok := edits[r.InventoryID]; ok && v == r.Stock {
			same = append(same, r.InventoryID)
		}
	}
	if len(same) == 0 {
		return edits
	}
	return edits.Without(same...)
}

// SetFilter cambia los filtros. Si los filtros de servidor difieren de los de la última
// recarga exitosa (o nunca se cargó) se recarga el inventario; búsqueda y orden se aplican en memoria sin ir a la red.
func (vm *ViewModel) SetFilter(ctx context.Context, f inv.FilterState) error {
	return vm.setFilter(ctx, f, false)
}

// ReloadWithFilter como SetFilter pero recarga siempre (botón "actualizar").
func (vm *ViewModel) ReloadWithFilter(ctx context.Context, f inv.FilterState) error {
	return vm.setFilter(ctx, f, true)
}

func (vm *ViewModel) setFilter(ctx context.Context, f inv.FilterState, force bool) error {
	if !f.SortBy.Valid() {
		return fmt.Errorf("%w: sort_by %q", domain.ErrInvalidInput, f.SortBy)
	}
	if f.LowStockThreshold < 0 {
		return fmt.Errorf("%w: low_stock_threshold negativo", domain.ErrInvalidInput)
	}
	if f.LowStockThreshold == 0 {
		f.LowStockThreshold = vm.cfg.LowStockThreshold
	}

	vm.mu.Lock()
	needsFetch := force || !vm.loaded || f.ServerFilters != vm.fetched
	vm.filter = f
	vm.mu.Unlock()

	if !needsFetch {
		return nil
	}
	return vm.Refresh(ctx)
}

// Snapshot vista consistente del estado en un instante.
type Snapshot struct {
	Filter      inv.FilterState
	Filtered    []entity.InventoryRecord
	Edits       inv.PendingEdits
	Branches    []entity.Branch
	Categories  []entity.CategoryMeta
	Products    []entity.ProductMeta
	RefreshedAt time.Time
}

// Snapshot copia el estado bajo el lock y aplica búsqueda/orden fuera de él.
func (vm *ViewModel) Snapshot() Snapshot {
	vm.mu.Lock()
	records := vm.records
	s := Snapshot{
		Filter:      vm.filter,
		Edits:       vm.edits,
		Branches:    append([]entity.Branch(nil), vm.branches...),
		Categories:  append([]entity.CategoryMeta(nil), vm.categories...),
		Products:    append([]entity.ProductMeta(nil), vm.products...),
		RefreshedAt: vm.refreshedAt,
	}
	vm.mu.Unlock()

	// records y edits nunca se modifican en sitio (se reemplazan), compartirlos es seguro.
	s.Filtered = inv.Apply(records, s.Filter)
	return s
}

// Grouped árbol Categoría → Producto → Variante de la lista filtrada.
func (s Snapshot) Grouped() []inv.CategoryGroup {
	return inv.Group(s.Filtered, s.Categories, s.Products)
}

// Paginated página de la lista filtrada.
func (s Snapshot) Paginated(page, pageSize int) inv.Page {
	return inv.Paginate(s.Filtered, page, pageSize)
}

// Filtered lista filtrada y ordenada.
func (vm *ViewModel) Filtered() []entity.InventoryRecord { return vm.Snapshot().Filtered }

// Grouped árbol de la lista filtrada.
func (vm *ViewModel) Grouped() []inv.CategoryGroup { return vm.Snapshot().Grouped() }

// Paginated página de la lista filtrada.
func (vm *ViewModel) Paginated(page, pageSize int) inv.Page {
	return vm.Snapshot().Paginated(page, pageSize)
}

// Filter filtros vigentes.
func (vm *ViewModel) Filter() inv.FilterState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.filter
}

// PendingEdits ediciones pendientes actuales (no modificar).
func (vm *ViewModel) PendingEdits() inv.PendingEdits {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.edits
}

// Record busca una fila por inventory_id en el último inventario recibido.
func (vm *ViewModel) Record(inventoryID string) (entity.InventoryRecord, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return findRecord(vm.records, inventoryID)
}

func findRecord(records []entity.InventoryRecord, inventoryID string) (entity.InventoryRecord, bool) {
	for _, r := range records {
		if r.InventoryID == inventoryID {
			return r, true
		}
	}
	return entity.InventoryRecord{}, false
}

// SetEdit registra el stock propuesto para una fila; la base es el stock del servidor.
func (vm *ViewModel) SetEdit(inventoryID string, proposed int) error {
	if proposed < 0 {
		return fmt.Errorf("%w: stock negativo", domain.ErrInvalidInput)
	}
	vm.mu.Lock()
	defer vm.mu.Unlock()
	r, ok := findRecord(vm.records, inventoryID)
	if !ok {
		return domain.ErrNotFound
	}
	vm.edits = inv.SetEdit(vm.edits, inventoryID, proposed, r.Stock)
	return nil
}

// DiscardEdits descarta todas las ediciones pendientes y devuelve cuántas había.
func (vm *ViewModel) DiscardEdits() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	n := len(vm.edits)
	vm.edits = inv.PendingEdits{}
	return n
}

// SaveOutcome resultado de un bulk-save.
type SaveOutcome struct {
	Updates   []entity.StockUpdate
	Baselines map[string]entity.InventoryRecord // fila del servidor al momento de enviar
	Result    *entity.BulkUpdateResult          // nil si el backend no respondió o rechazó
	Refreshed bool
	Remaining int // ediciones que siguen pendientes tras el guardado
}

// Save envía las ediciones pendientes en un único bulk-update.
//
// Si la llamada falla el mapa de ediciones queda intacto para reintentar, y se devuelve
// el SaveOutcome junto con el error (para auditoría). Si tiene éxito se eliminan las
// ediciones confirmadas (las filas con error siguen pendientes) y se recarga el inventario;
// un fallo de esa recarga no convierte el guardado en error.
func (vm *ViewModel) Save(ctx context.Context) (*SaveOutcome, error) {
	vm.mu.Lock()
	edits := vm.edits
	baselines := make(map[string]entity.InventoryRecord, len(edits))
	for id := range edits {
		if r, ok := findRecord(vm.records, id); ok {
			baselines[id] = r
		}
	}
	vm.mu.Unlock()

	if len(edits) == 0 {
		return nil, domain.ErrNothingToSave
	}
	out := &SaveOutcome{Updates: inv.Commit(edits), Baselines: baselines}

	result, err := vm.backend.BulkUpdateInventory(ctx, vm.cfg.StoreID, out.Updates)
	if err != nil {
		out.Remaining = len(edits)
		return out, fmt.Errorf("bulk-save: %w", err)
	}
	out.Result = result

	failed := make(map[string]bool, len(result.Errors))
	for _, e := range result.Errors {
		failed[e.InventoryID] = true
	}

	vm.mu.Lock()
	var confirmed []string
	for _, u := range out.Updates {
		// Si el usuario volvió a editar la fila mientras se guardaba, esa edición nueva se conserva.
		if cur, ok := vm.edits[u.InventoryID]; ok && cur == u.Stock && !failed[u.InventoryID] {
			confirmed = append(confirmed, u.InventoryID)
		}
	}
	vm.edits = vm.edits.Without(confirmed...)
	vm.mu.Unlock()

	if err := vm.Refresh(ctx); err != nil {
		if !errors.Is(err, domain.ErrStaleResponse) {
			vm.log.Warn().Err(err).Msg("recarga posterior al bulk-save fallida")
		}
	} else {
		out.Refreshed = true
	}

	vm.mu.Lock()
	out.Remaining = len(vm.edits)
	vm.mu.Unlock()
	return out, nil
}

// SetCategoryActive cambia el flag activo de una categoría de forma optimista.
func (vm *ViewModel) SetCategoryActive(ctx context.Context, categoryID string, active bool) error {
	u := optimisticUpdate{
		apply: func() (func(), error) {
			prev, ok := setCategoryFlag(&vm.categories, categoryID, active)
			if !ok {
				return nil, domain.ErrNotFound
			}
			return func() { setCategoryFlag(&vm.categories, categoryID, prev) }, nil
		},
		confirm: func(ctx context.Context) error {
			return vm.backend.SetCategoryActive(ctx, vm.cfg.StoreID, categoryID, active)
		},
	}
	if err := u.run(ctx, &vm.mu); err != nil {
		return fmt.Errorf("categoría %s: %w", categoryID, err)
	}
	return nil
}

// SetProductActive cambia el flag activo de un producto de forma optimista, tanto en la
// lista de referencia como en las filas de inventario del producto.
func (vm *ViewModel) SetProductActive(ctx context.Context, productID string, active bool) error {
	u := optimisticUpdate{
		apply: func() (func(), error) {
			prevMeta, inMetas := setProductFlag(&vm.products, productID, active)
			prevRecords, inRecords := setRecordsProductFlag(&vm.records, productID, active)
			if !inMetas && !inRecords {
				return nil, domain.ErrNotFound
			}
			return func() {
				if inMetas {
					setProductFlag(&vm.products, productID, prevMeta)
				}
				if inRecords {
					setRecordsProductFlag(&vm.records, productID, prevRecords)
				}
			}, nil
		},
		confirm: func(ctx context.Context) error {
			return vm.backend.SetProductActive(ctx, vm.cfg.StoreID, productID, active)
		},
	}
	if err := u.run(ctx, &vm.mu); err != nil {
		return fmt.Errorf("producto %s: %w", productID, err)
	}
	return nil
}

// Los setters reemplazan el slice (copy-on-write): los Snapshot ya entregados no cambian.

func setCategoryFlag(list *[]entity.CategoryMeta, id string, active bool) (prev bool, ok bool) {
	next := append([]entity.CategoryMeta(nil), (*list)...)
	for i := range next {
		if next[i].ID == id {
			prev, ok = next[i].IsActive, true
			next[i].IsActive = active
			break
		}
	}
	if ok {
		*list = next
	}
	return prev, ok
}

func setProductFlag(list *[]entity.ProductMeta, id string, active bool) (prev bool, ok bool) {
	next := append([]entity.ProductMeta(nil), (*list)...)
	for i := range next {
		if next[i].ID == id {
			prev, ok = next[i].IsActive, true
			next[i].IsActive = active
			break
		}
	}
	if ok {
		*list = next
	}
	return prev, ok
}

func setRecordsProductFlag(list *[]entity.InventoryRecord, productID string, active bool) (prev bool, ok bool) {
	next := append([]entity.InventoryRecord(nil), (*list)...)
	for i := range next {
		if next[i].ProductID == productID {
			if !ok {
				prev, ok = next[i].ProductActive, true
			}
			next[i].ProductActive = active
		}
	}
	if ok {
		*list = next
	}
	return prev, ok
}
