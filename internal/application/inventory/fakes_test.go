package inventory_test

import (
	"context"
	"sync"

	"github.com/jhoicas/inventario-dashboard/internal/application/inventory"
	"github.com/jhoicas/inventario-dashboard/internal/application/ports"
	"github.com/jhoicas/inventario-dashboard/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Backend falso en memoria
// ──────────────────────────────────────────────────────────────────────────────

// fakeBackend simula el backend de la tienda. El bulk-update aplica las filas sin error
// sobre records, así la recarga posterior ve el stock guardado.
type fakeBackend struct {
	mu         sync.Mutex
	branches   []entity.Branch
	categories []entity.CategoryMeta
	products   []entity.ProductMeta
	records    []entity.InventoryRecord
	stats      *entity.InventoryStatistics

	refErr        error
	listInventory func(ctx context.Context, q ports.InventoryQuery) ([]entity.InventoryRecord, error)
	queries       []ports.InventoryQuery

	bulkErr    error
	bulkErrors []entity.BulkRowError
	bulkCalls  [][]entity.StockUpdate

	toggleErr error
	onToggle  func()
	toggles   []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		branches: []entity.Branch{{ID: "b1", Name: "Centro"}, {ID: "b2", Name: "Norte"}},
		categories: []entity.CategoryMeta{
			{ID: "c-food", Name: "Food", IsActive: true},
			{ID: "c-drinks", Name: "Drinks", IsActive: true},
			{ID: "c-empty", Name: "Empty", IsActive: false},
		},
		products: []entity.ProductMeta{
			{ID: "p-pizza", Name: "Pizza", CategoryID: "c-food", IsActive: true},
			{ID: "p-coke", Name: "Coke", CategoryID: "c-drinks", IsActive: true},
		},
		records: []entity.InventoryRecord{
			{InventoryID: "1", ProductID: "p-pizza", ProductName: "Pizza", CategoryID: "c-food", CategoryName: "Food", VariantName: "Grande", BranchID: "b1", BranchName: "Centro", Stock: 5, VariantPrice: decimal.NewFromInt(1000), ProductActive: true},
			{InventoryID: "2", ProductID: "p-pizza", ProductName: "Pizza", CategoryID: "c-food", CategoryName: "Food", VariantName: "Mediana", BranchID: "b1", BranchName: "Centro", Stock: 0, VariantPrice: decimal.NewFromInt(800), ProductActive: true},
			{InventoryID: "3", ProductID: "p-coke", ProductName: "Coke", CategoryID: "c-drinks", CategoryName: "Drinks", VariantName: "Lata", BranchID: "b2", BranchName: "Norte", Stock: 20, VariantPrice: decimal.NewFromInt(250), ProductActive: true},
		},
		stats: &entity.InventoryStatistics{TotalItems: 3, TotalStock: 25, InStockCount: 1, LowStockCount: 1, OutOfStockCount: 1},
	}
}

func (f *fakeBackend) ListBranches(context.Context, string) ([]entity.Branch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.Branch(nil), f.branches...), f.refErr
}

func (f *fakeBackend) ListCategories(context.Context, string) ([]entity.CategoryMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.CategoryMeta(nil), f.categories...), f.refErr
}

func (f *fakeBackend) ListProducts(context.Context, string, string, int) ([]entity.ProductMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.ProductMeta(nil), f.products...), f.refErr
}

func (f *fakeBackend) ListInventory(ctx context.Context, q ports.InventoryQuery) ([]entity.InventoryRecord, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	override := f.listInventory
	f.mu.Unlock()
	if override != nil {
		return override(ctx, q)
	}
	return f.snapshotRecords(), nil
}

func (f *fakeBackend) snapshotRecords() []entity.InventoryRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.InventoryRecord(nil), f.records...)
}

func (f *fakeBackend) GetStatistics(context.Context, string, string) (*entity.InventoryStatistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := *f.stats
	return &s, nil
}

func (f *fakeBackend) BulkUpdateInventory(_ context.Context, _ string, updates []entity.StockUpdate) (*entity.BulkUpdateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkCalls = append(f.bulkCalls, updates)
	if f.bulkErr != nil {
		return nil, f.bulkErr
	}
	failed := map[string]bool{}
	for _, e := range f.bulkErrors {
		failed[e.InventoryID] = true
	}
	ok := 0
	for _, u := range updates {
		if failed[u.InventoryID] {
			continue
		}
		for i := range f.records {
			if f.records[i].InventoryID == u.InventoryID {
				f.records[i].Stock = u.Stock
			}
		}
		ok++
	}
	return &entity.BulkUpdateResult{SuccessCount: ok, Errors: f.bulkErrors}, nil
}

func (f *fakeBackend) SetCategoryActive(_ context.Context, _ string, id string, _ bool) error {
	return f.toggle("category:" + id)
}

func (f *fakeBackend) SetProductActive(_ context.Context, _ string, id string, _ bool) error {
	return f.toggle("product:" + id)
}

func (f *fakeBackend) toggle(key string) error {
	f.mu.Lock()
	f.toggles = append(f.toggles, key)
	hook, err := f.onToggle, f.toggleErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return err
}

func (f *fakeBackend) inventoryCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

// ──────────────────────────────────────────────────────────────────────────────
// Bitácora y generador de reportes falsos
// ──────────────────────────────────────────────────────────────────────────────

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*entity.BulkSaveLog
}

func (r *fakeAuditRepo) Create(_ context.Context, l *entity.BulkSaveLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, l)
	return nil
}

func (r *fakeAuditRepo) ListByStore(_ context.Context, storeID string, limit, offset int) ([]*entity.BulkSaveLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.BulkSaveLog
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].StoreID == storeID {
			out = append(out, r.entries[i])
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	return out[offset:min(offset+limit, len(out))], nil
}

func (r *fakeAuditRepo) GetByID(_ context.Context, id string) (*entity.BulkSaveLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

type fakeReports struct {
	got *inventory.InventoryReport
}

func (g *fakeReports) GenerateInventoryReport(_ context.Context, r inventory.InventoryReport) ([]byte, error) {
	g.got = &r
	return []byte("%PDF-fake"), nil
}
