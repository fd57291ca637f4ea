package inventory_test

import (
	"testing"

	"github.com/jhoicas/inventario-dashboard/internal/domain/entity"
	"github.com/jhoicas/inventario-dashboard/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ──────────────────────────────────────────────────────────────────────────────
// Datos de prueba
// ──────────────────────────────────────────────────────────────────────────────

const testThreshold = 10

// pizzaCokeRecords escenario de referencia: dos variantes de Pizza (Food) y una Coke (Drinks).
func pizzaCokeRecords() []entity.InventoryRecord {
	return []entity.InventoryRecord{
		{InventoryID: "1", ProductID: "p-pizza", ProductName: "Pizza", CategoryName: "Food", VariantName: "Grande", BranchName: "Centro", Stock: 5, ProductActive: true},
		{InventoryID: "2", ProductID: "p-pizza", ProductName: "Pizza", CategoryName: "Food", VariantName: "Mediana", BranchName: "Centro", Stock: 0, ProductActive: true},
		{InventoryID: "3", ProductID: "p-coke", ProductName: "Coke", CategoryName: "Drinks", VariantName: "Lata", BranchName: "Norte", Stock: 20, ProductActive: true},
	}
}

func ids(records []entity.InventoryRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.InventoryID)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Filter/Sort
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_BusquedaSinDistinguirMayusculas(t *testing.T) {
	out := inventory.Apply(pizzaCokeRecords(), inventory.FilterState{SearchTerm: "PIZ"})
	assert.Equal(t, []string{"1", "2"}, ids(out))

	out = inventory.Apply(pizzaCokeRecords(), inventory.FilterState{SearchTerm: "drinks"})
	assert.Equal(t, []string{"3"}, ids(out), "debe buscar también en category_name")

	out = inventory.Apply(pizzaCokeRecords(), inventory.FilterState{SearchTerm: "norte"})
	assert.Equal(t, []string{"3"}, ids(out), "debe buscar también en branch_name")

	out = inventory.Apply(pizzaCokeRecords(), inventory.FilterState{SearchTerm: "mediana"})
	assert.Equal(t, []string{"2"}, ids(out), "debe buscar también en variant_name")
}

func TestApply_BusquedaUnicode(t *testing.T) {
	records := []entity.InventoryRecord{
		{InventoryID: "1", ProductName: "Piña colada"},
		{InventoryID: "2", ProductName: "Café"},
	}
	out := inventory.Apply(records, inventory.FilterState{SearchTerm: "PIÑA"})
	assert.Equal(t, []string{"1"}, ids(out))
}

func TestApply_OrdenEstable(t *testing.T) {
	records := []entity.InventoryRecord{
		{InventoryID: "a", ProductName: "Pizza", Stock: 5},
		{InventoryID: "b", ProductName: "Coke", Stock: 5},
		{InventoryID: "c", ProductName: "Pizza", Stock: 1},
		{InventoryID: "d", ProductName: "Coke", Stock: 9},
	}

	byName := inventory.Apply(records, inventory.FilterState{SortBy: inventory.SortByName})
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(byName), "empates por nombre conservan el orden de entrada")

	low := inventory.Apply(records, inventory.FilterState{SortBy: inventory.SortByStockLow})
	assert.Equal(t, []string{"c", "a", "b", "d"}, ids(low))

	high := inventory.Apply(records, inventory.FilterState{SortBy: inventory.SortByStockHigh})
	assert.Equal(t, []string{"d", "a", "b", "c"}, ids(high))

	none := inventory.Apply(records, inventory.FilterState{})
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(none))
}

func TestApply_Idempotente(t *testing.T) {
	states := []inventory.FilterState{
		{},
		{SearchTerm: "pi", SortBy: inventory.SortByStockHigh},
		{SearchTerm: "o", SortBy: inventory.SortByName},
		{SortBy: inventory.SortByStockLow},
	}
	for _, f := range states {
		once := inventory.Apply(pizzaCokeRecords(), f)
		twice := inventory.Apply(once, f)
		assert.Equal(t, once, twice, "Apply debe ser idempotente para %+v", f)
	}
}

func TestApply_NoModificaEntrada(t *testing.T) {
	records := pizzaCokeRecords()
	_ = inventory.Apply(records, inventory.FilterState{SortBy: inventory.SortByStockHigh})
	assert.Equal(t, []string{"1", "2", "3"}, ids(records))
}

// ──────────────────────────────────────────────────────────────────────────────
// Grouping
// ──────────────────────────────────────────────────────────────────────────────

func TestGroup_EscenarioPizzaCoke(t *testing.T) {
	groups := inventory.Group(pizzaCokeRecords(), nil, nil)

	require.Len(t, groups, 2)
	assert.Equal(t, "Drinks", groups[0].CategoryName)
	assert.Equal(t, "Food", groups[1].CategoryName)

	require.Len(t, groups[0].Products, 1)
	assert.Equal(t, "Coke", groups[0].Products[0].ProductName)
	assert.Len(t, groups[0].Products[0].Variants, 1)

	require.Len(t, groups[1].Products, 1)
	assert.Equal(t, "Pizza", groups[1].Products[0].ProductName)
	assert.Equal(t, []string{"1", "2"}, ids(groups[1].Products[0].Variants))

	assert.Equal(t, "name:Food", groups[1].Key)
}

func TestGroup_SiembraCategoriasVacias(t *testing.T) {
	categories := []entity.CategoryMeta{
		{ID: "c-food", Name: "Food", IsActive: true},
		{ID: "c-empty", Name: "Accesorios", IsActive: false},
	}
	groups := inventory.Group(pizzaCokeRecords(), categories, nil)

	require.Len(t, groups, 3)
	assert.Equal(t, "Accesorios", groups[0].CategoryName)
	assert.Empty(t, groups[0].Products)
	assert.False(t, groups[0].IsActive)

	// Food se une por nombre a la categoría conocida y hereda su id.
	assert.Equal(t, "id:c-food", groups[2].Key)
	assert.Equal(t, "c-food", groups[2].CategoryID)
	assert.Len(t, groups[2].Products[0].Variants, 2)
}

func TestGroup_PrefiereCategoryIDDeLaFila(t *testing.T) {
	categories := []entity.CategoryMeta{{ID: "c1", Name: "Food", IsActive: false}}
	records := []entity.InventoryRecord{
		{InventoryID: "1", ProductID: "p1", ProductName: "Pizza", CategoryID: "c1", CategoryName: "Comida"},
		{InventoryID: "2", ProductID: "p2", ProductName: "Taco", CategoryID: "c9", CategoryName: "Food"},
	}
	groups := inventory.Group(records, categories, nil)

	require.Len(t, groups, 2)
	byKey := map[string]inventory.CategoryGroup{}
	for _, g := range groups {
		byKey[g.Key] = g
	}
	assert.Equal(t, "Pizza", byKey["id:c1"].Products[0].ProductName)
	assert.False(t, byKey["id:c1"].IsActive)
	assert.Equal(t, "Taco", byKey["id:c9"].Products[0].ProductName)
}

func TestGroup_UsaMetadatosDeProducto(t *testing.T) {
	products := []entity.ProductMeta{{ID: "p-pizza", Name: "Pizza", IsActive: false, ImageURL: "https://cdn/pizza.png"}}
	groups := inventory.Group(pizzaCokeRecords(), nil, products)

	food := groups[1]
	assert.False(t, food.Products[0].IsActive)
	assert.Equal(t, "https://cdn/pizza.png", food.Products[0].ProductImage)
	assert.True(t, groups[0].Products[0].IsActive, "sin metadatos se usa product_active de la fila")
}

func TestGroup_EsParticion(t *testing.T) {
	records := append(pizzaCokeRecords(),
		entity.InventoryRecord{InventoryID: "4", ProductID: "p-x", ProductName: "Sin categoría"},
		entity.InventoryRecord{InventoryID: "5", ProductID: "p-pizza", ProductName: "Pizza", CategoryID: "c-food", CategoryName: "Food"},
	)
	groups := inventory.Group(records, []entity.CategoryMeta{{ID: "c-food", Name: "Food"}}, nil)

	assert.Equal(t, len(records), inventory.CountVariants(groups))
	seen := map[string]int{}
	for _, g := range groups {
		for _, p := range g.Products {
			for _, v := range p.Variants {
				seen[v.InventoryID]++
			}
		}
	}
	for _, r := range records {
		assert.Equal(t, 1, seen[r.InventoryID], "la fila %s debe aparecer exactamente una vez", r.InventoryID)
	}
}

func TestNameJoinCollisions(t *testing.T) {
	categories := []entity.CategoryMeta{
		{ID: "c1", Name: "Food"},
		{ID: "c2", Name: "Food"},
		{ID: "c3", Name: "Drinks"},
	}
	assert.Equal(t, []string{"Food"}, inventory.NameJoinCollisions(pizzaCokeRecords(), categories))
	assert.Empty(t, inventory.NameJoinCollisions(pizzaCokeRecords(), categories[1:]))
}

// ──────────────────────────────────────────────────────────────────────────────
// Pending edits
// ──────────────────────────────────────────────────────────────────────────────

func TestSetEdit_EscenarioIdaYVuelta(t *testing.T) {
	edits := inventory.SetEdit(inventory.PendingEdits{}, "1", 7, 5)
	assert.Equal(t, inventory.PendingEdits{"1": 7}, edits)

	edits = inventory.SetEdit(edits, "1", 5, 5)
	assert.Empty(t, edits, "volver al valor base elimina la edición")
}

func TestSetEdit_NoModificaOriginal(t *testing.T) {
	original := inventory.PendingEdits{"1": 7}
	next := inventory.SetEdit(original, "2", 3, 4)
	assert.Equal(t, inventory.PendingEdits{"1": 7}, original)
	assert.Equal(t, inventory.PendingEdits{"1": 7, "2": 3}, next)

	fromNil := inventory.SetEdit(nil, "9", 1, 0)
	assert.Equal(t, inventory.PendingEdits{"9": 1}, fromNil)
}

func TestCommit_OrdenadoPorID(t *testing.T) {
	updates := inventory.Commit(inventory.PendingEdits{"b": 2, "a": 1})
	assert.Equal(t, []entity.StockUpdate{{InventoryID: "a", Stock: 1}, {InventoryID: "b", Stock: 2}}, updates)
	assert.Empty(t, inventory.Commit(nil))
}

func TestDisplayStock(t *testing.T) {
	r := entity.InventoryRecord{InventoryID: "1", Stock: 5}
	assert.Equal(t, 5, inventory.DisplayStock(nil, r))
	assert.Equal(t, 7, inventory.DisplayStock(inventory.PendingEdits{"1": 7}, r))
	assert.Equal(t, 5, r.Stock)
}

func TestPendingEdits_Without(t *testing.T) {
	edits := inventory.PendingEdits{"1": 7, "2": 3}
	assert.Equal(t, inventory.PendingEdits{"2": 3}, edits.Without("1"))
	assert.Len(t, edits, 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// Paginator
// ──────────────────────────────────────────────────────────────────────────────

func makeRecords(n int) []entity.InventoryRecord {
	out := make([]entity.InventoryRecord, n)
	for i := range out {
		out[i] = entity.InventoryRecord{InventoryID: string(rune('a' + i))}
	}
	return out
}

func TestPaginate_ConcatenacionReproduceLaLista(t *testing.T) {
	for _, n := range []int{0, 1, 7, 10, 11} {
		records := makeRecords(n)
		first := inventory.Paginate(records, 1, 5)
		assert.Equal(t, (n+4)/5, first.TotalPages)
		assert.Equal(t, n, first.TotalCount)

		var all []entity.InventoryRecord
		for p := 1; p <= first.TotalPages; p++ {
			all = append(all, inventory.Paginate(records, p, 5).Records...)
		}
		assert.Equal(t, ids(records), ids(all), "n=%d", n)
	}
}

func TestPaginate_AcotaLaPagina(t *testing.T) {
	records := makeRecords(7)

	over := inventory.Paginate(records, 99, 5)
	assert.Equal(t, 2, over.Page)
	assert.Len(t, over.Records, 2)

	under := inventory.Paginate(records, -3, 5)
	assert.Equal(t, 1, under.Page)
	assert.Len(t, under.Records, 5)

	empty := inventory.Paginate(nil, 3, 5)
	assert.Equal(t, 1, empty.Page)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Empty(t, empty.Records)

	def := inventory.Paginate(makeRecords(25), 1, 0)
	assert.Equal(t, inventory.DefaultPageSize, def.PageSize)
	assert.Len(t, def.Records, inventory.DefaultPageSize)
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock status / valor
// ──────────────────────────────────────────────────────────────────────────────

func TestDeriveStockStatus(t *testing.T) {
	assert.Equal(t, entity.StockStatusOutOfStock, inventory.DeriveStockStatus(0, testThreshold))
	assert.Equal(t, entity.StockStatusLowStock, inventory.DeriveStockStatus(5, testThreshold))
	assert.Equal(t, entity.StockStatusLowStock, inventory.DeriveStockStatus(10, testThreshold))
	assert.Equal(t, entity.StockStatusInStock, inventory.DeriveStockStatus(20, testThreshold))
}

func TestStockValue(t *testing.T) {
	price := decimal.RequireFromString("1250.50")

	assert.True(t, decimal.RequireFromString("5002").Equal(inventory.StockValue(4, price)))
	assert.True(t, inventory.StockValue(0, price).IsZero())
	assert.True(t, inventory.StockValue(-3, price).IsZero(), "stock negativo no resta valor")
}

func TestStockValueDelta(t *testing.T) {
	price := decimal.NewFromInt(800)

	assert.True(t, decimal.NewFromInt(5600).Equal(inventory.StockValueDelta(0, 7, price)))
	assert.True(t, decimal.NewFromInt(-1600).Equal(inventory.StockValueDelta(7, 5, price)))
	assert.True(t, inventory.StockValueDelta(3, 3, price).IsZero())
}

func TestCountVariants(t *testing.T) {
	groups := inventory.Group(pizzaCokeRecords(), nil, nil)

	assert.Equal(t, 3, inventory.CountVariants(groups))
	assert.Zero(t, inventory.CountVariants(nil))
}
