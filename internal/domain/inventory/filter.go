package inventory

import (
	"sort"
	"strings"

	"github.com/jhoicas/inventario-dashboard/internal/domain/entity"
	"golang.org/x/text/cases"
)

// SortBy criterio de orden de la lista de inventario.
type SortBy string

const (
	SortByName      SortBy = "name"       // productName ascendente
	SortByStockLow  SortBy = "stock_low"  // stock ascendente
	SortByStockHigh SortBy = "stock_high" // stock descendente
)

// Valid indica si el criterio es conocido. Vacío equivale a "sin orden".
func (s SortBy) Valid() bool {
	switch s {
	case "", SortByName, SortByStockLow, SortByStockHigh:
		return true
	}
	return false
}

// ServerFilters filtros que viajan como parámetros al backend.
// Cambiar cualquiera de ellos exige volver a pedir el inventario.
type ServerFilters struct {
	BranchID          string `json:"branch_id,omitempty"`
	CategoryID        string `json:"category_id,omitempty"`
	ProductID         string `json:"product_id,omitempty"`
	VariantID         string `json:"variant_id,omitempty"`
	LowStockOnly      bool   `json:"low_stock_only"`
	OutOfStockOnly    bool   `json:"out_of_stock_only"`
	LowStockThreshold int    `json:"low_stock_threshold"`
}

// FilterState estado completo de filtros: valor puro, sin estado oculto.
// SearchTerm y SortBy se aplican localmente sin ida y vuelta a la red.
type FilterState struct {
	ServerFilters
	SearchTerm string `json:"search_term,omitempty"`
	SortBy     SortBy `json:"sort_by,omitempty"`
}

// Apply filtra por término de búsqueda y ordena. No modifica records.
// Es idempotente: Apply(Apply(r, f), f) == Apply(r, f).
func Apply(records []entity.InventoryRecord, f FilterState) []entity.InventoryRecord {
	out := make([]entity.InventoryRecord, 0, len(records))
	term := strings.TrimSpace(f.SearchTerm)
	if term == "" {
		out = append(out, records...)
	} else {
		// cases.Caser no es seguro entre goroutines: uno por llamada.
		folder := cases.Fold()
		needle := folder.String(term)
		for _, r := range records {
			if matchesSearch(folder, r, needle) {
				out = append(out, r)
			}
		}
	}
	sortRecords(out, f.SortBy)
	return out
}

func matchesSearch(folder cases.Caser, r entity.InventoryRecord, needle string) bool {
	for _, field := range [...]string{r.ProductName, r.VariantName, r.CategoryName, r.BranchName} {
		if field != "" && strings.Contains(folder.String(field), needle) {
			return true
		}
	}
	return false
}

// sortRecords ordena de forma estable: los empates conservan el orden de entrada.
func sortRecords(records []entity.InventoryRecord, by SortBy) {
	switch by {
	case SortByName:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].ProductName < records[j].ProductName
		})
	case SortByStockLow:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Stock < records[j].Stock
		})
	case SortByStockHigh:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Stock > records[j].Stock
		})
	}
}
