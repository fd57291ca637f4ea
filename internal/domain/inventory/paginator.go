package inventory

import "github.com/jhoicas/inventario-dashboard/internal/domain/entity"

// DefaultPageSize tamaño de página si el solicitado no es positivo.
const DefaultPageSize = 20

// Page una página de la lista filtrada. Las páginas empiezan en 1.
type Page struct {
	Records    []entity.InventoryRecord `json:"records"`
	Page       int                      `json:"page"`
	PageSize   int                      `json:"page_size"`
	TotalPages int                      `json:"total_pages"`
	TotalCount int                      `json:"total_count"`
}

// Paginate corta la lista en páginas de pageSize.
// TotalPages = ceil(TotalCount / PageSize); page se acota a [1, max(1, TotalPages)].
func Paginate(records []entity.InventoryRecord, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(records)
	totalPages := (total + pageSize - 1) / pageSize
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)

	out := make([]entity.InventoryRecord, end-start)
	copy(out, records[start:end])
	return Page{
		Records:    out,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalCount: total,
	}
}
