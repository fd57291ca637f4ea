package dto

import (
	"time"

	"github.com/jhoicas/inventario-dashboard/internal/domain/entity"
	"github.com/jhoicas/inventario-dashboard/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// InventoryQueryRequest query de GET /api/inventory y /api/inventory/groups.
// Los filtros de servidor provocan una recarga si cambian; search y sort_by no.
type InventoryQueryRequest struct {
	BranchID          string `query:"branch_id"`
	CategoryID        string `query:"category_id"`
	ProductID         string `query:"product_id"`
	VariantID         string `query:"variant_id"`
	LowStockOnly      bool   `query:"low_stock_only"`
	OutOfStockOnly    bool   `query:"out_of_stock_only"`
	LowStockThreshold int    `query:"low_stock_threshold"`
	Search            string `query:"search"`
	SortBy            string `query:"sort_by"`
	Page              int    `query:"page"`
	PageSize          int    `query:"page_size"`
	Refresh           bool   `query:"refresh"` // fuerza la recarga aunque los filtros no cambien
}

// InventoryRowDTO fila de inventario con el stock a mostrar (pendiente o del servidor).
type InventoryRowDTO struct {
	entity.InventoryRecord
	DisplayStock int  `json:"display_stock"`
	Pending      bool `json:"pending"`
}

// InventoryPageResponse página de la lista filtrada.
type InventoryPageResponse struct {
	Items        []InventoryRowDTO     `json:"items"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"page_size"`
	TotalPages   int                   `json:"total_pages"`
	TotalCount   int                   `json:"total_count"`
	Filter       inventory.FilterState `json:"filter"`
	PendingCount int                   `json:"pending_count"`
	RefreshedAt  time.Time             `json:"refreshed_at"`
}

// ProductGroupDTO producto con sus variantes.
type ProductGroupDTO struct {
	ProductID    string            `json:"product_id"`
	ProductName  string            `json:"product_name"`
	IsActive     bool              `json:"is_active"`
	ProductImage string            `json:"product_image,omitempty"`
	Variants     []InventoryRowDTO `json:"variants"`
}

// CategoryGroupDTO categoría con sus productos.
type CategoryGroupDTO struct {
	Key           string            `json:"key"`
	CategoryID    string            `json:"category_id,omitempty"`
	CategoryName  string            `json:"category_name"`
	IsActive      bool              `json:"is_active"`
	CategoryImage string            `json:"category_image,omitempty"`
	Products      []ProductGroupDTO `json:"products"`
}

// InventoryGroupsResponse árbol Categoría → Producto → Variante.
type InventoryGroupsResponse struct {
	Groups        []CategoryGroupDTO `json:"groups"`
	TotalVariants int                `json:"total_variants"`
	PendingCount  int                `json:"pending_count"`
}

// SetEditRequest body de PUT /api/inventory/edits/:inventory_id.
type SetEditRequest struct {
	Stock *int `json:"stock"`
}

// PendingEditDTO edición pendiente con el contexto de la fila.
type PendingEditDTO struct {
	InventoryID   string `json:"inventory_id"`
	ProductName   string `json:"product_name,omitempty"`
	VariantName   string `json:"variant_name,omitempty"`
	BranchName    string `json:"branch_name,omitempty"`
	BaselineStock int    `json:"baseline_stock"`
	Stock         int    `json:"stock"`
}

// PendingEditsResponse lista de ediciones pendientes.
type PendingEditsResponse struct {
	Items []PendingEditDTO `json:"items"`
	Count int              `json:"count"`
}

// BulkSaveResponse resultado de POST /api/inventory/edits/commit.
type BulkSaveResponse struct {
	SuccessCount int                   `json:"success_count"`
	Errors       []entity.BulkRowError `json:"errors,omitempty"`
	Remaining    int                   `json:"remaining"`
	Refreshed    bool                  `json:"refreshed"`
	AuditID      string                `json:"audit_id,omitempty"`
}

// SetActiveRequest body de PUT /api/categories/:id/active y /api/products/:id/active.
type SetActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// BranchListResponse sucursales de la tienda.
type BranchListResponse struct {
	Items []entity.Branch `json:"items"`
}

// CategoryListResponse categorías con su flag activo.
type CategoryListResponse struct {
	Items []entity.CategoryMeta `json:"items"`
}

// BulkSaveLogItemDTO cambio de una fila dentro de un bulk-save auditado.
type BulkSaveLogItemDTO struct {
	InventoryID string          `json:"inventory_id"`
	OldStock    int             `json:"old_stock"`
	NewStock    int             `json:"new_stock"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ValueDelta  decimal.Decimal `json:"value_delta"`
	Error       string          `json:"error,omitempty"`
}

// BulkSaveLogDTO entrada de la bitácora de bulk-saves.
type BulkSaveLogDTO struct {
	ID           string               `json:"id"`
	UserID       string               `json:"user_id"`
	Status       string               `json:"status"`
	SuccessCount int                  `json:"success_count"`
	ErrorCount   int                  `json:"error_count"`
	Message      string               `json:"message,omitempty"`
	ValueDelta   decimal.Decimal      `json:"value_delta"`
	Items        []BulkSaveLogItemDTO `json:"items"`
	CreatedAt    time.Time            `json:"created_at"`
}

// BulkSaveLogListResponse lista paginada de la bitácora.
type BulkSaveLogListResponse struct {
	Items []BulkSaveLogDTO `json:"items"`
	Page  PageResponse     `json:"page"`
}
