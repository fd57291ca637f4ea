package entity

import "github.com/shopspring/decimal"

// StockStatus clasificación del stock frente al umbral de stock bajo.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// Valid indica si el estado es uno de los tres conocidos.
func (s StockStatus) Valid() bool {
	switch s {
	case StockStatusInStock, StockStatusLowStock, StockStatusOutOfStock:
		return true
	}
	return false
}

// InventoryRecord representa una fila de stock para un par (variante, sucursal).
// El backend es la fuente de verdad de Stock; el dashboard solo lee y propone cambios.
type InventoryRecord struct {
	InventoryID   string          `json:"inventory_id"`
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	CategoryID    string          `json:"category_id,omitempty"` // vacío si el backend no lo envía
	CategoryName  string          `json:"category_name,omitempty"`
	VariantID     string          `json:"variant_id"`
	VariantName   string          `json:"variant_name"`
	VariantPrice  decimal.Decimal `json:"variant_price"`
	BranchID      string          `json:"branch_id"`
	BranchName    string          `json:"branch_name"`
	Stock         int             `json:"stock"`
	StockStatus   StockStatus     `json:"stock_status"`
	ProductActive bool            `json:"product_active"`
}
