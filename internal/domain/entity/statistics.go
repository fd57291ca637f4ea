package entity

// InventoryStatistics totales calculados por el backend para una tienda (o sucursal).
type InventoryStatistics struct {
	TotalItems      int `json:"total_items"`
	TotalStock      int `json:"total_stock"`
	InStockCount    int `json:"in_stock_count"`
	LowStockCount   int `json:"low_stock_count"`
	OutOfStockCount int `json:"out_of_stock_count"`
}
