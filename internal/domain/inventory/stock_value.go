package inventory

import (
	"github.com/jhoicas/inventario-dashboard/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockValue valor del stock de una fila al precio de la variante.
func StockValue(stock int, unitPrice decimal.Decimal) decimal.Decimal {
	if stock <= 0 {
		return decimal.Zero
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(stock)))
}

// StockValueDelta valor monetario de un ajuste de stock.
// Delta = (NuevoStock - StockAnterior) * PrecioVariante
func StockValueDelta(oldStock, newStock int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(newStock - oldStock)))
}

// DeriveStockStatus clasifica el stock frente al umbral de stock bajo.
// 0 → out_of_stock; 1..umbral → low_stock; por encima → in_stock.
func DeriveStockStatus(stock, lowStockThreshold int) entity.StockStatus {
	switch {
	case stock <= 0:
		return entity.StockStatusOutOfStock
	case stock <= lowStockThreshold:
		return entity.StockStatusLowStock
	default:
		return entity.StockStatusInStock
	}
}
