package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockUpdate instrucción de actualización de una fila para el bulk-update.
type StockUpdate struct {
	InventoryID string `json:"inventory_id"`
	Stock       int    `json:"stock"`
}

// BulkRowError error reportado por el backend para una fila concreta.
type BulkRowError struct {
	InventoryID string `json:"inventory_id"`
	Message     string `json:"message"`
}

// BulkUpdateResult respuesta del bulk-update: éxitos y errores por fila.
type BulkUpdateResult struct {
	SuccessCount int            `json:"success_count"`
	Errors       []BulkRowError `json:"errors,omitempty"`
}

// Estados de un intento de bulk-save registrado en la bitácora.
const (
	BulkSaveStatusSucceeded = "SUCCEEDED"
	BulkSaveStatusPartial   = "PARTIAL"
	BulkSaveStatusFailed    = "FAILED"
)

// BulkSaveLog registro de auditoría de un intento de bulk-save.
type BulkSaveLog struct {
	ID           string
	StoreID      string
	UserID       string
	Status       string
	SuccessCount int
	ErrorCount   int
	Message      string // mensaje del backend o del transporte cuando falla
	Items        []BulkSaveLogItem
	CreatedAt    time.Time
}

// BulkSaveLogItem cambio propuesto para una fila dentro de un bulk-save.
type BulkSaveLogItem struct {
	InventoryID string
	OldStock    int
	NewStock    int
	UnitPrice   decimal.Decimal
	ValueDelta  decimal.Decimal // (NewStock - OldStock) * UnitPrice
	Error       string
}
