package repository

import (
	"context"

	"github.com/jhoicas/inventario-dashboard/internal/domain/entity"
)

// BulkSaveLogRepository define el puerto de persistencia de la bitácora de bulk-saves (DIP).
type BulkSaveLogRepository interface {
	Create(ctx context.Context, log *entity.BulkSaveLog) error
	ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*entity.BulkSaveLog, error)
	GetByID(ctx context.Context, id string) (*entity.BulkSaveLog, error)
}
