package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventario-dashboard/internal/domain"
	"github.com/jhoicas/inventario-dashboard/internal/domain/entity"
	"github.com/jhoicas/inventario-dashboard/internal/domain/repository"
)

var _ repository.BulkSaveLogRepository = (*BulkSaveLogRepo)(nil)

// BulkSaveLogRepo bitácora de bulk-saves sobre PostgreSQL.
// Cabecera e ítems se insertan en la misma transacción.
type BulkSaveLogRepo struct {
	q  Querier
	tx *TxRunner
}

// NewBulkSaveLogRepository construye el adaptador sobre el pool.
func NewBulkSaveLogRepository(pool *pgxpool.Pool) *BulkSaveLogRepo {
	return &BulkSaveLogRepo{q: pool, tx: NewTxRunner(pool)}
}

// Create persiste el intento y sus filas.
func (r *BulkSaveLogRepo) Create(ctx context.Context, l *entity.BulkSaveLog) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	return r.tx.Run(ctx, func(q Querier) error {
		_, err := q.Exec(ctx, `
			INSERT INTO inventory_bulk_saves (id, store_id, user_id, status, success_count, error_count, message, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			l.ID, l.StoreID, l.UserID, l.Status, l.SuccessCount, l.ErrorCount, nullIfEmpty(l.Message), l.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: bulk-save %s ya registrado", domain.ErrConflict, l.ID)
			}
			return fmt.Errorf("insert bulk save: %w", err)
		}

		batch := &pgx.Batch{}
		for _, it := range l.Items {
			batch.Queue(`
				INSERT INTO inventory_bulk_save_items (bulk_save_id, inventory_id, old_stock, new_stock, unit_price, value_delta, error)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				l.ID, it.InventoryID, it.OldStock, it.NewStock, it.UnitPrice, it.ValueDelta, nullIfEmpty(it.Error),
			)
		}
		if batch.Len() == 0 {
			return nil
		}
		tx, ok := q.(pgx.Tx)
		if !ok {
			return fmt.Errorf("insert bulk save items: se esperaba una transacción")
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert bulk save items: %w", err)
		}
		return nil
	})
}

// ListByStore lista los intentos de la tienda, más recientes primero, con sus filas.
func (r *BulkSaveLogRepo) ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*entity.BulkSaveLog, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, store_id, user_id, status, success_count, error_count, COALESCE(message, ''), created_at
		FROM inventory_bulk_saves
		WHERE store_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, storeID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list bulk saves: %w", err)
	}
	defer rows.Close()

	var list []*entity.BulkSaveLog
	byID := map[string]*entity.BulkSaveLog{}
	ids := []string{}
	for rows.Next() {
		var l entity.BulkSaveLog
		if err := rows.Scan(&l.ID, &l.StoreID, &l.UserID, &l.Status, &l.SuccessCount, &l.ErrorCount, &l.Message, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bulk save: %w", err)
		}
		list = append(list, &l)
		byID[l.ID] = &l
		ids = append(ids, l.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bulk saves: %w", err)
	}
	if len(ids) == 0 {
		return list, nil
	}

	items, err := r.q.Query(ctx, `
		SELECT bulk_save_id, inventory_id, old_stock, new_stock, unit_price, value_delta, COALESCE(error, '')
		FROM inventory_bulk_save_items
		WHERE bulk_save_id = ANY($1::uuid[])
		ORDER BY bulk_save_id, inventory_id`, ids)
	if err != nil {
		return nil, fmt.Errorf("list bulk save items: %w", err)
	}
	defer items.Close()
	for items.Next() {
		var (
			bulkID string
			it     entity.BulkSaveLogItem
		)
		if err := items.Scan(&bulkID, &it.InventoryID, &it.OldStock, &it.NewStock, &it.UnitPrice, &it.ValueDelta, &it.Error); err != nil {
			return nil, fmt.Errorf("scan bulk save item: %w", err)
		}
		if l, ok := byID[bulkID]; ok {
			l.Items = append(l.Items, it)
		}
	}
	if err := items.Err(); err != nil {
		return nil, fmt.Errorf("list bulk save items: %w", err)
	}
	return list, nil
}

// GetByID obtiene un intento con sus filas; nil si no existe.
func (r *BulkSaveLogRepo) GetByID(ctx context.Context, id string) (*entity.BulkSaveLog, error) {
	var l entity.BulkSaveLog
	err := r.q.QueryRow(ctx, `
		SELECT id, store_id, user_id, status, success_count, error_count, COALESCE(message, ''), created_at
		FROM inventory_bulk_saves WHERE id = $1`, id).Scan(
		&l.ID, &l.StoreID, &l.UserID, &l.Status, &l.SuccessCount, &l.ErrorCount, &l.Message, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bulk save: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT inventory_id, old_stock, new_stock, unit_price, value_delta, COALESCE(error, '')
		FROM inventory_bulk_save_items WHERE bulk_save_id = $1 ORDER BY inventory_id`, id)
	if err != nil {
		return nil, fmt.Errorf("get bulk save items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.BulkSaveLogItem
		if err := rows.Scan(&it.InventoryID, &it.OldStock, &it.NewStock, &it.UnitPrice, &it.ValueDelta, &it.Error); err != nil {
			return nil, fmt.Errorf("scan bulk save item: %w", err)
		}
		l.Items = append(l.Items, it)
	}
	return &l, rows.Err()
}
