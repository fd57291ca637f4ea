// Package cache decora el StoreBackend con una caché Redis compartida entre instancias.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-dashboard/internal/application/ports"
	"github.com/jhoicas/inventario-dashboard/internal/domain/entity"
	"github.com/jhoicas/inventario-dashboard/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var _ ports.StoreBackend = (*CachedBackend)(nil)

// CachedBackend guarda en Redis sucursales, categorías y estadísticas por tienda y por
// token: el backend autoriza con el token de cada usuario, así que una respuesta nunca se
// sirve a otro token. El inventario y las escrituras pasan siempre al backend; las
// escrituras invalidan las claves de la tienda para todos los tokens. Con client nil se comporta como el backend sin caché, y un
// error de Redis nunca hace fallar la petición.
type CachedBackend struct {
	next   ports.StoreBackend
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisClient abre el cliente desde una URL redis://. Si Redis no responde devuelve nil
// (se degrada a sin caché) y el error para registrarlo.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: REDIS_URL inválida: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping redis: %w", err)
	}
	return client, nil
}

// NewCachedBackend envuelve next. ttl <= 0 usa 60 s.
func NewCachedBackend(next ports.StoreBackend, client *redis.Client, ttl time.Duration, log *logger.Logger) *CachedBackend {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CachedBackend{next: next, client: client, ttl: ttl, log: log}
}

// Formato de claves: inv:<recurso>:<store_id>:<token>[:<branch_id>]. Los patrones de
// invalidación cubren todos los tokens de la tienda.
func branchesKey(ctx context.Context, storeID string) string {
	return "inv:branches:" + storeID + ":" + tokenScope(ctx)
}

func categoriesKey(ctx context.Context, storeID string) string {
	return "inv:categories:" + storeID + ":" + tokenScope(ctx)
}

func statsKey(ctx context.Context, storeID, branchID string) string {
	if branchID == "" {
		branchID = "all"
	}
	return "inv:stats:" + storeID + ":" + tokenScope(ctx) + ":" + branchID
}

// tokenScope identifica el token con el que se consulta al backend sin guardarlo en Redis.
// Sin token de usuario el cliente usa el de servicio.
func tokenScope(ctx context.Context) string {
	token := ports.AuthTokenFrom(ctx)
	if token == "" {
		return "svc"
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:16])
}

// ── Lecturas cacheadas ───────────────────────────────────────────────────────

// ListBranches lee de caché o del backend.
func (c *CachedBackend) ListBranches(ctx context.Context, storeID string) ([]entity.Branch, error) {
	return cached(ctx, c, branchesKey(ctx, storeID), func() ([]entity.Branch, error) {
		return c.next.ListBranches(ctx, storeID)
	})
}

// ListCategories lee de caché o del backend.
func (c *CachedBackend) ListCategories(ctx context.Context, storeID string) ([]entity.CategoryMeta, error) {
	return cached(ctx, c, categoriesKey(ctx, storeID), func() ([]entity.CategoryMeta, error) {
		return c.next.ListCategories(ctx, storeID)
	})
}

// GetStatistics lee de caché o del backend.
func (c *CachedBackend) GetStatistics(ctx context.Context, storeID, branchID string) (*entity.InventoryStatistics, error) {
	return cached(ctx, c, statsKey(ctx, storeID, branchID), func() (*entity.InventoryStatistics, error) {
		return c.next.GetStatistics(ctx, storeID, branchID)
	})
}

// ── Sin caché ────────────────────────────────────────────────────────────────

// ListProducts pasa directo: depende de category_id y limit.
func (c *CachedBackend) ListProducts(ctx context.Context, storeID, categoryID string, limit int) ([]entity.ProductMeta, error) {
	return c.next.ListProducts(ctx, storeID, categoryID, limit)
}

// ListInventory pasa directo: el stock siempre viene del backend.
func (c *CachedBackend) ListInventory(ctx context.Context, q ports.InventoryQuery) ([]entity.InventoryRecord, error) {
	return c.next.ListInventory(ctx, q)
}

// BulkUpdateInventory escribe y, si el backend respondió, invalida las estadísticas de la tienda.
func (c *CachedBackend) BulkUpdateInventory(ctx context.Context, storeID string, updates []entity.StockUpdate) (*entity.BulkUpdateResult, error) {
	res, err := c.next.BulkUpdateInventory(ctx, storeID, updates)
	if err == nil {
		c.invalidatePattern(ctx, "inv:stats:"+storeID+":*")
	}
	return res, err
}

// SetCategoryActive escribe e invalida la lista de categorías de la tienda.
func (c *CachedBackend) SetCategoryActive(ctx context.Context, storeID, categoryID string, active bool) error {
	if err := c.next.SetCategoryActive(ctx, storeID, categoryID, active); err != nil {
		return err
	}
	c.invalidatePattern(ctx, "inv:categories:"+storeID+":*")
	return nil
}

// SetProductActive escribe; los productos no se cachean.
func (c *CachedBackend) SetProductActive(ctx context.Context, storeID, productID string, active bool) error {
	return c.next.SetProductActive(ctx, storeID, productID, active)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func cached[T any](ctx context.Context, c *CachedBackend, key string, load func() (T, error)) (T, error) {
	if c.client != nil {
		data, err := c.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var v T
			if jsonErr := json.Unmarshal(data, &v); jsonErr == nil {
				return v, nil
			}
			c.log.Warn().Str("key", key).Msg("cache: valor corrupto, se ignora")
		case !errors.Is(err, redis.Nil):
			c.log.Warn().Err(err).Str("key", key).Msg("cache: lectura fallida")
		}
	}

	v, err := load()
	if err != nil || c.client == nil {
		return v, err
	}
	if data, jsonErr := json.Marshal(v); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, data, c.ttl).Err(); setErr != nil {
			c.log.Warn().Err(setErr).Str("key", key).Msg("cache: escritura fallida")
		}
	}
	return v, nil
}

func (c *CachedBackend) invalidate(ctx context.Context, keys ...string) {
	if c.client == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Strs("keys", keys).Msg("cache: invalidación fallida")
	}
}

func (c *CachedBackend) invalidatePattern(ctx context.Context, pattern string) {
	if c.client == nil {
		return
	}
	var keys []string
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn().Err(err).Str("pattern", pattern).Msg("cache: scan fallido")
		return
	}
	c.invalidate(ctx, keys...)
}
