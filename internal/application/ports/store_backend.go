package ports

import (
	"context"

	"github.com/jhoicas/inventario-dashboard/internal/domain/entity"
	"github.com/jhoicas/inventario-dashboard/internal/domain/inventory"
)

// InventoryQuery parámetros de GET /inventory. Los filtros de servidor viajan tal cual.
type InventoryQuery struct {
	StoreID string
	inventory.ServerFilters
	Limit int
	Page  int
}

// StoreBackend define el puerto de salida hacia la API REST de la tienda.
// El adaptador resuelve autenticación, forma de la respuesta y errores de transporte;
// la aplicación solo ve entidades normalizadas y errores de dominio.
type StoreBackend interface {
	ListBranches(ctx context.Context, storeID string) ([]entity.Branch, error)
	ListCategories(ctx context.Context, storeID string) ([]entity.CategoryMeta, error)
	ListProducts(ctx context.Context, storeID, categoryID string, limit int) ([]entity.ProductMeta, error)
	ListInventory(ctx context.Context, q InventoryQuery) ([]entity.InventoryRecord, error)
	GetStatistics(ctx context.Context, storeID, branchID string) (*entity.InventoryStatistics, error)
	BulkUpdateInventory(ctx context.Context, storeID string, updates []entity.StockUpdate) (*entity.BulkUpdateResult, error)
	SetCategoryActive(ctx context.Context, storeID, categoryID string, active bool) error
	SetProductActive(ctx context.Context, storeID, productID string, active bool) error
}

type authTokenKey struct{}

// WithAuthToken adjunta al contexto el token del usuario que se reenvía al backend.
func WithAuthToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, authTokenKey{}, token)
}

// AuthTokenFrom devuelve el token adjuntado con WithAuthToken, o "".
func AuthTokenFrom(ctx context.Context) string {
	s, _ := ctx.Value(authTokenKey{}).(string)
	return s
}
