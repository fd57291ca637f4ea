// Package backend implementa el puerto StoreBackend sobre la API REST de la tienda.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-dashboard/internal/application/ports"
	"github.com/jhoicas/inventario-dashboard/internal/domain"
	"github.com/jhoicas/inventario-dashboard/internal/domain/entity"
	"github.com/jhoicas/inventario-dashboard/internal/domain/inventory"
	"github.com/jhoicas/inventario-dashboard/pkg/logger"
)

// Verificar en tiempo de compilación que Client implementa StoreBackend.
var _ ports.StoreBackend = (*Client)(nil)

const maxResponseBytes = 8 << 20

// Config parámetros del cliente.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	ServiceToken      string // se usa si la petición no trae el token del usuario
	LowStockThreshold int    // umbral para derivar stock_status si el query no trae uno
}

// Client adaptador HTTP hacia el backend de la tienda.
// Usa net/http de la librería estándar; el backend no publica SDK.
type Client struct {
	baseURL      string
	serviceToken string
	threshold    int
	httpClient   *http.Client
	log          *logger.Logger
}

// NewClient construye el cliente. BaseURL debe ser absoluta (http/https).
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend: BACKEND_BASE_URL inválida %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		serviceToken: cfg.ServiceToken,
		threshold:    cfg.LowStockThreshold,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		log:          log,
	}, nil
}

// ── Estructuras internas del protocolo ────────────────────────────────────────

// envelope forma común {success, data, message}. Success nil = la respuesta no es un sobre.
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

type bulkUpdateRequest struct {
	Updates []entity.StockUpdate `json:"updates"`
	StoreID string               `json:"store_id"`
}

type setActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// ListBranches GET /branches?store_id=
func (c *Client) ListBranches(ctx context.Context, storeID string) ([]entity.Branch, error) {
	body, err := c.do(ctx, http.MethodGet, "/branches", url.Values{"store_id": {storeID}}, nil)
	if err != nil {
		return nil, err
	}
	return inventory.NormalizeBranches(body)
}

// ListCategories GET /categories?store_id=
func (c *Client) ListCategories(ctx context.Context, storeID string) ([]entity.CategoryMeta, error) {
	body, err := c.do(ctx, http.MethodGet, "/categories", url.Values{"store_id": {storeID}}, nil)
	if err != nil {
		return nil, err
	}
	return inventory.NormalizeCategories(body)
}

// ListProducts GET /products?store_id=&category_id=&limit=
func (c *Client) ListProducts(ctx context.Context, storeID, categoryID string, limit int) ([]entity.ProductMeta, error) {
	q := url.Values{"store_id": {storeID}}
	setIf(q, "category_id", categoryID)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	body, err := c.do(ctx, http.MethodGet, "/products", q, nil)
	if err != nil {
		return nil, err
	}
	return inventory.NormalizeProducts(body)
}

// ListInventory GET /inventory con los filtros de servidor como parámetros.
func (c *Client) ListInventory(ctx context.Context, in ports.InventoryQuery) ([]entity.InventoryRecord, error) {
	threshold := in.LowStockThreshold
	if threshold <= 0 {
		threshold = c.threshold
	}
	q := url.Values{"store_id": {in.StoreID}}
	setIf(q, "branch_id", in.BranchID)
	setIf(q, "category_id", in.CategoryID)
	setIf(q, "product_id", in.ProductID)
	setIf(q, "variant_id", in.VariantID)
	if in.LowStockOnly {
		q.Set("low_stock_only", "true")
	}
	if in.OutOfStockOnly {
		q.Set("out_of_stock_only", "true")
	}
	if threshold > 0 {
		q.Set("low_stock_threshold", strconv.Itoa(threshold))
	}
	if in.Limit > 0 {
		q.Set("limit", strconv.Itoa(in.Limit))
	}
	if in.Page > 0 {
		q.Set("page", strconv.Itoa(in.Page))
	}

	body, err := c.do(ctx, http.MethodGet, "/inventory", q, nil)
	if err != nil {
		return nil, err
	}
	return inventory.NormalizeRecords(body, threshold)
}

// GetStatistics GET /inventory/statistics?store_id=&branch_id=
func (c *Client) GetStatistics(ctx context.Context, storeID, branchID string) (*entity.InventoryStatistics, error) {
	q := url.Values{"store_id": {storeID}}
	setIf(q, "branch_id", branchID)
	body, err := c.do(ctx, http.MethodGet, "/inventory/statistics", q, nil)
	if err != nil {
		return nil, err
	}
	return inventory.NormalizeStatistics(body)
}

// BulkUpdateInventory POST /inventory/bulk-update?store_id= con {updates, store_id}.
func (c *Client) BulkUpdateInventory(ctx context.Context, storeID string, updates []entity.StockUpdate) (*entity.BulkUpdateResult, error) {
	payload := bulkUpdateRequest{Updates: updates, StoreID: storeID}
	body, err := c.do(ctx, http.MethodPost, "/inventory/bulk-update", url.Values{"store_id": {storeID}}, payload)
	if err != nil {
		return nil, err
	}
	return inventory.NormalizeBulkResult(body)
}

// SetCategoryActive PUT /categories/:id con {is_active}.
func (c *Client) SetCategoryActive(ctx context.Context, storeID, categoryID string, active bool) error {
	_, err := c.do(ctx, http.MethodPut, "/categories/"+url.PathEscape(categoryID),
		url.Values{"store_id": {storeID}}, setActiveRequest{IsActive: active})
	return err
}

// SetProductActive PUT /products/:id con {is_active}.
func (c *Client) SetProductActive(ctx context.Context, storeID, productID string, active bool) error {
	_, err := c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(productID),
		url.Values{"store_id": {storeID}}, setActiveRequest{IsActive: active})
	return err
}

// ── Transporte ────────────────────────────────────────────────────────────────

// do ejecuta la petición y devuelve el cuerpo crudo.
// Errores de red y HTTP 5xx → domain.ErrBackendUnavailable.
// HTTP 4xx o success:false → *domain.BackendError (domain.ErrBackendRejected).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("backend: serializar request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("backend: crear HTTP request: %w", err)
	}
	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrBackendUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: leer respuesta: %w", domain.ErrBackendUnavailable, err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend")

	env := decodeEnvelope(raw)
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: %s %s: HTTP %d %s", domain.ErrBackendUnavailable, method, path, resp.StatusCode, env.message())
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &domain.BackendError{StatusCode: resp.StatusCode, Message: env.message()}
	}
	if env.Success != nil && !*env.Success {
		return nil, &domain.BackendError{StatusCode: resp.StatusCode, Message: env.message()}
	}
	return raw, nil
}

func (c *Client) token(ctx context.Context) string {
	if t := ports.AuthTokenFrom(ctx); t != "" {
		return t
	}
	return c.serviceToken
}

func decodeEnvelope(raw []byte) envelope {
	var env envelope
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		_ = json.Unmarshal(trimmed, &env)
	}
	return env
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
