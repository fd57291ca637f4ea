package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-dashboard/internal/application/dto"
	"github.com/jhoicas/inventario-dashboard/internal/application/inventory"
	"github.com/jhoicas/inventario-dashboard/pkg/logger"
)

// InventoryHandler maneja la vista de inventario: lista, grupos, ediciones y bulk-save.
type InventoryHandler struct {
	uc  *inventory.UseCase
	log *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase, log *logger.Logger) *InventoryHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &InventoryHandler{uc: uc, log: log}
}

// Query godoc
// @Summary      Lista de inventario filtrada y paginada
// @Description  Los filtros de servidor (branch_id, category_id, product_id, variant_id,
//
//	low_stock_only, out_of_stock_only, low_stock_threshold) recargan desde el backend
//	cuando cambian; search y sort_by se aplican en memoria. refresh=true fuerza la recarga.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        store_id    query  string  false  "Tienda (si el token no la fija)"
// @Param        search      query  string  false  "Texto libre sobre producto, variante y categoría"
// @Param        sort_by     query  string  false  "name | stock_low | stock_high"
// @Param        page        query  int     false  "Página (1..N)"
// @Param        page_size   query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.InventoryPageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) Query(c *fiber.Ctx) error {
	storeID, ok := requireStore(c)
	if !ok {
		return nil
	}
	var in dto.InventoryQueryRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.Query(c.UserContext(), GetUserID(c), storeID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Groups godoc
// @Summary      Árbol Categoría → Producto → Variante
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventoryGroupsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/inventory/groups [get]
func (h *InventoryHandler) Groups(c *fiber.Ctx) error {
	storeID, ok := requireStore(c)
	if !ok {
		return nil
	}
	var in dto.InventoryQueryRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.Groups(c.UserContext(), GetUserID(c), storeID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Statistics godoc
// @Summary      Estadísticas de inventario del backend
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal"
// @Success      200  {object}  entity.InventoryStatistics
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/inventory/statistics [get]
func (h *InventoryHandler) Statistics(c *fiber.Ctx) error {
	storeID, ok := requireStore(c)
	if !ok {
		return nil
	}
	stats, err := h.uc.Statistics(c.UserContext(), storeID, c.Query("branch_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// ListEdits GET /api/inventory/edits
func (h *InventoryHandler) ListEdits(c *fiber.Ctx) error {
	storeID, ok := requireStore(c)
	if !ok {
		return nil
	}
	out, err := h.uc.ListEdits(c.UserContext(), GetUserID(c), storeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SetEdit godoc
// @Summary      Proponer stock para una fila
// @Description  Si el valor coincide con el stock del servidor la edición se elimina.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        inventory_id  path  string              true  "Fila de inventario"
// @Param        body          body  dto.SetEditRequest  true  "stock >= 0"
// @Success      200  {object}  dto.PendingEditsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/edits/{inventory_id} [put]
func (h *InventoryHandler) SetEdit(c *fiber.Ctx) error {
	storeID, ok := requireStore(c)
	if !ok {
		return nil
	}
	var in dto.SetEditRequest
	if err := c.BodyParser(&in); err != nil || in.Stock == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "stock requerido"})
	}
	out, err := h.uc.SetEdit(c.UserContext(), GetUserID(c), storeID, c.Params("inventory_id"), *in.Stock)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DiscardEdits DELETE /api/inventory/edits
func (h *InventoryHandler) DiscardEdits(c *fiber.Ctx) error {
	storeID, ok := requireStore(c)
	if !ok {
		return nil
	}
	n, err := h.uc.DiscardEdits(c.UserContext(), GetUserID(c), storeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"discarded": n})
}

// Commit godoc
// @Summary      Guardar ediciones pendientes (bulk-update)
// @Description  Envía todas las ediciones en una sola petición al backend. Las filas
//
//	aceptadas salen del mapa de pendientes; las rechazadas quedan para reintentar.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.BulkSaveResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/inventory/edits/commit [post]
func (h *InventoryHandler) Commit(c *fiber.Ctx) error {
	storeID, ok := requireStore(c)
	if !ok {
		return nil
	}
	out, err := h.uc.Commit(c.UserContext(), GetUserID(c), storeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListBulkSaves godoc
// @Summary      Bitácora de bulk-saves de la tienda
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máx. 100"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.BulkSaveLogListResponse
// @Router       /api/inventory/bulk-saves [get]
func (h *InventoryHandler) ListBulkSaves(c *fiber.Ctx) error {
	storeID, ok := requireStore(c)
	if !ok {
		return nil
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.ListBulkSaves(c.UserContext(), storeID, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Report godoc
// @Summary      Reporte PDF del inventario agrupado
// @Description  Usa los filtros vigentes de la sesión; las ediciones pendientes aparecen marcadas.
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}    binary
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/inventory/report.pdf [get]
func (h *InventoryHandler) Report(c *fiber.Ctx) error {
	storeID, ok := requireStore(c)
	if !ok {
		return nil
	}
	pdf, err := h.uc.Report(c.UserContext(), GetUserID(c), storeID)
	if err != nil {
		h.log.Error().Err(err).Str("store_id", storeID).Msg("reporte de inventario")
		return respondError(c, err)
	}
	filename := fmt.Sprintf("inventario-%s-%s.pdf", storeID, time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdf)
}
