package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-dashboard/internal/application/dto"
	"github.com/jhoicas/inventario-dashboard/internal/application/inventory"
)

// CatalogHandler listas de referencia y flags activos de categorías y productos.
type CatalogHandler struct {
	uc *inventory.UseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *inventory.UseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// ListBranches godoc
// @Summary      Sucursales de la tienda
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.BranchListResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/branches [get]
func (h *CatalogHandler) ListBranches(c *fiber.Ctx) error {
	storeID, ok := requireStore(c)
	if !ok {
		return nil
	}
	out, err := h.uc.Branches(c.UserContext(), GetUserID(c), storeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListCategories godoc
// @Summary      Categorías con su flag activo
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CategoryListResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/categories [get]
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	storeID, ok := requireStore(c)
	if !ok {
		return nil
	}
	out, err := h.uc.Categories(c.UserContext(), GetUserID(c), storeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SetCategoryActive godoc
// @Summary      Activar o desactivar una categoría
// @Description  El cambio se ve de inmediato en la sesión y se revierte si el backend lo rechaza.
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "Categoría"
// @Param        body  body  dto.SetActiveRequest  true  "is_active"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/categories/{id}/active [put]
func (h *CatalogHandler) SetCategoryActive(c *fiber.Ctx) error {
	storeID, ok := requireStore(c)
	if !ok {
		return nil
	}
	active, ok := parseActive(c)
	if !ok {
		return nil
	}
	id := c.Params("id")
	if err := h.uc.SetCategoryActive(c.UserContext(), GetUserID(c), storeID, id, active); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"id": id, "is_active": active})
}

// SetProductActive godoc
// @Summary      Activar o desactivar un producto
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "Producto"
// @Param        body  body  dto.SetActiveRequest  true  "is_active"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/active [put]
func (h *CatalogHandler) SetProductActive(c *fiber.Ctx) error {
	storeID, ok := requireStore(c)
	if !ok {
		return nil
	}
	active, ok := parseActive(c)
	if !ok {
		return nil
	}
	id := c.Params("id")
	if err := h.uc.SetProductActive(c.UserContext(), GetUserID(c), storeID, id, active); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"id": id, "is_active": active})
}

func parseActive(c *fiber.Ctx) (bool, bool) {
	var in dto.SetActiveRequest
	if err := c.BodyParser(&in); err != nil || in.IsActive == nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "is_active requerido"})
		return false, false
	}
	return *in.IsActive, true
}
