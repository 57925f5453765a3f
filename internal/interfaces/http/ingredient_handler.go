package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/heladeria-api/internal/application/dto"
	"github.com/jhoicas/heladeria-api/internal/application/inventory"
	"github.com/jhoicas/heladeria-api/internal/application/usecase"
)

// IngredientHandler endpoints de ingredientes e inventario (empleados).
type IngredientHandler struct {
	uc    *usecase.IngredientUseCase
	renew *inventory.RenewUseCase
}

// NewIngredientHandler construye el handler.
func NewIngredientHandler(uc *usecase.IngredientUseCase, renew *inventory.RenewUseCase) *IngredientHandler {
	return &IngredientHandler{uc: uc, renew: renew}
}

// List godoc
// @Summary      Listar ingredientes
// @Tags         ingredients
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.IngredientListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/ingredients [get]
func (h *IngredientHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context(), GetActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener ingrediente
// @Tags         ingredients
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ingrediente"
// @Success      200  {object}  dto.IngredientResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ingredients/{id} [get]
func (h *IngredientHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear ingrediente
// @Tags         ingredients
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateIngredientRequest  true  "Datos del ingrediente"
// @Success      201   {object}  dto.IngredientResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ingredients [post]
func (h *IngredientHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateIngredientRequest
	if e := parseBody(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	out, err := h.uc.Create(c.Context(), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar ingrediente
// @Tags         ingredients
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID del ingrediente"
// @Param        body  body  dto.UpdateIngredientRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.IngredientResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/ingredients/{id} [put]
func (h *IngredientHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateIngredientRequest
	if e := parseBody(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	out, err := h.uc.Update(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar ingrediente
// @Description  Falla con 400 si algún producto lo usa.
// @Tags         ingredients
// @Security     Bearer
// @Param        id   path  string  true  "ID del ingrediente"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ingredients/{id} [delete]
func (h *IngredientHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), GetActor(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Renew godoc
// @Summary      Renovar inventario
// @Description  Deja en 0 el stock de los complementos indicados. Las bases no cambian.
// @Tags         ingredients
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RenewIngredientsRequest  true  "IDs a renovar"
// @Success      200   {object}  dto.RenewIngredientsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/ingredients/renew [post]
func (h *IngredientHandler) Renew(c *fiber.Ctx) error {
	var in dto.RenewIngredientsRequest
	if e := parseBody(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	out, err := h.renew.RenewIngredients(c.Context(), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Diario de stock de un ingrediente
// @Tags         ingredients
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID del ingrediente"
// @Param        limit  query  int     false  "Máximo de movimientos (por defecto 50)"
// @Success      200    {array}   dto.InventoryMovementResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/ingredients/{id}/movements [get]
func (h *IngredientHandler) Movements(c *fiber.Ctx) error {
	out, err := h.uc.Movements(c.Context(), GetActor(c), c.Params("id"), c.QueryInt("limit", 50))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
