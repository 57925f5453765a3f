package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/heladeria-api/internal/application/analytics"
)

// DashboardHandler maneja el endpoint de resumen del panel.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve el resumen del panel según el rol.
// GET /api/dashboard
//
// Todos ven totales de productos e ingredientes; el administrador además ve
// ventas e ingresos del día. Las fechas se calculan en el servidor.
//
// @Summary      Resumen del panel
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.Context(), GetActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
