package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-app/internal/application/dto"
	"github.com/tu-usuario/stock-app/internal/application/usecase"
)

// AlertHandler referencias en o bajo su umbral de alerta (protegido).
type AlertHandler struct {
	uc *usecase.StockUseCase
}

// NewAlertHandler construye el handler.
func NewAlertHandler(uc *usecase.StockUseCase) *AlertHandler {
	return &AlertHandler{uc: uc}
}

// List godoc
// @Summary      Listar alertas de stock bajo
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LowStockAlertResponse
// @Router       /api/alerts [get]
func (h *AlertHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListLowStock()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
