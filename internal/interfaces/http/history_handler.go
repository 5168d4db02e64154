package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-app/internal/application/dto"
	"github.com/tu-usuario/stock-app/internal/application/usecase"
)

// HistoryHandler búsqueda del historial y serie de movimientos (protegido).
type HistoryHandler struct {
	uc *usecase.HistoryUseCase
}

// NewHistoryHandler construye el handler.
func NewHistoryHandler(uc *usecase.HistoryUseCase) *HistoryHandler {
	return &HistoryHandler{uc: uc}
}

// Query godoc
// @Summary      Buscar en el historial de auditoría
// @Tags         history
// @Security     Bearer
// @Produce      json
// @Param        user  query  string  false  "Usuario exacto"
// @Param        type  query  string  false  "Tipo de entrada (stock_update, order_create, ...)"
// @Param        q     query  string  false  "Texto libre, insensible a acentos"
// @Param        from  query  string  false  "Desde (RFC3339)"
// @Param        to    query  string  false  "Hasta (RFC3339)"
// @Param        sort  query  string  false  "asc | desc"  default(asc)
// @Success      200   {array}  dto.HistoryEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/history [get]
func (h *HistoryHandler) Query(c *fiber.Ctx) error {
	in := dto.HistoryQueryRequest{
		User:     c.Query("user"),
		Type:     c.Query("type"),
		FreeText: c.Query("q"),
		SortDesc: c.Query("sort") == "desc",
	}
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
		}
		in.From = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
		}
		in.To = &t
	}

	out, err := h.uc.Query(in)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Serie de movimientos de stock derivada del historial
// @Tags         history
// @Security     Bearer
// @Produce      json
// @Param        type  query  string  false  "in | out"  default(in)
// @Success      200   {array}  dto.MovementPointResponse
// @Router       /api/movements [get]
func (h *HistoryHandler) Movements(c *fiber.Ctx) error {
	inbound := c.Query("type", "in") != "out"
	out, err := h.uc.MovementSeries(inbound)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	// La serie alimenta gráficas que se refrescan en vivo.
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(out)
}
