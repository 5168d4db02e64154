package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-app/internal/application/dto"
	"github.com/tu-usuario/stock-app/internal/domain"
	"github.com/tu-usuario/stock-app/internal/infrastructure/asana"
)

// AsanaHandler proxy de solo lectura hacia Asana (protegido). El PAT vive en
// el servidor; los errores del upstream se propagan con su código.
type AsanaHandler struct {
	client *asana.Client
}

// NewAsanaHandler construye el handler.
func NewAsanaHandler(client *asana.Client) *AsanaHandler {
	return &AsanaHandler{client: client}
}

func asanaError(c *fiber.Ctx, err error) error {
	if err == domain.ErrNotFound {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso Asana no encontrado"})
	}
	var upstream *asana.UpstreamError
	if errors.As(err, &upstream) {
		return c.Status(upstream.StatusCode).JSON(dto.ErrorResponse{Code: "ASANA_UPSTREAM", Message: upstream.Message})
	}
	return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "ASANA_UNREACHABLE", Message: err.Error()})
}

// ListProjects godoc
// @Summary      Listar proyectos Asana
// @Tags         asana
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.AsanaProjectResponse
// @Router       /api/asana/projects [get]
func (h *AsanaHandler) ListProjects(c *fiber.Ctx) error {
	out, err := h.client.ListProjects(c.UserContext())
	if err != nil {
		return asanaError(c, err)
	}
	return c.JSON(out)
}

// ListProjectTasks godoc
// @Summary      Listar tareas de un proyecto Asana
// @Tags         asana
// @Security     Bearer
// @Produce      json
// @Param        gid  path  string  true  "GID del proyecto"
// @Success      200  {array}  dto.AsanaTaskResponse
// @Router       /api/asana/projects/{gid}/tasks [get]
func (h *AsanaHandler) ListProjectTasks(c *fiber.Ctx) error {
	out, err := h.client.ListProjectTasks(c.UserContext(), c.Params("gid"))
	if err != nil {
		return asanaError(c, err)
	}
	return c.JSON(out)
}

// GetTask godoc
// @Summary      Detalle de una tarea Asana
// @Tags         asana
// @Security     Bearer
// @Produce      json
// @Param        gid  path  string  true  "GID de la tarea"
// @Success      200  {object}  dto.AsanaTaskResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/asana/tasks/{gid} [get]
func (h *AsanaHandler) GetTask(c *fiber.Ctx) error {
	out, err := h.client.GetTask(c.UserContext(), c.Params("gid"))
	if err != nil {
		return asanaError(c, err)
	}
	return c.JSON(out)
}
