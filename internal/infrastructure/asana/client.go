// Package asana implementa el cliente del proxy de solo lectura hacia la API
// de Asana. El token (PAT) nunca sale del servidor: el frontend consulta
// nuestro proxy y este reenvía con autenticación.
package asana

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tu-usuario/stock-app/internal/application/dto"
	"github.com/tu-usuario/stock-app/internal/domain"
)

const baseURL = "https://app.asana.com/api/1.0"

// Client cliente resty contra la API de Asana.
type Client struct {
	httpClient *resty.Client
}

// NewClient construye el cliente con el Personal Access Token de configuración.
func NewClient(accessToken string) *Client {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(baseURL).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", accessToken)).
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second)

	return &Client{httpClient: restyClient}
}

// apiError payload de error de Asana.
type apiError struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (e *apiError) message() string {
	if e != nil && len(e.Errors) > 0 {
		return e.Errors[0].Message
	}
	return ""
}

// UpstreamError error del upstream conservando su código HTTP, para que el
// handler lo propague tal cual.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("asana api error: code=%d, message=%s", e.StatusCode, e.Message)
}

func upstreamError(resp *resty.Response, apiErr *apiError) error {
	if resp.StatusCode() == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return &UpstreamError{StatusCode: resp.StatusCode(), Message: apiErr.message()}
}

// ──────────────────────────────────────────────
// Payloads de Asana (forma del upstream)
// ──────────────────────────────────────────────

type projectData struct {
	Data []struct {
		GID  string `json:"gid"`
		Name string `json:"name"`
	} `json:"data"`
}

type taskPayload struct {
	GID       string `json:"gid"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	DueOn     string `json:"due_on"`
	Assignee  *struct {
		Name string `json:"name"`
	} `json:"assignee"`
	Memberships []struct {
		Section *struct {
			Name string `json:"name"`
		} `json:"section"`
	} `json:"memberships"`
	CustomFields []struct {
		Name         string `json:"name"`
		DisplayValue string `json:"display_value"`
	} `json:"custom_fields"`
}

type taskListData struct {
	Data []taskPayload `json:"data"`
}

type taskData struct {
	Data taskPayload `json:"data"`
}

const taskOptFields = "name,completed,due_on,assignee.name,memberships.section.name,custom_fields.name,custom_fields.display_value"

func toTaskResponse(t taskPayload) dto.AsanaTaskResponse {
	task := dto.AsanaTaskResponse{
		GID:       t.GID,
		Name:      t.Name,
		Completed: t.Completed,
		DueOn:     t.DueOn,
	}
	if t.Assignee != nil {
		task.Assignee = t.Assignee.Name
	}
	for _, m := range t.Memberships {
		if m.Section != nil {
			task.Section = m.Section.Name
			break
		}
	}
	for _, cf := range t.CustomFields {
		task.CustomFields = append(task.CustomFields, dto.AsanaCustomFieldResponse{
			Name:         cf.Name,
			DisplayValue: cf.DisplayValue,
		})
	}
	return task
}

// ListProjects devuelve los proyectos del workspace visibles para el token.
func (c *Client) ListProjects(ctx context.Context) ([]dto.AsanaProjectResponse, error) {
	result := new(projectData)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Get("/projects")
	if err != nil {
		return nil, fmt.Errorf("list asana projects: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, upstreamError(resp, apiErr)
	}

	projects := make([]dto.AsanaProjectResponse, 0, len(result.Data))
	for _, p := range result.Data {
		projects = append(projects, dto.AsanaProjectResponse{GID: p.GID, Name: p.Name})
	}
	return projects, nil
}

// ListProjectTasks devuelve las tareas de un proyecto con los campos que
// consume la pantalla de seguimiento.
func (c *Client) ListProjectTasks(ctx context.Context, projectGID string) ([]dto.AsanaTaskResponse, error) {
	result := new(taskListData)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("opt_fields", taskOptFields).
		SetResult(result).
		SetError(apiErr).
		Get(fmt.Sprintf("/projects/%s/tasks", projectGID))
	if err != nil {
		return nil, fmt.Errorf("list asana tasks: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, upstreamError(resp, apiErr)
	}

	tasks := make([]dto.AsanaTaskResponse, 0, len(result.Data))
	for _, t := range result.Data {
		tasks = append(tasks, toTaskResponse(t))
	}
	return tasks, nil
}

// GetTask devuelve el detalle de una tarea.
func (c *Client) GetTask(ctx context.Context, taskGID string) (*dto.AsanaTaskResponse, error) {
	result := new(taskData)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("opt_fields", taskOptFields).
		SetResult(result).
		SetError(apiErr).
		Get(fmt.Sprintf("/tasks/%s", taskGID))
	if err != nil {
		return nil, fmt.Errorf("get asana task: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, upstreamError(resp, apiErr)
	}

	task := toTaskResponse(result.Data)
	return &task, nil
}
