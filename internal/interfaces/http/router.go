package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-app/internal/application/auth"
	"github.com/tu-usuario/stock-app/internal/application/usecase"
	"github.com/tu-usuario/stock-app/internal/infrastructure/asana"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockUC     *usecase.StockUseCase
	OrderUC     *usecase.OrderUseCase
	HistoryUC   *usecase.HistoryUseCase
	AuthUC      *auth.AuthUseCase
	AsanaClient *asana.Client // nil si no hay PAT configurado
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/forgot", authHandler.Forgot)
	authGroup.Post("/reset", authHandler.Reset)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Stock (protegido)
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC)
	stock.Get("/", stockHandler.List)
	stock.Post("/", stockHandler.Create)
	stock.Put("/:ref", stockHandler.UpdateField)
	stock.Delete("/:ref", stockHandler.Delete)

	// Órdenes de compra (protegido)
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	orders.Get("/", orderHandler.List)
	orders.Post("/", orderHandler.Create)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Put("/:id/reception", orderHandler.RecordReception)
	orders.Put("/:id/complete", orderHandler.ForceComplete)
	orders.Post("/:id/messages", orderHandler.AddMessage)
	orders.Delete("/:id", orderHandler.Delete)

	// Historial y movimientos (protegido)
	historyHandler := NewHistoryHandler(deps.HistoryUC)
	protected.Get("/history", historyHandler.Query)
	protected.Get("/movements", historyHandler.Movements)

	// Alertas de stock bajo (protegido)
	alertHandler := NewAlertHandler(deps.StockUC)
	protected.Get("/alerts", alertHandler.List)

	// Proxy Asana (protegido; solo si hay token configurado)
	if deps.AsanaClient != nil {
		asanaGroup := protected.Group("/asana")
		asanaHandler := NewAsanaHandler(deps.AsanaClient)
		asanaGroup.Get("/projects", asanaHandler.ListProjects)
		asanaGroup.Get("/projects/:gid/tasks", asanaHandler.ListProjectTasks)
		asanaGroup.Get("/tasks/:gid", asanaHandler.GetTask)
	}
}
