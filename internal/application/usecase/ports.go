package usecase

import (
	"context"

	"github.com/tu-usuario/stock-app/internal/domain/entity"
	"github.com/tu-usuario/stock-app/internal/domain/repository"
)

// TxRunner ejecuta una función con los repositorios atados a una misma unidad
// atómica (transacción SQL o lock de archivo, según el backend). Mutación de
// stock/órdenes y su entrada de historial se escriben juntas o ninguna: un
// Append de auditoría fallido aborta la mutación completa.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		orderRepo repository.OrderRepository,
		historyRepo repository.HistoryRepository,
	) error) error
}

// Notifier puerto de notificación al creador cuando su orden queda completa.
// El envío real (correo u otro canal) vive fuera del núcleo.
type Notifier interface {
	OrderCompleted(ctx context.Context, order *entity.PurchaseOrder) error
}
