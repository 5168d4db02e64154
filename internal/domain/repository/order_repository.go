package repository

import "github.com/tu-usuario/stock-app/internal/domain/entity"

// OrderRepository define el puerto de persistencia para PurchaseOrder (por id).
type OrderRepository interface {
	List() ([]*entity.PurchaseOrder, error)
	GetByID(id string) (*entity.PurchaseOrder, error)
	Create(order *entity.PurchaseOrder) error
	Update(order *entity.PurchaseOrder) error
	Delete(id string) error
	// GetForUpdate bloquea la fila de la orden para la reconciliación.
	GetForUpdate(id string) (*entity.PurchaseOrder, error)
}
