package repository

import "github.com/tu-usuario/stock-app/internal/domain/entity"

// StockRepository define el puerto de persistencia para StockItem (por ref).
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	List() ([]*entity.StockItem, error)
	GetByRef(ref string) (*entity.StockItem, error)
	Create(item *entity.StockItem) error
	Update(item *entity.StockItem) error
	Delete(ref string) error
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE) en backends
	// que lo soporten; en los demás equivale a GetByRef bajo el lock del store.
	GetForUpdate(ref string) (*entity.StockItem, error)
}
