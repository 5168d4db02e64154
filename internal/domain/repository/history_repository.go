package repository

import "github.com/tu-usuario/stock-app/internal/domain/entity"

// HistoryRepository define el puerto del historial de auditoría.
// La secuencia es estrictamente append-only: nunca se actualiza ni se borra
// una entrada existente; un Append fallido debe propagar el error al caller
// (la mutación que no puede auditarse se considera fallida).
type HistoryRepository interface {
	Append(entry *entity.HistoryEntry) error
	// List devuelve todas las entradas en orden de inserción. El filtrado y
	// ordenamiento para búsqueda vive en el caso de uso, no en el puerto.
	List() ([]*entity.HistoryEntry, error)
}
