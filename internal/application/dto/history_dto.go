package dto

import "time"

// HistoryQueryRequest filtros y orden para la búsqueda en el historial.
type HistoryQueryRequest struct {
	User     string     // filtra por usuario exacto
	Type     string     // filtra por tipo de entrada (stock_update, order_create, ...)
	FreeText string     // substring sobre todos los campos string, insensible a acentos
	From     *time.Time // rango [from, to] sobre timestamp
	To       *time.Time
	SortDesc bool // true: más reciente primero
}

// HistoryEntryResponse una entrada del historial en respuestas.
type HistoryEntryResponse struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Ref       string      `json:"ref"`
	Field     string      `json:"field,omitempty"`
	OldValue  interface{} `json:"oldValue"`
	NewValue  interface{} `json:"newValue"`
	User      string      `json:"user"`
	Timestamp time.Time   `json:"timestamp"`
}

// MovementPointResponse un punto {fecha, valor} de la serie de movimientos
// derivada del historial (entradas o salidas de stock).
type MovementPointResponse struct {
	Date  time.Time `json:"date"`
	Value int       `json:"value"`
}
