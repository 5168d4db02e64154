package entity

import "time"

// Tipos de entrada del historial. Compatibles con el formato persistido
// (stock_create, stock_update, ...) consumido por búsqueda y reportes.
const (
	HistoryStockCreate  = "stock_create"
	HistoryStockUpdate  = "stock_update"
	HistoryStockDelete  = "stock_delete"
	HistoryOrderCreate  = "order_create"
	HistoryOrderUpdate  = "order_update"
	HistoryOrderMessage = "order_message"
	HistoryOrderDelete  = "order_delete"
)

// HistoryEntry un registro inmutable de auditoría: exactamente uno por mutación
// de StockItem o PurchaseOrder. Una vez escrito, nunca se modifica ni se borra.
type HistoryEntry struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Ref       string      `json:"ref"` // ref de stock o id de orden
	Field     string      `json:"field,omitempty"`
	OldValue  interface{} `json:"oldValue"`
	NewValue  interface{} `json:"newValue"`
	User      string      `json:"user"`
	Timestamp time.Time   `json:"timestamp"` // ISO-8601 al serializar
}
