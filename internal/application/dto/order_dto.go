package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest una línea pedida al crear la orden.
type OrderLineRequest struct {
	Ref             string          `json:"ref"`
	QuantityOrdered int             `json:"quantityOrdered"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
}

// CreateOrderRequest alta de una orden de compra.
type CreateOrderRequest struct {
	Supplier   string             `json:"supplier"`
	Lines      []OrderLineRequest `json:"lines"`
	Comment    string             `json:"comment"`
	Attachment string             `json:"attachment"` // nombre de archivo del bon de commande, opcional
}

// ReceptionLineRequest total ACUMULADO recibido para una ref, según el caller.
type ReceptionLineRequest struct {
	Ref              string `json:"ref"`
	QuantityReceived int    `json:"quantityReceived"`
}

// ReceptionRequest reporte de recepción (totales acumulados por ref).
type ReceptionRequest struct {
	Lines []ReceptionLineRequest `json:"lines"`
}

// OrderMessageRequest mensaje para el hilo de la orden.
type OrderMessageRequest struct {
	Body string `json:"body"`
}

// OrderLineResponse línea pedida con su acumulado recibido.
type OrderLineResponse struct {
	Ref              string          `json:"ref"`
	QuantityOrdered  int             `json:"quantityOrdered"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	QuantityReceived int             `json:"quantityReceived"`
}

// OrderMessageResponse un mensaje del hilo.
type OrderMessageResponse struct {
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// OrderResponse representación de una orden en respuestas.
type OrderResponse struct {
	ID         string                 `json:"id"`
	Supplier   string                 `json:"supplier"`
	Status     string                 `json:"status"`
	Lines      []OrderLineResponse    `json:"lines"`
	CreatedAt  time.Time              `json:"createdAt"`
	Creator    string                 `json:"creator"`
	Messages   []OrderMessageResponse `json:"messages"`
	Comment    string                 `json:"comment,omitempty"`
	Attachment string                 `json:"attachment,omitempty"`
}

// StockDeltaResponse niveles nuevos aplicados a una ref durante una recepción.
type StockDeltaResponse struct {
	Ref                string `json:"ref"`
	NewQuantityOnHand  int    `json:"newQuantityOnHand"`
	NewQuantityOnOrder int    `json:"newQuantityOnOrder"`
}

// ReceptionResponse resultado de una reconciliación persistida.
type ReceptionResponse struct {
	Order       OrderResponse        `json:"order"`
	StockDeltas []StockDeltaResponse `json:"stockDeltas"`
}
