package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateStockItemRequest alta de una referencia de inventario.
type CreateStockItemRequest struct {
	Ref             string          `json:"ref"`
	Brand           string          `json:"brand"`
	Description     string          `json:"description"`
	Supplier        string          `json:"supplier"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	QuantityOnHand  int             `json:"quantityOnHand"`
	QuantityMinimum int             `json:"quantityMinimum"`
	QuantityOnOrder int             `json:"quantityOnOrder"`
}

// UpdateStockFieldRequest edición campo-a-campo de una referencia.
// Value llega sin tipar (el frontend edita celdas); el caso de uso valida
// según el campo.
type UpdateStockFieldRequest struct {
	Field string      `json:"field"`
	Value interface{} `json:"value"`
}

// StockItemResponse representación de una referencia en respuestas.
type StockItemResponse struct {
	Ref             string          `json:"ref"`
	Brand           string          `json:"brand"`
	Description     string          `json:"description"`
	Supplier        string          `json:"supplier"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	QuantityOnHand  int             `json:"quantityOnHand"`
	QuantityMinimum int             `json:"quantityMinimum"`
	QuantityOnOrder int             `json:"quantityOnOrder"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// LowStockAlertResponse una referencia en o bajo su umbral de alerta.
type LowStockAlertResponse struct {
	Ref             string `json:"ref"`
	Description     string `json:"description"`
	Supplier        string `json:"supplier"`
	QuantityOnHand  int    `json:"quantityOnHand"`
	QuantityMinimum int    `json:"quantityMinimum"`
	QuantityOnOrder int    `json:"quantityOnOrder"`
}
