package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StockItem representa una referencia de inventario.
// Las cantidades nunca son negativas: todo decremento calculado se recorta a cero.
type StockItem struct {
	Ref             string // clave única, normalizada con NormalizeRef
	Brand           string
	Description     string
	Supplier        string
	UnitPrice       decimal.Decimal // precio unitario, >= 0
	QuantityOnHand  int             // "Qte stock"
	QuantityMinimum int             // umbral de alerta
	QuantityOnOrder int             // "En Commande"
	UpdatedAt       time.Time
}

// Campos editables campo-a-campo vía PUT /api/stock/:ref.
const (
	FieldBrand           = "brand"
	FieldDescription     = "description"
	FieldSupplier        = "supplier"
	FieldUnitPrice       = "unitPrice"
	FieldQuantityOnHand  = "quantityOnHand"
	FieldQuantityMinimum = "quantityMinimum"
	FieldQuantityOnOrder = "quantityOnOrder"
)

// NormalizeRef normaliza una referencia para usarla como clave (trim de espacios).
// La comparación de refs en todo el sistema pasa por aquí.
func NormalizeRef(ref string) string {
	return strings.TrimSpace(ref)
}

// IsQuantityField indica si el campo es una de las cantidades enteras (validadas >= 0).
func IsQuantityField(field string) bool {
	switch field {
	case FieldQuantityOnHand, FieldQuantityMinimum, FieldQuantityOnOrder:
		return true
	}
	return false
}

// IsEditableField indica si el campo puede modificarse vía la operación de edición.
func IsEditableField(field string) bool {
	switch field {
	case FieldBrand, FieldDescription, FieldSupplier, FieldUnitPrice,
		FieldQuantityOnHand, FieldQuantityMinimum, FieldQuantityOnOrder:
		return true
	}
	return false
}

// BelowMinimum indica si la referencia está en o bajo su umbral de alerta.
func (s *StockItem) BelowMinimum() bool {
	return s.QuantityOnHand <= s.QuantityMinimum
}
