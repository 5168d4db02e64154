package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra. La transición es monótona:
// pending → partially_received → complete, o pending → complete directo.
// Una reconciliación nunca regresa una orden completada.
const (
	OrderStatusPending           = "pending"
	OrderStatusPartiallyReceived = "partially_received"
	OrderStatusComplete          = "complete"
)

// OrderLine una línea pedida: cantidad fija desde la creación de la orden.
type OrderLine struct {
	Ref             string
	QuantityOrdered int
	UnitPrice       decimal.Decimal
}

// OrderMessage un mensaje del hilo de conversación de la orden (append-only).
type OrderMessage struct {
	Author    string
	Body      string
	CreatedAt time.Time
}

// PurchaseOrder una orden de compra a un proveedor.
// ReceivedLines es el libro acumulado de cantidades recibidas por ref; solo lo
// muta el reconciliador y nunca decrece.
type PurchaseOrder struct {
	ID            string
	Supplier      string
	Status        string
	OrderedLines  []OrderLine    // fijas desde la creación
	ReceivedLines map[string]int // ref -> cantidad acumulada recibida
	CreatedAt     time.Time
	Creator       string
	CreatorEmail  string
	Messages      []OrderMessage
	Comment       string
	Attachment    string // nombre del archivo adjunto (bon de commande), opcional
}

// OrderedQuantity devuelve la cantidad total pedida para una ref (suma de líneas duplicadas).
func (o *PurchaseOrder) OrderedQuantity(ref string) int {
	total := 0
	for _, l := range o.OrderedLines {
		if l.Ref == ref {
			total += l.QuantityOrdered
		}
	}
	return total
}

// HasRef indica si la ref aparece en las líneas pedidas.
func (o *PurchaseOrder) HasRef(ref string) bool {
	for _, l := range o.OrderedLines {
		if l.Ref == ref {
			return true
		}
	}
	return false
}

// Clone copia profunda de la orden. El reconciliador trabaja sobre copias para
// no mutar el snapshot del caller si la operación falla a mitad.
func (o *PurchaseOrder) Clone() *PurchaseOrder {
	cp := *o
	cp.OrderedLines = make([]OrderLine, len(o.OrderedLines))
	copy(cp.OrderedLines, o.OrderedLines)
	cp.ReceivedLines = make(map[string]int, len(o.ReceivedLines))
	for ref, qty := range o.ReceivedLines {
		cp.ReceivedLines[ref] = qty
	}
	cp.Messages = make([]OrderMessage, len(o.Messages))
	copy(cp.Messages, o.Messages)
	return &cp
}
