// Package reception implementa la reconciliación de recepciones de órdenes de
// compra: convierte reportes acumulados de "recibido hasta ahora" en deltas
// incrementales seguros para el stock, sin contar dos veces lo ya registrado.
package reception

import (
	"github.com/tu-usuario/stock-app/internal/domain"
	"github.com/tu-usuario/stock-app/internal/domain/entity"
)

// StockSnapshot niveles actuales de una referencia, tal como los conoce el caller.
// El reconciliador no lee ni escribe almacenamiento: opera sobre snapshots.
type StockSnapshot struct {
	QuantityOnHand  int
	QuantityOnOrder int
}

// ReportedLine reporte del caller para una ref: total ACUMULADO recibido hasta
// la fecha, no un delta. El sistema origen reporta siempre "recibido hasta ahora".
type ReportedLine struct {
	Ref                   string
	QuantityReportedTotal int
}

// StockDelta resultado para una ref con delta positivo: niveles nuevos ya
// calculados (on-hand solo sube; on-order solo baja, con piso en cero).
type StockDelta struct {
	Ref                string
	Applied            int // delta incremental aplicado
	NewQuantityOnHand  int
	NewQuantityOnOrder int
}

// Result salida de una reconciliación. UpdatedOrder es una copia: el snapshot
// de entrada nunca se muta, la persistencia queda a cargo del caller.
type Result struct {
	StockDeltas  []StockDelta
	UpdatedOrder *entity.PurchaseOrder
}

// Reconcile calcula el delta incremental real a aplicar al stock a partir de un
// reporte acumulado, actualiza el libro de recibidos de la orden y deriva su
// nuevo estado.
//
// Reglas:
//   - delta = max(0, reportado - yaRegistrado): el libro por ref es monótono no
//     decreciente; un reporte menor al registrado no reduce nada.
//   - Solo refs con delta > 0 producen StockDelta: onHand += delta,
//     onOrder = max(0, onOrder - delta).
//   - Refs repetidas en un mismo reporte se pliegan antes de procesar: cada
//     total es acumulado, el último reportado reemplaza a los anteriores.
//   - Idempotente: repetir el mismo reporte sobre la orden actualizada no
//     produce deltas.
//
// No valida el reporte contra la cantidad pedida: un sobre-recibo es error del
// caller, no un fallo de ejecución.
func Reconcile(order *entity.PurchaseOrder, stock map[string]StockSnapshot, reported []ReportedLine) (*Result, error) {
	if order == nil {
		return nil, domain.ErrInvalidInput
	}
	for _, line := range reported {
		if line.QuantityReportedTotal < 0 {
			return nil, domain.ErrInvalidInput
		}
		if !order.HasRef(line.Ref) {
			return nil, domain.ErrUnknownRef
		}
	}

	updated := order.Clone()
	if updated.ReceivedLines == nil {
		updated.ReceivedLines = make(map[string]int)
	}

	res := &Result{UpdatedOrder: updated}
	for _, line := range foldReported(reported) {
		already := updated.ReceivedLines[line.Ref]
		delta := line.QuantityReportedTotal - already
		if delta <= 0 {
			continue
		}
		snap, ok := stock[line.Ref]
		if !ok {
			return nil, domain.ErrNotFound
		}
		res.StockDeltas = append(res.StockDeltas, applyDelta(line.Ref, snap, delta))
		updated.ReceivedLines[line.Ref] = already + delta
	}

	updated.Status = deriveStatus(updated, order.Status)
	return res, nil
}

// ForceComplete recibe todo lo aún pendiente de cada línea pedida (el faltante
// pedido - recibido) y fuerza el estado a complete. Se usa cuando una orden se
// marca completada manualmente sin importar el estado parcial de recepción.
func ForceComplete(order *entity.PurchaseOrder, stock map[string]StockSnapshot) (*Result, error) {
	if order == nil {
		return nil, domain.ErrInvalidInput
	}

	updated := order.Clone()
	if updated.ReceivedLines == nil {
		updated.ReceivedLines = make(map[string]int)
	}

	res := &Result{UpdatedOrder: updated}
	seen := make(map[string]bool, len(updated.OrderedLines))
	for _, l := range updated.OrderedLines {
		if seen[l.Ref] {
			continue // líneas duplicadas ya sumadas vía OrderedQuantity
		}
		seen[l.Ref] = true

		already := updated.ReceivedLines[l.Ref]
		delta := updated.OrderedQuantity(l.Ref) - already
		if delta <= 0 {
			continue
		}
		snap, ok := stock[l.Ref]
		if !ok {
			return nil, domain.ErrNotFound
		}
		res.StockDeltas = append(res.StockDeltas, applyDelta(l.Ref, snap, delta))
		updated.ReceivedLines[l.Ref] = already + delta
	}

	updated.Status = entity.OrderStatusComplete
	return res, nil
}

// foldReported colapsa refs repetidas de un reporte en una sola línea. Los
// totales son acumulados, no deltas: el último valor de la ref reemplaza a los
// anteriores. Sin el pliegue, cada repetición produciría un StockDelta
// calculado sobre el mismo snapshot y el último pisaría a los demás.
func foldReported(reported []ReportedLine) []ReportedLine {
	folded := make([]ReportedLine, 0, len(reported))
	index := make(map[string]int, len(reported))
	for _, line := range reported {
		if i, ok := index[line.Ref]; ok {
			folded[i].QuantityReportedTotal = line.QuantityReportedTotal
			continue
		}
		index[line.Ref] = len(folded)
		folded = append(folded, line)
	}
	return folded
}

func applyDelta(ref string, snap StockSnapshot, delta int) StockDelta {
	newOnOrder := snap.QuantityOnOrder - delta
	if newOnOrder < 0 {
		newOnOrder = 0
	}
	return StockDelta{
		Ref:                ref,
		Applied:            delta,
		NewQuantityOnHand:  snap.QuantityOnHand + delta,
		NewQuantityOnOrder: newOnOrder,
	}
}

// deriveStatus deriva el estado desde el libro acumulado post-actualización.
// El estado nunca regresa: una orden complete sigue complete.
func deriveStatus(order *entity.PurchaseOrder, previous string) string {
	if previous == entity.OrderStatusComplete {
		return entity.OrderStatusComplete
	}

	allReceived := len(order.OrderedLines) > 0
	anyReceived := false
	for _, l := range order.OrderedLines {
		received := order.ReceivedLines[l.Ref]
		if received > 0 {
			anyReceived = true
		}
		if received < order.OrderedQuantity(l.Ref) {
			allReceived = false
		}
	}
	switch {
	case allReceived:
		return entity.OrderStatusComplete
	case anyReceived:
		return entity.OrderStatusPartiallyReceived
	default:
		return entity.OrderStatusPending
	}
}
