package usecase_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stock-app/internal/application/dto"
	"github.com/tu-usuario/stock-app/internal/application/usecase"
	"github.com/tu-usuario/stock-app/internal/domain"
	"github.com/tu-usuario/stock-app/internal/domain/entity"
	"github.com/tu-usuario/stock-app/internal/domain/repository"
	"github.com/tu-usuario/stock-app/internal/infrastructure/jsonfile"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type completedCapture struct {
	orders []*entity.PurchaseOrder
}

func (n *completedCapture) OrderCompleted(_ context.Context, order *entity.PurchaseOrder) error {
	n.orders = append(n.orders, order)
	return nil
}

type orderFixture struct {
	stockUC     *usecase.StockUseCase
	orderUC     *usecase.OrderUseCase
	historyRepo repository.HistoryRepository
	notifier    *completedCapture
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	dir := t.TempDir()
	store, err := jsonfile.Open(dir, filepath.Join(dir, "users.json"))
	require.NoError(t, err)

	txRunner := jsonfile.NewTxRunner(store)
	notifier := &completedCapture{}
	return &orderFixture{
		stockUC:     usecase.NewStockUseCase(txRunner, jsonfile.NewStockRepository(store)),
		orderUC:     usecase.NewOrderUseCase(txRunner, jsonfile.NewOrderRepository(store), notifier, zerolog.Nop()),
		historyRepo: jsonfile.NewHistoryRepository(store),
		notifier:    notifier,
	}
}

func (f *orderFixture) seedStock(t *testing.T, ref string, onHand, onOrder int) {
	t.Helper()
	_, err := f.stockUC.Create(context.Background(), "celine", dto.CreateStockItemRequest{
		Ref:             ref,
		Supplier:        "Somfy France",
		UnitPrice:       decimal.NewFromInt(10),
		QuantityOnHand:  onHand,
		QuantityMinimum: 1,
		QuantityOnOrder: onOrder,
	})
	require.NoError(t, err)
}

// seedOrder crea una orden con líneas {ref: cantidad pedida}.
func (f *orderFixture) seedOrder(t *testing.T, lines map[string]int) string {
	t.Helper()
	in := dto.CreateOrderRequest{Supplier: "Somfy France"}
	for ref, qty := range lines {
		in.Lines = append(in.Lines, dto.OrderLineRequest{
			Ref:             ref,
			QuantityOrdered: qty,
			UnitPrice:       decimal.NewFromInt(10),
		})
	}
	out, err := f.orderUC.Create(context.Background(), "celine", "celine@example.fr", in)
	require.NoError(t, err)
	return out.ID
}

func (f *orderFixture) stockItem(t *testing.T, ref string) dto.StockItemResponse {
	t.Helper()
	items, err := f.stockUC.List()
	require.NoError(t, err)
	for _, it := range items {
		if it.Ref == ref {
			return it
		}
	}
	t.Fatalf("ref %s no encontrada", ref)
	return dto.StockItemResponse{}
}

func receptionOf(lines map[string]int) dto.ReceptionRequest {
	var in dto.ReceptionRequest
	for ref, qty := range lines {
		in.Lines = append(in.Lines, dto.ReceptionLineRequest{Ref: ref, QuantityReceived: qty})
	}
	return in
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación
// ──────────────────────────────────────────────────────────────────────────────

func TestOrderCreate_ArrancaPendingConHistorial(t *testing.T) {
	f := newOrderFixture(t)
	id := f.seedOrder(t, map[string]int{"SOM-1240": 10})

	out, err := f.orderUC.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, entity.OrderStatusPending, out.Status)
	assert.Equal(t, "celine", out.Creator)
	assert.Equal(t, 0, out.Lines[0].QuantityReceived)

	entries, err := f.historyRepo.List()
	require.NoError(t, err)
	assert.Equal(t, entity.HistoryOrderCreate, entries[len(entries)-1].Type)
}

func TestOrderCreate_SinLineasInvalida(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.orderUC.Create(context.Background(), "celine", "celine@example.fr", dto.CreateOrderRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Recepción reconciliada
// ──────────────────────────────────────────────────────────────────────────────

// Una recepción parcial aplica el delta al stock, descuenta en-commande y deja
// la orden en partially_received.
func TestReception_ParcialAplicaDeltas(t *testing.T) {
	f := newOrderFixture(t)
	f.seedStock(t, "SOM-1240", 6, 10)
	id := f.seedOrder(t, map[string]int{"SOM-1240": 10})

	out, err := f.orderUC.RecordReception(context.Background(), "marc", id, receptionOf(map[string]int{"SOM-1240": 4}))
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusPartiallyReceived, out.Order.Status)
	assert.Equal(t, 4, out.Order.Lines[0].QuantityReceived)
	require.Len(t, out.StockDeltas, 1)
	assert.Equal(t, 10, out.StockDeltas[0].NewQuantityOnHand, "6 en mano + 4 recibidas")
	assert.Equal(t, 6, out.StockDeltas[0].NewQuantityOnOrder, "10 pedidas - 4 recibidas")

	it := f.stockItem(t, "SOM-1240")
	assert.Equal(t, 10, it.QuantityOnHand)
	assert.Equal(t, 6, it.QuantityOnOrder)
}

// El reporte es acumulado: repetirlo no duplica el stock.
func TestReception_Idempotente(t *testing.T) {
	f := newOrderFixture(t)
	f.seedStock(t, "SOM-1240", 6, 10)
	id := f.seedOrder(t, map[string]int{"SOM-1240": 10})

	_, err := f.orderUC.RecordReception(context.Background(), "marc", id, receptionOf(map[string]int{"SOM-1240": 4}))
	require.NoError(t, err)
	out, err := f.orderUC.RecordReception(context.Background(), "marc", id, receptionOf(map[string]int{"SOM-1240": 4}))
	require.NoError(t, err)

	assert.Empty(t, out.StockDeltas, "mismo total acumulado: nada que aplicar")
	assert.Equal(t, 10, f.stockItem(t, "SOM-1240").QuantityOnHand)
}

// Un reporte con la misma ref repetida aplica el último total acumulado una
// sola vez: el on-hand nunca queda por debajo de lo que el libro registró.
func TestReception_RefRepetidaEnElReporte(t *testing.T) {
	f := newOrderFixture(t)
	f.seedStock(t, "SOM-1240", 6, 10)
	id := f.seedOrder(t, map[string]int{"SOM-1240": 10})

	out, err := f.orderUC.RecordReception(context.Background(), "marc", id, dto.ReceptionRequest{
		Lines: []dto.ReceptionLineRequest{
			{Ref: "SOM-1240", QuantityReceived: 4},
			{Ref: "SOM-1240", QuantityReceived: 6},
		},
	})
	require.NoError(t, err)

	require.Len(t, out.StockDeltas, 1, "la ref repetida se pliega en un solo delta")
	item := f.stockItem(t, "SOM-1240")
	assert.Equal(t, 12, item.QuantityOnHand, "6 en mano + 6 del total plegado")
	assert.Equal(t, 4, item.QuantityOnOrder)

	// Un solo stock_update en el historial; ninguno con delta negativo.
	entries, err := f.historyRepo.List()
	require.NoError(t, err)
	updates := 0
	for _, e := range entries {
		if e.Type == entity.HistoryStockUpdate {
			updates++
			assert.Equal(t, 12, e.NewValue, "el historial registra el nivel final, sin pasos intermedios")
		}
	}
	assert.Equal(t, 1, updates)
}

// Un segundo reporte que alcanza el total pedido completa la orden y dispara
// la notificación al creador.
func TestReception_CompletaYNotifica(t *testing.T) {
	f := newOrderFixture(t)
	f.seedStock(t, "SOM-1240", 6, 10)
	f.seedStock(t, "BUB-77", 0, 5)
	id := f.seedOrder(t, map[string]int{"SOM-1240": 10, "BUB-77": 5})

	_, err := f.orderUC.RecordReception(context.Background(), "marc", id, receptionOf(map[string]int{"SOM-1240": 4}))
	require.NoError(t, err)
	assert.Empty(t, f.notifier.orders, "orden parcial: sin notificación")

	out, err := f.orderUC.RecordReception(context.Background(), "marc", id,
		receptionOf(map[string]int{"SOM-1240": 10, "BUB-77": 5}))
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusComplete, out.Order.Status)
	require.Len(t, f.notifier.orders, 1)
	assert.Equal(t, id, f.notifier.orders[0].ID)
	assert.Equal(t, "celine@example.fr", f.notifier.orders[0].CreatorEmail)

	// Recibir de nuevo sobre una orden completa no vuelve a notificar.
	_, err = f.orderUC.RecordReception(context.Background(), "marc", id,
		receptionOf(map[string]int{"SOM-1240": 10}))
	require.NoError(t, err)
	assert.Len(t, f.notifier.orders, 1)
}

// En-commande nunca queda negativo aunque el stock tuviera menos pedido
// registrado que lo recibido.
func TestReception_EnCommandeConPisoCero(t *testing.T) {
	f := newOrderFixture(t)
	f.seedStock(t, "SOM-1240", 0, 2)
	id := f.seedOrder(t, map[string]int{"SOM-1240": 10})

	out, err := f.orderUC.RecordReception(context.Background(), "marc", id, receptionOf(map[string]int{"SOM-1240": 6}))
	require.NoError(t, err)
	assert.Equal(t, 0, out.StockDeltas[0].NewQuantityOnOrder)
	assert.Equal(t, 6, out.StockDeltas[0].NewQuantityOnHand)
}

// Una ref fuera de la orden aborta todo: ni stock, ni libro, ni historial.
func TestReception_RefDesconocidaNoMutaNada(t *testing.T) {
	f := newOrderFixture(t)
	f.seedStock(t, "SOM-1240", 6, 10)
	id := f.seedOrder(t, map[string]int{"SOM-1240": 10})

	before, err := f.historyRepo.List()
	require.NoError(t, err)

	_, err = f.orderUC.RecordReception(context.Background(), "marc", id,
		receptionOf(map[string]int{"SOM-1240": 4, "INTRUSA": 1}))
	assert.ErrorIs(t, err, domain.ErrUnknownRef)

	assert.Equal(t, 6, f.stockItem(t, "SOM-1240").QuantityOnHand, "el stock no cambió")
	after, err := f.historyRepo.List()
	require.NoError(t, err)
	assert.Len(t, after, len(before), "el historial tampoco")

	out, err := f.orderUC.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, out.Status)
}

func TestReception_OrdenInexistente(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.orderUC.RecordReception(context.Background(), "marc", "no-existe",
		receptionOf(map[string]int{"X": 1}))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// La recepción deja una entrada stock_update por ref tocada más el
// order_update del estado.
func TestReception_HistorialPorDelta(t *testing.T) {
	f := newOrderFixture(t)
	f.seedStock(t, "SOM-1240", 6, 10)
	id := f.seedOrder(t, map[string]int{"SOM-1240": 10})

	before, err := f.historyRepo.List()
	require.NoError(t, err)

	_, err = f.orderUC.RecordReception(context.Background(), "marc", id, receptionOf(map[string]int{"SOM-1240": 4}))
	require.NoError(t, err)

	after, err := f.historyRepo.List()
	require.NoError(t, err)
	require.Len(t, after, len(before)+2)

	stockEntry := after[len(after)-2]
	assert.Equal(t, entity.HistoryStockUpdate, stockEntry.Type)
	assert.Equal(t, entity.FieldQuantityOnHand, stockEntry.Field)
	assert.Equal(t, 6, stockEntry.OldValue)
	assert.Equal(t, 10, stockEntry.NewValue)

	orderEntry := after[len(after)-1]
	assert.Equal(t, entity.HistoryOrderUpdate, orderEntry.Type)
	assert.Equal(t, "status", orderEntry.Field)
	assert.Equal(t, entity.OrderStatusPending, orderEntry.OldValue)
	assert.Equal(t, entity.OrderStatusPartiallyReceived, orderEntry.NewValue)
}

// ──────────────────────────────────────────────────────────────────────────────
// ForceComplete
// ──────────────────────────────────────────────────────────────────────────────

func TestForceComplete_RecibeTodoLoPendiente(t *testing.T) {
	f := newOrderFixture(t)
	f.seedStock(t, "SOM-1240", 6, 10)
	id := f.seedOrder(t, map[string]int{"SOM-1240": 10})

	_, err := f.orderUC.RecordReception(context.Background(), "marc", id, receptionOf(map[string]int{"SOM-1240": 4}))
	require.NoError(t, err)

	out, err := f.orderUC.ForceComplete(context.Background(), "marc", id)
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusComplete, out.Order.Status)
	assert.Equal(t, 10, out.Order.Lines[0].QuantityReceived)
	assert.Equal(t, 16, f.stockItem(t, "SOM-1240").QuantityOnHand, "6 + 4 + las 6 faltantes")
	assert.Len(t, f.notifier.orders, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Mensajes y baja
// ──────────────────────────────────────────────────────────────────────────────

func TestOrderAddMessage_AppendAlHilo(t *testing.T) {
	f := newOrderFixture(t)
	id := f.seedOrder(t, map[string]int{"SOM-1240": 10})

	out, err := f.orderUC.AddMessage(context.Background(), "marc", id, dto.OrderMessageRequest{Body: "Livraison prévue jeudi"})
	require.NoError(t, err)
	require.Len(t, out.Messages, 1)
	assert.Equal(t, "marc", out.Messages[0].Author)
	assert.Equal(t, "Livraison prévue jeudi", out.Messages[0].Body)

	entries, err := f.historyRepo.List()
	require.NoError(t, err)
	assert.Equal(t, entity.HistoryOrderMessage, entries[len(entries)-1].Type)
}

func TestOrderAddMessage_CuerpoVacioInvalido(t *testing.T) {
	f := newOrderFixture(t)
	id := f.seedOrder(t, map[string]int{"SOM-1240": 10})

	_, err := f.orderUC.AddMessage(context.Background(), "marc", id, dto.OrderMessageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOrderDelete_GuardaOrdenEnHistorial(t *testing.T) {
	f := newOrderFixture(t)
	id := f.seedOrder(t, map[string]int{"SOM-1240": 10})

	require.NoError(t, f.orderUC.Delete(context.Background(), "celine", id))

	out, err := f.orderUC.GetByID(id)
	require.NoError(t, err)
	assert.Nil(t, out)

	entries, err := f.historyRepo.List()
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, entity.HistoryOrderDelete, last.Type)
	assert.Equal(t, id, last.Ref)
}
