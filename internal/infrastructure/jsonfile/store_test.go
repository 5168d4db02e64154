package jsonfile_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stock-app/internal/domain/entity"
	"github.com/tu-usuario/stock-app/internal/domain/repository"
	"github.com/tu-usuario/stock-app/internal/infrastructure/jsonfile"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func openStore(t *testing.T, dir string) *jsonfile.Store {
	t.Helper()
	store, err := jsonfile.Open(dir, filepath.Join(dir, "users.json"))
	require.NoError(t, err)
	return store
}

func sampleItem() *entity.StockItem {
	return &entity.StockItem{
		Ref:             "SOM-1240",
		Brand:           "Somfy",
		Description:     "Moteur équipé récepteur",
		Supplier:        "SOPROFEN",
		UnitPrice:       decimal.NewFromFloat(129.90),
		QuantityOnHand:  6,
		QuantityMinimum: 2,
		QuantityOnOrder: 0,
		UpdatedAt:       time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Persistencia round-trip
// ──────────────────────────────────────────────────────────────────────────────

func TestStore_StockSobreviveReapertura(t *testing.T) {
	dir := t.TempDir()

	store := openStore(t, dir)
	require.NoError(t, jsonfile.NewStockRepository(store).Create(sampleItem()))

	// Reabrir desde disco: el estado en memoria se descarta.
	reopened := openStore(t, dir)
	got, err := jsonfile.NewStockRepository(reopened).GetByRef("SOM-1240")
	require.NoError(t, err)
	require.NotNil(t, got, "el item debe sobrevivir la reapertura")

	assert.Equal(t, "Moteur équipé récepteur", got.Description)
	assert.True(t, got.UnitPrice.Equal(decimal.NewFromFloat(129.90)),
		"el precio decimal no debe perder precisión en el round-trip")
	assert.Equal(t, 6, got.QuantityOnHand)
}

func TestStore_OrdenesEHistorialSobrevivenReapertura(t *testing.T) {
	dir := t.TempDir()
	store := openStore(t, dir)

	order := &entity.PurchaseOrder{
		ID:       "order-1",
		Supplier: "SOPROFEN",
		Status:   entity.OrderStatusPending,
		OrderedLines: []entity.OrderLine{
			{Ref: "SOM-1240", QuantityOrdered: 10, UnitPrice: decimal.NewFromInt(120)},
		},
		ReceivedLines: map[string]int{},
		CreatedAt:     time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC),
		Creator:       "Céline",
	}
	require.NoError(t, jsonfile.NewOrderRepository(store).Create(order))
	require.NoError(t, jsonfile.NewHistoryRepository(store).Append(&entity.HistoryEntry{
		ID: "h1", Type: entity.HistoryOrderCreate, Ref: "order-1",
		User: "celine", Timestamp: time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC),
	}))

	reopened := openStore(t, dir)

	got, err := jsonfile.NewOrderRepository(reopened).GetByID("order-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.OrderStatusPending, got.Status)
	require.Len(t, got.OrderedLines, 1)
	assert.Equal(t, 10, got.OrderedLines[0].QuantityOrdered)
	assert.NotNil(t, got.ReceivedLines, "el mapa de recibidos siempre se inicializa")

	entries, err := jsonfile.NewHistoryRepository(reopened).List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.HistoryOrderCreate, entries[0].Type)
}

// Un archivo ausente no es error: el store arranca vacío la primera vez.
func TestStore_DirectorioVacioArrancaVacio(t *testing.T) {
	store := openStore(t, t.TempDir())

	items, err := jsonfile.NewStockRepository(store).List()
	require.NoError(t, err)
	assert.Empty(t, items)

	orders, err := jsonfile.NewOrderRepository(store).List()
	require.NoError(t, err)
	assert.Empty(t, orders)
}

// La escritura es temporal + rename: nunca queda un .tmp colgando tras un
// flush exitoso, y el destino siempre es JSON completo.
func TestStore_EscrituraAtomicaSinTemporales(t *testing.T) {
	dir := t.TempDir()
	store := openStore(t, dir)
	require.NoError(t, jsonfile.NewStockRepository(store).Create(sampleItem()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp",
			"no deben quedar archivos temporales tras el flush")
	}

	data, err := os.ReadFile(filepath.Join(dir, "stock.json"))
	require.NoError(t, err)
	var raw []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw), "stock.json debe ser JSON válido")
	require.Len(t, raw, 1)
	assert.Equal(t, "SOM-1240", raw[0]["ref"], "las claves en disco son camelCase")
}

// ──────────────────────────────────────────────────────────────────────────────
// TxRunner — rollback
// ──────────────────────────────────────────────────────────────────────────────

func TestTxRunner_RollbackNoPersisteNada(t *testing.T) {
	dir := t.TempDir()
	store := openStore(t, dir)
	runner := jsonfile.NewTxRunner(store)

	err := runner.Run(context.Background(), func(
		stockRepo repository.StockRepository,
		_ repository.OrderRepository,
		historyRepo repository.HistoryRepository,
	) error {
		if err := stockRepo.Create(sampleItem()); err != nil {
			return err
		}
		if err := historyRepo.Append(&entity.HistoryEntry{
			ID: "h1", Type: entity.HistoryStockCreate, Ref: "SOM-1240",
			User: "celine", Timestamp: time.Now(),
		}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	got, err := jsonfile.NewStockRepository(store).GetByRef("SOM-1240")
	require.NoError(t, err)
	assert.Nil(t, got, "el item de una transacción fallida no debe existir en memoria")

	entries, err := jsonfile.NewHistoryRepository(store).List()
	require.NoError(t, err)
	assert.Empty(t, entries, "el historial de una transacción fallida se descarta")

	_, statErr := os.Stat(filepath.Join(dir, "stock.json"))
	assert.True(t, os.IsNotExist(statErr), "nada debe haberse escrito a disco")
}

// Si una colección no puede escribirse, ninguna llega a disco: un fallo a
// mitad de la persistencia no debe dejar stock.json con datos de una
// transacción revertida que un reinicio resucitaría.
func TestTxRunner_FalloDePersistenciaNoDejaArchivosAMedias(t *testing.T) {
	dir := t.TempDir()
	store := openStore(t, dir)
	runner := jsonfile.NewTxRunner(store)

	err := runner.Run(context.Background(), func(
		stockRepo repository.StockRepository,
		_ repository.OrderRepository,
		_ repository.HistoryRepository,
	) error {
		return stockRepo.Create(sampleItem())
	})
	require.NoError(t, err)

	// Bloquear el temporal de órdenes: el flush conjunto debe fallar ANTES de
	// renombrar nada.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "orders.json.tmp"), 0o755))

	err = runner.Run(context.Background(), func(
		stockRepo repository.StockRepository,
		_ repository.OrderRepository,
		_ repository.HistoryRepository,
	) error {
		item := sampleItem()
		item.Ref = "BUB-77"
		return stockRepo.Create(item)
	})
	require.Error(t, err, "el flush conjunto debe fallar")

	// Reabrir desde disco: solo la primera transacción debe existir.
	reopened := openStore(t, dir)
	repo := jsonfile.NewStockRepository(reopened)

	got, err := repo.GetByRef("SOM-1240")
	require.NoError(t, err)
	assert.NotNil(t, got, "la transacción previa sobrevive")

	got, err = repo.GetByRef("BUB-77")
	require.NoError(t, err)
	assert.Nil(t, got, "la transacción fallida no debe resucitar tras reiniciar")
}
