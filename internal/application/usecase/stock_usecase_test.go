package usecase_test

import (
	"context"
	"path/filepath"
	"testing"

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
// Helpers de test: los casos de uso corren sobre el backend de archivos real
// en un directorio temporal.
// ──────────────────────────────────────────────────────────────────────────────

type stockFixture struct {
	uc          *usecase.StockUseCase
	historyRepo repository.HistoryRepository
}

func newStockFixture(t *testing.T) *stockFixture {
	t.Helper()
	dir := t.TempDir()
	store, err := jsonfile.Open(dir, filepath.Join(dir, "users.json"))
	require.NoError(t, err)
	return &stockFixture{
		uc:          usecase.NewStockUseCase(jsonfile.NewTxRunner(store), jsonfile.NewStockRepository(store)),
		historyRepo: jsonfile.NewHistoryRepository(store),
	}
}

func (f *stockFixture) createItem(t *testing.T, ref string, onHand, minimum, onOrder int) {
	t.Helper()
	_, err := f.uc.Create(context.Background(), "celine", dto.CreateStockItemRequest{
		Ref:             ref,
		Brand:           "Somfy",
		Description:     "Moteur volet roulant",
		Supplier:        "Somfy France",
		UnitPrice:       decimal.NewFromFloat(129.90),
		QuantityOnHand:  onHand,
		QuantityMinimum: minimum,
		QuantityOnOrder: onOrder,
	})
	require.NoError(t, err)
}

func (f *stockFixture) lastHistory(t *testing.T) *entity.HistoryEntry {
	t.Helper()
	entries, err := f.historyRepo.List()
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	return entries[len(entries)-1]
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestStockCreate_RegistraItemEHistorial(t *testing.T) {
	f := newStockFixture(t)
	f.createItem(t, "SOM-1240", 6, 2, 0)

	items, err := f.uc.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "SOM-1240", items[0].Ref)
	assert.Equal(t, 6, items[0].QuantityOnHand)

	last := f.lastHistory(t)
	assert.Equal(t, entity.HistoryStockCreate, last.Type)
	assert.Equal(t, "SOM-1240", last.Ref)
	assert.Equal(t, "celine", last.User)
}

// La ref se normaliza (trim): " SOM-1240 " y "SOM-1240" son la misma clave.
func TestStockCreate_RefNormalizadaYDuplicada(t *testing.T) {
	f := newStockFixture(t)
	f.createItem(t, "SOM-1240", 6, 2, 0)

	_, err := f.uc.Create(context.Background(), "celine", dto.CreateStockItemRequest{Ref: "  SOM-1240  "})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestStockCreate_RefVaciaInvalida(t *testing.T) {
	f := newStockFixture(t)
	_, err := f.uc.Create(context.Background(), "celine", dto.CreateStockItemRequest{Ref: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStockCreate_CantidadNegativaInvalida(t *testing.T) {
	f := newStockFixture(t)
	_, err := f.uc.Create(context.Background(), "celine", dto.CreateStockItemRequest{
		Ref:            "SOM-1240",
		QuantityOnHand: -1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateField
// ──────────────────────────────────────────────────────────────────────────────

// Los valores numéricos llegan del JSON como float64.
func TestStockUpdateField_CantidadDesdeJSON(t *testing.T) {
	f := newStockFixture(t)
	f.createItem(t, "SOM-1240", 6, 2, 0)

	out, err := f.uc.UpdateField(context.Background(), "marc", "SOM-1240", dto.UpdateStockFieldRequest{
		Field: entity.FieldQuantityOnHand,
		Value: float64(9),
	})
	require.NoError(t, err)
	assert.Equal(t, 9, out.QuantityOnHand)

	last := f.lastHistory(t)
	assert.Equal(t, entity.HistoryStockUpdate, last.Type)
	assert.Equal(t, entity.FieldQuantityOnHand, last.Field)
	assert.Equal(t, 6, last.OldValue)
	assert.Equal(t, float64(9), last.NewValue)
	assert.Equal(t, "marc", last.User)
}

func TestStockUpdateField_CamposTexto(t *testing.T) {
	f := newStockFixture(t)
	f.createItem(t, "SOM-1240", 6, 2, 0)

	out, err := f.uc.UpdateField(context.Background(), "marc", "SOM-1240", dto.UpdateStockFieldRequest{
		Field: entity.FieldSupplier,
		Value: "Bubendorff",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bubendorff", out.Supplier)
}

func TestStockUpdateField_ValoresInvalidos(t *testing.T) {
	f := newStockFixture(t)
	f.createItem(t, "SOM-1240", 6, 2, 0)

	cases := []dto.UpdateStockFieldRequest{
		{Field: entity.FieldQuantityOnHand, Value: float64(-3)}, // negativo
		{Field: entity.FieldQuantityOnHand, Value: 2.5},         // no entero
		{Field: entity.FieldQuantityOnHand, Value: "nueve"},     // no numérico
		{Field: "ref", Value: "OTRA"},                           // la ref no se edita
		{Field: "desconocido", Value: 1},                        // campo inexistente
	}
	for _, in := range cases {
		_, err := f.uc.UpdateField(context.Background(), "marc", "SOM-1240", in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "campo %q valor %v", in.Field, in.Value)
	}

	// Nada de lo anterior tocó el item ni generó historial extra.
	items, err := f.uc.List()
	require.NoError(t, err)
	assert.Equal(t, 6, items[0].QuantityOnHand)
	last := f.lastHistory(t)
	assert.Equal(t, entity.HistoryStockCreate, last.Type)
}

func TestStockUpdateField_RefInexistente(t *testing.T) {
	f := newStockFixture(t)
	_, err := f.uc.UpdateField(context.Background(), "marc", "NO-EXISTE", dto.UpdateStockFieldRequest{
		Field: entity.FieldQuantityOnHand,
		Value: float64(1),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Delete y alertas
// ──────────────────────────────────────────────────────────────────────────────

func TestStockDelete_GuardaFilaEnHistorial(t *testing.T) {
	f := newStockFixture(t)
	f.createItem(t, "SOM-1240", 6, 2, 0)

	require.NoError(t, f.uc.Delete(context.Background(), "celine", "SOM-1240"))

	items, err := f.uc.List()
	require.NoError(t, err)
	assert.Empty(t, items)

	last := f.lastHistory(t)
	assert.Equal(t, entity.HistoryStockDelete, last.Type)
	assert.NotNil(t, last.OldValue, "la fila borrada queda en el historial")
}

func TestStockListLowStock_UmbralInclusive(t *testing.T) {
	f := newStockFixture(t)
	f.createItem(t, "BAJO", 2, 2, 0)   // en el umbral: alerta
	f.createItem(t, "SANO", 10, 2, 0)  // por encima: sin alerta
	f.createItem(t, "VACIO", 0, 1, 5)  // bajo el umbral: alerta

	alerts, err := f.uc.ListLowStock()
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	refs := []string{alerts[0].Ref, alerts[1].Ref}
	assert.ElementsMatch(t, []string{"BAJO", "VACIO"}, refs)
}
