package usecase_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stock-app/internal/application/dto"
	"github.com/tu-usuario/stock-app/internal/application/usecase"
	"github.com/tu-usuario/stock-app/internal/domain/entity"
	"github.com/tu-usuario/stock-app/internal/domain/repository"
	"github.com/tu-usuario/stock-app/internal/infrastructure/jsonfile"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var baseTime = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

func newHistoryFixture(t *testing.T) (*usecase.HistoryUseCase, repository.HistoryRepository) {
	t.Helper()
	dir := t.TempDir()
	store, err := jsonfile.Open(dir, filepath.Join(dir, "users.json"))
	require.NoError(t, err)
	repo := jsonfile.NewHistoryRepository(store)
	return usecase.NewHistoryUseCase(repo), repo
}

func appendEntry(t *testing.T, repo repository.HistoryRepository, e entity.HistoryEntry) {
	t.Helper()
	require.NoError(t, repo.Append(&e))
}

func seedHistory(t *testing.T, repo repository.HistoryRepository) {
	t.Helper()
	appendEntry(t, repo, entity.HistoryEntry{
		ID: "h1", Type: entity.HistoryStockCreate, Ref: "SOM-1240",
		User: "celine", Timestamp: baseTime,
	})
	appendEntry(t, repo, entity.HistoryEntry{
		ID: "h2", Type: entity.HistoryStockUpdate, Ref: "SOM-1240",
		Field: entity.FieldQuantityOnHand, OldValue: 6, NewValue: 10,
		User: "marc", Timestamp: baseTime.Add(time.Hour),
	})
	appendEntry(t, repo, entity.HistoryEntry{
		ID: "h3", Type: entity.HistoryStockUpdate, Ref: "SOM-1240",
		Field: entity.FieldQuantityOnHand, OldValue: 10, NewValue: 7,
		User: "celine", Timestamp: baseTime.Add(2 * time.Hour),
	})
	appendEntry(t, repo, entity.HistoryEntry{
		ID: "h4", Type: entity.HistoryStockUpdate, Ref: "BUB-77",
		Field: entity.FieldDescription, OldValue: "Moteur", NewValue: "Moteur équipé récepteur",
		User: "marc", Timestamp: baseTime.Add(3 * time.Hour),
	})
	appendEntry(t, repo, entity.HistoryEntry{
		ID: "h5", Type: entity.HistoryOrderCreate, Ref: "order-1",
		User: "celine", Timestamp: baseTime.Add(4 * time.Hour),
	})
}

func ids(entries []dto.HistoryEntryResponse) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Query
// ──────────────────────────────────────────────────────────────────────────────

func TestHistoryQuery_SinFiltrosOrdenAscendente(t *testing.T) {
	uc, repo := newHistoryFixture(t)
	seedHistory(t, repo)

	out, err := uc.Query(dto.HistoryQueryRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"h1", "h2", "h3", "h4", "h5"}, ids(out))
}

func TestHistoryQuery_OrdenDescendente(t *testing.T) {
	uc, repo := newHistoryFixture(t)
	seedHistory(t, repo)

	out, err := uc.Query(dto.HistoryQueryRequest{SortDesc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"h5", "h4", "h3", "h2", "h1"}, ids(out))
}

func TestHistoryQuery_FiltraPorUsuarioYTipo(t *testing.T) {
	uc, repo := newHistoryFixture(t)
	seedHistory(t, repo)

	out, err := uc.Query(dto.HistoryQueryRequest{User: "marc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"h2", "h4"}, ids(out))

	out, err = uc.Query(dto.HistoryQueryRequest{User: "celine", Type: entity.HistoryStockUpdate})
	require.NoError(t, err)
	assert.Equal(t, []string{"h3"}, ids(out))
}

func TestHistoryQuery_RangoDeFechas(t *testing.T) {
	uc, repo := newHistoryFixture(t)
	seedHistory(t, repo)

	from := baseTime.Add(time.Hour)
	to := baseTime.Add(3 * time.Hour)
	out, err := uc.Query(dto.HistoryQueryRequest{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, []string{"h2", "h3", "h4"}, ids(out), "el rango es inclusivo en ambos extremos")
}

// La búsqueda de texto libre ignora acentos en ambos sentidos: los datos
// vienen de una operación francesa.
func TestHistoryQuery_TextoLibreInsensibleAAcentos(t *testing.T) {
	uc, repo := newHistoryFixture(t)
	seedHistory(t, repo)

	out, err := uc.Query(dto.HistoryQueryRequest{FreeText: "equipe recepteur"})
	require.NoError(t, err)
	require.Len(t, out, 1, `"equipe recepteur" debe encontrar "équipé récepteur"`)
	assert.Equal(t, "h4", out[0].ID)

	out, err = uc.Query(dto.HistoryQueryRequest{FreeText: "ÉQUIPÉ"})
	require.NoError(t, err)
	require.Len(t, out, 1, "la aguja también se normaliza")
	assert.Equal(t, "h4", out[0].ID)
}

func TestHistoryQuery_TextoLibreSinResultados(t *testing.T) {
	uc, repo := newHistoryFixture(t)
	seedHistory(t, repo)

	out, err := uc.Query(dto.HistoryQueryRequest{FreeText: "inexistente"})
	require.NoError(t, err)
	assert.Empty(t, out)
}

// ──────────────────────────────────────────────────────────────────────────────
// Serie de movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestMovementSeries_EntradasYSalidas(t *testing.T) {
	uc, repo := newHistoryFixture(t)
	seedHistory(t, repo)

	in, err := uc.MovementSeries(true)
	require.NoError(t, err)
	require.Len(t, in, 1, "solo h2 es un delta positivo sobre la cantidad en mano")
	assert.Equal(t, 4, in[0].Value)
	assert.Equal(t, baseTime.Add(time.Hour), in[0].Date)

	out, err := uc.MovementSeries(false)
	require.NoError(t, err)
	require.Len(t, out, 1, "solo h3 es un delta negativo")
	assert.Equal(t, 3, out[0].Value, "las salidas se reportan en valor absoluto")
}

// Entradas que no son stock_update sobre la cantidad en mano no cuentan.
func TestMovementSeries_IgnoraOtrosCampos(t *testing.T) {
	uc, repo := newHistoryFixture(t)
	appendEntry(t, repo, entity.HistoryEntry{
		ID: "x1", Type: entity.HistoryStockUpdate, Ref: "SOM-1240",
		Field: entity.FieldQuantityOnOrder, OldValue: 0, NewValue: 5,
		User: "marc", Timestamp: baseTime,
	})

	in, err := uc.MovementSeries(true)
	require.NoError(t, err)
	assert.Empty(t, in)
}
