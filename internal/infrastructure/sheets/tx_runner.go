package sheets

import (
	"context"

	"github.com/tu-usuario/stock-app/internal/application/usecase"
	"github.com/tu-usuario/stock-app/internal/domain/repository"
	"github.com/tu-usuario/stock-app/internal/infrastructure/jsonfile"
)

var _ usecase.TxRunner = (*TxRunner)(nil)

// TxRunner combina el stock en la hoja con órdenes e historial en archivos.
// La atomicidad contra la hoja es best-effort: si el rewrite remoto falla
// después de persistir los archivos, el error se propaga pero la caché local
// conserva los niveles ya registrados en el libro; el siguiente flush que
// prospere reescribe la hoja con ellos.
type TxRunner struct {
	stock *StockRepo
	files *jsonfile.Store
}

// NewTxRunner construye el runner mixto hoja + archivos.
func NewTxRunner(stock *StockRepo, files *jsonfile.Store) *TxRunner {
	return &TxRunner{stock: stock, files: files}
}

func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	orderRepo repository.OrderRepository,
	historyRepo repository.HistoryRepository,
) error) error {
	r.stock.mu.Lock()
	defer r.stock.mu.Unlock()

	snap := r.stock.snapshot()
	// Vista tx del stock: comparte la caché pero no toma el lock ni escribe
	// la hoja hasta el commit.
	txStock := &StockRepo{
		service:       r.stock.service,
		spreadsheetID: r.stock.spreadsheetID,
		readRange:     r.stock.readRange,
		log:           r.stock.log,
		cache:         r.stock.cache,
		tx:            true,
	}

	err := r.files.RunOrdersHistory(func(
		orderRepo repository.OrderRepository,
		historyRepo repository.HistoryRepository,
	) error {
		return fn(txStock, orderRepo, historyRepo)
	})
	if err != nil {
		r.stock.cache = snap
		return err
	}

	// Los archivos ya quedaron persistidos: a partir de aquí la caché NO se
	// restaura. Si el rewrite remoto falla, la caché conserva los niveles que
	// el libro de órdenes ya registró y el siguiente flush que prospere
	// reescribe la hoja con ellos; restaurarla dejaría la divergencia fija,
	// porque un re-reporte idéntico no genera deltas nuevos.
	if err := r.stock.flush(ctx); err != nil {
		r.stock.log.Error().Err(err).Msg("rewrite de la hoja falló tras persistir archivos; se reintenta en el próximo flush")
		return err
	}
	return nil
}
