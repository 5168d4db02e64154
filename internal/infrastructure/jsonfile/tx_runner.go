package jsonfile

import (
	"context"

	"github.com/tu-usuario/stock-app/internal/application/usecase"
	"github.com/tu-usuario/stock-app/internal/domain/repository"
)

var _ usecase.TxRunner = (*TxRunner)(nil)

// TxRunner da atomicidad sobre el Store de archivos: toma el lock, saca un
// snapshot del estado, ejecuta fn con repositorios en modo tx y al final
// persiste todo; si fn o la persistencia fallan, restaura el snapshot.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	orderRepo repository.OrderRepository,
	historyRepo repository.HistoryRepository,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	snap := r.store.takeSnapshot()
	err := fn(
		&StockRepo{store: r.store, tx: true},
		&OrderRepo{store: r.store, tx: true},
		&HistoryRepo{store: r.store, tx: true},
	)
	if err == nil {
		// Persistencia conjunta: o las tres colecciones llegan a disco o
		// ninguna, para que un reinicio no resucite una transacción a medias.
		err = r.store.flushAll()
	}
	if err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}
