package jsonfile

import (
	"github.com/tu-usuario/stock-app/internal/domain/repository"
)

// RunOrdersHistory ejecuta fn con los repositorios de órdenes e historial en
// modo transacción, sin tocar el stock. Lo usa el backend de hoja de cálculo,
// que persiste el stock por su cuenta pero mantiene órdenes e historial en
// archivos.
func (s *Store) RunOrdersHistory(fn func(
	orderRepo repository.OrderRepository,
	historyRepo repository.HistoryRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.takeSnapshot()
	err := fn(
		&OrderRepo{store: s, tx: true},
		&HistoryRepo{store: s, tx: true},
	)
	if err == nil {
		err = s.flushOrdersHistory()
	}
	if err != nil {
		s.restore(snap)
		return err
	}
	return nil
}
