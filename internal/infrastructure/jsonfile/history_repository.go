package jsonfile

import (
	"github.com/tu-usuario/stock-app/internal/domain/entity"
	"github.com/tu-usuario/stock-app/internal/domain/repository"
)

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

// HistoryRepo implementación append-only de HistoryRepository sobre el Store.
// Las entradas nunca se modifican después de Append.
type HistoryRepo struct {
	store *Store
	tx    bool
}

// NewHistoryRepository construye el adaptador de historial para uso fuera de transacción.
func NewHistoryRepository(store *Store) *HistoryRepo {
	return &HistoryRepo{store: store}
}

func (r *HistoryRepo) lock() func() {
	if r.tx {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *HistoryRepo) Append(entry *entity.HistoryEntry) error {
	defer r.lock()()
	cp := *entry
	r.store.history = append(r.store.history, &cp)
	if r.tx {
		return nil
	}
	return r.store.flushHistory()
}

func (r *HistoryRepo) List() ([]*entity.HistoryEntry, error) {
	defer r.lock()()
	entries := make([]*entity.HistoryEntry, len(r.store.history))
	copy(entries, r.store.history)
	return entries, nil
}
