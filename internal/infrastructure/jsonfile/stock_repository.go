package jsonfile

import (
	"sort"

	"github.com/tu-usuario/stock-app/internal/domain"
	"github.com/tu-usuario/stock-app/internal/domain/entity"
	"github.com/tu-usuario/stock-app/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre el Store de archivos.
// Fuera de transacción cada operación toma el lock del store y persiste al
// volver; dentro de transacción (tx=true) el TxRunner ya sostiene el lock y
// difiere la persistencia al commit.
type StockRepo struct {
	store *Store
	tx    bool
}

// NewStockRepository construye el adaptador de stock para uso fuera de transacción.
func NewStockRepository(store *Store) *StockRepo {
	return &StockRepo{store: store}
}

func (r *StockRepo) lock() func() {
	if r.tx {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *StockRepo) List() ([]*entity.StockItem, error) {
	defer r.lock()()
	items := make([]*entity.StockItem, 0, len(r.store.stock))
	for _, it := range r.store.stock {
		cp := *it
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Ref < items[j].Ref })
	return items, nil
}

func (r *StockRepo) GetByRef(ref string) (*entity.StockItem, error) {
	defer r.lock()()
	it, ok := r.store.stock[ref]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

// GetForUpdate equivale a GetByRef: el lock del store ya serializa las escrituras.
func (r *StockRepo) GetForUpdate(ref string) (*entity.StockItem, error) {
	return r.GetByRef(ref)
}

func (r *StockRepo) Create(item *entity.StockItem) error {
	defer r.lock()()
	if _, ok := r.store.stock[item.Ref]; ok {
		return domain.ErrDuplicate
	}
	cp := *item
	r.store.stock[item.Ref] = &cp
	if r.tx {
		return nil
	}
	return r.store.flushStock()
}

func (r *StockRepo) Update(item *entity.StockItem) error {
	defer r.lock()()
	if _, ok := r.store.stock[item.Ref]; !ok {
		return domain.ErrNotFound
	}
	cp := *item
	r.store.stock[item.Ref] = &cp
	if r.tx {
		return nil
	}
	return r.store.flushStock()
}

func (r *StockRepo) Delete(ref string) error {
	defer r.lock()()
	if _, ok := r.store.stock[ref]; !ok {
		return domain.ErrNotFound
	}
	delete(r.store.stock, ref)
	if r.tx {
		return nil
	}
	return r.store.flushStock()
}
