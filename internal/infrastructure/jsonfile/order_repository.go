package jsonfile

import (
	"sort"

	"github.com/tu-usuario/stock-app/internal/domain"
	"github.com/tu-usuario/stock-app/internal/domain/entity"
	"github.com/tu-usuario/stock-app/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre el Store de archivos.
type OrderRepo struct {
	store *Store
	tx    bool
}

// NewOrderRepository construye el adaptador de órdenes para uso fuera de transacción.
func NewOrderRepository(store *Store) *OrderRepo {
	return &OrderRepo{store: store}
}

func (r *OrderRepo) lock() func() {
	if r.tx {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *OrderRepo) List() ([]*entity.PurchaseOrder, error) {
	defer r.lock()()
	orders := make([]*entity.PurchaseOrder, 0, len(r.store.orders))
	for _, o := range r.store.orders {
		orders = append(orders, o.Clone())
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *OrderRepo) GetByID(id string) (*entity.PurchaseOrder, error) {
	defer r.lock()()
	o, ok := r.store.orders[id]
	if !ok {
		return nil, nil
	}
	return o.Clone(), nil
}

// GetForUpdate equivale a GetByID: el lock del store ya serializa las escrituras.
func (r *OrderRepo) GetForUpdate(id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(id)
}

func (r *OrderRepo) Create(order *entity.PurchaseOrder) error {
	defer r.lock()()
	if _, ok := r.store.orders[order.ID]; ok {
		return domain.ErrDuplicate
	}
	r.store.orders[order.ID] = order.Clone()
	if r.tx {
		return nil
	}
	return r.store.flushOrders()
}

func (r *OrderRepo) Update(order *entity.PurchaseOrder) error {
	defer r.lock()()
	if _, ok := r.store.orders[order.ID]; !ok {
		return domain.ErrNotFound
	}
	r.store.orders[order.ID] = order.Clone()
	if r.tx {
		return nil
	}
	return r.store.flushOrders()
}

func (r *OrderRepo) Delete(id string) error {
	defer r.lock()()
	if _, ok := r.store.orders[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.store.orders, id)
	if r.tx {
		return nil
	}
	return r.store.flushOrders()
}
