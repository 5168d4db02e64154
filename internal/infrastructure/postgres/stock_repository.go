package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/stock-app/internal/domain"
	"github.com/tu-usuario/stock-app/internal/domain/entity"
	"github.com/tu-usuario/stock-app/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = "ref, brand, description, supplier, unit_price, qty_on_hand, qty_minimum, qty_on_order, updated_at"

func scanStockItem(row pgx.Row) (*entity.StockItem, error) {
	var s entity.StockItem
	err := row.Scan(
		&s.Ref, &s.Brand, &s.Description, &s.Supplier, &s.UnitPrice,
		&s.QuantityOnHand, &s.QuantityMinimum, &s.QuantityOnOrder, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List devuelve todas las referencias ordenadas por ref.
func (r *StockRepo) List() ([]*entity.StockItem, error) {
	query := "SELECT " + stockColumns + " FROM stock_items ORDER BY ref"
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var items []*entity.StockItem
	for rows.Next() {
		item, err := scanStockItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetByRef obtiene una referencia; nil si no existe.
func (r *StockRepo) GetByRef(ref string) (*entity.StockItem, error) {
	query := "SELECT " + stockColumns + " FROM stock_items WHERE ref = $1"
	item, err := scanStockItem(r.q.QueryRow(context.Background(), query, ref))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	return item, nil
}

// GetForUpdate obtiene la referencia y bloquea la fila (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ref string) (*entity.StockItem, error) {
	query := "SELECT " + stockColumns + " FROM stock_items WHERE ref = $1 FOR UPDATE"
	item, err := scanStockItem(r.q.QueryRow(context.Background(), query, ref))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock item for update: %w", err)
	}
	return item, nil
}

// Create inserta una referencia nueva. Ref duplicada → ErrDuplicate.
func (r *StockRepo) Create(item *entity.StockItem) error {
	query := `
		INSERT INTO stock_items (ref, brand, description, supplier, unit_price, qty_on_hand, qty_minimum, qty_on_order, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		item.Ref, item.Brand, item.Description, item.Supplier, item.UnitPrice,
		item.QuantityOnHand, item.QuantityMinimum, item.QuantityOnOrder, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create stock item: %w", err)
	}
	return nil
}

// Update actualiza todos los campos de una referencia existente.
func (r *StockRepo) Update(item *entity.StockItem) error {
	query := `
		UPDATE stock_items
		SET brand = $2, description = $3, supplier = $4, unit_price = $5,
		    qty_on_hand = $6, qty_minimum = $7, qty_on_order = $8, updated_at = $9
		WHERE ref = $1`
	tag, err := r.q.Exec(context.Background(), query,
		item.Ref, item.Brand, item.Description, item.Supplier, item.UnitPrice,
		item.QuantityOnHand, item.QuantityMinimum, item.QuantityOnOrder, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina una referencia.
func (r *StockRepo) Delete(ref string) error {
	tag, err := r.q.Exec(context.Background(), "DELETE FROM stock_items WHERE ref = $1", ref)
	if err != nil {
		return fmt.Errorf("delete stock item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
