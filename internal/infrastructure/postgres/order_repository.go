package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/stock-app/internal/domain"
	"github.com/tu-usuario/stock-app/internal/domain/entity"
	"github.com/tu-usuario/stock-app/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con pool o tx).
// Las líneas, el libro de recibidos y los mensajes se guardan como JSONB: la
// orden se lee y escribe siempre completa.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de órdenes. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = "id, supplier, status, ordered_lines, received_lines, messages, comment, attachment, created_at, creator, creator_email"

func scanOrder(row pgx.Row) (*entity.PurchaseOrder, error) {
	var (
		o            entity.PurchaseOrder
		orderedJSON  []byte
		receivedJSON []byte
		messagesJSON []byte
	)
	err := row.Scan(
		&o.ID, &o.Supplier, &o.Status, &orderedJSON, &receivedJSON, &messagesJSON,
		&o.Comment, &o.Attachment, &o.CreatedAt, &o.Creator, &o.CreatorEmail,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(orderedJSON, &o.OrderedLines); err != nil {
		return nil, fmt.Errorf("unmarshal ordered_lines: %w", err)
	}
	if err := json.Unmarshal(receivedJSON, &o.ReceivedLines); err != nil {
		return nil, fmt.Errorf("unmarshal received_lines: %w", err)
	}
	if err := json.Unmarshal(messagesJSON, &o.Messages); err != nil {
		return nil, fmt.Errorf("unmarshal messages: %w", err)
	}
	return &o, nil
}

func marshalOrder(o *entity.PurchaseOrder) (ordered, received, messages []byte, err error) {
	if ordered, err = json.Marshal(o.OrderedLines); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal ordered_lines: %w", err)
	}
	if received, err = json.Marshal(o.ReceivedLines); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal received_lines: %w", err)
	}
	if messages, err = json.Marshal(o.Messages); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal messages: %w", err)
	}
	return ordered, received, messages, nil
}

// List devuelve todas las órdenes, más recientes primero.
func (r *OrderRepo) List() ([]*entity.PurchaseOrder, error) {
	query := "SELECT " + orderColumns + " FROM purchase_orders ORDER BY created_at DESC"
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var orders []*entity.PurchaseOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// GetByID obtiene una orden; nil si no existe.
func (r *OrderRepo) GetByID(id string) (*entity.PurchaseOrder, error) {
	query := "SELECT " + orderColumns + " FROM purchase_orders WHERE id = $1"
	o, err := scanOrder(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// GetForUpdate obtiene la orden y bloquea la fila para la reconciliación.
func (r *OrderRepo) GetForUpdate(id string) (*entity.PurchaseOrder, error) {
	query := "SELECT " + orderColumns + " FROM purchase_orders WHERE id = $1 FOR UPDATE"
	o, err := scanOrder(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order for update: %w", err)
	}
	return o, nil
}

// Create inserta una orden nueva.
func (r *OrderRepo) Create(order *entity.PurchaseOrder) error {
	ordered, received, messages, err := marshalOrder(order)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO purchase_orders (id, supplier, status, ordered_lines, received_lines, messages, comment, attachment, created_at, creator, creator_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.q.Exec(context.Background(), query,
		order.ID, order.Supplier, order.Status, ordered, received, messages,
		order.Comment, order.Attachment, order.CreatedAt, order.Creator, order.CreatorEmail,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// Update reescribe el estado mutable de la orden (libro, estado, mensajes, comentario).
func (r *OrderRepo) Update(order *entity.PurchaseOrder) error {
	_, received, messages, err := marshalOrder(order)
	if err != nil {
		return err
	}
	query := `
		UPDATE purchase_orders
		SET status = $2, received_lines = $3, messages = $4, comment = $5
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		order.ID, order.Status, received, messages, order.Comment,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina una orden.
func (r *OrderRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), "DELETE FROM purchase_orders WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
