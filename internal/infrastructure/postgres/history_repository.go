package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tu-usuario/stock-app/internal/domain/entity"
	"github.com/tu-usuario/stock-app/internal/domain/repository"
)

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

// HistoryRepo implementación append-only de HistoryRepository sobre PostgreSQL.
// La tabla stock_history no tiene UPDATE ni DELETE: solo INSERT y SELECT.
type HistoryRepo struct {
	q Querier
}

// NewHistoryRepository construye el adaptador de historial.
func NewHistoryRepository(q Querier) *HistoryRepo {
	return &HistoryRepo{q: q}
}

// Append inserta una entrada al final de la secuencia.
func (r *HistoryRepo) Append(entry *entity.HistoryEntry) error {
	oldJSON, err := json.Marshal(entry.OldValue)
	if err != nil {
		return fmt.Errorf("marshal old_value: %w", err)
	}
	newJSON, err := json.Marshal(entry.NewValue)
	if err != nil {
		return fmt.Errorf("marshal new_value: %w", err)
	}
	query := `
		INSERT INTO stock_history (id, entry_type, ref, field, old_value, new_value, username, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.q.Exec(context.Background(), query,
		entry.ID, entry.Type, entry.Ref, entry.Field, oldJSON, newJSON, entry.User, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// List devuelve todas las entradas en orden de inserción.
func (r *HistoryRepo) List() ([]*entity.HistoryEntry, error) {
	query := `
		SELECT id, entry_type, ref, field, old_value, new_value, username, created_at
		FROM stock_history ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()
	var entries []*entity.HistoryEntry
	for rows.Next() {
		var (
			e       entity.HistoryEntry
			oldJSON []byte
			newJSON []byte
		)
		if err := rows.Scan(&e.ID, &e.Type, &e.Ref, &e.Field, &oldJSON, &newJSON, &e.User, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if err := json.Unmarshal(oldJSON, &e.OldValue); err != nil {
			return nil, fmt.Errorf("unmarshal old_value: %w", err)
		}
		if err := json.Unmarshal(newJSON, &e.NewValue); err != nil {
			return nil, fmt.Errorf("unmarshal new_value: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
