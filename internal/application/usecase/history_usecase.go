package usecase

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/tu-usuario/stock-app/internal/application/dto"
	"github.com/tu-usuario/stock-app/internal/domain/entity"
	"github.com/tu-usuario/stock-app/internal/domain/repository"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// HistoryUseCase búsqueda y reportes sobre el historial de auditoría.
// Solo lectura: el Append vive en los casos de uso que mutan stock/órdenes.
type HistoryUseCase struct {
	historyRepo repository.HistoryRepository
}

// NewHistoryUseCase construye el caso de uso.
func NewHistoryUseCase(historyRepo repository.HistoryRepository) *HistoryUseCase {
	return &HistoryUseCase{historyRepo: historyRepo}
}

// foldTransformer descompone y elimina marcas diacríticas: los datos vienen de
// una operación francesa ("Désignation", "reçue") y la búsqueda debe encontrar
// "Designation" o "recue" igual.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldString(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(folded)
}

// Query filtra y ordena el historial. El resultado es un slice independiente:
// re-iterarlo es seguro y no toca el almacenamiento.
func (uc *HistoryUseCase) Query(in dto.HistoryQueryRequest) ([]dto.HistoryEntryResponse, error) {
	entries, err := uc.historyRepo.List()
	if err != nil {
		return nil, err
	}

	needle := foldString(in.FreeText)
	out := []dto.HistoryEntryResponse{}
	for _, e := range entries {
		if in.User != "" && e.User != in.User {
			continue
		}
		if in.Type != "" && e.Type != in.Type {
			continue
		}
		if in.From != nil && e.Timestamp.Before(*in.From) {
			continue
		}
		if in.To != nil && e.Timestamp.After(*in.To) {
			continue
		}
		if needle != "" && !entryMatches(e, needle) {
			continue
		}
		out = append(out, dto.HistoryEntryResponse{
			ID:        e.ID,
			Type:      e.Type,
			Ref:       e.Ref,
			Field:     e.Field,
			OldValue:  e.OldValue,
			NewValue:  e.NewValue,
			User:      e.User,
			Timestamp: e.Timestamp,
		})
	}

	// Orden estable por timestamp: entradas con el mismo instante conservan
	// su orden de inserción.
	sort.SliceStable(out, func(i, j int) bool {
		if in.SortDesc {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// MovementSeries deriva la serie {fecha, valor} de entradas (delta > 0) o
// salidas (delta < 0) a partir de los stock_update sobre la cantidad en mano.
func (uc *HistoryUseCase) MovementSeries(inbound bool) ([]dto.MovementPointResponse, error) {
	entries, err := uc.historyRepo.List()
	if err != nil {
		return nil, err
	}
	out := []dto.MovementPointResponse{}
	for _, e := range entries {
		if e.Type != entity.HistoryStockUpdate || e.Field != entity.FieldQuantityOnHand {
			continue
		}
		oldQty, okOld := numericValue(e.OldValue)
		newQty, okNew := numericValue(e.NewValue)
		if !okOld || !okNew {
			continue
		}
		delta := newQty - oldQty
		if inbound && delta > 0 {
			out = append(out, dto.MovementPointResponse{Date: e.Timestamp, Value: delta})
		} else if !inbound && delta < 0 {
			out = append(out, dto.MovementPointResponse{Date: e.Timestamp, Value: -delta})
		}
	}
	return out, nil
}

// entryMatches busca el needle (ya normalizado) en todos los campos string de
// la entrada, incluidas las representaciones de OldValue/NewValue.
func entryMatches(e *entity.HistoryEntry, needle string) bool {
	fields := []string{e.Type, e.Ref, e.Field, e.User}
	if e.OldValue != nil {
		fields = append(fields, fmt.Sprintf("%v", e.OldValue))
	}
	if e.NewValue != nil {
		fields = append(fields, fmt.Sprintf("%v", e.NewValue))
	}
	for _, f := range fields {
		if strings.Contains(foldString(f), needle) {
			return true
		}
	}
	return false
}

// numericValue acepta los enteros tal como vuelven del JSON (float64) o como
// quedaron en memoria (int).
func numericValue(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}
