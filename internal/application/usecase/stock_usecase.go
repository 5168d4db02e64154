package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stock-app/internal/application/dto"
	"github.com/tu-usuario/stock-app/internal/domain"
	"github.com/tu-usuario/stock-app/internal/domain/entity"
	"github.com/tu-usuario/stock-app/internal/domain/repository"
)

// StockUseCase CRUD de referencias de inventario. Toda mutación escribe su
// entrada de historial en la misma unidad atómica que el cambio de stock.
type StockUseCase struct {
	txRunner  TxRunner
	stockRepo repository.StockRepository
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(txRunner TxRunner, stockRepo repository.StockRepository) *StockUseCase {
	return &StockUseCase{txRunner: txRunner, stockRepo: stockRepo}
}

// List devuelve todas las referencias.
func (uc *StockUseCase) List() ([]dto.StockItemResponse, error) {
	items, err := uc.stockRepo.List()
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toStockItemResponse(it))
	}
	return out, nil
}

// ListLowStock devuelve las referencias en o bajo su umbral de alerta.
func (uc *StockUseCase) ListLowStock() ([]dto.LowStockAlertResponse, error) {
	items, err := uc.stockRepo.List()
	if err != nil {
		return nil, err
	}
	out := []dto.LowStockAlertResponse{}
	for _, it := range items {
		if !it.BelowMinimum() {
			continue
		}
		out = append(out, dto.LowStockAlertResponse{
			Ref:             it.Ref,
			Description:     it.Description,
			Supplier:        it.Supplier,
			QuantityOnHand:  it.QuantityOnHand,
			QuantityMinimum: it.QuantityMinimum,
			QuantityOnOrder: it.QuantityOnOrder,
		})
	}
	return out, nil
}

// Create crea una referencia y registra stock_create en el historial.
func (uc *StockUseCase) Create(ctx context.Context, user string, in dto.CreateStockItemRequest) (*dto.StockItemResponse, error) {
	ref := entity.NormalizeRef(in.Ref)
	if ref == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.QuantityOnHand < 0 || in.QuantityMinimum < 0 || in.QuantityOnOrder < 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	item := &entity.StockItem{
		Ref:             ref,
		Brand:           in.Brand,
		Description:     in.Description,
		Supplier:        in.Supplier,
		UnitPrice:       in.UnitPrice,
		QuantityOnHand:  in.QuantityOnHand,
		QuantityMinimum: in.QuantityMinimum,
		QuantityOnOrder: in.QuantityOnOrder,
		UpdatedAt:       time.Now(),
	}

	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		_ repository.OrderRepository,
		historyRepo repository.HistoryRepository,
	) error {
		existing, err := stockRepo.GetByRef(ref)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		if err := stockRepo.Create(item); err != nil {
			return err
		}
		return historyRepo.Append(&entity.HistoryEntry{
			ID:        uuid.New().String(),
			Type:      entity.HistoryStockCreate,
			Ref:       ref,
			NewValue:  toStockItemResponse(item),
			User:      user,
			Timestamp: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	out := toStockItemResponse(item)
	return &out, nil
}

// UpdateField actualiza un campo de una referencia y registra stock_update con
// el valor anterior y el nuevo.
func (uc *StockUseCase) UpdateField(ctx context.Context, user, ref string, in dto.UpdateStockFieldRequest) (*dto.StockItemResponse, error) {
	ref = entity.NormalizeRef(ref)
	if ref == "" || !entity.IsEditableField(in.Field) {
		return nil, domain.ErrInvalidInput
	}

	var updated *entity.StockItem
	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		_ repository.OrderRepository,
		historyRepo repository.HistoryRepository,
	) error {
		item, err := stockRepo.GetForUpdate(ref)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		oldValue, err := applyStockField(item, in.Field, in.Value)
		if err != nil {
			return err
		}
		item.UpdatedAt = time.Now()
		if err := stockRepo.Update(item); err != nil {
			return err
		}
		updated = item
		return historyRepo.Append(&entity.HistoryEntry{
			ID:        uuid.New().String(),
			Type:      entity.HistoryStockUpdate,
			Ref:       ref,
			Field:     in.Field,
			OldValue:  oldValue,
			NewValue:  in.Value,
			User:      user,
			Timestamp: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	out := toStockItemResponse(updated)
	return &out, nil
}

// Delete elimina una referencia y registra stock_delete con la fila borrada.
func (uc *StockUseCase) Delete(ctx context.Context, user, ref string) error {
	ref = entity.NormalizeRef(ref)
	if ref == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		_ repository.OrderRepository,
		historyRepo repository.HistoryRepository,
	) error {
		item, err := stockRepo.GetForUpdate(ref)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if err := stockRepo.Delete(ref); err != nil {
			return err
		}
		return historyRepo.Append(&entity.HistoryEntry{
			ID:        uuid.New().String(),
			Type:      entity.HistoryStockDelete,
			Ref:       ref,
			OldValue:  toStockItemResponse(item),
			User:      user,
			Timestamp: time.Now(),
		})
	})
}

// applyStockField aplica un valor sin tipar al campo indicado. Devuelve el
// valor anterior para el historial. Cantidades: entero >= 0; precio: decimal >= 0.
func applyStockField(item *entity.StockItem, field string, value interface{}) (interface{}, error) {
	if entity.IsQuantityField(field) {
		qty, err := coerceInt(value)
		if err != nil || qty < 0 {
			return nil, domain.ErrInvalidInput
		}
		var old int
		switch field {
		case entity.FieldQuantityOnHand:
			old, item.QuantityOnHand = item.QuantityOnHand, qty
		case entity.FieldQuantityMinimum:
			old, item.QuantityMinimum = item.QuantityMinimum, qty
		case entity.FieldQuantityOnOrder:
			old, item.QuantityOnOrder = item.QuantityOnOrder, qty
		}
		return old, nil
	}

	if field == entity.FieldUnitPrice {
		price, err := coerceDecimal(value)
		if err != nil || price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		old := item.UnitPrice
		item.UnitPrice = price
		return old, nil
	}

	s, ok := value.(string)
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	var old string
	switch field {
	case entity.FieldBrand:
		old, item.Brand = item.Brand, s
	case entity.FieldDescription:
		old, item.Description = item.Description, s
	case entity.FieldSupplier:
		old, item.Supplier = item.Supplier, s
	default:
		return nil, domain.ErrInvalidInput
	}
	return old, nil
}

// coerceInt acepta los números tal como llegan del JSON (float64 o json.Number)
// exigiendo que sean enteros.
func coerceInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case float64:
		if v != float64(int(v)) {
			return 0, domain.ErrInvalidInput
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, domain.ErrInvalidInput
		}
		return int(n), nil
	}
	return 0, domain.ErrInvalidInput
}

func coerceDecimal(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, domain.ErrInvalidInput
		}
		return d, nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, domain.ErrInvalidInput
		}
		return d, nil
	}
	return decimal.Zero, domain.ErrInvalidInput
}

func toStockItemResponse(item *entity.StockItem) dto.StockItemResponse {
	return dto.StockItemResponse{
		Ref:             item.Ref,
		Brand:           item.Brand,
		Description:     item.Description,
		Supplier:        item.Supplier,
		UnitPrice:       item.UnitPrice,
		QuantityOnHand:  item.QuantityOnHand,
		QuantityMinimum: item.QuantityMinimum,
		QuantityOnOrder: item.QuantityOnOrder,
		UpdatedAt:       item.UpdatedAt,
	}
}
