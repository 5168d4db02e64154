package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tu-usuario/stock-app/internal/application/dto"
	"github.com/tu-usuario/stock-app/internal/domain"
	"github.com/tu-usuario/stock-app/internal/domain/entity"
	"github.com/tu-usuario/stock-app/internal/domain/reception"
	"github.com/tu-usuario/stock-app/internal/domain/repository"
)

// OrderUseCase órdenes de compra: alta, recepción reconciliada, completado
// forzado, mensajes y baja. La reconciliación corre dentro del TxRunner: deltas
// de stock, libro de recibidos, estado e historial se persisten juntos.
type OrderUseCase struct {
	txRunner  TxRunner
	orderRepo repository.OrderRepository
	notifier  Notifier
	log       zerolog.Logger
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(txRunner TxRunner, orderRepo repository.OrderRepository, notifier Notifier, log zerolog.Logger) *OrderUseCase {
	return &OrderUseCase{txRunner: txRunner, orderRepo: orderRepo, notifier: notifier, log: log}
}

// List devuelve todas las órdenes.
func (uc *OrderUseCase) List() ([]dto.OrderResponse, error) {
	orders, err := uc.orderRepo.List()
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out, nil
}

// GetByID obtiene una orden por id.
func (uc *OrderUseCase) GetByID(id string) (*dto.OrderResponse, error) {
	order, err := uc.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil
	}
	out := toOrderResponse(order)
	return &out, nil
}

// Create crea una orden en estado pending y registra order_create.
func (uc *OrderUseCase) Create(ctx context.Context, user, userEmail string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	lines := make([]entity.OrderLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		ref := entity.NormalizeRef(l.Ref)
		if ref == "" || l.QuantityOrdered <= 0 || l.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		lines = append(lines, entity.OrderLine{Ref: ref, QuantityOrdered: l.QuantityOrdered, UnitPrice: l.UnitPrice})
	}

	supplier := in.Supplier
	if supplier == "" {
		supplier = "N/A"
	}
	order := &entity.PurchaseOrder{
		ID:            uuid.New().String(),
		Supplier:      supplier,
		Status:        entity.OrderStatusPending,
		OrderedLines:  lines,
		ReceivedLines: map[string]int{},
		CreatedAt:     time.Now(),
		Creator:       user,
		CreatorEmail:  userEmail,
		Messages:      []entity.OrderMessage{},
		Comment:       in.Comment,
		Attachment:    in.Attachment,
	}

	err := uc.txRunner.Run(ctx, func(
		_ repository.StockRepository,
		orderRepo repository.OrderRepository,
		historyRepo repository.HistoryRepository,
	) error {
		if err := orderRepo.Create(order); err != nil {
			return err
		}
		return historyRepo.Append(&entity.HistoryEntry{
			ID:        uuid.New().String(),
			Type:      entity.HistoryOrderCreate,
			Ref:       order.ID,
			NewValue:  toOrderResponse(order),
			User:      user,
			Timestamp: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	out := toOrderResponse(order)
	return &out, nil
}

// RecordReception aplica un reporte acumulado de recepción sobre la orden.
// Toda la secuencia (lock de orden, lock de refs, reconciliación, deltas,
// historial) ocurre en una sola unidad atómica. Si el estado pasa a complete
// se notifica al creador después del commit.
func (uc *OrderUseCase) RecordReception(ctx context.Context, user, orderID string, in dto.ReceptionRequest) (*dto.ReceptionResponse, error) {
	reported := make([]reception.ReportedLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		reported = append(reported, reception.ReportedLine{
			Ref:                   entity.NormalizeRef(l.Ref),
			QuantityReportedTotal: l.QuantityReceived,
		})
	}

	return uc.applyReception(ctx, user, orderID, func(order *entity.PurchaseOrder, stock map[string]reception.StockSnapshot) (*reception.Result, error) {
		return reception.Reconcile(order, stock, reported)
	}, refsOf(reported))
}

// ForceComplete marca la orden como completada recibiendo todo lo pendiente.
func (uc *OrderUseCase) ForceComplete(ctx context.Context, user, orderID string) (*dto.ReceptionResponse, error) {
	return uc.applyReception(ctx, user, orderID, func(order *entity.PurchaseOrder, stock map[string]reception.StockSnapshot) (*reception.Result, error) {
		return reception.ForceComplete(order, stock)
	}, nil)
}

// applyReception núcleo común de RecordReception y ForceComplete.
// refs limita qué snapshots de stock cargar; nil carga todas las líneas pedidas.
func (uc *OrderUseCase) applyReception(
	ctx context.Context,
	user, orderID string,
	reconcile func(*entity.PurchaseOrder, map[string]reception.StockSnapshot) (*reception.Result, error),
	refs []string,
) (*dto.ReceptionResponse, error) {
	var (
		result       *reception.Result
		prevStatus   string
		stockDeltas  []dto.StockDeltaResponse
		updatedOrder *entity.PurchaseOrder
	)

	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		orderRepo repository.OrderRepository,
		historyRepo repository.HistoryRepository,
	) error {
		order, err := orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		prevStatus = order.Status

		wanted := refs
		if wanted == nil {
			for _, l := range order.OrderedLines {
				wanted = append(wanted, l.Ref)
			}
		}
		snapshots := make(map[string]reception.StockSnapshot, len(wanted))
		items := make(map[string]*entity.StockItem, len(wanted))
		for _, ref := range wanted {
			if _, done := snapshots[ref]; done {
				continue
			}
			item, err := stockRepo.GetForUpdate(ref)
			if err != nil {
				return err
			}
			if item == nil {
				continue // el reconciliador decide si la ref ausente es error
			}
			snapshots[ref] = reception.StockSnapshot{
				QuantityOnHand:  item.QuantityOnHand,
				QuantityOnOrder: item.QuantityOnOrder,
			}
			items[ref] = item
		}

		result, err = reconcile(order, snapshots)
		if err != nil {
			return err
		}

		now := time.Now()
		for _, d := range result.StockDeltas {
			item := items[d.Ref]
			oldOnHand := item.QuantityOnHand
			item.QuantityOnHand = d.NewQuantityOnHand
			item.QuantityOnOrder = d.NewQuantityOnOrder
			item.UpdatedAt = now
			if err := stockRepo.Update(item); err != nil {
				return err
			}
			// Una entrada stock_update por ref con delta: alimenta la serie
			// de movimientos de entrada del dashboard.
			if err := historyRepo.Append(&entity.HistoryEntry{
				ID:        uuid.New().String(),
				Type:      entity.HistoryStockUpdate,
				Ref:       d.Ref,
				Field:     entity.FieldQuantityOnHand,
				OldValue:  oldOnHand,
				NewValue:  d.NewQuantityOnHand,
				User:      user,
				Timestamp: now,
			}); err != nil {
				return err
			}
			stockDeltas = append(stockDeltas, dto.StockDeltaResponse{
				Ref:                d.Ref,
				NewQuantityOnHand:  d.NewQuantityOnHand,
				NewQuantityOnOrder: d.NewQuantityOnOrder,
			})
		}

		updatedOrder = result.UpdatedOrder
		if err := orderRepo.Update(updatedOrder); err != nil {
			return err
		}
		return historyRepo.Append(&entity.HistoryEntry{
			ID:        uuid.New().String(),
			Type:      entity.HistoryOrderUpdate,
			Ref:       orderID,
			Field:     "status",
			OldValue:  prevStatus,
			NewValue:  updatedOrder.Status,
			User:      user,
			Timestamp: now,
		})
	})
	if err != nil {
		return nil, err
	}

	// Notificación post-commit: la recepción ya está persistida; un fallo de
	// notificación se registra pero no revierte nada.
	if prevStatus != entity.OrderStatusComplete && updatedOrder.Status == entity.OrderStatusComplete {
		if err := uc.notifier.OrderCompleted(ctx, updatedOrder); err != nil {
			uc.log.Error().Err(err).Str("order_id", orderID).Msg("notificación de orden completada")
		}
	}

	return &dto.ReceptionResponse{
		Order:       toOrderResponse(updatedOrder),
		StockDeltas: stockDeltas,
	}, nil
}

// AddMessage agrega un mensaje al hilo de la orden y registra order_message.
func (uc *OrderUseCase) AddMessage(ctx context.Context, user string, orderID string, in dto.OrderMessageRequest) (*dto.OrderResponse, error) {
	if in.Body == "" {
		return nil, domain.ErrInvalidInput
	}
	var updated *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(
		_ repository.StockRepository,
		orderRepo repository.OrderRepository,
		historyRepo repository.HistoryRepository,
	) error {
		order, err := orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		order.Messages = append(order.Messages, entity.OrderMessage{
			Author:    user,
			Body:      in.Body,
			CreatedAt: time.Now(),
		})
		if err := orderRepo.Update(order); err != nil {
			return err
		}
		updated = order
		return historyRepo.Append(&entity.HistoryEntry{
			ID:        uuid.New().String(),
			Type:      entity.HistoryOrderMessage,
			Ref:       orderID,
			NewValue:  in.Body,
			User:      user,
			Timestamp: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	out := toOrderResponse(updated)
	return &out, nil
}

// Delete elimina una orden y registra order_delete. El borrado del adjunto
// físico queda a cargo de la capa de archivos.
func (uc *OrderUseCase) Delete(ctx context.Context, user, orderID string) error {
	return uc.txRunner.Run(ctx, func(
		_ repository.StockRepository,
		orderRepo repository.OrderRepository,
		historyRepo repository.HistoryRepository,
	) error {
		order, err := orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if err := orderRepo.Delete(orderID); err != nil {
			return err
		}
		return historyRepo.Append(&entity.HistoryEntry{
			ID:        uuid.New().String(),
			Type:      entity.HistoryOrderDelete,
			Ref:       orderID,
			OldValue:  toOrderResponse(order),
			User:      user,
			Timestamp: time.Now(),
		})
	})
}

func refsOf(lines []reception.ReportedLine) []string {
	refs := make([]string, 0, len(lines))
	for _, l := range lines {
		refs = append(refs, l.Ref)
	}
	return refs
}

func toOrderResponse(o *entity.PurchaseOrder) dto.OrderResponse {
	lines := make([]dto.OrderLineResponse, 0, len(o.OrderedLines))
	for _, l := range o.OrderedLines {
		lines = append(lines, dto.OrderLineResponse{
			Ref:              l.Ref,
			QuantityOrdered:  l.QuantityOrdered,
			UnitPrice:        l.UnitPrice,
			QuantityReceived: o.ReceivedLines[l.Ref],
		})
	}
	msgs := make([]dto.OrderMessageResponse, 0, len(o.Messages))
	for _, m := range o.Messages {
		msgs = append(msgs, dto.OrderMessageResponse{Author: m.Author, Body: m.Body, CreatedAt: m.CreatedAt})
	}
	return dto.OrderResponse{
		ID:         o.ID,
		Supplier:   o.Supplier,
		Status:     o.Status,
		Lines:      lines,
		CreatedAt:  o.CreatedAt,
		Creator:    o.Creator,
		Messages:   msgs,
		Comment:    o.Comment,
		Attachment: o.Attachment,
	}
}
