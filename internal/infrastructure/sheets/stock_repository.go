// Package sheets implementa el backend de stock sobre una hoja de cálculo de
// Google Sheets. La hoja es la fuente de verdad que el equipo ya edita a mano;
// el servicio la lee completa al arrancar y reescribe el rango en cada
// mutación. Órdenes e historial no viven aquí: caen al backend de archivos.
package sheets

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/tu-usuario/stock-app/internal/domain"
	"github.com/tu-usuario/stock-app/internal/domain/entity"
	"github.com/tu-usuario/stock-app/internal/domain/repository"
	"github.com/tu-usuario/stock-app/pkg/config"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre Google Sheets.
// Mantiene una caché en memoria del rango leído; las mutaciones actualizan la
// caché y reescriben el rango completo.
type StockRepo struct {
	service       *sheetsapi.Service
	spreadsheetID string
	readRange     string
	log           zerolog.Logger

	mu    sync.Mutex
	cache map[string]*entity.StockItem

	// tx=true dentro del TxRunner del paquete: el lock ya está tomado y el
	// flush se difiere al commit.
	tx bool
}

// NewStockRepository crea el adaptador y carga el rango inicial.
func NewStockRepository(ctx context.Context, cfg config.SheetsConfig, log zerolog.Logger) (*StockRepo, error) {
	service, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("init sheets client: %w", err)
	}
	r := &StockRepo{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		readRange:     cfg.ReadRange,
		log:           log,
		cache:         make(map[string]*entity.StockItem),
	}
	if err := r.load(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *StockRepo) lock() func() {
	if r.tx {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

// snapshot copia la caché para rollback. Requiere r.mu tomado.
func (r *StockRepo) snapshot() map[string]*entity.StockItem {
	snap := make(map[string]*entity.StockItem, len(r.cache))
	for ref, it := range r.cache {
		cp := *it
		snap[ref] = &cp
	}
	return snap
}

// load lee el rango completo y reconstruye la caché. Filas sin ref se ignoran.
func (r *StockRepo) load(ctx context.Context) error {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, r.readRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read range %s: %w", r.readRange, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*entity.StockItem, len(resp.Values))
	for _, row := range resp.Values {
		it := parseRow(row)
		if it == nil {
			continue
		}
		r.cache[it.Ref] = it
	}
	r.log.Info().Int("items", len(r.cache)).Str("range", r.readRange).Msg("stock cargado desde la hoja")
	return nil
}

// Columnas del rango: ref, brand, description, supplier, unitPrice,
// qtyOnHand, qtyMinimum, qtyOnOrder.
func parseRow(row []interface{}) *entity.StockItem {
	ref := entity.NormalizeRef(cellString(row, 0))
	if ref == "" {
		return nil
	}
	return &entity.StockItem{
		Ref:             ref,
		Brand:           cellString(row, 1),
		Description:     cellString(row, 2),
		Supplier:        cellString(row, 3),
		UnitPrice:       cellDecimal(row, 4),
		QuantityOnHand:  cellInt(row, 5),
		QuantityMinimum: cellInt(row, 6),
		QuantityOnOrder: cellInt(row, 7),
	}
}

func cellString(row []interface{}, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[i]))
}

func cellInt(row []interface{}, i int) int {
	s := cellString(row, i)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	// Sheets a veces devuelve números como "12.0"
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		return int(f)
	}
	return 0
}

func cellDecimal(row []interface{}, i int) decimal.Decimal {
	s := strings.ReplaceAll(cellString(row, i), ",", ".")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func itemRow(it *entity.StockItem) []interface{} {
	return []interface{}{
		it.Ref,
		it.Brand,
		it.Description,
		it.Supplier,
		it.UnitPrice.String(),
		it.QuantityOnHand,
		it.QuantityMinimum,
		it.QuantityOnOrder,
	}
}

// flush reescribe el rango completo con la caché ordenada por ref.
// Requiere r.mu tomado.
func (r *StockRepo) flush(ctx context.Context) error {
	items := make([]*entity.StockItem, 0, len(r.cache))
	for _, it := range r.cache {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Ref < items[j].Ref })

	rows := make([][]interface{}, 0, len(items))
	for _, it := range items {
		rows = append(rows, itemRow(it))
	}

	if _, err := r.service.Spreadsheets.Values.Clear(r.spreadsheetID, r.readRange, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear range %s: %w", r.readRange, err)
	}
	payload := &sheetsapi.ValueRange{Values: rows}
	_, err := r.service.Spreadsheets.Values.Update(r.spreadsheetID, r.readRange, payload).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update range %s: %w", r.readRange, err)
	}
	r.log.Debug().Int("rows", len(rows)).Msg("stock reescrito en la hoja")
	return nil
}

func (r *StockRepo) List() ([]*entity.StockItem, error) {
	defer r.lock()()
	items := make([]*entity.StockItem, 0, len(r.cache))
	for _, it := range r.cache {
		cp := *it
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Ref < items[j].Ref })
	return items, nil
}

func (r *StockRepo) GetByRef(ref string) (*entity.StockItem, error) {
	defer r.lock()()
	it, ok := r.cache[ref]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

// GetForUpdate equivale a GetByRef: el mutex de la caché serializa las escrituras.
func (r *StockRepo) GetForUpdate(ref string) (*entity.StockItem, error) {
	return r.GetByRef(ref)
}

func (r *StockRepo) Create(item *entity.StockItem) error {
	defer r.lock()()
	if _, ok := r.cache[item.Ref]; ok {
		return domain.ErrDuplicate
	}
	cp := *item
	r.cache[item.Ref] = &cp
	if r.tx {
		return nil
	}
	return r.flush(context.Background())
}

func (r *StockRepo) Update(item *entity.StockItem) error {
	defer r.lock()()
	if _, ok := r.cache[item.Ref]; !ok {
		return domain.ErrNotFound
	}
	cp := *item
	cp.UpdatedAt = time.Now()
	r.cache[item.Ref] = &cp
	if r.tx {
		return nil
	}
	return r.flush(context.Background())
}

func (r *StockRepo) Delete(ref string) error {
	defer r.lock()()
	if _, ok := r.cache[ref]; !ok {
		return domain.ErrNotFound
	}
	delete(r.cache, ref)
	if r.tx {
		return nil
	}
	return r.flush(context.Background())
}
