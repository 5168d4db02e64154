// Package jsonfile implementa la persistencia por defecto: archivos JSON en
// disco (stock.json, orders.json, history.json más el archivo de usuarios).
// Todo el estado vive en memoria bajo un mutex; cada escritura reescribe el
// archivo completo con rename atómico.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stock-app/internal/domain/entity"
)

const (
	stockFile   = "stock.json"
	ordersFile  = "orders.json"
	historyFile = "history.json"
)

// Store estado compartido del backend de archivos. Los repositorios y el
// TxRunner del paquete operan sobre el mismo Store.
type Store struct {
	mu        sync.Mutex
	dir       string
	usersPath string

	stock   map[string]*entity.StockItem
	orders  map[string]*entity.PurchaseOrder
	history []*entity.HistoryEntry
	users   []*entity.User
}

// Open carga (o inicializa vacíos) los archivos de datos bajo dir. El archivo
// de usuarios vive en su propia ruta porque se aprovisiona por fuera.
func Open(dir, usersPath string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &Store{
		dir:       dir,
		usersPath: usersPath,
		stock:     make(map[string]*entity.StockItem),
		orders:    make(map[string]*entity.PurchaseOrder),
	}
	if err := s.loadStock(); err != nil {
		return nil, err
	}
	if err := s.loadOrders(); err != nil {
		return nil, err
	}
	if err := s.loadHistory(); err != nil {
		return nil, err
	}
	if err := s.loadUsers(); err != nil {
		return nil, err
	}
	return s, nil
}

// ──────────────────────────────────────────────
// Formato en disco
// ──────────────────────────────────────────────

type stockRecord struct {
	Ref             string          `json:"ref"`
	Brand           string          `json:"brand"`
	Description     string          `json:"description"`
	Supplier        string          `json:"supplier"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	QuantityOnHand  int             `json:"quantityOnHand"`
	QuantityMinimum int             `json:"quantityMinimum"`
	QuantityOnOrder int             `json:"quantityOnOrder"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type orderLineRecord struct {
	Ref             string          `json:"ref"`
	QuantityOrdered int             `json:"quantityOrdered"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
}

type orderMessageRecord struct {
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type orderRecord struct {
	ID            string               `json:"id"`
	Supplier      string               `json:"supplier"`
	Status        string               `json:"status"`
	OrderedLines  []orderLineRecord    `json:"lines"`
	ReceivedLines map[string]int       `json:"receivedLines"`
	CreatedAt     time.Time            `json:"createdAt"`
	Creator       string               `json:"creator"`
	CreatorEmail  string               `json:"creatorEmail"`
	Messages      []orderMessageRecord `json:"messages"`
	Comment       string               `json:"comment,omitempty"`
	Attachment    string               `json:"attachment,omitempty"`
}

type userRecord struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toStockRecord(it *entity.StockItem) stockRecord {
	return stockRecord{
		Ref:             it.Ref,
		Brand:           it.Brand,
		Description:     it.Description,
		Supplier:        it.Supplier,
		UnitPrice:       it.UnitPrice,
		QuantityOnHand:  it.QuantityOnHand,
		QuantityMinimum: it.QuantityMinimum,
		QuantityOnOrder: it.QuantityOnOrder,
		UpdatedAt:       it.UpdatedAt,
	}
}

func (r stockRecord) toEntity() *entity.StockItem {
	return &entity.StockItem{
		Ref:             r.Ref,
		Brand:           r.Brand,
		Description:     r.Description,
		Supplier:        r.Supplier,
		UnitPrice:       r.UnitPrice,
		QuantityOnHand:  r.QuantityOnHand,
		QuantityMinimum: r.QuantityMinimum,
		QuantityOnOrder: r.QuantityOnOrder,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toOrderRecord(o *entity.PurchaseOrder) orderRecord {
	rec := orderRecord{
		ID:            o.ID,
		Supplier:      o.Supplier,
		Status:        o.Status,
		ReceivedLines: o.ReceivedLines,
		CreatedAt:     o.CreatedAt,
		Creator:       o.Creator,
		CreatorEmail:  o.CreatorEmail,
		Comment:       o.Comment,
		Attachment:    o.Attachment,
	}
	for _, l := range o.OrderedLines {
		rec.OrderedLines = append(rec.OrderedLines, orderLineRecord(l))
	}
	for _, m := range o.Messages {
		rec.Messages = append(rec.Messages, orderMessageRecord(m))
	}
	return rec
}

func (r orderRecord) toEntity() *entity.PurchaseOrder {
	o := &entity.PurchaseOrder{
		ID:            r.ID,
		Supplier:      r.Supplier,
		Status:        r.Status,
		ReceivedLines: r.ReceivedLines,
		CreatedAt:     r.CreatedAt,
		Creator:       r.Creator,
		CreatorEmail:  r.CreatorEmail,
		Comment:       r.Comment,
		Attachment:    r.Attachment,
	}
	if o.ReceivedLines == nil {
		o.ReceivedLines = make(map[string]int)
	}
	for _, l := range r.OrderedLines {
		o.OrderedLines = append(o.OrderedLines, entity.OrderLine(l))
	}
	for _, m := range r.Messages {
		o.Messages = append(o.Messages, entity.OrderMessage(m))
	}
	return o
}

// ──────────────────────────────────────────────
// Carga
// ──────────────────────────────────────────────

// readJSONFile deserializa path en out. Un archivo ausente no es error: el
// store arranca vacío la primera vez.
func readJSONFile(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (s *Store) loadStock() error {
	var records []stockRecord
	if err := readJSONFile(filepath.Join(s.dir, stockFile), &records); err != nil {
		return err
	}
	for _, rec := range records {
		it := rec.toEntity()
		s.stock[it.Ref] = it
	}
	return nil
}

func (s *Store) loadOrders() error {
	var records []orderRecord
	if err := readJSONFile(filepath.Join(s.dir, ordersFile), &records); err != nil {
		return err
	}
	for _, rec := range records {
		o := rec.toEntity()
		s.orders[o.ID] = o
	}
	return nil
}

func (s *Store) loadHistory() error {
	return readJSONFile(filepath.Join(s.dir, historyFile), &s.history)
}

func (s *Store) loadUsers() error {
	var records []userRecord
	if err := readJSONFile(s.usersPath, &records); err != nil {
		return err
	}
	for _, rec := range records {
		s.users = append(s.users, &entity.User{
			ID:           rec.ID,
			Username:     rec.Username,
			Email:        rec.Email,
			Name:         rec.Name,
			PasswordHash: rec.PasswordHash,
			CreatedAt:    rec.CreatedAt,
			UpdatedAt:    rec.UpdatedAt,
		})
	}
	return nil
}

// ──────────────────────────────────────────────
// Escritura atómica (requieren mu tomado)
// ──────────────────────────────────────────────

// writeJSONFile escribe a un temporal en el mismo directorio y renombra encima
// del destino, para que un corte a mitad de escritura nunca deje un archivo
// truncado.
func writeJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

func (s *Store) stockRecords() []stockRecord {
	records := make([]stockRecord, 0, len(s.stock))
	for _, it := range s.stock {
		records = append(records, toStockRecord(it))
	}
	return records
}

func (s *Store) orderRecords() []orderRecord {
	records := make([]orderRecord, 0, len(s.orders))
	for _, o := range s.orders {
		records = append(records, toOrderRecord(o))
	}
	return records
}

func (s *Store) historyRecords() []*entity.HistoryEntry {
	if s.history == nil {
		return []*entity.HistoryEntry{}
	}
	return s.history
}

func (s *Store) flushStock() error {
	return writeJSONFile(filepath.Join(s.dir, stockFile), s.stockRecords())
}

func (s *Store) flushOrders() error {
	return writeJSONFile(filepath.Join(s.dir, ordersFile), s.orderRecords())
}

func (s *Store) flushHistory() error {
	return writeJSONFile(filepath.Join(s.dir, historyFile), s.historyRecords())
}

type flushTarget struct {
	path string
	v    interface{}
}

// flushAll persiste las tres colecciones de una transacción de forma conjunta.
func (s *Store) flushAll() error {
	return flushStaged([]flushTarget{
		{filepath.Join(s.dir, stockFile), s.stockRecords()},
		{filepath.Join(s.dir, ordersFile), s.orderRecords()},
		{filepath.Join(s.dir, historyFile), s.historyRecords()},
	})
}

// flushOrdersHistory persiste órdenes e historial de forma conjunta (el
// backend de hoja de cálculo mantiene el stock por su cuenta).
func (s *Store) flushOrdersHistory() error {
	return flushStaged([]flushTarget{
		{filepath.Join(s.dir, ordersFile), s.orderRecords()},
		{filepath.Join(s.dir, historyFile), s.historyRecords()},
	})
}

// flushStaged escribe en dos fases: primero TODOS los temporales y solo si
// ninguno falló los renombra sobre los destinos. Así un fallo al serializar o
// escribir una colección no deja en disco los archivos de las otras, que tras
// un reinicio resucitarían una transacción revertida en memoria.
func flushStaged(targets []flushTarget) error {
	tmps := make([]string, 0, len(targets))
	cleanup := func() {
		for _, tmp := range tmps {
			os.Remove(tmp)
		}
	}
	for _, t := range targets {
		data, err := json.MarshalIndent(t.v, "", "  ")
		if err != nil {
			cleanup()
			return fmt.Errorf("marshal %s: %w", t.path, err)
		}
		tmp := t.path + ".tmp"
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			cleanup()
			return fmt.Errorf("write %s: %w", tmp, err)
		}
		tmps = append(tmps, tmp)
	}
	for i, t := range targets {
		if err := os.Rename(tmps[i], t.path); err != nil {
			return fmt.Errorf("rename %s: %w", t.path, err)
		}
	}
	return nil
}

func (s *Store) flushUsers() error {
	records := make([]userRecord, 0, len(s.users))
	for _, u := range s.users {
		records = append(records, userRecord{
			ID:           u.ID,
			Username:     u.Username,
			Email:        u.Email,
			Name:         u.Name,
			PasswordHash: u.PasswordHash,
			CreatedAt:    u.CreatedAt,
			UpdatedAt:    u.UpdatedAt,
		})
	}
	return writeJSONFile(s.usersPath, records)
}

// ──────────────────────────────────────────────
// Snapshot para rollback de transacciones
// ──────────────────────────────────────────────

type snapshot struct {
	stock   map[string]*entity.StockItem
	orders  map[string]*entity.PurchaseOrder
	history []*entity.HistoryEntry
}

// takeSnapshot copia el estado mutable por transacción. Las entradas de
// historial son inmutables una vez escritas, basta copiar el slice.
func (s *Store) takeSnapshot() snapshot {
	snap := snapshot{
		stock:   make(map[string]*entity.StockItem, len(s.stock)),
		orders:  make(map[string]*entity.PurchaseOrder, len(s.orders)),
		history: make([]*entity.HistoryEntry, len(s.history)),
	}
	for ref, it := range s.stock {
		cp := *it
		snap.stock[ref] = &cp
	}
	for id, o := range s.orders {
		snap.orders[id] = o.Clone()
	}
	copy(snap.history, s.history)
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.stock = snap.stock
	s.orders = snap.orders
	s.history = snap.history
}
