// Package memory implementa los puertos de persistencia en memoria, con transacciones
// de todo o nada. Se usa en pruebas y en desarrollo (STORAGE_DRIVER=memory).
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/taller-stock/internal/application/stock"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
)

var _ stock.TxRunner = (*Store)(nil)

type idemKey struct {
	branchID string
	key      string
}

// data estado completo del almacén. Run trabaja sobre una copia y la publica al confirmar.
type data struct {
	balances     map[entity.StockKey]*entity.StockBalance
	ledger       []*entity.LedgerEntry
	adjustments  map[string]*entity.StockAdjustment
	orders       map[string]*entity.PurchaseOrder
	transfers    map[string]*entity.StockTransfer
	usages       map[string]*entity.PartUsage
	usageOrder   []string
	partRequests map[string]*entity.PartRequest
	sequences    map[string]int64
	idempotency  map[idemKey]*entity.IdempotencyRecord

	branches  map[string]*entity.Branch
	locations map[string]*entity.Location
	parts     map[string]*entity.Part
	suppliers map[string]*entity.Supplier
	jobs      map[string]string // jobID -> branchID
}

func newData() *data {
	return &data{
		balances:     map[entity.StockKey]*entity.StockBalance{},
		adjustments:  map[string]*entity.StockAdjustment{},
		orders:       map[string]*entity.PurchaseOrder{},
		transfers:    map[string]*entity.StockTransfer{},
		usages:       map[string]*entity.PartUsage{},
		partRequests: map[string]*entity.PartRequest{},
		sequences:    map[string]int64{},
		idempotency:  map[idemKey]*entity.IdempotencyRecord{},
		branches:     map[string]*entity.Branch{},
		locations:    map[string]*entity.Location{},
		parts:        map[string]*entity.Part{},
		suppliers:    map[string]*entity.Supplier{},
		jobs:         map[string]string{},
	}
}

func cloneMap[K comparable, V any](in map[K]*V, cp func(*V) *V) map[K]*V {
	out := make(map[K]*V, len(in))
	for k, v := range in {
		out[k] = cp(v)
	}
	return out
}

func shallow[V any](v *V) *V {
	c := *v
	return &c
}

func (d *data) clone() *data {
	c := &data{
		balances:     cloneMap(d.balances, shallow[entity.StockBalance]),
		ledger:       append([]*entity.LedgerEntry(nil), d.ledger...), // asientos inmutables
		adjustments:  cloneMap(d.adjustments, shallow[entity.StockAdjustment]),
		orders:       cloneMap(d.orders, copyOrder),
		transfers:    cloneMap(d.transfers, copyTransfer),
		usages:       cloneMap(d.usages, shallow[entity.PartUsage]),
		usageOrder:   append([]string(nil), d.usageOrder...),
		partRequests: cloneMap(d.partRequests, shallow[entity.PartRequest]),
		sequences:    make(map[string]int64, len(d.sequences)),
		idempotency:  make(map[idemKey]*entity.IdempotencyRecord, len(d.idempotency)),
		// Datos maestros: solo lectura para el motor.
		branches:  d.branches,
		locations: d.locations,
		parts:     d.parts,
		suppliers: d.suppliers,
		jobs:      d.jobs,
	}
	for k, v := range d.sequences {
		c.sequences[k] = v
	}
	for k, v := range d.idempotency {
		c.idempotency[k] = v
	}
	return c
}

func copyOrder(po *entity.PurchaseOrder) *entity.PurchaseOrder {
	c := *po
	c.Items = make([]*entity.PurchaseOrderItem, len(po.Items))
	for i, it := range po.Items {
		c.Items[i] = shallow(it)
	}
	c.LinkedPartRequestIDs = append([]string(nil), po.LinkedPartRequestIDs...)
	return &c
}

func copyTransfer(t *entity.StockTransfer) *entity.StockTransfer {
	c := *t
	c.Items = make([]*entity.StockTransferItem, len(t.Items))
	for i, it := range t.Items {
		c.Items[i] = shallow(it)
	}
	return &c
}

// Store almacén en memoria. Las transacciones se serializan con writeMu; cada una trabaja sobre
// una copia del estado que solo se publica si fn termina sin error.
type Store struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	current *data
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{current: newData()}
}

// Run implementa stock.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(repos stock.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	snapshot := s.current.clone()
	s.mu.RUnlock()

	if err := fn(reposFor(txView{d: snapshot})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	s.mu.Lock()
	s.current = snapshot
	s.mu.Unlock()
	return nil
}

// RunReadOnly implementa stock.TxRunner sobre una copia del estado confirmado.
// No toma writeMu: los escritores siguen confirmando mientras fn lee la copia.
func (s *Store) RunReadOnly(ctx context.Context, fn func(repos stock.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin read-only transaction: %w", err)
	}
	s.mu.RLock()
	snapshot := s.current.clone()
	s.mu.RUnlock()
	return fn(reposFor(txView{d: snapshot}))
}

// Repos repositorios fuera de transacción (cada escritura se confirma sola).
func (s *Store) Repos() stock.TxRepos {
	return reposFor(storeView{s: s})
}

// MasterData datos maestros de solo lectura.
func (s *Store) MasterData() *MasterDataRepo {
	return &MasterDataRepo{v: storeView{s: s}}
}

func reposFor(v view) stock.TxRepos {
	return stock.TxRepos{
		Balances:     &BalanceRepo{v: v},
		Ledger:       &LedgerRepo{v: v},
		Adjustments:  &AdjustmentRepo{v: v},
		Orders:       &PurchaseOrderRepo{v: v},
		Transfers:    &TransferRepo{v: v},
		Usages:       &PartUsageRepo{v: v},
		PartRequests: &PartRequestRepo{v: v},
		Sequences:    &SequenceRepo{v: v},
		Idempotency:  &IdempotencyRepo{v: v},
	}
}

// view acceso al estado: dentro de una tx (copia privada) o directo sobre el almacén.
type view interface {
	read(fn func(d *data))
	write(fn func(d *data) error) error
}

type txView struct{ d *data }

func (v txView) read(fn func(d *data))              { fn(v.d) }
func (v txView) write(fn func(d *data) error) error { return fn(v.d) }

type storeView struct{ s *Store }

func (v storeView) read(fn func(d *data)) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	fn(v.s.current)
}

// write fuera de transacción: se serializa con las transacciones y solo publica si no hay error.
func (v storeView) write(fn func(d *data) error) error {
	v.s.writeMu.Lock()
	defer v.s.writeMu.Unlock()
	v.s.mu.RLock()
	snapshot := v.s.current.clone()
	v.s.mu.RUnlock()
	if err := fn(snapshot); err != nil {
		return err
	}
	v.s.mu.Lock()
	v.s.current = snapshot
	v.s.mu.Unlock()
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
