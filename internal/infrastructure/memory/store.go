// Package memory implementa los repositorios sobre mapas en memoria protegidos por un mutex.
// Sirve para desarrollo (STORE_DRIVER=memory) y como respaldo de las pruebas de servicios.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Inventario-sucursales/internal/application/ports"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
)

var _ ports.TxRunner = (*Store)(nil)

// Store mantiene todo el estado. Run serializa las transacciones con un único mutex y restaura
// una copia del estado si fn falla. Los consecutivos quedan fuera de la copia: como una
// secuencia de base de datos, un valor entregado no se reutiliza aunque la transacción se revierta.
type Store struct {
	mu   sync.Mutex
	data *state

	seqMu     sync.Mutex
	sequences map[seqKey]int64
}

type seqKey struct {
	kind entity.SequenceKind
	year int
}

type state struct {
	branches     map[string]entity.Branch
	stock        map[string]entity.StockRecord
	stockByKey   map[string]string // product|branch -> id
	movements    []entity.StockMovement
	movementByID map[string]int // MovementID -> índice
	idemKeys     map[string]struct{}
	transfers    map[string]entity.StockTransfer
	orders       map[string]entity.Order
}

func newState() *state {
	return &state{
		branches:     map[string]entity.Branch{},
		stock:        map[string]entity.StockRecord{},
		stockByKey:   map[string]string{},
		movementByID: map[string]int{},
		idemKeys:     map[string]struct{}{},
		transfers:    map[string]entity.StockTransfer{},
		orders:       map[string]entity.Order{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.branches {
		c.branches[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.stockByKey {
		c.stockByKey[k] = v
	}
	c.movements = append(make([]entity.StockMovement, 0, len(s.movements)), s.movements...)
	for k, v := range s.movementByID {
		c.movementByID[k] = v
	}
	for k := range s.idemKeys {
		c.idemKeys[k] = struct{}{}
	}
	for k, v := range s.transfers {
		c.transfers[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	return c
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{data: newState(), sequences: map[seqKey]int64{}}
}

// Run ejecuta fn con repositorios que operan bajo el mutex ya tomado.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, r ports.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(ctx, s.repos(true)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// Repos repositorios para lecturas fuera de transacción; cada llamada toma el mutex.
func (s *Store) Repos() ports.Repos {
	return s.repos(false)
}

func (s *Store) repos(inTx bool) ports.Repos {
	h := handle{store: s, inTx: inTx}
	return ports.Repos{
		Stock:     &StockRecordRepo{h},
		Movements: &StockMovementRepo{h},
		Transfers: &StockTransferRepo{h},
		Sequences: &SequenceRepo{store: s},
		Branches:  &BranchRepo{h},
		Orders:    &OrderRepo{h},
	}
}

// SetSequence fija el último valor entregado para (kind, year). Útil para importar datos existentes.
func (s *Store) SetSequence(kind entity.SequenceKind, year int, value int64) {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	s.sequences[seqKey{kind, year}] = value
}

// handle da acceso al estado tomando el mutex solo fuera de una transacción.
type handle struct {
	store *Store
	inTx  bool
}

func (h handle) view(fn func(d *state) error) error {
	if !h.inTx {
		h.store.mu.Lock()
		defer h.store.mu.Unlock()
	}
	return fn(h.store.data)
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
