// Package memory implementa los puertos de persistencia en memoria, con transacciones
// de copia completa. Lo usan las pruebas de casos de uso y de handlers.
package memory

import (
	"sync"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

type pairKey struct {
	productID   string
	warehouseID string
}

type state struct {
	products   map[string]entity.Product
	warehouses map[string]entity.Warehouse
	inventory  map[pairKey]entity.InventoryRecord
	logs       []storedLog
	users      map[string]entity.User
	seq        int64
}

type storedLog struct {
	seq int64
	log entity.StockLog
}

func newState() *state {
	return &state{
		products:   make(map[string]entity.Product),
		warehouses: make(map[string]entity.Warehouse),
		inventory:  make(map[pairKey]entity.InventoryRecord),
		users:      make(map[string]entity.User),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.inventory {
		c.inventory[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	c.logs = append(make([]storedLog, 0, len(s.logs)), s.logs...)
	c.seq = s.seq
	return c
}

// Store estado compartido protegido por mutex. Las transacciones trabajan sobre una copia
// y la publican solo al confirmar.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

// access abstrae el estado confirmado (Store) o el de una transacción (txStore).
type access interface {
	view(fn func(st *state))
	update(fn func(st *state) error) error
}

// view ejecuta fn con el estado confirmado bajo el lock.
func (s *Store) view(fn func(st *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// update ejecuta fn y confirma los cambios si no hay error (autocommit por operación).
func (s *Store) update(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.state.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.state = work
	return nil
}
