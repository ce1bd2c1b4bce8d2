// Package store owns the in-memory order table. Every read and mutation of
// order state crosses its mutex; callers only ever see copies, so no
// partially updated order is observable.
package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/orderlab/realtime-orders/internal/domain"
)

var (
	ErrNotFound = errors.New("order not found")

	// ErrNotCompleted is returned by Remove for an order that exists but has
	// not reached Completed. Distinct from ErrNotFound so callers can map it
	// to a precondition failure instead of a 404.
	ErrNotCompleted = errors.New("only completed orders can be deleted")

	// ErrInvalidTransition is returned by AdvanceStatus when the requested
	// status does not directly follow the current one.
	ErrInvalidTransition = errors.New("status transition not allowed")
)

type entry struct {
	order domain.Order
	seq   uint64 // insertion order, tie-breaker for equal timestamps
}

type Store struct {
	mu      sync.Mutex
	orders  map[string]*entry
	nextSeq uint64
}

func New() *Store {
	return &Store{orders: make(map[string]*entry)}
}

// Insert adds a new order. Order ids come from a collision-free generator,
// so an existing key is a programming error rather than a runtime condition.
func (s *Store) Insert(order domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSeq++
	s.orders[order.ID] = &entry{order: order, seq: s.nextSeq}
}

func (s *Store) Get(id string) (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.orders[id]
	if !ok {
		return domain.Order{}, false
	}
	return e.order, true
}

// List returns all orders, most recent first. Equal timestamps keep
// insertion order, newest insertion first, so the result is deterministic.
func (s *Store) List() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]*entry, 0, len(s.orders))
	for _, e := range s.orders {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.order.CreatedAt.Equal(b.order.CreatedAt) {
			return a.order.CreatedAt.After(b.order.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]domain.Order, len(entries))
	for i, e := range entries {
		out[i] = e.order
	}
	return out
}

// AdvanceStatus moves an order to status and returns the updated copy.
// A missing order returns ErrNotFound: a delete racing a scheduled
// transition wins, and the caller treats that as a no-op. A transition that
// does not directly follow the current status is also refused, which keeps
// the table consistent even if timers ever fire out of order.
func (s *Store) AdvanceStatus(id string, status domain.OrderStatus) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.orders[id]
	if !ok {
		return domain.Order{}, ErrNotFound
	}
	if !domain.CanTransition(e.order.Status, status) {
		return domain.Order{}, ErrInvalidTransition
	}
	e.order.Status = status
	return e.order, nil
}

// Remove deletes the order if present and Completed.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	if e.order.Status != domain.OrderStatusCompleted {
		return ErrNotCompleted
	}
	delete(s.orders, id)
	return nil
}

// Len reports the number of stored orders.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}
