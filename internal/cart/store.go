package cart

import (
	"sync"

	"github.com/hemen47/coolgards-front-sub000/internal/domain"
)

// Listener is notified with a copy of the cart after every mutation.
// Listeners run in mutation order and must not mutate the store.
type Listener func(items []domain.LineItem)

// Store is the single owner of a shopper's cart. All changes go through its
// methods; callers only ever see copies.
type Store struct {
	mu    sync.Mutex
	items []domain.LineItem
	index map[string]int // productID -> position in items

	notifyMu  sync.Mutex
	listeners []Listener
}

// NewStore creates an empty cart store
func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Subscribe registers l for change notifications.
func (s *Store) Subscribe(l Listener) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.listeners = append(s.listeners, l)
}

// AddItem merges p into the cart by product id. An existing line has its
// quantity increased and keeps its original snapshot; otherwise a new line is
// appended. A quantity below 1 falls back to the product's own quantity, then 1.
func (s *Store) AddItem(p domain.Product, quantity int) []domain.LineItem {
	if p.ID == "" {
		panic("cart: AddItem called with empty product id")
	}
	if quantity < 1 {
		quantity = p.Quantity
	}
	if quantity < 1 {
		quantity = 1
	}

	return s.mutate(func() {
		if i, ok := s.index[p.ID]; ok {
			s.items[i].Quantity += quantity
			return
		}
		s.index[p.ID] = len(s.items)
		s.items = append(s.items, domain.NewLineItem(p, quantity))
	})
}

// RemoveItem drops the line for productID, if any.
func (s *Store) RemoveItem(productID string) []domain.LineItem {
	return s.mutate(func() {
		s.removeLocked(productID)
	})
}

// DecrementItem lowers the line's quantity by one. A line at quantity 1 is
// removed rather than kept at zero.
func (s *Store) DecrementItem(productID string) []domain.LineItem {
	return s.mutate(func() {
		i, ok := s.index[productID]
		if !ok {
			return
		}
		if s.items[i].Quantity <= 1 {
			s.removeLocked(productID)
			return
		}
		s.items[i].Quantity--
	})
}

// SetCart replaces the cart wholesale. The input may come from untrusted
// storage, so quantities are normalized, lines without an id are dropped and
// duplicate ids are collapsed into the first occurrence by summing quantities.
func (s *Store) SetCart(items []domain.LineItem) []domain.LineItem {
	return s.mutate(func() {
		s.items, s.index = collapse(items)
	})
}

// Clear empties the cart.
func (s *Store) Clear() []domain.LineItem {
	return s.mutate(func() {
		s.items = nil
		s.index = make(map[string]int)
	})
}

// Items returns a copy of the current cart in insertion order.
func (s *Store) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Len returns the number of distinct line items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// mutate applies fn under the store lock and then notifies listeners. The
// notify lock is taken before the store lock is released so that listeners
// observe mutations in the order they were applied.
func (s *Store) mutate(fn func()) []domain.LineItem {
	s.mu.Lock()
	fn()
	result := s.snapshotLocked()
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, l := range s.listeners {
		l(domain.CloneItems(result))
	}
	return result
}

func (s *Store) removeLocked(productID string) {
	i, ok := s.index[productID]
	if !ok {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, productID)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ID] = j
	}
}

func (s *Store) snapshotLocked() []domain.LineItem {
	out := make([]domain.LineItem, len(s.items))
	for i, item := range s.items {
		out[i] = item.Clone()
	}
	return out
}

func collapse(items []domain.LineItem) ([]domain.LineItem, map[string]int) {
	out := make([]domain.LineItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		item = item.Normalize().Clone()
		if i, ok := index[item.ID]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out, index
}
