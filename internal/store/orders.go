package store

import (
	"sync"

	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/models"
)

// OrderStore is the in-memory order ledger, keyed by generated order id.
// Orders are never deleted.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
}

func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]*models.Order)}
}

func (s *OrderStore) Put(o *models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
}

func (s *OrderStore) Get(id string) (*models.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	return o, ok
}

// Exists reports whether an order id is already taken, so generated ids
// can be checked for uniqueness before insertion.
func (s *OrderStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.orders[id]
	return ok
}

// SetStatus updates an order's status and remark. Status is free-form
// after creation; the admin may set any token.
func (s *OrderStore) SetStatus(id, status, remark string) (*models.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, false
	}
	o.Status = status
	o.Remark = remark
	return o, true
}

// MarkReferralCredited flips the credited flag. It reports whether the
// flag was newly set: false means crediting already happened and the
// caller must not credit again.
func (s *OrderStore) MarkReferralCredited(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.ReferralCredited {
		return false
	}
	o.ReferralCredited = true
	return true
}

// ByCustomer returns all orders placed by an identity.
func (s *OrderStore) ByCustomer(identity string) []*models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Order
	for _, o := range s.orders {
		if o.Customer == identity {
			out = append(out, o)
		}
	}
	return out
}

// CountByStatus returns the number of orders currently in status.
func (s *OrderStore) CountByStatus(status string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, o := range s.orders {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Len returns the total number of orders.
func (s *OrderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}
