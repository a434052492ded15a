package store

import "sync"

// BanStore tracks banned identities.
type BanStore struct {
	mu     sync.RWMutex
	banned map[string]struct{}
}

func NewBanStore() *BanStore {
	return &BanStore{banned: make(map[string]struct{})}
}

func (s *BanStore) Ban(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banned[identity] = struct{}{}
}

func (s *BanStore) Unban(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.banned, identity)
}

func (s *BanStore) IsBanned(identity string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.banned[identity]
	return ok
}
