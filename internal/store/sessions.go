package store

import (
	"sync"
	"time"

	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/models"
)

// SessionStore keeps per-identity conversation state. Sessions are
// ephemeral: never persisted, lost on restart.
//
// Session structs are read and written by the dispatch goroutine only.
// The store itself owns the last-activity stamps and the referral
// attributions, so the sweeper and the dispatch loop never share a
// struct field: the sweeper works exclusively on the locked maps.
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*models.Session
	activity  map[string]time.Time
	referrers map[string]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:  make(map[string]*models.Session),
		activity:  make(map[string]time.Time),
		referrers: make(map[string]string),
	}
}

// Get returns the session for the identity, creating an empty one (no
// step) if none exists.
func (s *SessionStore) Get(identity string) *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[identity]
	if !ok {
		sess = &models.Session{}
		s.sessions[identity] = sess
		s.activity[identity] = time.Now()
	}
	return sess
}

// Peek returns the session without creating one.
func (s *SessionStore) Peek(identity string) (*models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[identity]
	return sess, ok
}

// Reset replaces the identity's session with a fresh one at the main
// step. The referral attribution lives in the store, not the session,
// so it survives.
func (s *SessionStore) Reset(identity string) *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &models.Session{Step: models.StepMain}
	s.sessions[identity] = sess
	s.activity[identity] = time.Now()
	return sess
}

// Touch stamps the identity's last-activity time.
func (s *SessionStore) Touch(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity[identity] = time.Now()
}

// Referrer returns the referral code the identity arrived through, or
// "" if none was recorded.
func (s *SessionStore) Referrer(identity string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.referrers[identity]
}

// SetReferrer records the identity's referral attribution. First write
// wins; the attribution is an identity fact, not flow state.
func (s *SessionStore) SetReferrer(identity, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.referrers[identity]; !ok {
		s.referrers[identity] = code
	}
}

// SweepIdle drops sessions with no activity for longer than maxIdle and
// returns how many were dropped. Mid-flow scratch state of an abandoned
// conversation goes with it; referral attributions stay. The next
// message from a swept identity starts a fresh session.
func (s *SessionStore) SweepIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	swept := 0
	for id, seen := range s.activity {
		if seen.Before(cutoff) {
			delete(s.sessions, id)
			delete(s.activity, id)
			swept++
		}
	}
	return swept
}
