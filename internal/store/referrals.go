package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/models"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/pkg/utils"
)

// ReferralStore is the in-memory referral ledger: one record per owning
// identity, with code-keyed lookup for commission attribution.
type ReferralStore struct {
	mu      sync.RWMutex
	records map[string]*models.ReferralRecord // owner identity → record
	byCode  map[string]*models.ReferralRecord // referral code → record
}

func NewReferralStore() *ReferralStore {
	return &ReferralStore{
		records: make(map[string]*models.ReferralRecord),
		byCode:  make(map[string]*models.ReferralRecord),
	}
}

// Get returns the record owned by identity.
func (s *ReferralStore) Get(identity string) (*models.ReferralRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[identity]
	return r, ok
}

// ByCode returns the record whose referral code equals code.
func (s *ReferralStore) ByCode(code string) (*models.ReferralRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byCode[code]
	return r, ok
}

// GetOrCreate returns the identity's record, lazily creating one with a
// freshly generated unique code. parentCode is only applied on creation;
// an existing record's code and parent are immutable.
func (s *ReferralStore) GetOrCreate(identity, parentCode string) *models.ReferralRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[identity]; ok {
		return r
	}
	code := utils.GenerateReferralCode()
	for {
		if _, taken := s.byCode[code]; !taken {
			break
		}
		code = utils.GenerateReferralCode()
	}
	r := &models.ReferralRecord{
		Owner:  identity,
		Code:   code,
		Parent: parentCode,
	}
	s.records[identity] = r
	s.byCode[code] = r
	return r
}

// AddReferred appends identity to the record's referred list if not
// already present.
func (s *ReferralStore) AddReferred(r *models.ReferralRecord, identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range r.Referred {
		if u == identity {
			return
		}
	}
	r.Referred = append(r.Referred, identity)
}

// Credit increases a record's earnings by amount.
func (s *ReferralStore) Credit(r *models.ReferralRecord, amount float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Earnings += amount
	return r.Earnings
}

// Debit decreases a record's earnings by amount. It fails without
// mutating when the balance would go negative.
func (s *ReferralStore) Debit(r *models.ReferralRecord, amount float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Earnings < amount {
		return r.Earnings, fmt.Errorf("insufficient earnings: have %v, want %v", r.Earnings, amount)
	}
	r.Earnings -= amount
	return r.Earnings, nil
}

// SetPIN sets the record's withdrawal PIN.
func (s *ReferralStore) SetPIN(r *models.ReferralRecord, pin string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.PIN = pin
}

// AppendWithdrawal adds a withdrawal to the record's history.
func (s *ReferralStore) AppendWithdrawal(r *models.ReferralRecord, wd *models.Withdrawal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Withdrawals = append(r.Withdrawals, wd)
}

// UpdateWithdrawal sets the status and remarks of the record's
// withdrawal with the given id. The mutation happens under the store
// lock so concurrent readers (the pending digest) see a consistent
// withdrawal.
func (s *ReferralStore) UpdateWithdrawal(r *models.ReferralRecord, id, status, remarks string) (*models.Withdrawal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, wd := range r.Withdrawals {
		if wd.ID == id {
			wd.Status = status
			wd.Remarks = remarks
			return wd, true
		}
	}
	return nil, false
}

// All returns every record, ordered by owner identity for stable
// listings.
func (s *ReferralStore) All() []*models.ReferralRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.ReferralRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Owner < out[j].Owner })
	return out
}

// PendingWithdrawals returns all withdrawals still in PENDING, paired
// with their owning record.
func (s *ReferralStore) PendingWithdrawals() []PendingWithdrawal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []PendingWithdrawal
	for _, r := range s.records {
		for _, wd := range r.Withdrawals {
			if wd.Status == models.WithdrawalPending {
				out = append(out, PendingWithdrawal{Record: r, Withdrawal: wd})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Withdrawal.CreatedAt.Before(out[j].Withdrawal.CreatedAt)
	})
	return out
}

// PendingWithdrawal pairs a withdrawal with the record that owns it.
type PendingWithdrawal struct {
	Record     *models.ReferralRecord
	Withdrawal *models.Withdrawal
}
