package store

import (
	"sync"

	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/config"
)

// SettingsStore holds the runtime-mutable globals the admin can change
// without a restart: the manual-payment instruction string, withdrawal
// limits and PayHero push credentials. Initial values come from config.
type SettingsStore struct {
	mu            sync.RWMutex
	paymentInfo   string
	minWithdrawal float64
	maxWithdrawal float64
	channelID     int
	authToken     string
}

func NewSettingsStore(cfg *config.Config) *SettingsStore {
	return &SettingsStore{
		paymentInfo:   cfg.Payment.Info,
		minWithdrawal: cfg.Referral.MinWithdrawal,
		maxWithdrawal: cfg.Referral.MaxWithdrawal,
		channelID:     cfg.PayHero.ChannelID,
		authToken:     cfg.PayHero.AuthToken,
	}
}

func (s *SettingsStore) PaymentInfo() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paymentInfo
}

func (s *SettingsStore) SetPaymentInfo(info string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paymentInfo = info
}

func (s *SettingsStore) WithdrawalLimits() (min, max float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.minWithdrawal, s.maxWithdrawal
}

func (s *SettingsStore) SetWithdrawalLimits(min, max float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minWithdrawal = min
	s.maxWithdrawal = max
}

// PayHero returns the current STK push channel and basic-auth credential.
func (s *SettingsStore) PayHero() (channelID int, authToken string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.channelID, s.authToken
}

func (s *SettingsStore) SetPayHero(channelID int, authToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channelID = channelID
	s.authToken = authToken
}
