package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/pkg/chat"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/pkg/utils"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/store"
)

// sessionMaxIdle is how long a session may sit untouched before the
// sweeper drops it; the next message starts a fresh conversation.
const sessionMaxIdle = 30 * time.Minute

// Scheduler runs the background jobs: stale-session sweeping and the
// daily pending-withdrawals digest for the admin.
type Scheduler struct {
	c         *cron.Cron
	sessions  *store.SessionStore
	referrals *store.ReferralStore
	sender    chat.Sender
	adminID   string
	logger    *zap.Logger
}

func New(sessions *store.SessionStore, referrals *store.ReferralStore, sender chat.Sender, adminID string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		c:         cron.New(),
		sessions:  sessions,
		referrals: referrals,
		sender:    sender,
		adminID:   adminID,
		logger:    logger,
	}
}

// Start registers and launches the jobs.
func (s *Scheduler) Start() {
	_, _ = s.c.AddFunc("@every 10m", s.sweepSessions)
	_, _ = s.c.AddFunc("0 18 * * *", s.withdrawalsDigest)
	s.c.Start()
	s.logger.Info("Cron scheduler started")
}

// Stop stops the scheduler and returns a context that is done once
// running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.c.Stop()
}

func (s *Scheduler) sweepSessions() {
	if n := s.sessions.SweepIdle(sessionMaxIdle); n > 0 {
		s.logger.Info("swept idle sessions", zap.Int("count", n))
	}
}

// withdrawalsDigest reminds the admin of withdrawals still awaiting
// action.
func (s *Scheduler) withdrawalsDigest() {
	pending := s.referrals.PendingWithdrawals()
	if len(pending) == 0 {
		return
	}
	msg := fmt.Sprintf("🗒️ *Pending Withdrawals Digest* (%d)\n\n", len(pending))
	for _, p := range pending {
		msg += fmt.Sprintf("Code: %s\nWD ID: %s\nAmount: KSH %s\nM-Pesa: %s\nRequested: %s\n\n",
			p.Record.Code, p.Withdrawal.ID, utils.FormatAmount(p.Withdrawal.Amount),
			p.Withdrawal.Mpesa, utils.FormatKenyaTime(p.Withdrawal.CreatedAt))
	}
	msg += `(Use "withdraw update <ref_code> <wd_id> <STATUS> <remarks>" to update.)`
	if err := s.sender.Send(s.adminID, msg); err != nil {
		s.logger.Error("failed to send withdrawals digest", zap.Error(err))
	}
}
