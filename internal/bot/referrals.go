package bot

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/models"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/pkg/utils"
)

const referralsMenuText = `🌟 *My Referrals Menu* 🌟
1️⃣ View Earnings & Balance
2️⃣ Withdraw Earnings
3️⃣ Get Referral Link
4️⃣ Change PIN
5️⃣ View Referred Users
Type a number, or "0" to go back.`

// referralLink lazily creates the identity's referral record and
// returns a deep link embedding its code. The parent is inherited from
// the identity's recorded referrer, if any.
func (b *Bot) referralLink(in *inbound) string {
	r := b.stores.Referrals.GetOrCreate(in.from, b.stores.Sessions.Referrer(in.from))
	return fmt.Sprintf("https://wa.me/%s?text=ref %s", b.cfg.Bot.DeviceNumber, r.Code)
}

// handleReferralLink serves the "referral" quick command.
func (b *Bot) handleReferralLink(in *inbound) {
	if ref := b.stores.Sessions.Referrer(in.from); ref != "" {
		b.send(in.from, fmt.Sprintf("ℹ️ You were already referred by code *%s*.", ref))
		return
	}
	bonus := utils.FormatAmount(b.cfg.Referral.Bonus)
	b.send(in.from, fmt.Sprintf("😍 *Your Referral Link:*\n%s\nShare it with friends to earn KSH%s per successful order!", b.referralLink(in), bonus))
}

// handleReferralEntry serves "ref <CODE>": a new identity arriving
// through someone's link. The relationship is recorded now but only
// credited once an order completes.
func (b *Bot) handleReferralEntry(in *inbound) {
	parts := strings.Fields(in.text)
	if len(parts) != 2 {
		b.handleFallback(in)
		return
	}
	code := strings.ToUpper(parts[1])

	if ref := b.stores.Sessions.Referrer(in.from); ref != "" {
		b.send(in.from, fmt.Sprintf("ℹ️ You were already referred by code *%s*.", ref))
		return
	}
	b.recordReferral(in, code)
	b.send(in.from, fmt.Sprintf("🙏 You've been referred by code *%s*. Enjoy our services!", code))
}

// recordReferral attaches a new identity to the referrer owning code.
// No-op when the identity already holds an established (PIN-bearing)
// record or an attribution was already recorded.
func (b *Bot) recordReferral(in *inbound, code string) {
	if own, ok := b.stores.Referrals.Get(in.from); ok && own.PIN != "" {
		return
	}
	if b.stores.Sessions.Referrer(in.from) != "" {
		return
	}
	r, ok := b.stores.Referrals.ByCode(code)
	if !ok {
		return
	}
	b.stores.Referrals.AddReferred(r, in.from)
	b.stores.Sessions.SetReferrer(in.from, code)
}

// ── Referral bonus engine ─────────────────────────────────────────────

// creditReferral pays the two-tier commission for an order: the fixed
// bonus to the direct referrer and, if chained, the same bonus to the
// parent. Attempted at most once per order; whichever trigger fires
// first (admin completion or user PAID) wins, even when no code
// matches.
func (b *Bot) creditReferral(o *models.Order) {
	if o.Referrer == "" {
		return
	}
	if !b.stores.Orders.MarkReferralCredited(o.ID) {
		return
	}

	bonus := b.cfg.Referral.Bonus
	direct, ok := b.stores.Referrals.ByCode(o.Referrer)
	if !ok {
		b.logger.Warn("referrer code has no record", zap.String("order", o.ID), zap.String("code", o.Referrer))
		return
	}
	b.stores.Referrals.Credit(direct, bonus)
	b.send(direct.Owner, fmt.Sprintf("🔔 Congrats! You earned KSH%s from a referral order!", utils.FormatAmount(bonus)))

	if direct.Parent == "" {
		return
	}
	parent, ok := b.stores.Referrals.ByCode(direct.Parent)
	if !ok {
		return
	}
	b.stores.Referrals.Credit(parent, bonus)
	b.send(parent.Owner, fmt.Sprintf("🔔 Great news! You earned KSH%s as a second-level referral bonus!", utils.FormatAmount(bonus)))
}

// ── My Referrals menu ─────────────────────────────────────────────────

func (b *Bot) stepReferralsMenu(in *inbound) {
	switch in.text {
	case "1":
		b.showReferralOverview(in)
	case "2":
		b.startWithdrawal(in)
	case "3":
		bonus := utils.FormatAmount(b.cfg.Referral.Bonus)
		b.send(in.from, fmt.Sprintf("😍 *Your Referral Link:*\n%s\nShare it with friends to earn KSH%s per successful order!", b.referralLink(in), bonus))
	case "4":
		b.startPINChange(in)
	case "5":
		b.showReferredUsers(in)
	default:
		b.send(in.from, "❌ Invalid choice. Type 1, 2, 3, 4, or 5, or \"0\" to go back.")
	}
}

func (b *Bot) showReferralOverview(in *inbound) {
	r, ok := b.stores.Referrals.Get(in.from)
	if !ok {
		b.send(in.from, "😞 No referral record. Type \"referral\" to get your link!")
		return
	}
	msg := fmt.Sprintf("📢 *Your Referral Overview*\nReferral Code: %s\nEarnings: KSH %s\nTotal Referred: %d\n\nWithdrawal History:\n",
		r.Code, utils.FormatAmount(r.Earnings), len(r.Referred))
	if len(r.Withdrawals) == 0 {
		msg += "None yet."
	} else {
		for i, wd := range r.Withdrawals {
			msg += fmt.Sprintf("%d. ID: %s, Amt: KSH %s, Status: %s, Time: %s\nRemarks: %s\n\n",
				i+1, wd.ID, utils.FormatAmount(wd.Amount), wd.Status, utils.FormatKenyaTime(wd.CreatedAt), wd.Remarks)
		}
	}
	b.send(in.from, msg)
}

func (b *Bot) showReferredUsers(in *inbound) {
	r, ok := b.stores.Referrals.Get(in.from)
	if !ok || len(r.Referred) == 0 {
		b.send(in.from, "😞 You haven't referred anyone yet. Type \"referral\" to get your link!")
		return
	}
	msg := "👥 *Your Referred Users* (masked):\n\n"
	for i, u := range r.Referred {
		orders := b.stores.Orders.ByCustomer(u)
		cancelled := 0
		for _, o := range orders {
			if o.Status == models.OrderCancelled {
				cancelled++
			}
		}
		msg += fmt.Sprintf("%d. %s\n   Orders: %d, Cancelled: %d\n\n", i+1, utils.MaskWhatsAppID(u), len(orders), cancelled)
	}
	b.send(in.from, msg)
}

// ── PIN flows ─────────────────────────────────────────────────────────

const pinRules = `(not "1234" or "0000")`

func (b *Bot) startPINChange(in *inbound) {
	if r, ok := b.stores.Referrals.Get(in.from); ok && r.PIN != "" {
		in.sess.Step = models.StepOldPIN
		b.send(in.from, "🔐 Enter your current 4-digit PIN to change it:")
		return
	}
	in.sess.Step = models.StepSetNewPIN
	b.send(in.from, "🔐 No PIN set. Enter a new 4-digit PIN "+pinRules+":")
}

func (b *Bot) stepOldPIN(in *inbound) {
	r, ok := b.stores.Referrals.Get(in.from)
	if !ok || in.text != r.PIN {
		b.send(in.from, "❌ Incorrect PIN. Type \"0\" to cancel.")
		return
	}
	in.sess.Step = models.StepSetNewPIN
	b.send(in.from, "✅ Current PIN verified. Enter your new 4-digit PIN "+pinRules+":")
}

func (b *Bot) stepSetNewPIN(in *inbound) {
	if !utils.IsPIN(in.text) {
		b.send(in.from, "❌ PIN must be exactly 4 digits.")
		return
	}
	if in.text == "1234" || in.text == "0000" {
		b.send(in.from, "❌ That PIN is not allowed.")
		return
	}
	// First PIN set creates the record for identities that never asked
	// for a link.
	r := b.stores.Referrals.GetOrCreate(in.from, b.stores.Sessions.Referrer(in.from))
	b.stores.Referrals.SetPIN(r, in.text)
	in.sess.Step = models.StepReferralsMenu
	b.send(in.from, fmt.Sprintf("✅ Your PIN has been updated to %s. Returning to My Referrals menu.", in.text))
}

// ── Withdrawal workflow ───────────────────────────────────────────────

func (b *Bot) startWithdrawal(in *inbound) {
	min, max := b.stores.Settings.WithdrawalLimits()
	r, ok := b.stores.Referrals.Get(in.from)
	if !ok || r.Earnings < min {
		b.send(in.from, fmt.Sprintf("😞 You need at least KSH %s to withdraw.", utils.FormatAmount(min)))
		return
	}
	if r.PIN == "" {
		b.send(in.from, "⚠️ No PIN set. Choose option 4 to set your PIN first.")
		return
	}
	in.sess.Step = models.StepWithdrawRequest
	b.send(in.from, fmt.Sprintf("💸 *Withdrawal Request*\nEnter \"<amount> <mpesa_number>\" (e.g., \"50 0712345678\").\nLimits: Min KSH %s, Max KSH %s\nType \"0\" to go back.",
		utils.FormatAmount(min), utils.FormatAmount(max)))
}

func (b *Bot) stepWithdrawRequest(in *inbound) {
	parts := strings.Fields(in.text)
	if len(parts) != 2 {
		b.send(in.from, "❌ Usage: \"<amount> <mpesa_number>\" e.g., \"50 0712345678\"")
		return
	}
	amount, ok := utils.ParseAmount(parts[0])
	if !ok {
		b.send(in.from, "❌ Invalid amount.")
		return
	}
	mpesa := parts[1]
	if !utils.IsSafaricomNumber(mpesa) {
		b.send(in.from, "❌ Invalid M-Pesa number.")
		return
	}
	r, _ := b.stores.Referrals.Get(in.from)
	min, max := b.stores.Settings.WithdrawalLimits()
	if amount > r.Earnings || amount > max {
		b.send(in.from, fmt.Sprintf("❌ You cannot withdraw more than your earnings (KSH %s) or the max limit (KSH %s).",
			utils.FormatAmount(r.Earnings), utils.FormatAmount(max)))
		return
	}
	if amount < min {
		b.send(in.from, fmt.Sprintf("❌ Minimum withdrawal is KSH %s.", utils.FormatAmount(min)))
		return
	}
	in.sess.Withdraw = &models.WithdrawRequest{Amount: amount, Mpesa: mpesa}
	in.sess.Step = models.StepWithdrawPIN
	b.send(in.from, fmt.Sprintf("🔒 Enter your 4-digit PIN to confirm withdrawing KSH %s to %s.", utils.FormatAmount(amount), mpesa))
}

// stepWithdrawPIN confirms or aborts the stashed withdrawal. A wrong
// PIN discards the request entirely; it is not retried.
func (b *Bot) stepWithdrawPIN(in *inbound) {
	if !utils.IsPIN(in.text) {
		b.send(in.from, "❌ PIN must be exactly 4 digits.")
		return
	}
	r, _ := b.stores.Referrals.Get(in.from)
	req := in.sess.Withdraw
	if r == nil || req == nil {
		in.sess.Step = models.StepReferralsMenu
		b.send(in.from, "❌ No withdrawal in progress.")
		return
	}
	if r.PIN != in.text {
		in.sess.Withdraw = nil
		in.sess.Step = models.StepReferralsMenu
		b.send(in.from, "❌ Incorrect PIN. Withdrawal cancelled.")
		return
	}

	wd := &models.Withdrawal{
		ID:        utils.GenerateWithdrawalID(),
		Amount:    req.Amount,
		Mpesa:     req.Mpesa,
		Status:    models.WithdrawalPending,
		CreatedAt: time.Now(),
	}
	if _, err := b.stores.Referrals.Debit(r, req.Amount); err != nil {
		// Balance changed since the request step (admin deduction).
		in.sess.Withdraw = nil
		in.sess.Step = models.StepReferralsMenu
		b.send(in.from, fmt.Sprintf("❌ You cannot withdraw more than your earnings (KSH %s).", utils.FormatAmount(r.Earnings)))
		return
	}
	b.stores.Referrals.AppendWithdrawal(r, wd)

	in.sess.Withdraw = nil
	in.sess.Step = models.StepReferralsMenu

	b.send(in.from, fmt.Sprintf(`🙏 *Withdrawal Requested!*
ID: %s
Amount: KSH %s to %s
Status: PENDING
Thank you for choosing FYS PROPERTY!`, wd.ID, utils.FormatAmount(wd.Amount), wd.Mpesa))

	b.notifyAdmin(fmt.Sprintf(`🔔 *New Withdrawal Request*
User: %s
WD ID: %s
Amount: KSH %s
M-Pesa: %s
Time: %s
(Use "withdraw update <ref_code> <wd_id> <STATUS> <remarks>" to update.)`,
		in.from, wd.ID, utils.FormatAmount(wd.Amount), wd.Mpesa, utils.FormatKenyaTime(wd.CreatedAt)))
}
