package bot

import (
	"strings"
	"testing"

	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/models"
)

// codeOf returns the identity's referral code, creating the record via
// the referrals menu. The menu path works for referred identities too,
// where the "referral" quick command would refuse.
func codeOf(t *testing.T, b *Bot, from string) string {
	t.Helper()
	say(b, from, "menu")
	say(b, from, "4")
	say(b, from, "3")
	r, ok := b.stores.Referrals.Get(from)
	if !ok {
		t.Fatalf("no referral record for %s", from)
	}
	return r.Code
}

func TestReferralLinkAndEntry(t *testing.T) {
	b, sender, _ := newTestBot(t)

	codeA := codeOf(t, b, userA)
	if !strings.HasPrefix(codeA, "REF") || len(codeA) != 9 {
		t.Fatalf("code = %q", codeA)
	}
	if got := sender.lastTo(userA); !strings.Contains(got, "wa.me/254110562739?text=ref "+codeA) {
		t.Errorf("link reply = %q", got)
	}

	// Asking again returns the same code.
	say(b, userA, "referral")
	if r, _ := b.stores.Referrals.Get(userA); r.Code != codeA {
		t.Errorf("code changed on second ask: %q", r.Code)
	}

	// B arrives through A's link.
	say(b, userB, "ref "+strings.ToLower(codeA))
	rA, _ := b.stores.Referrals.Get(userA)
	if len(rA.Referred) != 1 || rA.Referred[0] != userB {
		t.Errorf("referred = %v", rA.Referred)
	}
	if got := b.stores.Sessions.Referrer(userB); got != codeA {
		t.Errorf("recorded referrer = %q, want %q", got, codeA)
	}

	// A second entry is a no-op with a notice.
	say(b, userB, "ref REF000000")
	if got := sender.lastTo(userB); !strings.Contains(got, "already referred") {
		t.Errorf("repeat entry reply = %q", got)
	}
	if got := b.stores.Sessions.Referrer(userB); got != codeA {
		t.Errorf("referrer overwritten: %q", got)
	}

	// An unknown code records nothing.
	say(b, userC, "ref REF000000")
	if got := b.stores.Sessions.Referrer(userC); got != "" {
		t.Errorf("unknown code set referrer %q", got)
	}
}

func TestReferrerPreservedAcrossMenuReset(t *testing.T) {
	b, _, g := newTestBot(t)
	codeA := codeOf(t, b, userA)
	say(b, userB, "ref "+codeA)

	// Full purchase includes a "menu" reset first; the referrer must
	// survive it and land on the order.
	orderID := buy(t, b, g, userB)
	o, _ := b.stores.Orders.Get(orderID)
	if o.Referrer != codeA {
		t.Errorf("order referrer = %q, want %q", o.Referrer, codeA)
	}
}

func TestTwoTierBonusOnCompletion(t *testing.T) {
	b, sender, g := newTestBot(t)

	// Chain: A refers B, B refers C.
	codeA := codeOf(t, b, userA)
	say(b, userB, "ref "+codeA)
	codeB := codeOf(t, b, userB)
	say(b, userC, "ref "+codeB)

	rB, _ := b.stores.Referrals.Get(userB)
	if rB.Parent != codeA {
		t.Fatalf("B's parent = %q, want %q", rB.Parent, codeA)
	}

	orderID := buy(t, b, g, userC)
	say(b, adminID, "update "+orderID+" COMPLETED Delivered")

	rA, _ := b.stores.Referrals.Get(userA)
	rB, _ = b.stores.Referrals.Get(userB)
	if rB.Earnings != 5 {
		t.Errorf("direct earnings = %v, want 5", rB.Earnings)
	}
	if rA.Earnings != 5 {
		t.Errorf("parent earnings = %v, want 5", rA.Earnings)
	}
	if sender.countTo(userB, "You earned KSH5 from a referral order") != 1 {
		t.Error("missing direct bonus notification")
	}
	if sender.countTo(userA, "second-level referral bonus") != 1 {
		t.Error("missing second-level notification")
	}
}

func TestBonusCreditedAtMostOnce(t *testing.T) {
	b, _, g := newTestBot(t)

	codeA := codeOf(t, b, userA)
	say(b, userB, "ref "+codeA)
	orderID := buy(t, b, g, userB)

	// Both triggers fire: the user confirms, then the admin completes.
	say(b, userB, "paid "+orderID)
	say(b, adminID, "update "+orderID+" COMPLETED Delivered")

	rA, _ := b.stores.Referrals.Get(userA)
	if rA.Earnings != 5 {
		t.Errorf("earnings = %v, want 5 (single credit)", rA.Earnings)
	}
}

func TestBonusConsumedEvenWithoutMatchingRecord(t *testing.T) {
	b, _, g := newTestBot(t)

	codeA := codeOf(t, b, userA)
	say(b, userB, "ref "+codeA)
	orderID := buy(t, b, g, userB)

	// First attempt carries a code with no record; it must still
	// consume the order's single credit.
	b.creditReferral(&models.Order{ID: orderID, Referrer: "REF999999"})
	say(b, adminID, "update "+orderID+" COMPLETED Delivered")

	rA, _ := b.stores.Referrals.Get(userA)
	if rA.Earnings != 0 {
		t.Errorf("earnings = %v, want 0: the first attempt consumed the credit", rA.Earnings)
	}
}

func TestPINChangeFlow(t *testing.T) {
	b, sender, _ := newTestBot(t)

	say(b, userA, "menu")
	say(b, userA, "4")
	say(b, userA, "4") // change PIN, none set yet

	say(b, userA, "12ab")
	if got := sender.lastTo(userA); !strings.Contains(got, "exactly 4 digits") {
		t.Errorf("bad format reply = %q", got)
	}
	say(b, userA, "1234")
	if got := sender.lastTo(userA); !strings.Contains(got, "not allowed") {
		t.Errorf("trivial PIN reply = %q", got)
	}
	say(b, userA, "5678")
	r, _ := b.stores.Referrals.Get(userA)
	if r == nil || r.PIN != "5678" {
		t.Fatalf("PIN not set: %+v", r)
	}
	sess, _ := b.stores.Sessions.Peek(userA)
	if sess.Step != models.StepReferralsMenu {
		t.Errorf("step = %q, want referrals menu", sess.Step)
	}

	// Changing it now requires the old PIN first.
	say(b, userA, "4")
	say(b, userA, "9999")
	if got := sender.lastTo(userA); !strings.Contains(got, "Incorrect PIN") {
		t.Errorf("wrong old PIN reply = %q", got)
	}
	say(b, userA, "5678")
	say(b, userA, "4321")
	if r, _ = b.stores.Referrals.Get(userA); r.PIN != "4321" {
		t.Errorf("PIN = %q, want 4321", r.PIN)
	}
}

// setupEarner gives an identity a referral record with a PIN and a
// KSH 100 balance, driven entirely through commands.
func setupEarner(t *testing.T, b *Bot, from string) string {
	t.Helper()
	code := codeOf(t, b, from)
	say(b, from, "menu")
	say(b, from, "4")
	say(b, from, "4")
	say(b, from, "5678")
	say(b, adminID, "earnings add "+code+" 100 promo")
	if r, _ := b.stores.Referrals.Get(from); r.Earnings != 100 {
		t.Fatalf("setup earnings = %v", r.Earnings)
	}
	return code
}

func TestWithdrawalHappyPath(t *testing.T) {
	b, sender, _ := newTestBot(t)
	setupEarner(t, b, userA)

	say(b, userA, "2") // still on referrals menu
	if got := sender.lastTo(userA); !strings.Contains(got, "Withdrawal Request") {
		t.Fatalf("withdraw prompt = %q", got)
	}
	say(b, userA, "50 0712345678")
	say(b, userA, "5678")

	r, _ := b.stores.Referrals.Get(userA)
	if r.Earnings != 50 {
		t.Errorf("earnings = %v, want 50", r.Earnings)
	}
	if len(r.Withdrawals) != 1 {
		t.Fatalf("withdrawals = %d, want 1", len(r.Withdrawals))
	}
	wd := r.Withdrawals[0]
	if wd.Status != models.WithdrawalPending || wd.Amount != 50 || wd.Mpesa != "0712345678" {
		t.Errorf("withdrawal = %+v", wd)
	}
	if !strings.HasPrefix(wd.ID, "WD-") {
		t.Errorf("withdrawal id = %q", wd.ID)
	}
	if sender.countTo(adminID, "New Withdrawal Request") != 1 {
		t.Error("missing admin withdrawal notification")
	}
}

func TestWithdrawalValidation(t *testing.T) {
	b, sender, _ := newTestBot(t)
	setupEarner(t, b, userA)
	say(b, userA, "2")

	cases := []struct {
		input string
		want  string
	}{
		{"50", "Usage"},
		{"abc 0712345678", "Invalid amount"},
		{"50 12345", "Invalid M-Pesa number"},
		{"150 0712345678", "cannot withdraw more than"},
		{"10 0712345678", "Minimum withdrawal is KSH 20"},
	}
	for _, tc := range cases {
		say(b, userA, tc.input)
		if got := sender.lastTo(userA); !strings.Contains(got, tc.want) {
			t.Errorf("input %q: reply = %q, want containing %q", tc.input, got, tc.want)
		}
		sess, _ := b.stores.Sessions.Peek(userA)
		if sess.Step != models.StepWithdrawRequest {
			t.Errorf("input %q advanced the step to %q", tc.input, sess.Step)
		}
	}
}

func TestWithdrawalWrongPINAborts(t *testing.T) {
	b, sender, _ := newTestBot(t)
	setupEarner(t, b, userA)
	say(b, userA, "2")
	say(b, userA, "50 0712345678")

	// Malformed PIN keeps the step for a retry.
	say(b, userA, "56789")
	sess, _ := b.stores.Sessions.Peek(userA)
	if sess.Step != models.StepWithdrawPIN {
		t.Fatalf("step = %q, want withdrawPIN", sess.Step)
	}

	// A well-formed wrong PIN cancels outright.
	say(b, userA, "1111")
	if got := sender.lastTo(userA); !strings.Contains(got, "Withdrawal cancelled") {
		t.Errorf("wrong PIN reply = %q", got)
	}
	r, _ := b.stores.Referrals.Get(userA)
	if r.Earnings != 100 || len(r.Withdrawals) != 0 {
		t.Errorf("state changed: earnings %v, withdrawals %d", r.Earnings, len(r.Withdrawals))
	}
	sess, _ = b.stores.Sessions.Peek(userA)
	if sess.Step != models.StepReferralsMenu || sess.Withdraw != nil {
		t.Errorf("session not cleaned: step %q withdraw %+v", sess.Step, sess.Withdraw)
	}
}

func TestWithdrawalGates(t *testing.T) {
	b, sender, _ := newTestBot(t)

	// No record / below minimum.
	say(b, userA, "menu")
	say(b, userA, "4")
	say(b, userA, "2")
	if got := sender.lastTo(userA); !strings.Contains(got, "at least KSH 20") {
		t.Errorf("below-minimum reply = %q", got)
	}

	// Enough earnings but no PIN.
	code := codeOf(t, b, userB)
	say(b, adminID, "earnings add "+code+" 100 promo")
	say(b, userB, "menu")
	say(b, userB, "4")
	say(b, userB, "2")
	if got := sender.lastTo(userB); !strings.Contains(got, "No PIN set") {
		t.Errorf("no-PIN reply = %q", got)
	}
}

func TestReferralOverviewAndReferredUsers(t *testing.T) {
	b, sender, g := newTestBot(t)

	codeA := codeOf(t, b, userA)
	say(b, userB, "ref "+codeA)
	orderID := buy(t, b, g, userB)
	say(b, adminID, "update "+orderID+" CANCELLED Out of stock")

	say(b, userA, "menu")
	say(b, userA, "4")
	say(b, userA, "1")
	got := sender.lastTo(userA)
	if !strings.Contains(got, "Referral Code: "+codeA) || !strings.Contains(got, "Total Referred: 1") {
		t.Errorf("overview = %q", got)
	}
	if !strings.Contains(got, "None yet.") {
		t.Errorf("overview should show empty withdrawal history, got %q", got)
	}

	say(b, userA, "5")
	got = sender.lastTo(userA)
	if strings.Contains(got, userB) {
		t.Error("referred users must be masked")
	}
	if !strings.Contains(got, "Orders: 1, Cancelled: 1") {
		t.Errorf("referred users = %q", got)
	}
}
