package models

import "time"

// WithdrawalPending is the status every withdrawal starts in. The admin
// may move it to any free-form token afterwards.
const WithdrawalPending = "PENDING"

// Withdrawal is a single payout request against a referral balance.
type Withdrawal struct {
	ID        string    `json:"id"`
	Amount    float64   `json:"amount"`
	Mpesa     string    `json:"mpesa"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Remarks   string    `json:"remarks"`
}

// ReferralRecord tracks one identity's referral code, the identities it
// brought in, its commission balance and its withdrawal history.
// Parent is the code of the referrer who brought this identity in, which
// is what makes second-level bonuses possible.
type ReferralRecord struct {
	Owner       string        `json:"owner"`
	Code        string        `json:"code"`
	Referred    []string      `json:"referred"`
	Earnings    float64       `json:"earnings"`
	Withdrawals []*Withdrawal `json:"withdrawals"`
	PIN         string        `json:"-"`
	Parent      string        `json:"parent,omitempty"`
}
