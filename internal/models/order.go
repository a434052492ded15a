package models

import "time"

// Known order statuses. The admin may set any free-form token via the
// update command; these are the ones the bot reacts to specially.
const (
	OrderPending   = "PENDING"
	OrderConfirmed = "CONFIRMED"
	OrderCompleted = "COMPLETED"
	OrderCancelled = "CANCELLED"
	OrderRefunded  = "REFUNDED"
)

// Order is a single purchase placed through a conversation flow.
type Order struct {
	ID               string    `json:"order_id"`
	Customer         string    `json:"customer"`
	Package          string    `json:"package"`
	Amount           float64   `json:"amount"`
	Recipient        string    `json:"recipient"`
	Payment          string    `json:"payment"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	Remark           string    `json:"remark,omitempty"`
	Referrer         string    `json:"referrer,omitempty"`
	ReferralCredited bool      `json:"referral_credited"`
}
