package payment

import "context"

// PushResult is the outcome of a payment push request. Both success and
// failure are terminal: a failed push degrades to manual-payment
// instructions and is never retried.
type PushResult struct {
	Success bool
	Message string
}

// Gateway initiates push payments against a customer's phone.
type Gateway interface {
	// Push requests a payment of amount from phoneNumber, tagged with
	// externalRef (the order id) and customerName.
	Push(ctx context.Context, amount float64, phoneNumber, externalRef, customerName string) PushResult
}
