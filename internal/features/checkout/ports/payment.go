package ports

import "context"

// PaymentProcessor defines the contract of the external payment gateway.
// The core treats it as a boolean oracle: charged or not. Refunds and partial
// captures are out of scope.
type PaymentProcessor interface {
	// ProcessPayment charges the buyer. Returns true when the charge succeeded.
	ProcessPayment(ctx context.Context, amount float64, method string) (bool, error)
}
