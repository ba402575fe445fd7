package ports

import "context"

// ChargeInput describes a payment capture request. Amounts are in minor
// currency units (cents) to avoid floating-point drift.
type ChargeInput struct {
	AmountCents     int64
	Currency        string
	PaymentMethodID string
	Description     string
	IdempotencyKey  string
}

// Charge is the processor's record of a captured payment.
type Charge struct {
	ProviderRef string
	Status      string
}

// PaymentProcessor is the thin boundary to the external payment provider.
// Implementations own their timeouts; a timeout is a failed charge.
type PaymentProcessor interface {
	Charge(ctx context.Context, input ChargeInput) (*Charge, error)
	Refund(ctx context.Context, providerRef string, amountCents int64) error
}
