// Package payment abstracts the charge flow behind a Provider so the rest
// of the system only ever sees a definitive success or failure signal,
// whether the money moved through a real gateway or the simulator.
package payment

import (
	"context"
	"time"
)

type Request struct {
	UserID         uint
	AmountCents    int64
	Currency       string
	IdempotencyKey string
	Description    string
	ExpiresIn      time.Duration
}

type Response struct {
	Reference string
	Status    string
	ExpiresAt time.Time
}

type Provider interface {
	// InitiatePayment registers a pending charge and returns its reference.
	InitiatePayment(ctx context.Context, req Request) (*Response, error)
	// VerifyPayment resolves the charge to a final success or failure.
	// It blocks until the provider has an answer or ctx is done.
	VerifyPayment(ctx context.Context, reference string) (bool, error)
}
