package payment

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrUnknownReference = errors.New("unknown payment reference")

// SimulatedProvider stands in for a real gateway: charges "process" for a
// fixed delay and then succeed with a configured probability. The outcome is
// only decided inside VerifyPayment, so nothing downstream runs before the
// definitive signal.
type SimulatedProvider struct {
	delay       time.Duration
	successRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedProvider(delay time.Duration, successRate float64, seed int64) *SimulatedProvider {
	if successRate < 0 {
		successRate = 0
	}
	if successRate > 1 {
		successRate = 1
	}
	return &SimulatedProvider{
		delay:       delay,
		successRate: successRate,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (s *SimulatedProvider) InitiatePayment(ctx context.Context, req Request) (*Response, error) {
	return &Response{
		Reference: "sim_" + uuid.NewString(),
		Status:    "PENDING",
		ExpiresAt: time.Now().Add(req.ExpiresIn),
	}, nil
}

func (s *SimulatedProvider) VerifyPayment(ctx context.Context, reference string) (bool, error) {
	if !strings.HasPrefix(reference, "sim_") {
		return false, ErrUnknownReference
	}
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return false, ctx.Err()
	}
	s.mu.Lock()
	roll := s.rng.Float64()
	s.mu.Unlock()
	return roll < s.successRate, nil
}
