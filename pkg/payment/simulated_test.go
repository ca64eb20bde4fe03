package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitiatePayment(t *testing.T) {
	p := NewSimulatedProvider(0, 1, 1)
	resp, err := p.InitiatePayment(context.Background(), Request{
		UserID:      1,
		AmountCents: 50000,
		Currency:    "KES",
		ExpiresIn:   15 * time.Minute,
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Reference, "sim_")
	assert.Equal(t, "PENDING", resp.Status)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), resp.ExpiresAt, time.Minute)
}

func TestVerifyPaymentAlwaysSucceeds(t *testing.T) {
	p := NewSimulatedProvider(time.Millisecond, 1, 1)
	for i := 0; i < 10; i++ {
		ok, err := p.VerifyPayment(context.Background(), "sim_ref")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestVerifyPaymentAlwaysDeclines(t *testing.T) {
	p := NewSimulatedProvider(time.Millisecond, 0, 1)
	for i := 0; i < 10; i++ {
		ok, err := p.VerifyPayment(context.Background(), "sim_ref")
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestVerifyPaymentDeterministicWithSeed(t *testing.T) {
	a := NewSimulatedProvider(0, 0.5, 99)
	b := NewSimulatedProvider(0, 0.5, 99)
	for i := 0; i < 20; i++ {
		gotA, err := a.VerifyPayment(context.Background(), "sim_ref")
		require.NoError(t, err)
		gotB, err := b.VerifyPayment(context.Background(), "sim_ref")
		require.NoError(t, err)
		assert.Equal(t, gotA, gotB)
	}
}

func TestVerifyPaymentUnknownReference(t *testing.T) {
	p := NewSimulatedProvider(0, 1, 1)
	_, err := p.VerifyPayment(context.Background(), "mpesa_123")
	assert.ErrorIs(t, err, ErrUnknownReference)
}

func TestVerifyPaymentContextCancelled(t *testing.T) {
	p := NewSimulatedProvider(time.Minute, 1, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err := p.VerifyPayment(ctx, "sim_ref")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSuccessRateClamped(t *testing.T) {
	p := NewSimulatedProvider(0, 2.5, 1)
	ok, err := p.VerifyPayment(context.Background(), "sim_ref")
	require.NoError(t, err)
	assert.True(t, ok)
}
