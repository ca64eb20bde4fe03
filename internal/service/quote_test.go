package service

import (
	"testing"

	"safiri/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuote(t *testing.T) {
	student, ok := domain.TierByName(domain.TierStudent)
	require.True(t, ok)
	regular, ok := domain.TierByName(domain.TierRegular)
	require.True(t, ok)

	t.Run("student with discount and redemption", func(t *testing.T) {
		q := BuildQuote(student, 100, 0, 100000, 40)
		assert.True(t, q.Eligible)
		assert.Equal(t, int64(15000), q.DiscountCents)
		assert.Equal(t, int64(85000), q.DiscountedCents)
		assert.Equal(t, int64(2000), q.RedemptionCents)
		assert.Equal(t, int64(83000), q.PayableCents)
		assert.Equal(t, int64(30), q.CoinsEarned)
		assert.False(t, q.InsufficientCoins)
	})

	t.Run("student below unlock threshold", func(t *testing.T) {
		q := BuildQuote(student, 40, 0, 100000, 0)
		assert.False(t, q.Eligible)
	})

	t.Run("max redeemable limited by balance", func(t *testing.T) {
		q := BuildQuote(regular, 100, 0, 100000, 0)
		assert.Equal(t, int64(100), q.MaxRedeemable)
	})

	t.Run("max redeemable limited by price", func(t *testing.T) {
		// 5% off 1000 leaves 950, which absorbs at most 19 coins
		q := BuildQuote(regular, 5000, 0, 1000, 0)
		assert.Equal(t, int64(19), q.MaxRedeemable)
	})

	t.Run("overdrawn request is reported not clamped", func(t *testing.T) {
		q := BuildQuote(regular, 10, 0, 100000, 50)
		assert.True(t, q.InsufficientCoins)
		assert.Equal(t, int64(50), q.CoinsRedeemed)
	})

	t.Run("payable never negative", func(t *testing.T) {
		q := BuildQuote(regular, 10000, 0, 100, 2)
		assert.Equal(t, int64(0), q.PayableCents)
	})
}
