package service

import "safiri/internal/domain"

// Quote is the server-computed preview of a booking's financial outcome.
// Nothing in it is binding: the engine re-validates everything when the
// payment actually succeeds.
type Quote struct {
	Tier              string `json:"tier"`
	Eligible          bool   `json:"eligible"`
	BasePriceCents    int64  `json:"base_price_cents"`
	DiscountCents     int64  `json:"discount_cents"`
	DiscountedCents   int64  `json:"discounted_cents"`
	CoinsRedeemed     int64  `json:"coins_redeemed"`
	RedemptionCents   int64  `json:"redemption_cents"`
	PayableCents      int64  `json:"payable_cents"`
	CoinsEarned       int64  `json:"coins_earned"`
	MaxRedeemable     int64  `json:"max_redeemable"`
	InsufficientCoins bool   `json:"insufficient_coins"`
}

// BuildQuote computes the preview from a snapshot of the user's wallet.
// Requested coins beyond what the balance or the discounted price allows are
// reported, not silently clamped, so the client can correct the request
// before paying.
func BuildQuote(tier domain.Tier, balance int64, bookingCount int, basePriceCents, coinsRequested int64) Quote {
	q := Quote{
		Tier:           tier.Name,
		Eligible:       tier.IsEligible(balance),
		BasePriceCents: basePriceCents,
	}
	q.DiscountedCents, q.DiscountCents = tier.Discount(basePriceCents)
	q.CoinsEarned = tier.CoinsEarned(bookingCount)

	maxByPrice := domain.MaxRedeemableByPrice(q.DiscountedCents)
	q.MaxRedeemable = maxByPrice
	if balance < maxByPrice {
		q.MaxRedeemable = balance
	}
	if coinsRequested < 0 {
		coinsRequested = 0
	}
	q.CoinsRedeemed = coinsRequested
	q.InsufficientCoins = coinsRequested > balance
	q.RedemptionCents = coinsRequested * domain.CoinValueCents
	q.PayableCents = q.DiscountedCents - q.RedemptionCents
	if q.PayableCents < 0 {
		q.PayableCents = 0
	}
	return q
}
