package domain

// Tier is a static discount category. Eligibility, discount, and coin
// rewards are pure functions of the tier plus the caller-supplied balance
// and booking count; nothing here touches storage.
type Tier struct {
	Name            string `json:"name"`
	DiscountPercent int64  `json:"discount_percent"`
	BaseCoinsEarned int64  `json:"base_coins_earned"`
	CoinsToUnlock   int64  `json:"coins_to_unlock"`
	// CapCents limits the discount amount; nil means uncapped.
	CapCents *int64 `json:"cap_cents,omitempty"`
}

const (
	TierRegular = "REGULAR"
	TierStudent = "STUDENT"
	TierSenior  = "SENIOR"
)

func capAt(v int64) *int64 { return &v }

var tiers = map[string]Tier{
	TierRegular: {Name: TierRegular, DiscountPercent: 5, BaseCoinsEarned: 10, CoinsToUnlock: 0},
	TierStudent: {Name: TierStudent, DiscountPercent: 15, BaseCoinsEarned: 25, CoinsToUnlock: 50, CapCents: capAt(50000)},
	TierSenior:  {Name: TierSenior, DiscountPercent: 20, BaseCoinsEarned: 20, CoinsToUnlock: 100, CapCents: capAt(60000)},
}

func TierByName(name string) (Tier, bool) {
	t, ok := tiers[name]
	return t, ok
}

func Tiers() []Tier {
	return []Tier{tiers[TierRegular], tiers[TierStudent], tiers[TierSenior]}
}

// IsEligible reports whether a user with the given coin balance may book
// under this tier. The regular tier is always open; the others unlock once
// enough coins have been accumulated.
func (t Tier) IsEligible(coinBalance int64) bool {
	return coinBalance >= t.CoinsToUnlock
}

// Discount returns the discounted price and the discount amount for a base
// price, applying the tier percentage and cap. The price never goes below
// zero.
func (t Tier) Discount(basePriceCents int64) (discountedCents, discountCents int64) {
	discountCents = basePriceCents * t.DiscountPercent / 100
	if t.CapCents != nil && discountCents > *t.CapCents {
		discountCents = *t.CapCents
	}
	discountedCents = basePriceCents - discountCents
	if discountedCents < 0 {
		discountedCents = 0
	}
	return discountedCents, discountCents
}

// CoinsEarned returns the coins awarded for a confirmed booking given the
// user's booking count before this booking. The first three bookings carry
// a larger bonus.
func (t Tier) CoinsEarned(bookingCountSoFar int) int64 {
	if bookingCountSoFar < 3 {
		return t.BaseCoinsEarned + 5
	}
	return t.BaseCoinsEarned + 3
}

// MaxRedeemableByPrice returns how many coins a price can absorb at the
// fixed conversion rate.
func MaxRedeemableByPrice(priceCents int64) int64 {
	return priceCents / CoinValueCents
}
