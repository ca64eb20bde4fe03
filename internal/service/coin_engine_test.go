package service

import (
	"errors"
	"testing"

	"safiri/internal/domain"
	"safiri/internal/models"
	"safiri/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memLedger is an in-memory LedgerStore that mirrors the storage guarantees
// the engine relies on: the conditional balance update, the unique
// (booking, kind) constraint on ledger rows, and transaction rollback.
type memLedger struct {
	wallets   map[uint]*models.CoinWallet
	rows      []models.CoinTransaction
	nextID    uint
	adjustErr error
}

func newMemLedger() *memLedger {
	return &memLedger{wallets: map[uint]*models.CoinWallet{}, nextID: 1}
}

func (m *memLedger) Wallet(userID uint) (*models.CoinWallet, error) {
	w, ok := m.wallets[userID]
	if !ok {
		w = &models.CoinWallet{UserID: userID}
		m.wallets[userID] = w
	}
	cp := *w
	return &cp, nil
}

func (m *memLedger) AdjustBalance(userID uint, delta int64) (int64, error) {
	if m.adjustErr != nil {
		return 0, m.adjustErr
	}
	if _, err := m.Wallet(userID); err != nil {
		return 0, err
	}
	w := m.wallets[userID]
	if w.Balance+delta < 0 {
		return 0, repository.ErrInsufficientBalance
	}
	w.Balance += delta
	return w.Balance, nil
}

func (m *memLedger) Append(tx *models.CoinTransaction) error {
	if tx.BookingID != nil {
		for _, r := range m.rows {
			if r.BookingID != nil && *r.BookingID == *tx.BookingID && r.Kind == tx.Kind {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	tx.ID = m.nextID
	m.nextID++
	m.rows = append(m.rows, *tx)
	return nil
}

func (m *memLedger) ByBooking(bookingID uint) ([]models.CoinTransaction, error) {
	var out []models.CoinTransaction
	for _, r := range m.rows {
		if r.BookingID != nil && *r.BookingID == bookingID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memLedger) IncrementBookingCount(userID uint) error {
	if _, err := m.Wallet(userID); err != nil {
		return err
	}
	m.wallets[userID].BookingCount++
	return nil
}

func (m *memLedger) Summary(userID uint) (*repository.LedgerSummary, error) {
	w, err := m.Wallet(userID)
	if err != nil {
		return nil, err
	}
	s := &repository.LedgerSummary{Balance: w.Balance, BookingCount: w.BookingCount}
	for _, r := range m.rows {
		if r.UserID != userID {
			continue
		}
		switch r.Kind {
		case domain.CoinTxEarned:
			s.TotalEarned += r.Amount
		case domain.CoinTxSpent:
			s.TotalSpent += r.Amount
		case domain.CoinTxPurchased:
			s.TotalPurchased += r.Amount
		}
	}
	return s, nil
}

func (m *memLedger) History(userID uint, limit, offset int) ([]models.CoinTransaction, error) {
	var out []models.CoinTransaction
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].UserID == userID {
			out = append(out, m.rows[i])
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memLedger) Transaction(fn func(repository.LedgerStore) error) error {
	savedRows := append([]models.CoinTransaction(nil), m.rows...)
	savedWallets := make(map[uint]*models.CoinWallet, len(m.wallets))
	for id, w := range m.wallets {
		cp := *w
		savedWallets[id] = &cp
	}
	savedNext := m.nextID
	if err := fn(m); err != nil {
		m.rows = savedRows
		m.wallets = savedWallets
		m.nextID = savedNext
		return err
	}
	return nil
}

func (m *memLedger) setBalance(userID uint, balance int64) {
	if _, err := m.Wallet(userID); err == nil {
		m.wallets[userID].Balance = balance
	}
}

func regularTier(t *testing.T) domain.Tier {
	t.Helper()
	tier, ok := domain.TierByName(domain.TierRegular)
	require.True(t, ok)
	return tier
}

func TestApplyBookingOutcome_RedeemAndAward(t *testing.T) {
	ledger := newMemLedger()
	ledger.setBalance(1, 100)
	engine := NewCoinEngine(ledger)

	// 40 coins on a 500-unit booking, first booking on a regular account:
	// 100 - 40 redeemed + 15 awarded = 75
	out, err := engine.ApplyBookingOutcome(1, 10, 50000, regularTier(t), 40)
	require.NoError(t, err)
	assert.Equal(t, int64(75), out.NewBalance)
	assert.Equal(t, int64(15), out.CoinsAwarded)
	assert.Equal(t, int64(40), out.CoinsRedeemed)
	assert.False(t, out.AlreadyApplied)

	w, err := engine.Balance(1)
	require.NoError(t, err)
	assert.Equal(t, int64(75), w.Balance)
	assert.Equal(t, 1, w.BookingCount)

	rows, err := ledger.ByBooking(10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.CoinTxSpent, rows[0].Kind)
	assert.Equal(t, domain.CoinTxEarned, rows[1].Kind)
}

func TestApplyBookingOutcome_Idempotent(t *testing.T) {
	ledger := newMemLedger()
	ledger.setBalance(1, 100)
	engine := NewCoinEngine(ledger)

	first, err := engine.ApplyBookingOutcome(1, 10, 50000, regularTier(t), 40)
	require.NoError(t, err)

	second, err := engine.ApplyBookingOutcome(1, 10, 50000, regularTier(t), 40)
	require.NoError(t, err)
	assert.True(t, second.AlreadyApplied)
	assert.Equal(t, first.NewBalance, second.NewBalance)
	assert.Equal(t, first.CoinsAwarded, second.CoinsAwarded)
	assert.Equal(t, first.CoinsRedeemed, second.CoinsRedeemed)

	w, _ := engine.Balance(1)
	assert.Equal(t, int64(75), w.Balance)
	assert.Equal(t, 1, w.BookingCount)
}

func TestApplyBookingOutcome_InsufficientCoins(t *testing.T) {
	ledger := newMemLedger()
	ledger.setBalance(1, 100)
	engine := NewCoinEngine(ledger)

	_, err := engine.ApplyBookingOutcome(1, 10, 50000, regularTier(t), 200)
	assert.ErrorIs(t, err, ErrInsufficientCoins)

	// nothing written
	rows, _ := ledger.ByBooking(10)
	assert.Empty(t, rows)
	w, _ := engine.Balance(1)
	assert.Equal(t, int64(100), w.Balance)
}

func TestApplyBookingOutcome_RedemptionExceedsPrice(t *testing.T) {
	ledger := newMemLedger()
	ledger.setBalance(1, 100)
	engine := NewCoinEngine(ledger)

	// 40 coins is 2000 in value against a 1000 booking
	_, err := engine.ApplyBookingOutcome(1, 10, 1000, regularTier(t), 40)
	assert.ErrorIs(t, err, ErrInvalidRedemption)

	_, err = engine.ApplyBookingOutcome(1, 10, 1000, regularTier(t), -5)
	assert.ErrorIs(t, err, ErrInvalidRedemption)
}

func TestApplyBookingOutcome_ZeroRedemption(t *testing.T) {
	ledger := newMemLedger()
	engine := NewCoinEngine(ledger)

	out, err := engine.ApplyBookingOutcome(1, 10, 50000, regularTier(t), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(15), out.NewBalance)
	assert.Equal(t, int64(0), out.CoinsRedeemed)

	// no SPENT row when nothing was redeemed
	rows, _ := ledger.ByBooking(10)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.CoinTxEarned, rows[0].Kind)
}

func TestReverseBookingOutcome_RoundTrip(t *testing.T) {
	ledger := newMemLedger()
	ledger.setBalance(1, 100)
	engine := NewCoinEngine(ledger)

	_, err := engine.ApplyBookingOutcome(1, 10, 50000, regularTier(t), 40)
	require.NoError(t, err)

	balance, err := engine.ReverseBookingOutcome(10)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	rows, _ := ledger.ByBooking(10)
	require.Len(t, rows, 4)
	assert.Equal(t, domain.CoinTxRefunded, rows[2].Kind)
	assert.Equal(t, domain.CoinTxRevoked, rows[3].Kind)
}

func TestReverseBookingOutcome_Idempotent(t *testing.T) {
	ledger := newMemLedger()
	ledger.setBalance(1, 100)
	engine := NewCoinEngine(ledger)

	_, err := engine.ApplyBookingOutcome(1, 10, 50000, regularTier(t), 40)
	require.NoError(t, err)

	first, err := engine.ReverseBookingOutcome(10)
	require.NoError(t, err)
	second, err := engine.ReverseBookingOutcome(10)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	rows, _ := ledger.ByBooking(10)
	assert.Len(t, rows, 4)
}

func TestReverseBookingOutcome_Nothing(t *testing.T) {
	engine := NewCoinEngine(newMemLedger())
	_, err := engine.ReverseBookingOutcome(99)
	assert.ErrorIs(t, err, ErrNothingToReverse)
}

func TestReverseBookingOutcome_RevocationClamped(t *testing.T) {
	ledger := newMemLedger()
	engine := NewCoinEngine(ledger)

	// booking awards 15 coins, the user then spends 10 of them elsewhere
	_, err := engine.ApplyBookingOutcome(1, 10, 50000, regularTier(t), 0)
	require.NoError(t, err)
	ledger.setBalance(1, 5)

	balance, err := engine.ReverseBookingOutcome(10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	rows, _ := ledger.ByBooking(10)
	require.Len(t, rows, 2)
	revoked := rows[1]
	assert.Equal(t, domain.CoinTxRevoked, revoked.Kind)
	assert.Equal(t, int64(5), revoked.Amount)
	assert.Equal(t, "shortfall 10 coins", revoked.Note)
}

// racingLedger plays the concurrent retry that wins the insert race: it
// commits a full outcome for the booking after the idempotency read but
// before this caller's transaction runs, so the caller's own append hits the
// uniqueness constraint.
type racingLedger struct {
	*memLedger
	raced bool
}

func (r *racingLedger) Transaction(fn func(repository.LedgerStore) error) error {
	if !r.raced {
		r.raced = true
		bID := uint(10)
		_ = r.memLedger.Append(&models.CoinTransaction{UserID: 1, Kind: domain.CoinTxSpent, Amount: 40, BookingID: &bID})
		_ = r.memLedger.Append(&models.CoinTransaction{UserID: 1, Kind: domain.CoinTxEarned, Amount: 15, BookingID: &bID})
		r.memLedger.wallets[1].Balance = 75
		r.memLedger.wallets[1].BookingCount = 1
	}
	return r.memLedger.Transaction(fn)
}

func TestApplyBookingOutcome_ConcurrentRetryWinsInsert(t *testing.T) {
	inner := newMemLedger()
	inner.setBalance(1, 100)
	ledger := &racingLedger{memLedger: inner}
	engine := NewCoinEngine(ledger)

	out, err := engine.ApplyBookingOutcome(1, 10, 50000, regularTier(t), 40)
	require.NoError(t, err)
	assert.True(t, out.AlreadyApplied)
	assert.Equal(t, int64(75), out.NewBalance)
	assert.Equal(t, int64(15), out.CoinsAwarded)
	assert.Equal(t, int64(40), out.CoinsRedeemed)

	// only the winner's rows exist
	rows, err := inner.ByBooking(10)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	w, _ := engine.Balance(1)
	assert.Equal(t, int64(75), w.Balance)
	assert.Equal(t, 1, w.BookingCount)
}

func TestCreditPurchase(t *testing.T) {
	ledger := newMemLedger()
	ledger.setBalance(1, 20)
	engine := NewCoinEngine(ledger)

	balance, err := engine.CreditPurchase(1, 500, "sim_abc")
	require.NoError(t, err)
	assert.Equal(t, int64(520), balance)

	summary, err := engine.LedgerSummary(1)
	require.NoError(t, err)
	assert.Equal(t, int64(500), summary.TotalPurchased)
	assert.Equal(t, int64(520), summary.Balance)
}

func TestCreditPurchase_FailedCreditLeavesNoRow(t *testing.T) {
	ledger := newMemLedger()
	ledger.setBalance(1, 20)
	ledger.adjustErr = errors.New("connection reset")
	engine := NewCoinEngine(ledger)

	_, err := engine.CreditPurchase(1, 500, "sim_abc")
	require.Error(t, err)

	// the PURCHASED row rolled back with the failed credit
	txs, err := engine.History(1, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, txs)
	summary, err := engine.LedgerSummary(1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalPurchased)
	assert.Equal(t, int64(20), summary.Balance)
}
