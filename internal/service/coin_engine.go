package service

import (
	"errors"
	"fmt"

	"safiri/internal/domain"
	"safiri/internal/models"
	"safiri/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrInsufficientCoins = errors.New("coins to redeem exceed current balance")
	ErrInvalidRedemption = errors.New("redemption value exceeds booking price")
	ErrNothingToReverse  = errors.New("booking has no coin transactions to reverse")
)

// BookingOutcome is the result of applying a booking to the ledger.
type BookingOutcome struct {
	NewBalance     int64 `json:"new_balance"`
	CoinsAwarded   int64 `json:"coins_awarded"`
	CoinsRedeemed  int64 `json:"coins_redeemed"`
	AlreadyApplied bool  `json:"already_applied"`
}

// CoinEngine is the only component that mutates coin balances. Every award,
// redemption, purchase, and reversal funnels through here so the ledger
// invariants hold no matter which handler triggered the change.
type CoinEngine struct {
	ledger repository.LedgerStore
}

func NewCoinEngine(ledger repository.LedgerStore) *CoinEngine {
	return &CoinEngine{ledger: ledger}
}

// ApplyBookingOutcome debits redeemed coins and credits the tier award for a
// booking whose payment has definitively succeeded. Calling it again for the
// same booking returns the previously recorded outcome instead of
// reapplying; the (booking, kind) uniqueness constraint backs that guarantee
// even when two retries race.
func (e *CoinEngine) ApplyBookingOutcome(userID, bookingID uint, priceCents int64, tier domain.Tier, coinsToRedeem int64) (*BookingOutcome, error) {
	prior, err := e.ledger.ByBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if len(prior) > 0 {
		return e.priorOutcome(userID, prior)
	}

	if coinsToRedeem < 0 {
		return nil, ErrInvalidRedemption
	}
	if coinsToRedeem*domain.CoinValueCents > priceCents {
		return nil, ErrInvalidRedemption
	}
	w, err := e.ledger.Wallet(userID)
	if err != nil {
		return nil, err
	}
	if coinsToRedeem > w.Balance {
		return nil, ErrInsufficientCoins
	}

	awarded := tier.CoinsEarned(w.BookingCount)
	out := &BookingOutcome{CoinsAwarded: awarded, CoinsRedeemed: coinsToRedeem}
	bID := bookingID
	err = e.ledger.Transaction(func(ls repository.LedgerStore) error {
		if coinsToRedeem > 0 {
			if err := ls.Append(&models.CoinTransaction{
				UserID:    userID,
				Kind:      domain.CoinTxSpent,
				Amount:    coinsToRedeem,
				BookingID: &bID,
			}); err != nil {
				return err
			}
			if _, err := ls.AdjustBalance(userID, -coinsToRedeem); err != nil {
				return err
			}
		}
		if err := ls.Append(&models.CoinTransaction{
			UserID:    userID,
			Kind:      domain.CoinTxEarned,
			Amount:    awarded,
			BookingID: &bID,
		}); err != nil {
			return err
		}
		balance, err := ls.AdjustBalance(userID, awarded)
		if err != nil {
			return err
		}
		if err := ls.IncrementBookingCount(userID); err != nil {
			return err
		}
		out.NewBalance = balance
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// a concurrent retry applied this booking first; its result stands
			prior, perr := e.ledger.ByBooking(bookingID)
			if perr != nil {
				return nil, perr
			}
			if len(prior) > 0 {
				return e.priorOutcome(userID, prior)
			}
		}
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return nil, ErrInsufficientCoins
		}
		return nil, err
	}
	return out, nil
}

// ReverseBookingOutcome offsets a booking's ledger rows on cancellation:
// spent coins are refunded, earned coins are revoked. If the award was
// already spent elsewhere the revocation clamps at the current balance and
// the shortfall is recorded on the revocation row. Idempotent per booking.
func (e *CoinEngine) ReverseBookingOutcome(bookingID uint) (int64, error) {
	rows, err := e.ledger.ByBooking(bookingID)
	if err != nil {
		return 0, err
	}
	var earned, spent *models.CoinTransaction
	reversed := false
	for i := range rows {
		switch rows[i].Kind {
		case domain.CoinTxEarned:
			earned = &rows[i]
		case domain.CoinTxSpent:
			spent = &rows[i]
		case domain.CoinTxRevoked, domain.CoinTxRefunded:
			reversed = true
		}
	}
	if earned == nil && spent == nil {
		return 0, ErrNothingToReverse
	}
	userID := rows[0].UserID
	if reversed {
		w, err := e.ledger.Wallet(userID)
		if err != nil {
			return 0, err
		}
		return w.Balance, nil
	}

	var newBalance int64
	bID := bookingID
	err = e.ledger.Transaction(func(ls repository.LedgerStore) error {
		// refund first so restored coins can absorb the revocation
		if spent != nil {
			if err := ls.Append(&models.CoinTransaction{
				UserID:    userID,
				Kind:      domain.CoinTxRefunded,
				Amount:    spent.Amount,
				BookingID: &bID,
			}); err != nil {
				return err
			}
			if _, err := ls.AdjustBalance(userID, spent.Amount); err != nil {
				return err
			}
		}
		if earned != nil {
			w, err := ls.Wallet(userID)
			if err != nil {
				return err
			}
			revoke := earned.Amount
			note := ""
			if revoke > w.Balance {
				// award partly spent elsewhere; revoke what remains
				note = fmt.Sprintf("shortfall %d coins", revoke-w.Balance)
				revoke = w.Balance
			}
			if err := ls.Append(&models.CoinTransaction{
				UserID:    userID,
				Kind:      domain.CoinTxRevoked,
				Amount:    revoke,
				BookingID: &bID,
				Note:      note,
			}); err != nil {
				return err
			}
			if _, err := ls.AdjustBalance(userID, -revoke); err != nil {
				return err
			}
		}
		w, err := ls.Wallet(userID)
		if err != nil {
			return err
		}
		newBalance = w.Balance
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// concurrent cancellation already reversed it
			w, werr := e.ledger.Wallet(userID)
			if werr != nil {
				return 0, werr
			}
			return w.Balance, nil
		}
		return 0, err
	}
	return newBalance, nil
}

// CreditPurchase credits coins bought through a coin package. The row and the
// balance credit land in one transaction so a storage failure cannot leave a
// PURCHASED row the balance never reflects. The payment reference is kept on
// the row for auditing; package purchases carry no booking so the booking
// uniqueness constraint does not apply.
func (e *CoinEngine) CreditPurchase(userID uint, coins int64, paymentRef string) (int64, error) {
	var newBalance int64
	err := e.ledger.Transaction(func(ls repository.LedgerStore) error {
		if err := ls.Append(&models.CoinTransaction{
			UserID: userID,
			Kind:   domain.CoinTxPurchased,
			Amount: coins,
			Note:   paymentRef,
		}); err != nil {
			return err
		}
		balance, err := ls.AdjustBalance(userID, coins)
		if err != nil {
			return err
		}
		newBalance = balance
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// LedgerSummary exposes the read-only reporting view.
func (e *CoinEngine) LedgerSummary(userID uint) (*repository.LedgerSummary, error) {
	return e.ledger.Summary(userID)
}

// History returns the user's coin transactions, most recent first.
func (e *CoinEngine) History(userID uint, limit, offset int) ([]models.CoinTransaction, error) {
	return e.ledger.History(userID, limit, offset)
}

// Balance returns the wallet state used for eligibility checks and quotes.
func (e *CoinEngine) Balance(userID uint) (*models.CoinWallet, error) {
	return e.ledger.Wallet(userID)
}

func (e *CoinEngine) priorOutcome(userID uint, rows []models.CoinTransaction) (*BookingOutcome, error) {
	out := &BookingOutcome{AlreadyApplied: true}
	for _, tx := range rows {
		switch tx.Kind {
		case domain.CoinTxEarned:
			out.CoinsAwarded = tx.Amount
		case domain.CoinTxSpent:
			out.CoinsRedeemed = tx.Amount
		}
	}
	w, err := e.ledger.Wallet(userID)
	if err != nil {
		return nil, err
	}
	out.NewBalance = w.Balance
	return out, nil
}
