package repository

import (
	"errors"

	"safiri/internal/domain"
	"safiri/internal/models"

	"gorm.io/gorm"
)

var ErrInsufficientBalance = errors.New("insufficient coin balance")

// LedgerSummary aggregates a user's ledger for read-only reporting.
type LedgerSummary struct {
	Balance        int64 `json:"balance"`
	BookingCount   int   `json:"booking_count"`
	TotalEarned    int64 `json:"total_earned"`
	TotalSpent     int64 `json:"total_spent"`
	TotalPurchased int64 `json:"total_purchased"`
}

// LedgerStore is the persistence surface the coin engine drives. The engine
// is the only writer; handlers use the read side for reporting. AdjustBalance
// must be atomic at the storage layer and Append must enforce uniqueness per
// (booking, kind) — both races are closed in SQL, not in application code.
type LedgerStore interface {
	Wallet(userID uint) (*models.CoinWallet, error)
	AdjustBalance(userID uint, delta int64) (int64, error)
	Append(tx *models.CoinTransaction) error
	ByBooking(bookingID uint) ([]models.CoinTransaction, error)
	IncrementBookingCount(userID uint) error
	Summary(userID uint) (*LedgerSummary, error)
	History(userID uint, limit, offset int) ([]models.CoinTransaction, error)
	Transaction(fn func(LedgerStore) error) error
}

type CoinRepository struct {
	db *gorm.DB
}

func NewCoinRepository(db *gorm.DB) *CoinRepository {
	return &CoinRepository{db: db}
}

// Wallet returns the user's wallet, creating an empty one on first touch.
func (r *CoinRepository) Wallet(userID uint) (*models.CoinWallet, error) {
	var w models.CoinWallet
	err := r.db.Where("user_id = ?", userID).First(&w).Error
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	w = models.CoinWallet{UserID: userID}
	if err := r.db.Create(&w).Error; err != nil {
		// lost a create race to a concurrent request; the row exists now
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = r.db.Where("user_id = ?", userID).First(&w).Error
			if err == nil {
				return &w, nil
			}
		}
		return nil, err
	}
	return &w, nil
}

// AdjustBalance applies delta as a single conditional UPDATE so the balance
// can never be driven negative and concurrent writers cannot lose updates.
// Returns the balance after the adjustment.
func (r *CoinRepository) AdjustBalance(userID uint, delta int64) (int64, error) {
	if _, err := r.Wallet(userID); err != nil {
		return 0, err
	}
	res := r.db.Model(&models.CoinWallet{}).
		Where("user_id = ? AND balance + ? >= 0", userID, delta).
		UpdateColumn("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrInsufficientBalance
	}
	w, err := r.Wallet(userID)
	if err != nil {
		return 0, err
	}
	return w.Balance, nil
}

// Append inserts a ledger row. The unique index on (booking_id, kind)
// rejects a second credit or debit for the same booking with
// gorm.ErrDuplicatedKey.
func (r *CoinRepository) Append(tx *models.CoinTransaction) error {
	return r.db.Create(tx).Error
}

func (r *CoinRepository) ByBooking(bookingID uint) ([]models.CoinTransaction, error) {
	var txs []models.CoinTransaction
	err := r.db.Where("booking_id = ?", bookingID).Order("id ASC").Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *CoinRepository) IncrementBookingCount(userID uint) error {
	return r.db.Model(&models.CoinWallet{}).
		Where("user_id = ?", userID).
		UpdateColumn("booking_count", gorm.Expr("booking_count + 1")).Error
}

func (r *CoinRepository) Summary(userID uint) (*LedgerSummary, error) {
	w, err := r.Wallet(userID)
	if err != nil {
		return nil, err
	}
	s := &LedgerSummary{Balance: w.Balance, BookingCount: w.BookingCount}
	type kindSum struct {
		Kind  string
		Total int64
	}
	var sums []kindSum
	err = r.db.Model(&models.CoinTransaction{}).
		Select("kind, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ?", userID).
		Group("kind").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	for _, ks := range sums {
		switch ks.Kind {
		case domain.CoinTxEarned:
			s.TotalEarned = ks.Total
		case domain.CoinTxSpent:
			s.TotalSpent = ks.Total
		case domain.CoinTxPurchased:
			s.TotalPurchased = ks.Total
		}
	}
	return s, nil
}

// History returns the user's ledger rows, most recent first.
func (r *CoinRepository) History(userID uint, limit, offset int) ([]models.CoinTransaction, error) {
	var txs []models.CoinTransaction
	err := r.db.Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// Transaction runs fn against a store bound to one database transaction, so
// a booking's debit and credit land together or not at all.
func (r *CoinRepository) Transaction(fn func(LedgerStore) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&CoinRepository{db: tx})
	})
}
