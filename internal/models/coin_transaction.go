package models

import (
	"time"

	"gorm.io/gorm"
)

// CoinTransaction is an append-only ledger row. The composite unique index
// on (booking_id, kind) is what makes booking credits and debits idempotent:
// a retry that races the original insert hits the constraint instead of
// double-applying. Rows are never updated after creation.
type CoinTransaction struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Kind      string         `gorm:"size:20;not null;index;uniqueIndex:idx_coin_tx_booking_kind" json:"kind"` // EARNED, SPENT, REFUNDED, REVOKED, PURCHASED
	Amount    int64          `gorm:"not null" json:"amount"`                                                  // always positive; Kind carries the direction
	BookingID *uint          `gorm:"uniqueIndex:idx_coin_tx_booking_kind" json:"booking_id"`
	Note      string         `gorm:"size:255" json:"note,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CoinTransaction) TableName() string {
	return "coin_transactions"
}
