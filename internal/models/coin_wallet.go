package models

import (
	"time"

	"gorm.io/gorm"
)

// CoinWallet is the authoritative coin balance, one row per user. Balance
// and booking count are only ever changed via conditional updates in
// CoinRepository; nothing else writes these columns.
type CoinWallet struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance      int64          `gorm:"not null;default:0" json:"balance"`
	BookingCount int            `gorm:"not null;default:0" json:"booking_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (CoinWallet) TableName() string {
	return "coin_wallets"
}
