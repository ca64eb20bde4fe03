package models

import (
	"time"

	"gorm.io/gorm"
)

// CoinPackage is a purchasable coin top-up offer managed by admins.
type CoinPackage struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"size:64;not null" json:"name"`
	Coins      int64          `gorm:"not null" json:"coins"`
	PriceCents int64          `gorm:"not null" json:"price_cents"`
	Active     bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CoinPackage) TableName() string {
	return "coin_packages"
}
