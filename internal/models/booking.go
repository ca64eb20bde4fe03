package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking snapshots the financial outcome at payment time: base price,
// discount, coins redeemed and awarded are fixed once the ledger event is
// applied and never recomputed afterwards.
type Booking struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Ref            string         `gorm:"uniqueIndex;size:64;not null" json:"ref"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	TripID         uint           `gorm:"not null;index" json:"trip_id"`
	Status         string         `gorm:"size:20;not null;index" json:"status"` // PENDING, CONFIRMED, FAILED, CANCELLED
	BasePriceCents int64          `gorm:"not null" json:"base_price_cents"`
	DiscountTier   string         `gorm:"size:20;not null" json:"discount_tier"`
	DiscountCents  int64          `gorm:"not null;default:0" json:"discount_cents"`
	CoinsRedeemed  int64          `gorm:"not null;default:0" json:"coins_redeemed"`
	CoinsAwarded   int64          `gorm:"not null;default:0" json:"coins_awarded"`
	PayableCents   int64          `gorm:"not null" json:"payable_cents"`
	PaymentID      *uint          `gorm:"index" json:"payment_id"`
	CancelledAt    *time.Time     `json:"cancelled_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	User       User        `gorm:"foreignKey:UserID" json:"-"`
	Trip       Trip        `gorm:"foreignKey:TripID" json:"trip,omitempty"`
	Payment    *Payment    `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
	Passengers []Passenger `gorm:"foreignKey:BookingID" json:"passengers,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}
