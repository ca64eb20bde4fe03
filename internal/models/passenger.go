package models

import (
	"time"

	"gorm.io/gorm"
)

type Passenger struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	BookingID  uint           `gorm:"not null;index" json:"booking_id"`
	FullName   string         `gorm:"size:128;not null" json:"full_name"`
	Age        int            `gorm:"not null" json:"age"`
	IDNumber   string         `gorm:"size:64" json:"id_number"`
	SeatNumber string         `gorm:"size:16" json:"seat_number"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Passenger) TableName() string {
	return "passengers"
}
