package models

import (
	"time"

	"gorm.io/gorm"
)

// Trip is one sellable departure: a bus/train/flight leg or a tour with a
// fixed start time. Seat inventory lives directly on the row and is only
// changed through conditional updates in TripRepository.
type Trip struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Mode              string         `gorm:"size:10;not null;index" json:"mode"` // BUS, TRAIN, FLIGHT, TOUR
	Operator          string         `gorm:"size:128;not null" json:"operator"`
	OriginCityID      uint           `gorm:"not null;index" json:"origin_city_id"`
	DestinationCityID uint           `gorm:"not null;index" json:"destination_city_id"`
	DepartAt          time.Time      `gorm:"not null;index" json:"depart_at"`
	ArriveAt          time.Time      `gorm:"not null" json:"arrive_at"`
	PriceCents        int64          `gorm:"not null" json:"price_cents"`
	SeatsTotal        int            `gorm:"not null" json:"seats_total"`
	SeatsAvailable    int            `gorm:"not null" json:"seats_available"`
	Status            string         `gorm:"size:20;not null;default:'SCHEDULED';index" json:"status"`
	ImageURL          string         `gorm:"size:512" json:"image_url"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	OriginCity      City `gorm:"foreignKey:OriginCityID" json:"origin_city"`
	DestinationCity City `gorm:"foreignKey:DestinationCityID" json:"destination_city"`
}

func (Trip) TableName() string {
	return "trips"
}
