package models

import "time"

type City struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Country   string    `gorm:"size:128;not null;default:'Kenya'" json:"country"`
	CreatedAt time.Time `json:"created_at"`
}

func (City) TableName() string {
	return "cities"
}
