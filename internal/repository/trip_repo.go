package repository

import (
	"errors"
	"time"

	"safiri/internal/models"

	"gorm.io/gorm"
)

var ErrNoSeats = errors.New("not enough seats available")

// TripSearch filters a trip query; zero values mean "any".
type TripSearch struct {
	Mode     string
	FromCity uint
	ToCity   uint
	Date     time.Time
	Limit    int
	Offset   int
}

type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) Create(t *models.Trip) error {
	return r.db.Create(t).Error
}

func (r *TripRepository) GetByID(id uint) (*models.Trip, error) {
	var t models.Trip
	err := r.db.Preload("OriginCity").Preload("DestinationCity").First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TripRepository) Update(t *models.Trip) error {
	return r.db.Save(t).Error
}

func (r *TripRepository) Delete(id uint) error {
	return r.db.Delete(&models.Trip{}, id).Error
}

func (r *TripRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Trip{}).Where("id = ?", id).Update("status", status).Error
}

func (r *TripRepository) Search(f TripSearch) ([]models.Trip, error) {
	q := r.db.Preload("OriginCity").Preload("DestinationCity").
		Where("depart_at > ?", time.Now())
	if f.Mode != "" {
		q = q.Where("mode = ?", f.Mode)
	}
	if f.FromCity != 0 {
		q = q.Where("origin_city_id = ?", f.FromCity)
	}
	if f.ToCity != 0 {
		q = q.Where("destination_city_id = ?", f.ToCity)
	}
	if !f.Date.IsZero() {
		dayStart := time.Date(f.Date.Year(), f.Date.Month(), f.Date.Day(), 0, 0, 0, 0, f.Date.Location())
		q = q.Where("depart_at >= ? AND depart_at < ?", dayStart, dayStart.Add(24*time.Hour))
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var trips []models.Trip
	err := q.Order("depart_at ASC").Limit(limit).Offset(f.Offset).Find(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}

func (r *TripRepository) ListCities() ([]models.City, error) {
	var cities []models.City
	err := r.db.Order("name ASC").Find(&cities).Error
	if err != nil {
		return nil, err
	}
	return cities, nil
}

// ReserveSeats takes seats from inventory with a conditional UPDATE so two
// confirmations cannot oversell the trip.
func (r *TripRepository) ReserveSeats(tripID uint, seats int) error {
	res := r.db.Model(&models.Trip{}).
		Where("id = ? AND seats_available >= ?", tripID, seats).
		UpdateColumn("seats_available", gorm.Expr("seats_available - ?", seats))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoSeats
	}
	return nil
}

// ReleaseSeats returns seats to inventory on cancellation, capped at the
// trip's total.
func (r *TripRepository) ReleaseSeats(tripID uint, seats int) error {
	return r.db.Model(&models.Trip{}).
		Where("id = ? AND seats_available + ? <= seats_total", tripID, seats).
		UpdateColumn("seats_available", gorm.Expr("seats_available + ?", seats)).Error
}
