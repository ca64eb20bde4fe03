package repository

import (
	"safiri/internal/models"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts the booking with its passenger rows in one transaction.
func (r *BookingRepository) Create(b *models.Booking) error {
	return r.db.Create(b).Error
}

func (r *BookingRepository) GetByID(id uint) (*models.Booking, error) {
	var b models.Booking
	err := r.db.Preload("Trip").Preload("Trip.OriginCity").Preload("Trip.DestinationCity").
		Preload("Passengers").Preload("Payment").
		First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) GetByRef(ref string) (*models.Booking, error) {
	var b models.Booking
	err := r.db.Preload("Passengers").Preload("Payment").Where("ref = ?", ref).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) ListByUser(userID uint, limit, offset int) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.Preload("Trip").Preload("Trip.OriginCity").Preload("Trip.DestinationCity").
		Preload("Passengers").
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepository) Update(b *models.Booking) error {
	return r.db.Save(b).Error
}

// TransitionStatus moves a booking from one status to another as a single
// conditional UPDATE. Returns false when the booking was not in the expected
// status, so concurrent callers racing for the same transition lose cleanly.
func (r *BookingRepository) TransitionStatus(id uint, from, to string) (bool, error) {
	res := r.db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
