package repository

import (
	"safiri/internal/domain"
	"safiri/internal/models"

	"gorm.io/gorm"
)

// DashboardStats is the admin overview aggregate.
type DashboardStats struct {
	Users             int64 `json:"users"`
	BookingsConfirmed int64 `json:"bookings_confirmed"`
	BookingsCancelled int64 `json:"bookings_cancelled"`
	RevenueCents      int64 `json:"revenue_cents"`
	CoinsOutstanding  int64 `json:"coins_outstanding"`
	TripsScheduled    int64 `json:"trips_scheduled"`
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetDashboardStats() (*DashboardStats, error) {
	var s DashboardStats
	if err := r.db.Model(&models.User{}).Count(&s.Users).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Booking{}).Where("status = ?", domain.BookingStatusConfirmed).Count(&s.BookingsConfirmed).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Booking{}).Where("status = ?", domain.BookingStatusCancelled).Count(&s.BookingsCancelled).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Booking{}).Where("status = ?", domain.BookingStatusConfirmed).
		Select("COALESCE(SUM(payable_cents), 0)").Scan(&s.RevenueCents).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.CoinWallet{}).
		Select("COALESCE(SUM(balance), 0)").Scan(&s.CoinsOutstanding).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Trip{}).Where("status = ?", domain.TripStatusScheduled).Count(&s.TripsScheduled).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *AdminRepository) ListUsers(search string, page, limit int) ([]models.User, int64, error) {
	q := r.db.Model(&models.User{})
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("email LIKE ? OR full_name LIKE ?", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := q.Preload("Wallet").
		Order("id DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
