package database

import (
	"log"
	"time"

	"safiri/config"
	"safiri/internal/domain"
	"safiri/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin creates the back-office account if it does not exist yet.
func SeedAdmin(db *gorm.DB, cfg *config.AdminConfig) {
	var count int64
	db.Model(&models.User{}).Where("email = ?", cfg.Email).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("seed admin: %v", err)
		return
	}
	admin := &models.User{
		FullName:     "Safiri Admin",
		Email:        cfg.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		log.Printf("seed admin: %v", err)
	}
}

// SeedReferenceData loads a starter catalog of cities, trips, and coin
// packages so a fresh install has something to search. Idempotent.
func SeedReferenceData(db *gorm.DB) {
	cities := []models.City{
		{Name: "Nairobi"},
		{Name: "Mombasa"},
		{Name: "Kisumu"},
		{Name: "Nakuru"},
		{Name: "Eldoret"},
	}
	for i := range cities {
		db.Where(models.City{Name: cities[i].Name}).FirstOrCreate(&cities[i])
	}

	var tripCount int64
	db.Model(&models.Trip{}).Count(&tripCount)
	if tripCount == 0 {
		depart := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
		trips := []models.Trip{
			{Mode: domain.TripModeBus, Operator: "Coast Express", OriginCityID: cities[0].ID, DestinationCityID: cities[1].ID,
				DepartAt: depart, ArriveAt: depart.Add(8 * time.Hour), PriceCents: 180000, SeatsTotal: 44, SeatsAvailable: 44, Status: domain.TripStatusScheduled},
			{Mode: domain.TripModeTrain, Operator: "Madaraka Line", OriginCityID: cities[0].ID, DestinationCityID: cities[1].ID,
				DepartAt: depart.Add(2 * time.Hour), ArriveAt: depart.Add(7 * time.Hour), PriceCents: 150000, SeatsTotal: 120, SeatsAvailable: 120, Status: domain.TripStatusScheduled},
			{Mode: domain.TripModeFlight, Operator: "SkyLink", OriginCityID: cities[0].ID, DestinationCityID: cities[2].ID,
				DepartAt: depart.Add(3 * time.Hour), ArriveAt: depart.Add(4 * time.Hour), PriceCents: 650000, SeatsTotal: 70, SeatsAvailable: 70, Status: domain.TripStatusScheduled},
			{Mode: domain.TripModeTour, Operator: "Rift Valley Safaris", OriginCityID: cities[3].ID, DestinationCityID: cities[3].ID,
				DepartAt: depart.Add(48 * time.Hour), ArriveAt: depart.Add(56 * time.Hour), PriceCents: 420000, SeatsTotal: 16, SeatsAvailable: 16, Status: domain.TripStatusScheduled},
		}
		for i := range trips {
			if err := db.Create(&trips[i]).Error; err != nil {
				log.Printf("seed trips: %v", err)
			}
		}
	}

	packages := []models.CoinPackage{
		{Name: "Starter", Coins: 100, PriceCents: 4500, Active: true},
		{Name: "Traveller", Coins: 250, PriceCents: 10000, Active: true},
		{Name: "Explorer", Coins: 600, PriceCents: 22000, Active: true},
	}
	for i := range packages {
		db.Where(models.CoinPackage{Name: packages[i].Name}).FirstOrCreate(&packages[i])
	}
}
