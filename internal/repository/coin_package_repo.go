package repository

import (
	"safiri/internal/models"

	"gorm.io/gorm"
)

type CoinPackageRepository struct {
	db *gorm.DB
}

func NewCoinPackageRepository(db *gorm.DB) *CoinPackageRepository {
	return &CoinPackageRepository{db: db}
}

func (r *CoinPackageRepository) ListActive() ([]models.CoinPackage, error) {
	var pkgs []models.CoinPackage
	err := r.db.Where("active = ?", true).Order("price_cents ASC").Find(&pkgs).Error
	if err != nil {
		return nil, err
	}
	return pkgs, nil
}

func (r *CoinPackageRepository) List() ([]models.CoinPackage, error) {
	var pkgs []models.CoinPackage
	err := r.db.Order("price_cents ASC").Find(&pkgs).Error
	if err != nil {
		return nil, err
	}
	return pkgs, nil
}

func (r *CoinPackageRepository) GetByID(id uint) (*models.CoinPackage, error) {
	var p models.CoinPackage
	err := r.db.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CoinPackageRepository) Create(p *models.CoinPackage) error {
	return r.db.Create(p).Error
}

func (r *CoinPackageRepository) Update(p *models.CoinPackage) error {
	return r.db.Save(p).Error
}

func (r *CoinPackageRepository) Delete(id uint) error {
	return r.db.Delete(&models.CoinPackage{}, id).Error
}
