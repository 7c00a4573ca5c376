package repository

import (
	"errors"

	"github.com/ardakaya/car-market/internal/models"
	"gorm.io/gorm"
)

type CarRepository struct {
	db *gorm.DB
}

func NewCarRepository(db *gorm.DB) *CarRepository {
	return &CarRepository{db: db}
}

func (r *CarRepository) CreateCar(car *models.Car) error {
	return r.db.Create(car).Error
}

func (r *CarRepository) GetAllCars() ([]models.Car, error) {
	var cars []models.Car
	err := r.db.Order("id ASC").Find(&cars).Error
	return cars, err
}

func (r *CarRepository) GetCarsByOwner(ownerID uint) ([]models.Car, error) {
	var cars []models.Car
	err := r.db.Where("owner_id = ?", ownerID).Order("id ASC").Find(&cars).Error
	return cars, err
}

func (r *CarRepository) GetCarByID(id uint) (*models.Car, error) {
	var car models.Car
	err := r.db.First(&car, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &car, nil
}

// UpdatePrice sets a car's price. Only the price is mutable after creation.
func (r *CarRepository) UpdatePrice(id uint, price int) error {
	return r.db.Model(&models.Car{}).Where("id = ?", id).Update("price", price).Error
}

func (r *CarRepository) DeleteCar(id uint) error {
	return r.db.Delete(&models.Car{}, id).Error
}

// CountCarsByOwner returns the number of cars owned by a user
func (r *CarRepository) CountCarsByOwner(ownerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Car{}).Where("owner_id = ?", ownerID).Count(&count).Error
	return count, err
}
