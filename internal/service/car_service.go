package service

import (
	"errors"
	"time"

	"github.com/ardakaya/car-market/internal/broker"
	"github.com/ardakaya/car-market/internal/models"
	"github.com/ardakaya/car-market/internal/repository"
	"github.com/ardakaya/car-market/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrCarNotFound = errors.New("car not found")

type CarService struct {
	carRepo *repository.CarRepository
	broker  broker.CarBroker
}

func NewCarService(carRepo *repository.CarRepository, carBroker broker.CarBroker) *CarService {
	return &CarService{
		carRepo: carRepo,
		broker:  carBroker,
	}
}

// CreateCar persists a new car with the authenticated caller stamped as
// owner. Ownership is immutable after this point.
func (s *CarService) CreateCar(ownerID uint, brand, model string, year, price, mileage int) (*models.Car, error) {
	car := &models.Car{
		OwnerID: ownerID,
		Brand:   brand,
		Model:   model,
		Year:    year,
		Price:   price,
		Mileage: mileage,
	}

	if err := s.carRepo.CreateCar(car); err != nil {
		logger.Log.Error("Failed to create car",
			zap.Uint("owner_id", ownerID),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Car created",
		zap.Uint("car_id", car.ID),
		zap.Uint("owner_id", ownerID),
		zap.String("brand", brand),
		zap.String("model", model),
	)

	s.afterMutation(broker.EventCarCreated, car.ID, car.OwnerID)

	return car, nil
}

// ListCars returns all cars, preferring the redis cache when warm. A cold or
// unreachable cache falls through to the database and repopulates.
func (s *CarService) ListCars() ([]models.Car, error) {
	cached, ok, err := s.broker.GetCachedCars()
	if err != nil {
		logger.Log.Warn("Car list cache read failed, falling back to database",
			zap.Error(err),
		)
	} else if ok {
		logger.Log.Debug("Car list served from cache",
			zap.Int("count", len(cached)),
		)
		return cached, nil
	}

	cars, err := s.carRepo.GetAllCars()
	if err != nil {
		logger.Log.Error("Failed to fetch cars",
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.broker.CacheCars(cars); err != nil {
		logger.Log.Warn("Failed to cache car list",
			zap.Error(err),
		)
	}

	return cars, nil
}

// ListCarsByOwner returns the given user's cars. Any authenticated caller may
// read any user's listings.
func (s *CarService) ListCarsByOwner(ownerID uint) ([]models.Car, error) {
	cars, err := s.carRepo.GetCarsByOwner(ownerID)
	if err != nil {
		logger.Log.Error("Failed to fetch cars by owner",
			zap.Uint("owner_id", ownerID),
			zap.Error(err),
		)
		return nil, err
	}
	return cars, nil
}

// UpdatePrice changes a car's price. Ownership is not checked here: any
// authenticated user may update any car.
func (s *CarService) UpdatePrice(carID uint, price int) (*models.Car, error) {
	car, err := s.carRepo.GetCarByID(carID)
	if err != nil {
		logger.Log.Error("Failed to fetch car",
			zap.Uint("car_id", carID),
			zap.Error(err),
		)
		return nil, err
	}
	if car == nil {
		return nil, ErrCarNotFound
	}

	if err := s.carRepo.UpdatePrice(carID, price); err != nil {
		logger.Log.Error("Failed to update car price",
			zap.Uint("car_id", carID),
			zap.Error(err),
		)
		return nil, err
	}
	car.Price = price

	logger.Log.Info("Car price updated",
		zap.Uint("car_id", carID),
		zap.Int("price", price),
	)

	s.afterMutation(broker.EventCarUpdated, car.ID, car.OwnerID)

	return car, nil
}

// DeleteCar removes a single car. Ownership is not checked here either.
func (s *CarService) DeleteCar(carID uint) error {
	car, err := s.carRepo.GetCarByID(carID)
	if err != nil {
		logger.Log.Error("Failed to fetch car",
			zap.Uint("car_id", carID),
			zap.Error(err),
		)
		return err
	}
	if car == nil {
		return ErrCarNotFound
	}

	if err := s.carRepo.DeleteCar(carID); err != nil {
		logger.Log.Error("Failed to delete car",
			zap.Uint("car_id", carID),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Car deleted",
		zap.Uint("car_id", carID),
		zap.Uint("owner_id", car.OwnerID),
	)

	s.afterMutation(broker.EventCarDeleted, car.ID, car.OwnerID)

	return nil
}

// InvalidateCache drops the cached car list. Called by the admin service when
// a user cascade delete removes cars without going through this service.
func (s *CarService) InvalidateCache() {
	if err := s.broker.InvalidateCars(); err != nil {
		logger.Log.Warn("Failed to invalidate car list cache",
			zap.Error(err),
		)
	}
}

// afterMutation invalidates the listing cache and publishes a car event.
// Both are best effort: failures are logged, never surfaced to the caller.
func (s *CarService) afterMutation(action string, carID, ownerID uint) {
	s.InvalidateCache()

	event := broker.CarEvent{
		EventID:   uuid.New().String(),
		Action:    action,
		CarID:     carID,
		OwnerID:   ownerID,
		Timestamp: time.Now(),
	}
	if err := s.broker.Publish(event); err != nil {
		logger.Log.Warn("Failed to publish car event",
			zap.String("action", action),
			zap.Uint("car_id", carID),
			zap.Error(err),
		)
	}
}
