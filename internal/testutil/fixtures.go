package testutil

import (
	"time"

	"github.com/ardakaya/car-market/internal/models"
	"github.com/ardakaya/car-market/internal/utils"
)

// CreateTestUser creates a test user with a real bcrypt hash
func CreateTestUser(username, password string, role models.Role) (*models.User, error) {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		Username:     username,
		PasswordHash: hashedPassword,
		Role:         role,
		CreatedAt:    time.Now(),
	}, nil
}

// CreateTestCar creates a test car owned by the given user
func CreateTestCar(ownerID uint, brand, model string, year, price, mileage int) *models.Car {
	return &models.Car{
		OwnerID:   ownerID,
		Brand:     brand,
		Model:     model,
		Year:      year,
		Price:     price,
		Mileage:   mileage,
		CreatedAt: time.Now(),
	}
}

// DefaultTestUser returns a default test user (regular user)
func DefaultTestUser() (*models.User, error) {
	return CreateTestUser("testuser", "Test123456", models.RoleUser)
}

// DefaultAdminUser returns a default admin user
func DefaultAdminUser() (*models.User, error) {
	return CreateTestUser("admin", "Admin123456", models.RoleAdmin)
}

// DefaultTestCar returns a default car owned by the given user
func DefaultTestCar(ownerID uint) *models.Car {
	return CreateTestCar(ownerID, "Toyota", "Camry", 2020, 25000, 15000)
}
