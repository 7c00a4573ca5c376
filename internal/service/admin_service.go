package service

import (
	"errors"

	"github.com/ardakaya/car-market/internal/models"
	"github.com/ardakaya/car-market/internal/repository"
	"github.com/ardakaya/car-market/pkg/logger"
	"go.uber.org/zap"
)

var ErrSelfDeletion = errors.New("cannot delete yourself")

type AdminService struct {
	userRepo   *repository.UserRepository
	carService *CarService
}

func NewAdminService(userRepo *repository.UserRepository, carService *CarService) *AdminService {
	return &AdminService{
		userRepo:   userRepo,
		carService: carService,
	}
}

// GetAllUsers returns every user's public projection, ordered by id ascending.
func (s *AdminService) GetAllUsers() ([]models.PublicUser, error) {
	users, err := s.userRepo.GetAllUsers()
	if err != nil {
		logger.Log.Error("Failed to fetch all users",
			zap.Error(err),
		)
		return nil, err
	}

	public := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}

	logger.Log.Info("Fetched all users",
		zap.Int("count", len(public)),
	)

	return public, nil
}

// MakeAdmin promotes the target user to the admin role. Idempotent when the
// user is already an admin. The promoted user's existing tokens keep their
// old role until they expire; only a fresh login picks up the new role.
func (s *AdminService) MakeAdmin(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		logger.Log.Error("Failed to fetch user for promotion",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if user.Role != models.RoleAdmin {
		if err := s.userRepo.UpdateRole(userID, models.RoleAdmin); err != nil {
			logger.Log.Error("Failed to promote user",
				zap.Uint("user_id", userID),
				zap.Error(err),
			)
			return nil, err
		}
		user.Role = models.RoleAdmin
	}

	logger.Log.Info("User promoted to admin",
		zap.Uint("user_id", userID),
		zap.String("username", user.Username),
	)

	return user, nil
}

// DeleteUser removes the target user and all their cars as one atomic unit.
// An admin may never delete their own account; that check runs before any
// store access.
func (s *AdminService) DeleteUser(targetID, callerID uint) error {
	if targetID == callerID {
		logger.Log.Warn("Admin attempted self-deletion",
			zap.Uint("admin_id", callerID),
		)
		return ErrSelfDeletion
	}

	user, err := s.userRepo.GetUserByID(targetID)
	if err != nil {
		logger.Log.Error("Failed to fetch user for deletion",
			zap.Uint("user_id", targetID),
			zap.Error(err),
		)
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.userRepo.DeleteUserWithCars(targetID); err != nil {
		logger.Log.Error("Failed to delete user with cars",
			zap.Uint("user_id", targetID),
			zap.Error(err),
		)
		return err
	}

	// Cascade delete may have removed cars, so the listing cache is stale.
	s.carService.InvalidateCache()

	logger.Log.Info("User deleted",
		zap.Uint("user_id", targetID),
		zap.String("username", user.Username),
		zap.Uint("admin_id", callerID),
	)

	return nil
}
