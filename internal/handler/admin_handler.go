package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ardakaya/car-market/internal/service"
	"github.com/ardakaya/car-market/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler struct {
	adminService *service.AdminService
}

func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// GetAllUsers returns all users' public projections, ordered by id
// GET /api/admin/users
func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	logger.Log.Info("Admin fetching all users",
		zap.Uint("admin_id", c.GetUint("user_id")),
	)

	users, err := h.adminService.GetAllUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, users)
}

// MakeAdmin promotes a user to the admin role
// PATCH /api/admin/users/:id/make-admin
func (h *AdminHandler) MakeAdmin(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Valid user ID is required",
		})
		return
	}

	logger.Log.Info("Admin promoting user",
		zap.Uint("admin_id", c.GetUint("user_id")),
		zap.Uint64("target_user_id", userID),
	)

	user, err := h.adminService.MakeAdmin(uint(userID))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User promoted to admin",
		"user":    user.Public(),
	})
}

// DeleteUser removes a user and all their cars in one transaction
// DELETE /api/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Valid user ID is required",
		})
		return
	}

	adminID := c.GetUint("user_id")
	logger.Log.Info("Admin deleting user",
		zap.Uint("admin_id", adminID),
		zap.Uint64("target_user_id", userID),
	)

	if err := h.adminService.DeleteUser(uint(userID), adminID); err != nil {
		switch {
		case errors.Is(err, service.ErrSelfDeletion):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Cannot delete yourself",
			})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}
