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

type CarHandler struct {
	carService *service.CarService
}

func NewCarHandler(carService *service.CarService) *CarHandler {
	return &CarHandler{
		carService: carService,
	}
}

type CreateCarRequest struct {
	Brand   string `json:"brand" binding:"required"`
	Model   string `json:"model" binding:"required"`
	Year    int    `json:"year" binding:"required"`
	Price   int    `json:"price" binding:"required"`
	Mileage int    `json:"mileage" binding:"required"`
}

type UpdateCarRequest struct {
	Price *int `json:"price" binding:"required"`
}

// Create adds a car owned by the authenticated caller
// POST /api/cars
func (h *CarHandler) Create(c *gin.Context) {
	var req CreateCarRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "All fields are required",
		})
		return
	}

	ownerID := c.GetUint("user_id")

	car, err := h.carService.CreateCar(ownerID, req.Brand, req.Model, req.Year, req.Price, req.Mileage)
	if err != nil {
		logger.Log.Error("Create car failed",
			zap.Uint("owner_id", ownerID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Car created successfully",
		"car":     car,
	})
}

// List returns every car. Any authenticated user may read all listings.
// GET /api/cars/list
func (h *CarHandler) List(c *gin.Context) {
	cars, err := h.carService.ListCars()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, cars)
}

// ListByUser returns the given user's cars
// GET /api/cars/:userId
func (h *CarHandler) ListByUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Valid user ID is required",
		})
		return
	}

	cars, err := h.carService.ListCarsByOwner(uint(userID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, cars)
}

// UpdatePrice changes a car's price
// PUT /api/cars/:id
func (h *CarHandler) UpdatePrice(c *gin.Context) {
	carID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Valid car ID is required",
		})
		return
	}

	var req UpdateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Price == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Price is required",
		})
		return
	}

	car, err := h.carService.UpdatePrice(uint(carID), *req.Price)
	if err != nil {
		if errors.Is(err, service.ErrCarNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Car not found",
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Car updated successfully",
		"car":     car,
	})
}

// Delete removes a single car
// DELETE /api/cars/:id
func (h *CarHandler) Delete(c *gin.Context) {
	carID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Valid car ID is required",
		})
		return
	}

	if err := h.carService.DeleteCar(uint(carID)); err != nil {
		if errors.Is(err, service.ErrCarNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Car not found",
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Car deleted successfully",
	})
}
