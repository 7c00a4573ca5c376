package broker

import (
	"context"
	"time"

	"github.com/ardakaya/car-market/internal/models"
)

// CarEvent is published on every successful car mutation and relayed to
// connected event-feed clients. Delivery is best effort.
type CarEvent struct {
	EventID   string    `json:"event_id"`
	Action    string    `json:"action"` // "created", "updated", "deleted"
	CarID     uint      `json:"car_id"`
	OwnerID   uint      `json:"owner_id"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventCarCreated = "created"
	EventCarUpdated = "updated"
	EventCarDeleted = "deleted"
)

// CarBroker provides a short-lived cache for the full car listing and a
// pub/sub channel for car events (single channel, all mutations).
type CarBroker interface {
	// Cache operations
	CacheCars(cars []models.Car) error
	GetCachedCars() ([]models.Car, bool, error)
	InvalidateCars() error

	// Event operations
	Publish(event CarEvent) error
	Subscribe(ctx context.Context) (<-chan CarEvent, error)

	Close() error
}
