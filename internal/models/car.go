package models

import "time"

type Car struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"` // Immutable, set from the creating user's token
	Brand     string    `gorm:"type:varchar(100);not null" json:"brand"`
	Model     string    `gorm:"type:varchar(100);not null" json:"model"`
	Year      int       `gorm:"not null" json:"year"`
	Price     int       `gorm:"not null" json:"price"`
	Mileage   int       `gorm:"not null" json:"mileage"`
	CreatedAt time.Time `json:"created_at"`
}
