package models

import (
	"time"
)

// User is a chat participant, identified by its channel address.
type User struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Phone     string `gorm:"size:64;not null;uniqueIndex"`
	Name      string `gorm:"size:255"`
	Roles     []UserRole
}
