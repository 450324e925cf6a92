package models

import "time"

// Attendance types
const (
	AttendanceIn  = "masuk"
	AttendanceOut = "pulang"
)

// Attendance is one geofenced check-in or check-out.
type Attendance struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UserID    uint    `gorm:"index:idx_att_user_date;not null"`
	Type      string  `gorm:"size:8;not null"`
	Latitude  float64 `gorm:"not null"`
	Longitude float64 `gorm:"not null"`
	PhotoPath *string `gorm:"size:512"`
	Distance  int     `gorm:"not null"`
	Date      string  `gorm:"size:10;index:idx_att_user_date;not null"`
	Time      string  `gorm:"size:8;not null"`
}
