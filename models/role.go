package models

import (
	"time"

	"gorm.io/datatypes"
)

// Wildcard grants every value of a permission list.
const Wildcard = "*"

// AdminRole is the capability override role.
const AdminRole = "admin"

// Role is a named capability bundle
type Role struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Name         string                      `gorm:"size:32;uniqueIndex;not null"`
	DisplayName  string                      `gorm:"size:64;not null"`
	Emoji        string                      `gorm:"size:16"`
	Description  string                      `gorm:"size:255"`
	Features     datatypes.JSONSlice[string] `gorm:"type:text"`
	Commands     datatypes.JSONSlice[string] `gorm:"type:text"`
	Shortcuts    datatypes.JSONSlice[string] `gorm:"type:text"`
	QuickNumbers datatypes.JSONSlice[string] `gorm:"type:text"`
	Active       bool                        `gorm:"not null"`
}

// Label renders the role as "emoji DisplayName".
func (r Role) Label() string {
	if r.Emoji == "" {
		return r.DisplayName
	}
	return r.Emoji + " " + r.DisplayName
}

// UserRole is an assignment of a role to a user. At most one row exists per
// (user, role) pair; removal flips Active instead of deleting.
type UserRole struct {
	ID         uint `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	UserID     uint `gorm:"not null;uniqueIndex:idx_user_role"`
	RoleID     uint `gorm:"not null;uniqueIndex:idx_user_role"`
	Role       Role `gorm:"foreignKey:RoleID;references:ID"`
	AssignedBy *uint
	AssignedAt time.Time `gorm:"not null;index"`
	RemovedBy  *uint
	RemovedAt  *time.Time
	Active     bool `gorm:"not null;index"`
}
