package models

import (
	"time"
)

// RoleType represents a user's role in the system
type RoleType string

const (
	RoleStudent RoleType = "STUDENT"
	RoleDonor   RoleType = "DONOR"
	RoleAdmin   RoleType = "ADMIN"
	// RoleSubAdmin is the field officer role; sub-admins verify students in
	// the field and file recommendations.
	RoleSubAdmin RoleType = "SUB_ADMIN"
)

// IsValidRole reports whether the value is a known role
func IsValidRole(r RoleType) bool {
	switch r {
	case RoleStudent, RoleDonor, RoleAdmin, RoleSubAdmin:
		return true
	}
	return false
}

// User defines the user model based on the 'users' table
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Email       string     `json:"email" db:"email" example:"user@example.com"`
	Password    string     `json:"-" db:"password"` // hashed, excluded from JSON
	FirstName   string     `json:"firstName" db:"first_name" example:"Ayesha"`
	LastName    string     `json:"lastName" db:"last_name" example:"Khan"`
	Phone       *string    `json:"phone,omitempty" db:"phone"`
	RoleType    RoleType   `json:"roleType" db:"role_type" example:"STUDENT"`
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}
