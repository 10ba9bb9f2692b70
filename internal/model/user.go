package model

import "time"

// UserRole represents the role of a user in the system
type UserRole string

const (
	UserRoleStudent    UserRole = "student"    // Default role
	UserRoleInstructor UserRole = "instructor" // Can author courses and coupons
	UserRoleAdmin      UserRole = "admin"      // Full access including user management
)

// User represents an account on the platform
type User struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	Username       *string    `json:"username,omitempty"`
	HashedPassword string     `json:"-"` // Never expose password hash
	FullName       *string    `json:"full_name,omitempty"`
	Role           UserRole   `json:"role"`
	IsActive       bool       `json:"is_active"`
	IsSuperuser    bool       `json:"is_superuser"`
	IsPremium      bool       `json:"is_premium"`
	IsVerified     bool       `json:"is_verified"`
	Coins          int        `json:"coins"`
	StreakDays     int        `json:"streak_days"`
	TokenVersion   int        `json:"token_version"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// IsAdmin returns true if the user has admin role or the superuser flag
func (u *User) IsAdmin() bool {
	return u.IsSuperuser || u.Role == UserRoleAdmin
}

// IsInstructor returns true if the user can own courses and coupons
func (u *User) IsInstructor() bool {
	return u.Role == UserRoleInstructor || u.IsAdmin()
}
