package models

import "time"

// UserRole defines the authorization level of a user account.
type UserRole string

const (
	// UserRoleProvider is the default role for business owners.
	UserRoleProvider UserRole = "provider"
	// UserRoleAdmin grants access to moderation endpoints.
	UserRoleAdmin UserRole = "admin"
)

// User represents an authenticatable account.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name      string    `gorm:"size:120" json:"name"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      UserRole  `gorm:"type:varchar(20);not null;default:'provider'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
