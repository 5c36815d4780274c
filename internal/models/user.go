package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered user. Accounts arrive through two paths:
// Google OAuth (GoogleID set, no password) and manual signup (password set,
// no GoogleID). The two are never merged; the same person signing up both
// ways ends up with two rows.
type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	GoogleID  *string   `gorm:"uniqueIndex;size:128" json:"google_id,omitempty"`
	Name      string    `gorm:"size:255" json:"name"`
	Email     string    `gorm:"size:255;index" json:"email"`
	Picture   string    `gorm:"size:512" json:"picture,omitempty"`
	Password  string    `gorm:"size:255" json:"-"` // bcrypt hash, empty for OAuth accounts
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook is called before inserting a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	return nil
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// PublicUser is the user shape returned by the login endpoint
type PublicUser struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// Public returns the user fields safe to hand back to clients
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Picture: u.Picture,
	}
}

// SignupRequest represents the data needed for manual registration
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents the data needed for email/password login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
