package models

import "time"

// Login methods recorded in the audit log
const (
	LoginMethodGoogle   = "google"
	LoginMethodPassword = "password"
)

// LoginLog records a successful authentication event
type LoginLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Method    string    `gorm:"size:20;not null" json:"method"` // google, password
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	UserAgent string    `gorm:"size:512" json:"user_agent"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName specifies the table name for the LoginLog model
func (LoginLog) TableName() string {
	return "login_log"
}
