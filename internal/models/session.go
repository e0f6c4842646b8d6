package models

import (
	"time"
)

// Session is one signed-in device. The access token is stored only as a
// digest; RotationCount increases every time the token is replaced.
type Session struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index;uniqueIndex:idx_sessions_user_client" json:"user_id"`
	ClientID      string    `gorm:"size:64;not null;uniqueIndex:idx_sessions_user_client;index" json:"client_id"`
	TokenHash     string    `gorm:"size:64;not null;index" json:"-"`
	RotationCount int64     `gorm:"not null;default:0" json:"rotation_count"`
	ExpiresAt     time.Time `gorm:"not null;index" json:"expires_at"`
	LastUsedAt    time.Time `json:"last_used_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Expired reports whether the session is no longer usable at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
