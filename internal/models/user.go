// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User is an account that authors articles and likes them.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	Email          string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	PasswordDigest string    `gorm:"not null" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Back-references, used for lookup only.
	Articles []Article     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Likes    []ArticleLike `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
