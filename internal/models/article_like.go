package models

import (
	"time"

	"gorm.io/gorm"
)

// ArticleLike records that a user liked an article.
// The combination of UserID and ArticleID must be unique.
type ArticleLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_article_likes_user_article;index" json:"user_id"`
	ArticleID uint      `gorm:"not null;uniqueIndex:idx_article_likes_user_article;index" json:"article_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User    *User    `gorm:"foreignKey:UserID" json:"-"`
	Article *Article `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"-"`
}

// Validate rejects a like that is missing either side of the relation.
func (l *ArticleLike) Validate() error {
	if l.UserID == 0 {
		return NewFieldError("user", "User must exist")
	}
	if l.ArticleID == 0 {
		return NewFieldError("article", "Article must exist")
	}
	return nil
}

// BeforeCreate refuses to persist an invalid like.
func (l *ArticleLike) BeforeCreate(_ *gorm.DB) error {
	return l.Validate()
}
