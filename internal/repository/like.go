package repository

import (
	"context"

	"github.com/minasenanami/wonderful-editor/internal/cache"
	"github.com/minasenanami/wonderful-editor/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines persistence operations for article likes.
type LikeRepository interface {
	Create(ctx context.Context, like *models.ArticleLike) error
	Delete(ctx context.Context, userID, articleID uint) (bool, error)
	Exists(ctx context.Context, userID, articleID uint) (bool, error)
	CountByArticle(ctx context.Context, articleID uint) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Create relies on the (user_id, article_id) unique index to reject
// duplicates, so two concurrent likes cannot both succeed. The model's
// BeforeCreate hook rejects a like without a user before the INSERT is issued.
func (r *likeRepository) Create(ctx context.Context, like *models.ArticleLike) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(like).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Article already liked")
		}
		return classify(err)
	}
	cache.Invalidate(ctx, cache.ArticleKey(like.ArticleID))
	return nil
}

// Delete reports whether a like was removed. Removing a missing like is not an error.
func (r *likeRepository) Delete(ctx context.Context, userID, articleID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		Delete(&models.ArticleLike{})
	if res.Error != nil {
		return false, classify(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.Invalidate(ctx, cache.ArticleKey(articleID))
	}
	return res.RowsAffected > 0, nil
}

func (r *likeRepository) Exists(ctx context.Context, userID, articleID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ArticleLike{}).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		Count(&count).Error; err != nil {
		return false, classify(err)
	}
	return count > 0, nil
}

func (r *likeRepository) CountByArticle(ctx context.Context, articleID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ArticleLike{}).
		Where("article_id = ?", articleID).
		Count(&count).Error; err != nil {
		return 0, classify(err)
	}
	return count, nil
}
