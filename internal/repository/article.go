package repository

import (
	"context"
	"errors"
	"time"

	"github.com/minasenanami/wonderful-editor/internal/cache"
	"github.com/minasenanami/wonderful-editor/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// likesCountSelect adds the computed likes_count column to an articles query.
const likesCountSelect = "articles.*, (SELECT COUNT(*) FROM article_likes WHERE article_likes.article_id = articles.id) AS likes_count"

// ArticleRepository defines persistence operations for articles.
type ArticleRepository interface {
	List(ctx context.Context, limit, offset int) ([]*models.Article, error)
	GetByID(ctx context.Context, id uint) (*models.Article, error)
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id uint) error
}

type articleRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewArticleRepository returns a new ArticleRepository implementation.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db, now: time.Now}
}

// List returns articles most recently updated first. Ties keep creation order.
func (r *articleRepository) List(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	var articles []*models.Article
	query := func() error {
		return r.db.WithContext(ctx).
			Model(&models.Article{}).
			Select(likesCountSelect).
			Preload("User").
			Order("articles.updated_at DESC").
			Order("articles.id ASC").
			Limit(limit).
			Offset(offset).
			Find(&articles).Error
	}

	var err error
	if offset == 0 {
		err = cache.Aside(ctx, cache.ArticlesListKey(limit, offset), &articles, cache.ArticlesListTTL, query)
	} else {
		err = query()
	}
	if err != nil {
		return nil, classify(err)
	}
	if articles == nil {
		articles = []*models.Article{}
	}
	return articles, nil
}

func (r *articleRepository) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	err := cache.Aside(ctx, cache.ArticleKey(id), &article, cache.ArticleTTL, func() error {
		return r.db.WithContext(ctx).
			Model(&models.Article{}).
			Select(likesCountSelect).
			Preload("User").
			First(&article, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Article", id)
		}
		return nil, classify(err)
	}
	return &article, nil
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(article).Error; err != nil {
		return classify(err)
	}
	cache.InvalidateArticleLists(ctx)
	return nil
}

// Update writes title and body and bumps updated_at. Last write wins.
func (r *articleRepository) Update(ctx context.Context, article *models.Article) error {
	now := r.now()
	res := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("id = ?", article.ID).
		Updates(map[string]interface{}{
			"title":      article.Title,
			"body":       article.Body,
			"updated_at": now,
		})
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Article", article.ID)
	}
	article.UpdatedAt = now
	cache.InvalidateArticle(ctx, article.ID)
	return nil
}

// Delete removes the article; its likes go with it through ON DELETE CASCADE.
func (r *articleRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Article{}, id)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Article", id)
	}
	cache.InvalidateArticle(ctx, id)
	return nil
}
