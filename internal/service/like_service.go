package service

import (
	"context"
	"errors"

	"github.com/minasenanami/wonderful-editor/internal/models"
	"github.com/minasenanami/wonderful-editor/internal/observability"
	"github.com/minasenanami/wonderful-editor/internal/repository"
)

type LikeService struct {
	likes    repository.LikeRepository
	articles repository.ArticleRepository
}

func NewLikeService(likes repository.LikeRepository, articles repository.ArticleRepository) *LikeService {
	return &LikeService{likes: likes, articles: articles}
}

// Like records that identity likes the article. Liking twice is a Conflict.
// Any user may like any article, their own included.
func (s *LikeService) Like(ctx context.Context, identity Identity, articleID uint) (*models.ArticleLike, error) {
	if identity.IsAnonymous() {
		return nil, Unauthenticated()
	}
	if _, err := s.articles.GetByID(ctx, articleID); err != nil {
		return nil, err
	}

	like := &models.ArticleLike{UserID: identity.UserID, ArticleID: articleID}
	if err := like.Validate(); err != nil {
		return nil, err
	}
	if err := s.likes.Create(ctx, like); err != nil {
		if errors.Is(err, models.ErrConflict) {
			observability.LikeConflicts.Inc()
		}
		return nil, err
	}
	return like, nil
}

// Unlike removes identity's like if there is one. It reports whether a like
// was removed; a missing like is not an error.
func (s *LikeService) Unlike(ctx context.Context, identity Identity, articleID uint) (bool, error) {
	if identity.IsAnonymous() {
		return false, Unauthenticated()
	}
	if _, err := s.articles.GetByID(ctx, articleID); err != nil {
		return false, err
	}
	return s.likes.Delete(ctx, identity.UserID, articleID)
}
