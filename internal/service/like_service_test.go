package service

import (
	"context"
	"testing"

	"github.com/minasenanami/wonderful-editor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeService_Like(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		identity  Identity
		getErr    error
		createErr error
		wantCode  string
	}{
		{"Success", Identity{UserID: 1}, nil, nil, ""},
		{"Own article allowed", Identity{UserID: 42}, nil, nil, ""},
		{"Anonymous", Anonymous, nil, nil, models.CodeUnauthorized},
		{"Missing article", Identity{UserID: 1}, models.NewNotFoundError("Article", 9), nil, models.CodeNotFound},
		{"Already liked", Identity{UserID: 1}, nil, models.NewConflictError("Article already liked"), models.CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			articles := noopArticleRepo()
			articles.getByIDFn = func(_ context.Context, id uint) (*models.Article, error) {
				if tt.getErr != nil {
					return nil, tt.getErr
				}
				return &models.Article{ID: id, UserID: 42}, nil
			}
			likes := noopLikeRepo()
			likes.createFn = func(_ context.Context, l *models.ArticleLike) error {
				if tt.createErr != nil {
					return tt.createErr
				}
				l.ID = 1
				return nil
			}

			like, err := NewLikeService(likes, articles).Like(context.Background(), tt.identity, 9)
			if tt.wantCode != "" {
				assertAppErrorCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.identity.UserID, like.UserID)
			assert.Equal(t, uint(9), like.ArticleID)
		})
	}
}

func TestLikeService_UnlikeIsIdempotent(t *testing.T) {
	t.Parallel()

	likes := noopLikeRepo()
	calls := 0
	likes.deleteFn = func(_ context.Context, _, _ uint) (bool, error) {
		calls++
		return calls == 1, nil
	}
	svc := NewLikeService(likes, noopArticleRepo())

	removed, err := svc.Unlike(context.Background(), Identity{UserID: 1}, 3)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.Unlike(context.Background(), Identity{UserID: 1}, 3)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestArticleLike_ValidateRejectsMissingUser(t *testing.T) {
	t.Parallel()

	err := (&models.ArticleLike{ArticleID: 1}).Validate()
	appErr := assertAppErrorCode(t, err, models.CodeValidation)
	assert.Equal(t, "user", appErr.Field)
}
