package service

import (
	"context"
	"testing"

	"github.com/minasenanami/wonderful-editor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestArticleService_ListClampsPagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		in         ListArticlesInput
		wantLimit  int
		wantOffset int
	}{
		{"Defaults", ListArticlesInput{}, DefaultArticleLimit, 0},
		{"Over max", ListArticlesInput{Limit: 1000, Offset: 10}, MaxArticleLimit, 10},
		{"Negative offset", ListArticlesInput{Limit: 5, Offset: -3}, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := noopArticleRepo()
			var gotLimit, gotOffset int
			repo.listFn = func(_ context.Context, limit, offset int) ([]*models.Article, error) {
				gotLimit, gotOffset = limit, offset
				return []*models.Article{}, nil
			}

			_, err := NewArticleService(repo).List(context.Background(), tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, gotLimit)
			assert.Equal(t, tt.wantOffset, gotOffset)
		})
	}
}

func TestArticleService_Create(t *testing.T) {
	t.Parallel()

	t.Run("Anonymous is unauthorized", func(t *testing.T) {
		repo := noopArticleRepo()
		repo.createFn = func(_ context.Context, _ *models.Article) error {
			t.Fatal("create must not be called")
			return nil
		}
		_, err := NewArticleService(repo).Create(context.Background(), Anonymous, CreateArticleInput{Title: "t", Body: "b"})
		assertAppErrorCode(t, err, models.CodeUnauthorized)
	})

	t.Run("Blank title", func(t *testing.T) {
		_, err := NewArticleService(noopArticleRepo()).Create(context.Background(), Identity{UserID: 1}, CreateArticleInput{Body: "b"})
		appErr := assertAppErrorCode(t, err, models.CodeValidation)
		assert.Equal(t, "title", appErr.Field)
	})

	t.Run("Owner is the caller", func(t *testing.T) {
		repo := noopArticleRepo()
		var stored *models.Article
		repo.createFn = func(_ context.Context, a *models.Article) error {
			a.ID = 10
			stored = a
			return nil
		}
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Article, error) {
			return stored, nil
		}

		got, err := NewArticleService(repo).Create(context.Background(), Identity{UserID: 7}, CreateArticleInput{Title: "T1", Body: "B1"})
		require.NoError(t, err)
		assert.Equal(t, uint(7), got.UserID)
		assert.Equal(t, "T1", got.Title)
	})
}

func TestArticleService_UpdateOwnership(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		identity   Identity
		getErr     error
		wantCode   string
		wantUpdate bool
	}{
		{"Owner updates", Identity{UserID: 1}, nil, "", true},
		{"Non-owner gets not found", Identity{UserID: 2}, nil, models.CodeNotFound, false},
		{"Missing article gets not found", Identity{UserID: 1}, models.NewNotFoundError("Article", 3), models.CodeNotFound, false},
		{"Anonymous is unauthorized", Anonymous, nil, models.CodeUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := noopArticleRepo()
			article := &models.Article{ID: 3, UserID: 1, Title: "T1", Body: "B1"}
			repo.getByIDFn = func(_ context.Context, _ uint) (*models.Article, error) {
				if tt.getErr != nil {
					return nil, tt.getErr
				}
				cp := *article
				return &cp, nil
			}
			updated := false
			repo.updateFn = func(_ context.Context, a *models.Article) error {
				updated = true
				*article = *a
				return nil
			}

			got, err := NewArticleService(repo).Update(context.Background(), tt.identity, 3, UpdateArticleInput{Title: strPtr("T2")})
			assert.Equal(t, tt.wantUpdate, updated)
			if tt.wantCode != "" {
				assertAppErrorCode(t, err, tt.wantCode)
				assert.Equal(t, "T1", article.Title)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "T2", got.Title)
			assert.Equal(t, "B1", got.Body)
		})
	}
}

func TestArticleService_DeniedAndMissingLookAlike(t *testing.T) {
	t.Parallel()

	repo := noopArticleRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Article, error) {
		if id == 1 {
			return &models.Article{ID: 1, UserID: 99}, nil
		}
		return nil, models.NewNotFoundError("Article", id)
	}
	repo.deleteFn = func(_ context.Context, _ uint) error {
		t.Fatal("delete must not be called")
		return nil
	}
	svc := NewArticleService(repo)

	denied := svc.Delete(context.Background(), Identity{UserID: 2}, 1)
	missing := svc.Delete(context.Background(), Identity{UserID: 2}, 2)

	deniedErr := assertAppErrorCode(t, denied, models.CodeNotFound)
	missingErr := assertAppErrorCode(t, missing, models.CodeNotFound)
	assert.Equal(t, models.HTTPStatus(denied), models.HTTPStatus(missing))
	assert.Equal(t, "Article with ID 1 not found", deniedErr.Message)
	assert.Equal(t, "Article with ID 2 not found", missingErr.Message)
}

func TestArticleService_UpdateValidation(t *testing.T) {
	t.Parallel()

	repo := noopArticleRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Article, error) {
		return &models.Article{ID: id, UserID: 1, Title: "T", Body: "B"}, nil
	}
	_, err := NewArticleService(repo).Update(context.Background(), Identity{UserID: 1}, 1, UpdateArticleInput{Body: strPtr("  ")})
	appErr := assertAppErrorCode(t, err, models.CodeValidation)
	assert.Equal(t, "body", appErr.Field)
}
