package service

import (
	"context"
	"errors"
	"testing"

	"github.com/minasenanami/wonderful-editor/internal/models"

	"github.com/stretchr/testify/require"
)

// articleRepoStub is a stub for repository.ArticleRepository.
type articleRepoStub struct {
	listFn    func(context.Context, int, int) ([]*models.Article, error)
	getByIDFn func(context.Context, uint) (*models.Article, error)
	createFn  func(context.Context, *models.Article) error
	updateFn  func(context.Context, *models.Article) error
	deleteFn  func(context.Context, uint) error
}

func (s *articleRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *articleRepoStub) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	return s.getByIDFn(ctx, id)
}
func (s *articleRepoStub) Create(ctx context.Context, a *models.Article) error {
	return s.createFn(ctx, a)
}
func (s *articleRepoStub) Update(ctx context.Context, a *models.Article) error {
	return s.updateFn(ctx, a)
}
func (s *articleRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopArticleRepo() *articleRepoStub {
	return &articleRepoStub{
		listFn:    func(_ context.Context, _, _ int) ([]*models.Article, error) { return nil, nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Article, error) { return &models.Article{ID: id}, nil },
		createFn:  func(_ context.Context, _ *models.Article) error { return nil },
		updateFn:  func(_ context.Context, _ *models.Article) error { return nil },
		deleteFn:  func(_ context.Context, _ uint) error { return nil },
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	createFn func(context.Context, *models.ArticleLike) error
	deleteFn func(context.Context, uint, uint) (bool, error)
	existsFn func(context.Context, uint, uint) (bool, error)
	countFn  func(context.Context, uint) (int64, error)
}

func (s *likeRepoStub) Create(ctx context.Context, l *models.ArticleLike) error {
	return s.createFn(ctx, l)
}
func (s *likeRepoStub) Delete(ctx context.Context, userID, articleID uint) (bool, error) {
	return s.deleteFn(ctx, userID, articleID)
}
func (s *likeRepoStub) Exists(ctx context.Context, userID, articleID uint) (bool, error) {
	return s.existsFn(ctx, userID, articleID)
}
func (s *likeRepoStub) CountByArticle(ctx context.Context, articleID uint) (int64, error) {
	return s.countFn(ctx, articleID)
}

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		createFn: func(_ context.Context, _ *models.ArticleLike) error { return nil },
		deleteFn: func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		existsFn: func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		countFn:  func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn    func(context.Context, uint) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
	createFn     func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, u *models.User) error {
	return s.createFn(ctx, u)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:    func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:     func(_ context.Context, _ *models.User) error { return nil },
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code)
	return appErr
}
