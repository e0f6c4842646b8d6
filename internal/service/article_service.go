package service

import (
	"context"

	"github.com/minasenanami/wonderful-editor/internal/models"
	"github.com/minasenanami/wonderful-editor/internal/observability"
	"github.com/minasenanami/wonderful-editor/internal/repository"
	"github.com/minasenanami/wonderful-editor/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultArticleLimit = 50
	MaxArticleLimit     = 100
)

type ArticleService struct {
	articles repository.ArticleRepository
}

type ListArticlesInput struct {
	Limit  int
	Offset int
}

type CreateArticleInput struct {
	Title string
	Body  string
}

// UpdateArticleInput holds the fields to change; nil leaves a field as is.
type UpdateArticleInput struct {
	Title *string
	Body  *string
}

func NewArticleService(articles repository.ArticleRepository) *ArticleService {
	return &ArticleService{articles: articles}
}

// List returns articles most recently updated first. No identity is needed.
func (s *ArticleService) List(ctx context.Context, in ListArticlesInput) ([]*models.Article, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultArticleLimit
	}
	if limit > MaxArticleLimit {
		limit = MaxArticleLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}
	return s.articles.List(ctx, limit, offset)
}

func (s *ArticleService) Get(ctx context.Context, id uint) (*models.Article, error) {
	return s.articles.GetByID(ctx, id)
}

// Create stores a new article owned by identity.
func (s *ArticleService) Create(ctx context.Context, identity Identity, in CreateArticleInput) (article *models.Article, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ArticleService", "Create")
	defer func() { observability.EndSpan(span, err) }()

	if identity.IsAnonymous() {
		return nil, Unauthenticated()
	}
	if err := validation.ValidateArticleTitle(in.Title); err != nil {
		return nil, models.NewFieldError("title", err.Error())
	}
	if err := validation.ValidateArticleBody(in.Body); err != nil {
		return nil, models.NewFieldError("body", err.Error())
	}

	created := &models.Article{
		UserID: identity.UserID,
		Title:  in.Title,
		Body:   in.Body,
	}
	if err := s.articles.Create(ctx, created); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("article.id", int64(created.ID)))

	return s.articles.GetByID(ctx, created.ID)
}

// Update changes title and/or body of an article identity owns.
func (s *ArticleService) Update(ctx context.Context, identity Identity, id uint, in UpdateArticleInput) (article *models.Article, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ArticleService", "Update",
		attribute.Int64("article.id", int64(id)))
	defer func() { observability.EndSpan(span, err) }()

	if identity.IsAnonymous() {
		return nil, Unauthenticated()
	}

	current, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeMutation(identity, current, "Article", id); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if err := validation.ValidateArticleTitle(*in.Title); err != nil {
			return nil, models.NewFieldError("title", err.Error())
		}
		current.Title = *in.Title
	}
	if in.Body != nil {
		if err := validation.ValidateArticleBody(*in.Body); err != nil {
			return nil, models.NewFieldError("body", err.Error())
		}
		current.Body = *in.Body
	}

	if err := s.articles.Update(ctx, current); err != nil {
		return nil, err
	}
	return s.articles.GetByID(ctx, id)
}

// Delete removes an article identity owns.
func (s *ArticleService) Delete(ctx context.Context, identity Identity, id uint) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ArticleService", "Delete",
		attribute.Int64("article.id", int64(id)))
	defer func() { observability.EndSpan(span, err) }()

	if identity.IsAnonymous() {
		return Unauthenticated()
	}

	current, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := AuthorizeMutation(identity, current, "Article", id); err != nil {
		return err
	}
	return s.articles.Delete(ctx, id)
}
