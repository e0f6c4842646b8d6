package server

import (
	"github.com/minasenanami/wonderful-editor/internal/models"
	"github.com/minasenanami/wonderful-editor/internal/notifications"
	"github.com/minasenanami/wonderful-editor/internal/service"

	"github.com/gofiber/fiber/v2"
)

type articleParams struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

// articleRequest accepts both {"article":{...}} and a flat {title, body}.
type articleRequest struct {
	Article *articleParams `json:"article"`
	articleParams
}

func (r articleRequest) params() articleParams {
	if r.Article != nil {
		return *r.Article
	}
	return r.articleParams
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ListArticles handles GET /api/v1/articles
// @Summary List articles
// @Description Newest first by last update
// @Tags articles
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} articleListItem
// @Failure 401 {object} object{errors=[]string}
// @Router /articles [get]
func (s *Server) ListArticles(c *fiber.Ctx) error {
	page := parsePagination(c)
	articles, err := s.articleService.List(c.UserContext(), service.ListArticlesInput{
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(articleListView(articles))
}

// GetArticle handles GET /api/v1/articles/:id
// @Summary Get article
// @Tags articles
// @Produce json
// @Param id path int true "Article ID"
// @Success 200 {object} articleDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /articles/{id} [get]
func (s *Server) GetArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id", "Article")
	if err != nil {
		return nil
	}
	article, err := s.articleService.Get(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(articleDetailView(article))
}

// CreateArticle handles POST /api/v1/articles
// @Summary Create article
// @Tags articles
// @Accept json
// @Produce json
// @Param request body object{article=object{title=string,body=string}} true "Article"
// @Success 200 {object} articleDetail
// @Failure 401 {object} object{errors=[]string}
// @Failure 422 {object} models.ErrorResponse
// @Router /articles [post]
func (s *Server) CreateArticle(c *fiber.Ctx) error {
	var req articleRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}
	p := req.params()

	identity := identityFrom(c)
	article, err := s.articleService.Create(c.UserContext(), identity, service.CreateArticleInput{
		Title: deref(p.Title),
		Body:  deref(p.Body),
	})
	if err != nil {
		return s.respondError(c, err)
	}

	s.publishArticleEvent(c.UserContext(), notifications.ArticleEvent{
		Type:      notifications.ArticleCreated,
		ArticleID: article.ID,
		ActorID:   identity.UserID,
		Title:     article.Title,
	})
	return c.JSON(articleDetailView(article))
}

// UpdateArticle handles PATCH and PUT /api/v1/articles/:id
// @Summary Update article
// @Description Only the owner may update; anyone else gets 404
// @Tags articles
// @Accept json
// @Produce json
// @Param id path int true "Article ID"
// @Param request body object{article=object{title=string,body=string}} true "Fields to change"
// @Success 200 {object} articleDetail
// @Failure 401 {object} object{errors=[]string}
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /articles/{id} [patch]
func (s *Server) UpdateArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id", "Article")
	if err != nil {
		return nil
	}
	var req articleRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}
	p := req.params()

	identity := identityFrom(c)
	article, err := s.articleService.Update(c.UserContext(), identity, id, service.UpdateArticleInput{
		Title: p.Title,
		Body:  p.Body,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	s.publishArticleEvent(c.UserContext(), notifications.ArticleEvent{
		Type:      notifications.ArticleUpdated,
		ArticleID: article.ID,
		ActorID:   identity.UserID,
		Title:     article.Title,
	})
	return c.JSON(articleDetailView(article))
}

// DeleteArticle handles DELETE /api/v1/articles/:id
// @Summary Delete article
// @Description Only the owner may delete; anyone else gets 404
// @Tags articles
// @Param id path int true "Article ID"
// @Success 204
// @Failure 401 {object} object{errors=[]string}
// @Failure 404 {object} models.ErrorResponse
// @Router /articles/{id} [delete]
func (s *Server) DeleteArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id", "Article")
	if err != nil {
		return nil
	}

	identity := identityFrom(c)
	if err := s.articleService.Delete(c.UserContext(), identity, id); err != nil {
		return s.respondError(c, err)
	}

	s.publishArticleEvent(c.UserContext(), notifications.ArticleEvent{
		Type:      notifications.ArticleDeleted,
		ArticleID: id,
		ActorID:   identity.UserID,
	})
	return c.SendStatus(fiber.StatusNoContent)
}
