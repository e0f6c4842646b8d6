package server

import (
	"time"

	"github.com/minasenanami/wonderful-editor/internal/notifications"

	"github.com/gofiber/fiber/v2"
)

type likeJSON struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	ArticleID uint      `json:"article_id"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeArticle handles POST /api/v1/articles/:id/like
// @Summary Like article
// @Tags likes
// @Produce json
// @Param id path int true "Article ID"
// @Success 201 {object} likeJSON
// @Failure 401 {object} object{errors=[]string}
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /articles/{id}/like [post]
func (s *Server) LikeArticle(c *fiber.Ctx) error {
	articleID, err := s.parseID(c, "id", "Article")
	if err != nil {
		return nil
	}

	identity := identityFrom(c)
	like, err := s.likeService.Like(c.UserContext(), identity, articleID)
	if err != nil {
		return s.respondError(c, err)
	}

	s.publishLikeEvent(c.UserContext(), notifications.ArticleLiked, articleID, identity.UserID)
	return c.Status(fiber.StatusCreated).JSON(likeJSON{
		ID:        like.ID,
		UserID:    like.UserID,
		ArticleID: like.ArticleID,
		CreatedAt: like.CreatedAt,
	})
}

// UnlikeArticle handles DELETE /api/v1/articles/:id/like
// @Summary Unlike article
// @Description Idempotent: removing a like that does not exist also returns 204
// @Tags likes
// @Param id path int true "Article ID"
// @Success 204
// @Failure 401 {object} object{errors=[]string}
// @Failure 404 {object} models.ErrorResponse
// @Router /articles/{id}/like [delete]
func (s *Server) UnlikeArticle(c *fiber.Ctx) error {
	articleID, err := s.parseID(c, "id", "Article")
	if err != nil {
		return nil
	}

	identity := identityFrom(c)
	removed, err := s.likeService.Unlike(c.UserContext(), identity, articleID)
	if err != nil {
		return s.respondError(c, err)
	}
	if removed {
		s.publishLikeEvent(c.UserContext(), notifications.ArticleUnliked, articleID, identity.UserID)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
