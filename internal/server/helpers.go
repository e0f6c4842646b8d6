package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/minasenanami/wonderful-editor/internal/middleware"
	"github.com/minasenanami/wonderful-editor/internal/models"
	"github.com/minasenanami/wonderful-editor/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten signals that a helper already wrote the response.
// Handlers return nil on seeing it so the ErrorHandler does not overwrite it.
var errResponseWritten = errors.New("response already written")

const (
	identityLocal = "identity"
	retryAfter    = "1"
)

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

// parsePagination reads limit and offset. Clamping happens in the service.
func parsePagination(c *fiber.Ctx) Pagination {
	return Pagination{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
}

// parseID extracts a route parameter as a positive uint. A malformed id is
// reported as not found, the same as an id that does not exist.
func (s *Server) parseID(c *fiber.Ctx, param, resource string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = s.respondError(c, models.NewNotFoundError(resource, c.Params(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// respondError writes err with the status its category maps to.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := models.HTTPStatus(err)
	switch {
	case status == http.StatusServiceUnavailable:
		c.Set(fiber.HeaderRetryAfter, retryAfter)
		middleware.Logger.WarnContext(c.UserContext(), "store unavailable", slog.String("error", err.Error()))
	case status >= http.StatusInternalServerError:
		middleware.Logger.ErrorContext(c.UserContext(), "request failed", slog.String("error", err.Error()))
	}
	return models.RespondWithError(c, status, err)
}

// respondAuthError renders authentication failures in the token-auth error
// shape: {"errors":[message]}. Other errors go through respondError.
func (s *Server) respondAuthError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code == models.CodeUnauthorized {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"errors": []string{appErr.Message},
		})
	}
	return s.respondError(c, err)
}

// identityFrom returns the caller bound by the auth middleware, or Anonymous.
func identityFrom(c *fiber.Ctx) service.Identity {
	if id, ok := c.Locals(identityLocal).(service.Identity); ok {
		return id
	}
	return service.Anonymous
}

func tokenHeadersFrom(c *fiber.Ctx) service.TokenHeaders {
	return service.TokenHeaders{
		AccessToken: c.Get(service.HeaderAccessToken),
		Client:      c.Get(service.HeaderClient),
		UID:         c.Get(service.HeaderUID),
	}
}

func setTokenHeaders(c *fiber.Ctx, h service.TokenHeaders) {
	c.Set(service.HeaderAccessToken, h.AccessToken)
	c.Set(service.HeaderClient, h.Client)
	c.Set(service.HeaderUID, h.UID)
	c.Set(service.HeaderExpiry, h.Expiry)
}

type userJSON struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func userView(u models.User) userJSON {
	return userJSON{ID: u.ID, Name: u.Name, Email: u.Email}
}

type articleListItem struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
	User      userJSON  `json:"user"`
}

type articleDetail struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updated_at"`
	User      userJSON  `json:"user"`
}

func articleListView(articles []*models.Article) []articleListItem {
	out := make([]articleListItem, 0, len(articles))
	for _, a := range articles {
		out = append(out, articleListItem{
			ID:        a.ID,
			Title:     a.Title,
			UpdatedAt: a.UpdatedAt,
			User:      userView(a.User),
		})
	}
	return out
}

func articleDetailView(a *models.Article) articleDetail {
	return articleDetail{
		ID:        a.ID,
		Title:     a.Title,
		Body:      a.Body,
		UpdatedAt: a.UpdatedAt,
		User:      userView(a.User),
	}
}
