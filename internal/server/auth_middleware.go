package server

import (
	"github.com/minasenanami/wonderful-editor/internal/middleware"
	"github.com/minasenanami/wonderful-editor/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired resolves the credential headers and rejects anonymous callers.
func (s *Server) AuthRequired() fiber.Handler {
	return s.authenticate(true)
}

// OptionalAuth resolves the credential headers when present. A request with
// no headers proceeds anonymously; a broken or stale set is still rejected.
func (s *Server) OptionalAuth() fiber.Handler {
	return s.authenticate(false)
}

// authenticate rotates the session on every authenticated request and sends
// the new token back, whatever the handler's outcome.
func (s *Server) authenticate(required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := s.auth.Authenticate(c.UserContext(), tokenHeadersFrom(c))
		if err != nil {
			return s.respondAuthError(c, err)
		}

		if res.Anonymous() {
			if required {
				return s.respondAuthError(c, service.Unauthenticated())
			}
			c.Locals(identityLocal, service.Anonymous)
			return c.Next()
		}

		setTokenHeaders(c, res.Headers)
		c.Locals(identityLocal, res.Identity)
		c.SetUserContext(middleware.WithUserID(c.UserContext(), res.Identity.UserID))
		return c.Next()
	}
}
