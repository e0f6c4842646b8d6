package server

import (
	"log/slog"

	"github.com/minasenanami/wonderful-editor/internal/middleware"
	"github.com/minasenanami/wonderful-editor/internal/models"
	"github.com/minasenanami/wonderful-editor/internal/service"

	"github.com/gofiber/fiber/v2"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/v1/auth
// @Summary Register
// @Description Create an account and sign it in on a new client
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{name=string,email=string,password=string} true "Registration"
// @Success 200 {object} object{status=string,data=object{id=int,name=string,email=string}}
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /auth [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	ctx := c.UserContext()
	user, err := s.userService.Register(ctx, service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	cred, err := s.auth.SignIn(ctx, user)
	if err != nil {
		return s.respondError(c, err)
	}
	middleware.Logger.InfoContext(ctx, "user registered", slog.Uint64("user_id", uint64(user.ID)))

	setTokenHeaders(c, cred.Headers())
	return c.JSON(fiber.Map{
		"status": "success",
		"data":   userView(*user),
	})
}

// SignIn handles POST /api/v1/auth/sign_in
// @Summary Sign in
// @Description Verify email and password and issue credential headers
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Credentials"
// @Success 200 {object} object{data=object{id=int,name=string,email=string}}
// @Failure 401 {object} object{errors=[]string}
// @Router /auth/sign_in [post]
func (s *Server) SignIn(c *fiber.Ctx) error {
	var req signInRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondAuthError(c, models.NewUnauthorizedError(service.LoginFailureMessage))
	}

	cred, err := s.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return s.respondAuthError(c, err)
	}

	setTokenHeaders(c, cred.Headers())
	return c.JSON(fiber.Map{"data": userView(*cred.User)})
}

// SignOut handles DELETE /api/v1/auth/sign_out
// @Summary Sign out
// @Description Revoke the session named by the credential headers
// @Tags auth
// @Produce json
// @Success 200 {object} object{success=bool}
// @Failure 401 {object} object{errors=[]string}
// @Router /auth/sign_out [delete]
func (s *Server) SignOut(c *fiber.Ctx) error {
	if err := s.auth.Logout(c.UserContext(), tokenHeadersFrom(c)); err != nil {
		if models.HTTPStatus(err) == fiber.StatusUnauthorized {
			return s.respondAuthError(c, models.NewUnauthorizedError("User was not found or was not logged in."))
		}
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// ValidateToken handles GET /api/v1/auth/validate_token
// @Summary Validate token
// @Description Return the signed-in user; the session is rotated like any authenticated request
// @Tags auth
// @Produce json
// @Success 200 {object} object{success=bool,data=object{id=int,name=string,email=string}}
// @Failure 401 {object} object{errors=[]string}
// @Router /auth/validate_token [get]
func (s *Server) ValidateToken(c *fiber.Ctx) error {
	id := identityFrom(c)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    userJSON{ID: id.UserID, Name: id.Name, Email: id.Email},
	})
}
