package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/worklog-dictionaries/internal/apiserver/auth"
	"github.com/spec-kit/worklog-dictionaries/internal/apiserver/dto"
	"github.com/spec-kit/worklog-dictionaries/internal/apiserver/repository"
	"github.com/spec-kit/worklog-dictionaries/internal/domain"
)

// AuthHandler exposes the token and profile endpoints the client logs in
// through.
type AuthHandler struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
}

// NewAuthHandler constructs handler.
func NewAuthHandler(users repository.UserRepository, tokens *auth.TokenManager, bcryptCost int) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

// Token handles POST /auth/token with form-encoded credentials.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	email := c.FormValue("username")
	password := c.FormValue("password")
	if email == "" || password == "" {
		return fiber.NewError(http.StatusBadRequest, "username and password required")
	}

	user, err := h.users.GetByEmail(c.Context(), email)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
	}

	token, _, err := h.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return err
	}
	return c.JSON(domain.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(user.Profile())
}

// Register handles POST /auth/register. New accounts get the USER role.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	hash, err := auth.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		return err
	}
	user := &repository.User{
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         domain.UserRoleUser,
		PasswordHash: hash,
	}
	if err := h.users.Create(c.Context(), user); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(user.Profile())
}
