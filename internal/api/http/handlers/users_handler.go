package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/debtor-registry/internal/api/dto"
	"github.com/spec-kit/debtor-registry/internal/auth"
	"github.com/spec-kit/debtor-registry/internal/service"
	apperrors "github.com/spec-kit/debtor-registry/pkg/util"
)

// UsersHandler exposes registration, login and profile endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register handles POST /auth/register. A successful registration logs the
// account in immediately.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, token, exp, err := h.auth.Register(c.Context(), service.RegisterInput{
		Username:        req.Username,
		Name:            req.Name,
		Surname:         req.Surname,
		Age:             req.Age,
		Email:           req.Email,
		Password:        req.Password,
		TelegramAccount: req.TelegramAccount,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": dto.AuthResponse{Token: token, ExpiresAt: exp, User: dto.FromUser(user)},
	})
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, token, exp, err := h.auth.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": dto.AuthResponse{Token: token, ExpiresAt: exp, User: dto.FromUser(user)},
	})
}

// Logout handles POST /auth/logout. Tokens are stateless, the endpoint exists
// so clients have an explicit end-of-session call.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.auth.Logout(c.Context(), principal.User.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"logged_out": true}})
}

// Me handles GET /auth/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(principal.User)})
}

// ChangePassword handles POST /auth/password/change.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangePassword(c.Context(), principal.User.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"changed": true}})
}

// UpdateTelegram handles PUT /profile/telegram.
func (h *UsersHandler) UpdateTelegram(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateTelegramRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.auth.UpdateTelegram(c.Context(), principal.User.ID, req.Telegram)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}

// UpdateEmail handles PUT /profile/email.
func (h *UsersHandler) UpdateEmail(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateEmailRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.auth.UpdateEmail(c.Context(), principal.User.ID, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}

// UpdateFullName handles PUT /profile/name.
func (h *UsersHandler) UpdateFullName(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateFullNameRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.auth.UpdateFullName(c.Context(), principal.User.ID, req.Name, req.Surname)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}
