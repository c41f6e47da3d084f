package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/admin-service/internal/api/dto"
	"github.com/spec-kit/admin-service/internal/auth"
	"github.com/spec-kit/admin-service/internal/service"
	apperrors "github.com/spec-kit/admin-service/pkg/util"
)

// UsersHandler exposes the admin account-management endpoints. All routes
// sit behind the auth middleware plus RequireAdmin.
type UsersHandler struct {
	users *service.UserService
	auth  *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService, authService *service.AuthService) *UsersHandler {
	return &UsersHandler{users: userService, auth: authService}
}

// List handles GET /admin/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "25"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	users, total, err := h.users.List(c.Context(), limit, offset)
	if err != nil {
		return apperrors.MapError(err)
	}

	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.NewUserResponse(user))
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"users": items,
			"total": total,
		},
	})
}

// Get handles GET /admin/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.Get(c.Context(), c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": dto.NewUserResponse(user)}})
}

// Create handles POST /admin/users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	session, _ := auth.SessionFromContext(c)

	var req dto.AdminCreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}
	if req.Role == "" {
		req.Role = "user"
	}

	user, err := h.users.Create(c.Context(), session.UserID, req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"user": dto.NewUserResponse(user)}})
}

// Update handles PATCH /admin/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	session, _ := auth.SessionFromContext(c)

	var req dto.AdminUpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == nil && req.Email == nil {
		return apperrors.NewValidationError("nothing to update", nil)
	}

	user, err := h.users.UpdateProfile(c.Context(), session.UserID, c.Params("id"), req.Name, req.Email)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": dto.NewUserResponse(user)}})
}

// Delete handles DELETE /admin/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	session, _ := auth.SessionFromContext(c)

	if err := h.users.Delete(c.Context(), session.UserID, c.Params("id")); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "deleted"}})
}

// ChangeRole handles POST /admin/users/:id/role.
func (h *UsersHandler) ChangeRole(c *fiber.Ctx) error {
	session, _ := auth.SessionFromContext(c)

	var req dto.RoleChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.users.ChangeRole(c.Context(), session.UserID, c.Params("id"), req.Role); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "role_changed"}})
}

// Activate handles POST /admin/users/:id/activate.
func (h *UsersHandler) Activate(c *fiber.Ctx) error {
	return h.setActive(c, true)
}

// Deactivate handles POST /admin/users/:id/deactivate.
func (h *UsersHandler) Deactivate(c *fiber.Ctx) error {
	return h.setActive(c, false)
}

func (h *UsersHandler) setActive(c *fiber.Ctx, active bool) error {
	session, _ := auth.SessionFromContext(c)

	if err := h.users.SetActive(c.Context(), session.UserID, c.Params("id"), active); err != nil {
		return err
	}
	status := "deactivated"
	if active {
		status = "activated"
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": status}})
}

// ResendVerification handles POST /admin/users/:id/resend-verification.
func (h *UsersHandler) ResendVerification(c *fiber.Ctx) error {
	token, err := h.auth.RequestEmailVerification(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{
			"verification_token": token.Token,
			"expires_at":         token.ExpiresAt,
		},
	})
}
