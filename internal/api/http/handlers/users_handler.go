package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/authz"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// UsersHandler exposes account administration.
type UsersHandler struct {
	users *service.UserService
	roles *authz.Roles
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService, roles *authz.Roles) *UsersHandler {
	return &UsersHandler{users: userService, roles: roles}
}

// ListUsers GET /api/users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	users, err := h.users.List(c.UserContext(), identity)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i], h.roles.IsAdmin(users[i].RoleID)))
	}
	return c.JSON(dto.Success(items, ""))
}

// GetUser GET /api/users/:id.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "user")
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.UserContext(), identity, id)
	if err != nil {
		return err
	}
	return c.JSON(dto.Success(userResponse(user, h.roles.IsAdmin(user.RoleID)), ""))
}

// UpdateUser PUT /api/users/:id. Only allow-listed keys are accepted.
func (h *UsersHandler) UpdateUser(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "user")
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := bindJSON(c, &req, true); err != nil {
		return err
	}
	user, err := h.users.Update(c.UserContext(), identity, id, service.UserUpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		RoleID:   req.RoleID,
		Active:   req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.Success(userResponse(user, h.roles.IsAdmin(user.RoleID)), "user updated"))
}

// DeleteUser DELETE /api/users/:id.
func (h *UsersHandler) DeleteUser(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "user")
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.UserContext(), identity, id); err != nil {
		return err
	}
	return c.JSON(dto.Success(nil, "user deleted"))
}
