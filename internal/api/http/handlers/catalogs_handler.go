package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// CatalogsHandler serves the read-only lookup tables.
type CatalogsHandler struct {
	service *service.CatalogService
}

// NewCatalogsHandler constructs handler.
func NewCatalogsHandler(catalogService *service.CatalogService) *CatalogsHandler {
	return &CatalogsHandler{service: catalogService}
}

// List returns a handler listing every row of kind.
func (h *CatalogsHandler) List(kind domain.CatalogKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := currentIdentity(c)
		if err != nil {
			return err
		}
		entries, err := h.service.List(c.UserContext(), identity, kind)
		if err != nil {
			return err
		}
		items := make([]dto.CatalogResponse, 0, len(entries))
		for _, entry := range entries {
			items = append(items, catalogResponse(entry))
		}
		return c.JSON(dto.Success(items, ""))
	}
}

// Roles GET /api/roles.
func (h *CatalogsHandler) Roles(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	roles, err := h.service.Roles(c.UserContext(), identity)
	if err != nil {
		return err
	}
	items := make([]dto.RoleResponse, 0, len(roles))
	for _, role := range roles {
		items = append(items, dto.RoleResponse{ID: role.ID, Name: role.Name})
	}
	return c.JSON(dto.Success(items, ""))
}
