package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// TicketsHandler exposes the ticket lifecycle endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	input, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	page, err := h.service.List(c.UserContext(), identity, input)
	if err != nil {
		return err
	}
	return c.JSON(dto.Success(dto.TicketListResponse{
		Items:    ticketResponses(page.Items),
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, ""))
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := bindJSON(c, &req, false); err != nil {
		return err
	}
	view, err := h.service.Create(c.UserContext(), identity, service.TicketCreateInput{
		CategoryID:    req.Category,
		PhoneExt:      req.PhoneExt,
		LocationID:    req.Location,
		CriticalityID: req.Criticality,
		Description:   req.Description,
		AssigneeID:    req.Assignee,
		StateID:       req.State,
		OpenDate:      req.OpenDate,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.Success(ticketResponse(view), "ticket created"))
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "ticket")
	if err != nil {
		return err
	}
	view, err := h.service.Get(c.UserContext(), identity, id)
	if err != nil {
		return err
	}
	return c.JSON(dto.Success(ticketResponse(view), ""))
}

// UpdateTicket PUT /api/tickets/:id. Only allow-listed keys are accepted.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "ticket")
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := bindJSON(c, &req, true); err != nil {
		return err
	}
	view, err := h.service.Update(c.UserContext(), identity, id, service.TicketUpdateInput{
		CategoryID:    req.Category,
		PhoneExt:      req.PhoneExt,
		LocationID:    req.Location,
		CriticalityID: req.Criticality,
		Description:   req.Description,
		AssigneeID:    req.Assignee,
		StateID:       req.State,
		OpenDate:      req.OpenDate,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.Success(ticketResponse(view), "ticket updated"))
}

// CloseTicket PUT /api/tickets/:id/close.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "ticket")
	if err != nil {
		return err
	}
	result, err := h.service.Close(c.UserContext(), identity, id)
	if err != nil {
		return err
	}
	message := "ticket closed"
	if result.AlreadyClosed {
		message = "ticket already closed"
	}
	return c.JSON(dto.Success(dto.CloseTicketResponse{
		Ticket:        ticketResponse(result.Ticket),
		AlreadyClosed: result.AlreadyClosed,
	}, message))
}

// DeleteTicket DELETE /api/tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "ticket")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), identity, id); err != nil {
		return err
	}
	return c.JSON(dto.Success(nil, "ticket deleted"))
}

func parseTicketQuery(c *fiber.Ctx) (service.TicketListInput, error) {
	input := service.TicketListInput{
		Page:     parseInt(c.Query("page"), 1),
		PageSize: parseInt(c.Query("page_size"), 0),
	}
	filters := []struct {
		key  string
		dest **int64
	}{
		{"state", &input.StateID},
		{"criticality", &input.CriticalityID},
		{"category", &input.CategoryID},
		{"location", &input.LocationID},
		{"assignee", &input.AssigneeID},
	}
	for _, f := range filters {
		id, err := queryID(c, f.key)
		if err != nil {
			return input, err
		}
		*f.dest = id
	}
	return input, nil
}
