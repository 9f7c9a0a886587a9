package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// CommentsHandler serves ticket threads and audit history.
type CommentsHandler struct {
	service *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(commentService *service.CommentService) *CommentsHandler {
	return &CommentsHandler{service: commentService}
}

// ListComments GET /api/tickets/:id/comments.
func (h *CommentsHandler) ListComments(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	ticketID, err := pathID(c, "id", "ticket")
	if err != nil {
		return err
	}
	comments, err := h.service.List(c.UserContext(), identity, ticketID)
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return c.JSON(dto.Success(items, ""))
}

// AddComment POST /api/tickets/:id/comments.
func (h *CommentsHandler) AddComment(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	ticketID, err := pathID(c, "id", "ticket")
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := bindJSON(c, &req, false); err != nil {
		return err
	}
	comment, err := h.service.Add(c.UserContext(), identity, ticketID, service.CommentInput{
		Message:      req.Message,
		Satisfaction: req.Satisfaction,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.Success(commentResponse(comment), "comment added"))
}

// History GET /api/tickets/:id/history. Entries outlive the ticket.
func (h *CommentsHandler) History(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	ticketID, err := pathID(c, "id", "ticket")
	if err != nil {
		return err
	}
	entries, err := h.service.History(c.UserContext(), identity, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(dto.Success(historyResponses(entries), ""))
}
