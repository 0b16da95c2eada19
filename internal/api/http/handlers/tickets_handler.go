package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/voice-support-agent/internal/domain"
	"github.com/spec-kit/voice-support-agent/internal/service"
	"github.com/spec-kit/voice-support-agent/pkg/util"
)

// TicketsHandler manages operator-facing ticket endpoints.
type TicketsHandler struct {
	service *service.SupportService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(supportService *service.SupportService) *TicketsHandler {
	return &TicketsHandler{service: supportService}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// Comments GET /tickets/:id/comments.
func (h *TicketsHandler) Comments(c *fiber.Ctx) error {
	ticketID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || ticketID <= 0 {
		return util.NewValidationError("ticket id must be a positive integer", nil)
	}

	comments, err := h.service.ListTicketComments(c.UserContext(), ticketID)
	if err != nil {
		return err
	}

	out := make([]fiber.Map, 0, len(comments))
	for _, comment := range comments {
		out = append(out, fiber.Map{
			"id":          comment.ID,
			"comment":     comment.Comment,
			"author_type": comment.AuthorType,
			"created_at":  comment.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": out})
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	ticketID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || ticketID <= 0 {
		return util.NewValidationError("ticket id must be a positive integer", nil)
	}
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return util.NewValidationError("status required", nil)
	}

	if err := h.service.UpdateTicketStatus(c.UserContext(), ticketID, domain.TicketStatus(req.Status)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"ticket_id": ticketID,
		"status":    req.Status,
	}})
}
