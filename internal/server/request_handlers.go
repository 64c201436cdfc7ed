package server

import (
	"capstonehub/internal/models"
	"capstonehub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SubmitRequest handles POST /api/requests. The caller must be a group
// leader; the matching engine enforces all capacity caps.
func (s *Server) SubmitRequest(c *fiber.Ctx) error {
	var req struct {
		CapstoneID uint   `json:"capstone_id"`
		Reason     string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.CapstoneID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("capstone_id is required"))
	}

	request, err := s.matchingService.SubmitRequest(c.Context(), currentUserID(c), service.SubmitRequestInput{
		CapstoneID: req.CapstoneID,
		Reason:     req.Reason,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(request)
}

// GetMyRequests handles GET /api/requests/me, listing requests of the
// caller's group (leader or member).
func (s *Server) GetMyRequests(c *fiber.Ctx) error {
	views, err := s.matchingService.ListGroupRequests(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"requests": views})
}

// GetOwnerRequests handles GET /api/requests/owner, listing requests against
// the caller's capstone proposals.
func (s *Server) GetOwnerRequests(c *fiber.Ctx) error {
	requests, err := s.matchingService.ListOwnerRequests(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

// GetRequest handles GET /api/requests/:id. Visible to the requesting
// group's members, the capstone owner, and admins.
func (s *Server) GetRequest(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	request, err := s.matchingService.GetRequest(c.Context(), currentUserID(c), currentRole(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(request)
}

// ReviewRequest handles POST /api/requests/:id/review. Only the capstone
// owner may decide; the decision must be an accept or reject status.
func (s *Server) ReviewRequest(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Decision string `json:"decision"`
		Reason   string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	request, err := s.matchingService.ReviewRequest(c.Context(), currentUserID(c), id, service.ReviewInput{
		Decision: models.RequestStatus(req.Decision),
		Reason:   req.Reason,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(request)
}
