package server

import (
	"capstonehub/internal/models"
	"capstonehub/internal/repository"
	"capstonehub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCapstones handles GET /api/capstones. Public; an optional bearer token
// upgrades the view so the caller's own proposal links become visible.
func (s *Server) GetCapstones(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	filter := repository.CapstoneFilter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Status:   models.CapstoneStatus(c.Query("status")),
		Sort:     c.Query("sort"),
		Limit:    p.Limit,
		Offset:   p.Offset,
	}

	views, total, err := s.capstoneService.List(c.Context(), filter, s.optionalViewer(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"capstones": views,
		"total":     total,
		"limit":     p.Limit,
		"offset":    p.Offset,
	})
}

// GetCapstone handles GET /api/capstones/:id.
func (s *Server) GetCapstone(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	view, err := s.capstoneService.Get(c.Context(), id, s.optionalViewer(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(view)
}

// GetCapstoneStats handles GET /api/capstones/stats.
func (s *Server) GetCapstoneStats(c *fiber.Ctx) error {
	stats, err := s.capstoneService.Stats(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(stats)
}

// CreateCapstone handles POST /api/capstones. Alumni and admins only.
func (s *Server) CreateCapstone(c *fiber.Ctx) error {
	var req service.CreateCapstoneInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	capstone, err := s.capstoneService.Create(c.Context(), currentUserID(c), currentRole(c), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(capstone)
}

// UpdateCapstone handles PUT /api/capstones/:id. Owner or admin only; the
// availability status is derived and cannot be set here.
func (s *Server) UpdateCapstone(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.UpdateCapstoneInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	capstone, err := s.capstoneService.Update(c.Context(), currentUserID(c), currentRole(c), id, req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(capstone)
}

// DeleteCapstone handles DELETE /api/capstones/:id. Owner or admin only;
// refused while the capstone has an accepted request.
func (s *Server) DeleteCapstone(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.capstoneService.Delete(c.Context(), currentUserID(c), currentRole(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Capstone deleted"})
}
