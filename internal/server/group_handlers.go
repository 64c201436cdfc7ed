package server

import (
	"capstonehub/internal/models"
	"capstonehub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateGroup handles POST /api/groups. The caller becomes the leader.
func (s *Server) CreateGroup(c *fiber.Ctx) error {
	var req service.CreateGroupInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	group, err := s.groupService.Create(c.Context(), currentUserID(c), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

// GetGroups handles GET /api/groups.
func (s *Server) GetGroups(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	groups, err := s.groupService.List(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"groups": groups})
}

// GetMyGroup handles GET /api/groups/me. Returns 404 when the caller has no group.
func (s *Server) GetMyGroup(c *fiber.Ctx) error {
	group, err := s.groupService.GetMine(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	if group == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Group for user", currentUserID(c)))
	}
	return c.JSON(group)
}

// GetGroup handles GET /api/groups/:id.
func (s *Server) GetGroup(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	group, err := s.groupService.Get(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(group)
}

// UpdateGroup handles PUT /api/groups/:id. Leader or admin only.
func (s *Server) UpdateGroup(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.UpdateGroupInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	group, err := s.groupService.Update(c.Context(), currentUserID(c), currentRole(c), id, req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(group)
}

// DeleteGroup handles DELETE /api/groups/:id. Leader or admin only; refused
// while the group has active requests.
func (s *Server) DeleteGroup(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.groupService.Delete(c.Context(), currentUserID(c), currentRole(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Group disbanded"})
}
