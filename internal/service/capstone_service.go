package service

import (
	"context"
	"log/slog"

	"capstonehub/internal/middleware"
	"capstonehub/internal/models"
	"capstonehub/internal/repository"
)

// Viewer identifies who is looking at a capstone. The zero value is an
// anonymous visitor.
type Viewer struct {
	ID   uint
	Role models.Role
}

// CreateCapstoneInput carries a new capstone proposal.
type CreateCapstoneInput struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Abstract    string `json:"abstract"`
	ProposalURL string `json:"proposal_url"`
	DosenID     *uint  `json:"dosen_id"`
	CoAuthorIDs []uint `json:"co_author_ids"`
}

// UpdateCapstoneInput carries edits to an existing proposal. Status is
// deliberately absent: availability is derived, never set by clients.
type UpdateCapstoneInput struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Abstract    string `json:"abstract"`
	ProposalURL string `json:"proposal_url"`
	DosenID     *uint  `json:"dosen_id"`
}

// CapstoneService manages the proposal catalog and its decorated views.
type CapstoneService struct {
	capstones repository.CapstoneRepository
	requests  repository.RequestRepository
	groups    repository.GroupRepository
	users     repository.UserRepository
	storage   FileStorage
}

// NewCapstoneService creates a CapstoneService.
func NewCapstoneService(
	capstones repository.CapstoneRepository,
	requests repository.RequestRepository,
	groups repository.GroupRepository,
	users repository.UserRepository,
	storage FileStorage,
) *CapstoneService {
	return &CapstoneService{
		capstones: capstones,
		requests:  requests,
		groups:    groups,
		users:     users,
		storage:   storage,
	}
}

// Create publishes a proposal. Alumni publish their own finished work; admins
// can publish on anyone's behalf.
func (s *CapstoneService) Create(ctx context.Context, ownerID uint, ownerRole models.Role, input CreateCapstoneInput) (*models.Capstone, error) {
	if ownerRole != models.RoleAlumni && ownerRole != models.RoleAdmin {
		return nil, models.NewForbiddenError("Only alumni can publish capstone proposals")
	}
	if input.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}

	if input.DosenID != nil {
		dosen, err := s.users.GetByID(ctx, *input.DosenID)
		if err != nil {
			return nil, err
		}
		if dosen.Role != models.RoleDosen {
			return nil, models.NewValidationError("Supervising dosen must have the dosen role")
		}
	}

	var coAuthors []models.User
	for _, id := range input.CoAuthorIDs {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		coAuthors = append(coAuthors, *user)
	}

	capstone := &models.Capstone{
		Title:       input.Title,
		Category:    input.Category,
		Abstract:    input.Abstract,
		ProposalURL: input.ProposalURL,
		OwnerID:     ownerID,
		DosenID:     input.DosenID,
		Status:      models.CapstoneStatusAvailable,
		CoAuthors:   coAuthors,
	}
	if err := s.capstones.Create(ctx, capstone); err != nil {
		return nil, err
	}
	return capstone, nil
}

// Get returns one capstone decorated for the viewer.
func (s *CapstoneService) Get(ctx context.Context, id uint, viewer Viewer) (*models.CapstoneView, error) {
	capstone, err := s.capstones.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, capstone, viewer)
}

// List returns the catalog page decorated for the viewer, plus the unfiltered
// total for pagination.
func (s *CapstoneService) List(ctx context.Context, filter repository.CapstoneFilter, viewer Viewer) ([]models.CapstoneView, int64, error) {
	capstones, total, err := s.capstones.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	views := make([]models.CapstoneView, 0, len(capstones))
	for i := range capstones {
		view, err := s.decorate(ctx, &capstones[i], viewer)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, *view)
	}
	return views, total, nil
}

// decorate attaches the winning group, the pending queue depth, and the
// proposal link when the viewer is entitled to it.
func (s *CapstoneService) decorate(ctx context.Context, capstone *models.Capstone, viewer Viewer) (*models.CapstoneView, error) {
	view := &models.CapstoneView{Capstone: *capstone}

	winner, err := s.requests.GetAcceptedByCapstone(ctx, capstone.ID)
	if err != nil {
		return nil, err
	}
	if winner != nil {
		view.TakenBy = &models.GroupSummary{ID: winner.Group.ID, Name: winner.Group.Name}
	}

	pending, err := s.requests.CountPendingByCapstone(ctx, capstone.ID)
	if err != nil {
		return nil, err
	}
	view.PendingGroupsCount = pending

	visible, err := s.proposalVisible(ctx, capstone, winner, viewer)
	if err != nil {
		return nil, err
	}
	if visible {
		view.ProposalURL = capstone.ProposalURL
	}
	return view, nil
}

// proposalVisible decides whether the viewer may see the proposal document:
// admins and the authors always, and the group whose request was accepted.
func (s *CapstoneService) proposalVisible(ctx context.Context, capstone *models.Capstone, winner *models.Request, viewer Viewer) (bool, error) {
	if viewer.ID == 0 {
		return false, nil
	}
	if viewer.Role == models.RoleAdmin || capstone.OwnerID == viewer.ID {
		return true, nil
	}
	for _, coAuthor := range capstone.CoAuthors {
		if coAuthor.ID == viewer.ID {
			return true, nil
		}
	}
	if winner == nil {
		return false, nil
	}

	group, err := s.groups.GetByMember(ctx, viewer.ID)
	if err != nil {
		return false, err
	}
	return group != nil && group.ID == winner.GroupID, nil
}

// Update edits a proposal's descriptive fields. Owner or admin only.
func (s *CapstoneService) Update(ctx context.Context, callerID uint, callerRole models.Role, id uint, input UpdateCapstoneInput) (*models.Capstone, error) {
	capstone, err := s.capstones.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if capstone.OwnerID != callerID && callerRole != models.RoleAdmin {
		return nil, models.NewForbiddenError("Only the owner can edit this capstone")
	}

	if input.Title != "" {
		capstone.Title = input.Title
	}
	if input.Category != "" {
		capstone.Category = input.Category
	}
	if input.Abstract != "" {
		capstone.Abstract = input.Abstract
	}
	if input.ProposalURL != "" {
		capstone.ProposalURL = input.ProposalURL
	}
	if input.DosenID != nil {
		dosen, err := s.users.GetByID(ctx, *input.DosenID)
		if err != nil {
			return nil, err
		}
		if dosen.Role != models.RoleDosen {
			return nil, models.NewValidationError("Supervising dosen must have the dosen role")
		}
		capstone.DosenID = input.DosenID
	}

	if err := s.capstones.Update(ctx, capstone); err != nil {
		return nil, err
	}
	return capstone, nil
}

// Delete removes a proposal that was never taken. The stored proposal file is
// cleaned up best-effort.
func (s *CapstoneService) Delete(ctx context.Context, callerID uint, callerRole models.Role, id uint) error {
	capstone, err := s.capstones.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if capstone.OwnerID != callerID && callerRole != models.RoleAdmin {
		return models.NewForbiddenError("Only the owner can delete this capstone")
	}

	taken, err := s.requests.HasAccepted(ctx, id)
	if err != nil {
		return err
	}
	if taken {
		return models.NewConflictError("Capstone has an accepted request and cannot be deleted")
	}

	if err := s.capstones.Delete(ctx, id); err != nil {
		return err
	}

	if capstone.ProposalFileID != "" {
		if err := s.storage.Delete(ctx, capstone.ProposalFileID); err != nil {
			middleware.Logger.ErrorContext(ctx, "Proposal file cleanup failed",
				slog.String("file_id", capstone.ProposalFileID),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// Stats returns catalog aggregates.
func (s *CapstoneService) Stats(ctx context.Context) (*repository.CapstoneStats, error) {
	return s.capstones.Stats(ctx)
}
