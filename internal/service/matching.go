// Package service contains the business logic layer.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"capstonehub/internal/middleware"
	"capstonehub/internal/models"
	"capstonehub/internal/observability"
	"capstonehub/internal/repository"
)

// Dispatcher delivers notifications triggered by matching decisions.
// Implementations are fire-and-forget: delivery failures must never reach
// the caller.
type Dispatcher interface {
	Dispatch(ctx context.Context, userID uint, event models.NotificationType, message string, requestID *uint)
}

// MatchingPolicy holds the capacity caps enforced on the request pipeline.
type MatchingPolicy struct {
	// MaxActivePerGroup caps how many non-rejected requests a group may hold
	// across all capstones.
	MaxActivePerGroup int64
	// MaxPendingPerCapstone caps how many pending requests a capstone may
	// accumulate before it stops accepting new ones.
	MaxPendingPerCapstone int64
}

// DefaultMatchingPolicy returns the standard caps.
func DefaultMatchingPolicy() MatchingPolicy {
	return MatchingPolicy{
		MaxActivePerGroup:     2,
		MaxPendingPerCapstone: 3,
	}
}

// SubmitRequestInput carries a new request submission.
type SubmitRequestInput struct {
	CapstoneID uint   `json:"capstone_id"`
	Reason     string `json:"reason"`
}

// ReviewInput carries an owner's decision on a pending request.
type ReviewInput struct {
	Decision models.RequestStatus `json:"decision"`
	Reason   string               `json:"reason"`
}

// MatchingService implements the request lifecycle: submission with capacity
// checks, owner review with a single-winner guarantee, and the availability
// recomputation both feed into.
type MatchingService struct {
	requests   repository.RequestRepository
	capstones  repository.CapstoneRepository
	groups     repository.GroupRepository
	dispatcher Dispatcher
	policy     MatchingPolicy
	locks      *keyedMutex
}

// NewMatchingService creates a MatchingService.
func NewMatchingService(
	requests repository.RequestRepository,
	capstones repository.CapstoneRepository,
	groups repository.GroupRepository,
	dispatcher Dispatcher,
	policy MatchingPolicy,
) *MatchingService {
	return &MatchingService{
		requests:   requests,
		capstones:  capstones,
		groups:     groups,
		dispatcher: dispatcher,
		policy:     policy,
		locks:      newKeyedMutex(),
	}
}

// SubmitRequest files a request from the leader's group against a capstone.
// The checks run in a fixed order so clients get stable error codes:
// existence, availability, duplicate pair, group cap, capstone cap.
func (s *MatchingService) SubmitRequest(ctx context.Context, leaderID uint, input SubmitRequestInput) (*models.Request, error) {
	group, err := s.groups.GetByLeader(ctx, leaderID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, models.NewForbiddenError("Only a group leader can submit capstone requests")
	}

	// The capstone row must be read under its lock: a review finishing between
	// the read and the availability check would leave a stale open status here
	// while the pending queue it collapsed no longer blocks the capacity checks.
	unlock := s.locks.Lock(input.CapstoneID)
	defer unlock()

	capstone, err := s.capstones.GetByID(ctx, input.CapstoneID)
	if err != nil {
		return nil, err
	}

	if capstone.Status != models.CapstoneStatusAvailable {
		return nil, models.NewConflictError("Capstone is not available for requests")
	}

	existing, err := s.requests.GetActivePair(ctx, group.ID, capstone.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Group already has an active request for this capstone")
	}

	activeCount, err := s.requests.CountActiveByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	if activeCount >= s.policy.MaxActivePerGroup {
		return nil, models.NewConflictError(
			fmt.Sprintf("Group already has %d active requests", s.policy.MaxActivePerGroup))
	}

	pendingCount, err := s.requests.CountPendingByCapstone(ctx, capstone.ID)
	if err != nil {
		return nil, err
	}
	if pendingCount >= s.policy.MaxPendingPerCapstone {
		return nil, models.NewConflictError("Capstone already has the maximum number of pending requests")
	}

	request := &models.Request{
		GroupID:    group.ID,
		CapstoneID: capstone.ID,
		Status:     models.RequestStatusPending,
		Reason:     input.Reason,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, err
	}

	// The new pending request may have consumed the last slot.
	if _, _, err := s.recomputeAvailabilityLocked(ctx, capstone.ID); err != nil {
		middleware.Logger.ErrorContext(ctx, "Availability recompute after submit failed",
			slog.Uint64("capstone_id", uint64(capstone.ID)),
			slog.String("error", err.Error()),
		)
	}

	observability.RequestsSubmitted.Inc()

	s.dispatcher.Dispatch(ctx, capstone.OwnerID, models.NotificationTypeRequest,
		fmt.Sprintf("Kelompok %s mengajukan permintaan untuk capstone \"%s\"", group.Name, capstone.Title),
		&request.ID)
	s.dispatcher.Dispatch(ctx, group.LeaderID, models.NotificationTypeRequest,
		fmt.Sprintf("Permintaan kelompok %s untuk capstone \"%s\" telah diajukan", group.Name, capstone.Title),
		&request.ID)

	request.Group = *group
	request.Capstone = *capstone
	return request, nil
}

// ReviewRequest records the owner's decision. Acceptance closes the capstone
// permanently and auto-rejects every sibling still pending; rejection may
// reopen the capstone. A request that already left pending state, whether via
// a concurrent reviewer or the expiry sweeper, yields a conflict.
func (s *MatchingService) ReviewRequest(ctx context.Context, reviewerID, requestID uint, input ReviewInput) (*models.Request, error) {
	if input.Decision != models.RequestStatusAccepted && input.Decision != models.RequestStatusRejected {
		return nil, models.NewValidationError(
			fmt.Sprintf("Decision must be %q or %q", models.RequestStatusAccepted, models.RequestStatusRejected))
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	// Settled requests report the conflict before ownership: a request that
	// already left pending state reads the same to any caller, so the error
	// does not depend on who asked.
	if request.Status != models.RequestStatusPending {
		return nil, models.NewConflictError("Request has already been reviewed")
	}

	if request.Capstone.OwnerID != reviewerID {
		return nil, models.NewForbiddenError("Only the capstone owner can review its requests")
	}

	unlock := s.locks.Lock(request.CapstoneID)
	defer unlock()

	if input.Decision == models.RequestStatusAccepted {
		taken, err := s.requests.HasAccepted(ctx, request.CapstoneID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, models.NewConflictError("Capstone already has an accepted request")
		}
	}

	rows, err := s.requests.UpdateStatusIfPending(ctx, requestID, input.Decision, input.Reason)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, models.NewConflictError("Request has already been reviewed")
	}

	switch input.Decision {
	case models.RequestStatusAccepted:
		if err := s.acceptSideEffects(ctx, request); err != nil {
			return nil, err
		}
	case models.RequestStatusRejected:
		if _, _, err := s.recomputeAvailabilityLocked(ctx, request.CapstoneID); err != nil {
			return nil, err
		}
		s.dispatcher.Dispatch(ctx, request.Group.LeaderID, models.NotificationTypeRejected,
			fmt.Sprintf("Permintaan capstone \"%s\" ditolak", request.Capstone.Title),
			&request.ID)
	}

	observability.RequestsReviewed.WithLabelValues(string(input.Decision)).Inc()

	return s.requests.GetByID(ctx, requestID)
}

// acceptSideEffects closes the capstone and rejects the losing siblings.
// Sibling rejection uses the same conditional transition as review, so a
// sibling concurrently reviewed elsewhere is simply skipped.
func (s *MatchingService) acceptSideEffects(ctx context.Context, winner *models.Request) error {
	if err := s.capstones.UpdateStatus(ctx, winner.CapstoneID, models.CapstoneStatusUnavailable); err != nil {
		return err
	}

	siblings, err := s.requests.ListPendingByCapstone(ctx, winner.CapstoneID, winner.ID)
	if err != nil {
		return err
	}
	for i := range siblings {
		sibling := &siblings[i]
		rows, err := s.requests.UpdateStatusIfPending(ctx, sibling.ID, models.RequestStatusRejected,
			"Capstone sudah diambil oleh kelompok lain")
		if err != nil {
			middleware.Logger.ErrorContext(ctx, "Sibling auto-reject failed",
				slog.Uint64("request_id", uint64(sibling.ID)),
				slog.String("error", err.Error()),
			)
			continue
		}
		if rows == 0 {
			continue
		}
		s.dispatcher.Dispatch(ctx, sibling.Group.LeaderID, models.NotificationTypeRejected,
			fmt.Sprintf("Permintaan capstone \"%s\" ditolak karena sudah diambil kelompok lain", winner.Capstone.Title),
			&sibling.ID)
	}

	s.dispatcher.Dispatch(ctx, winner.Group.LeaderID, models.NotificationTypeAccepted,
		fmt.Sprintf("Permintaan capstone \"%s\" diterima", winner.Capstone.Title),
		&winner.ID)
	return nil
}

// RecomputeAvailability derives and stores the capstone's availability from
// its requests: an acceptance or a full pending queue closes it, anything
// else leaves it open. Returns the derived status and whether it changed.
func (s *MatchingService) RecomputeAvailability(ctx context.Context, capstoneID uint) (models.CapstoneStatus, bool, error) {
	unlock := s.locks.Lock(capstoneID)
	defer unlock()
	return s.recomputeAvailabilityLocked(ctx, capstoneID)
}

func (s *MatchingService) recomputeAvailabilityLocked(ctx context.Context, capstoneID uint) (models.CapstoneStatus, bool, error) {
	capstone, err := s.capstones.GetByID(ctx, capstoneID)
	if err != nil {
		return "", false, err
	}

	taken, err := s.requests.HasAccepted(ctx, capstoneID)
	if err != nil {
		return "", false, err
	}

	derived := models.CapstoneStatusAvailable
	if taken {
		derived = models.CapstoneStatusUnavailable
	} else {
		pending, err := s.requests.CountPendingByCapstone(ctx, capstoneID)
		if err != nil {
			return "", false, err
		}
		if pending >= s.policy.MaxPendingPerCapstone {
			derived = models.CapstoneStatusUnavailable
		}
	}

	if derived == capstone.Status {
		return derived, false, nil
	}
	if err := s.capstones.UpdateStatus(ctx, capstoneID, derived); err != nil {
		return "", false, err
	}
	return derived, true, nil
}

// ListGroupRequests returns the request history of the caller's group, newest
// first. The proposal link is attached only on accepted entries.
func (s *MatchingService) ListGroupRequests(ctx context.Context, userID uint) ([]models.RequestView, error) {
	group, err := s.groups.GetByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return []models.RequestView{}, nil
	}

	requests, err := s.requests.ListByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	views := make([]models.RequestView, 0, len(requests))
	for _, request := range requests {
		view := models.RequestView{Request: request}
		if request.Status == models.RequestStatusAccepted {
			view.ProposalURL = request.Capstone.ProposalURL
		}
		views = append(views, view)
	}
	return views, nil
}

// ListOwnerRequests returns every request filed against the owner's capstones.
func (s *MatchingService) ListOwnerRequests(ctx context.Context, ownerID uint) ([]models.Request, error) {
	return s.requests.ListByCapstoneOwner(ctx, ownerID)
}

// GetRequest returns a single request when the caller is entitled to see it:
// a member of the requesting group, the capstone owner, or an admin.
func (s *MatchingService) GetRequest(ctx context.Context, callerID uint, callerRole models.Role, requestID uint) (*models.Request, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if callerRole == models.RoleAdmin || request.Capstone.OwnerID == callerID {
		return request, nil
	}

	group, err := s.groups.GetByID(ctx, request.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(callerID) {
		return nil, models.NewForbiddenError("Not allowed to view this request")
	}
	return request, nil
}
