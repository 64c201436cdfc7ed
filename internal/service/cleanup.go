package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"capstonehub/internal/middleware"
	"capstonehub/internal/models"
	"capstonehub/internal/observability"
	"capstonehub/internal/repository"
)

// SweepSummary reports what one expiry sweep actually changed.
type SweepSummary struct {
	RejectedCount     int      `json:"rejectedCount"`
	CapstonesReopened []string `json:"capstonesReopened"`
}

// CleanupService auto-rejects requests that sat in review past the expiry
// window. It runs from the cron scheduler and from the admin and internal
// HTTP triggers.
type CleanupService struct {
	requests     repository.RequestRepository
	matching     *MatchingService
	dispatcher   Dispatcher
	expiryWindow time.Duration
}

// NewCleanupService creates a CleanupService with the given expiry window.
func NewCleanupService(
	requests repository.RequestRepository,
	matching *MatchingService,
	dispatcher Dispatcher,
	expiryWindow time.Duration,
) *CleanupService {
	return &CleanupService{
		requests:     requests,
		matching:     matching,
		dispatcher:   dispatcher,
		expiryWindow: expiryWindow,
	}
}

// AutoRejectExpired rejects every pending request older than the expiry
// window, then recomputes availability for each touched capstone. Failures
// are isolated per request: one bad row never aborts the sweep. The sweep is
// idempotent since rejected requests no longer match the pending filter.
func (s *CleanupService) AutoRejectExpired(ctx context.Context, trigger string) (*SweepSummary, error) {
	observability.SweepRuns.WithLabelValues(trigger).Inc()

	cutoff := time.Now().Add(-s.expiryWindow)
	expired, err := s.requests.ListExpiredPending(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	summary := &SweepSummary{CapstonesReopened: []string{}}
	touched := make(map[uint]string) // capstone ID -> title

	for i := range expired {
		request := &expired[i]
		rows, err := s.requests.UpdateStatusIfPending(ctx, request.ID, models.RequestStatusRejected,
			"Kadaluarsa: melewati batas waktu review")
		if err != nil {
			middleware.Logger.ErrorContext(ctx, "Expiry rejection failed",
				slog.Uint64("request_id", uint64(request.ID)),
				slog.String("error", err.Error()),
			)
			continue
		}
		if rows == 0 {
			// Reviewed between the listing and the transition; nothing to do.
			continue
		}

		summary.RejectedCount++
		touched[request.CapstoneID] = request.Capstone.Title

		s.dispatcher.Dispatch(ctx, request.Group.LeaderID, models.NotificationTypeRejected,
			fmt.Sprintf("Permintaan capstone \"%s\" ditolak otomatis karena melewati batas waktu review", request.Capstone.Title),
			&request.ID)
	}

	for capstoneID, title := range touched {
		status, changed, err := s.matching.RecomputeAvailability(ctx, capstoneID)
		if err != nil {
			middleware.Logger.ErrorContext(ctx, "Availability recompute after sweep failed",
				slog.Uint64("capstone_id", uint64(capstoneID)),
				slog.String("error", err.Error()),
			)
			continue
		}
		if changed && status == models.CapstoneStatusAvailable {
			summary.CapstonesReopened = append(summary.CapstonesReopened, title)
		}
	}

	observability.SweepRejected.Add(float64(summary.RejectedCount))

	middleware.Logger.InfoContext(ctx, "Expiry sweep completed",
		slog.String("trigger", trigger),
		slog.Int("rejected", summary.RejectedCount),
		slog.Int("reopened", len(summary.CapstonesReopened)),
	)
	return summary, nil
}
