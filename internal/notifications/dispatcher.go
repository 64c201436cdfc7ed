package notifications

import (
	"context"
	"encoding/json"
	"log/slog"

	"capstonehub/internal/middleware"
	"capstonehub/internal/models"
	"capstonehub/internal/observability"
	"capstonehub/internal/repository"
)

// Dispatcher fans a notification out to every configured channel: a durable
// database row, a Redis publish for connected clients, and an email. Delivery
// is best-effort on every channel; failures are logged and never surface to
// the flow that triggered the notification.
type Dispatcher struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	notifier      *Notifier
	mailer        Mailer
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	notifier *Notifier,
	mailer Mailer,
) *Dispatcher {
	return &Dispatcher{
		notifications: notifications,
		users:         users,
		notifier:      notifier,
		mailer:        mailer,
	}
}

type wirePayload struct {
	ID        uint                    `json:"id,omitempty"`
	Type      models.NotificationType `json:"type"`
	Message   string                  `json:"message"`
	RequestID *uint                   `json:"request_id,omitempty"`
}

// Dispatch delivers one notification to a user across all channels.
func (d *Dispatcher) Dispatch(ctx context.Context, userID uint, event models.NotificationType, message string, requestID *uint) {
	notification := &models.Notification{
		UserID:    userID,
		RequestID: requestID,
		Type:      event,
		Message:   message,
	}
	if err := d.notifications.Create(ctx, notification); err != nil {
		d.logFailure(ctx, "store", userID, event, err)
		// Keep going: the push and email channels can still reach the user.
	} else {
		observability.NotificationsDispatched.WithLabelValues("store", "ok").Inc()
	}

	payload, err := json.Marshal(wirePayload{
		ID:        notification.ID,
		Type:      event,
		Message:   message,
		RequestID: requestID,
	})
	if err == nil {
		if err := d.notifier.PublishUser(ctx, userID, string(payload)); err != nil {
			d.logFailure(ctx, "redis", userID, event, err)
		} else {
			observability.NotificationsDispatched.WithLabelValues("redis", "ok").Inc()
		}
	}

	d.email(ctx, userID, event, message)
}

func (d *Dispatcher) email(ctx context.Context, userID uint, event models.NotificationType, message string) {
	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		d.logFailure(ctx, "email", userID, event, err)
		return
	}
	if err := d.mailer.Send(user.Email, subjectFor(event), message); err != nil {
		d.logFailure(ctx, "email", userID, event, err)
		return
	}
	observability.NotificationsDispatched.WithLabelValues("email", "ok").Inc()
}

func subjectFor(event models.NotificationType) string {
	switch event {
	case models.NotificationTypeAccepted:
		return "Pengajuan Capstone Diterima"
	case models.NotificationTypeRejected:
		return "Pengajuan Capstone Ditolak"
	default:
		return "Pengajuan Capstone Baru"
	}
}

func (d *Dispatcher) logFailure(ctx context.Context, channel string, userID uint, event models.NotificationType, err error) {
	observability.NotificationsDispatched.WithLabelValues(channel, "error").Inc()
	dispatchErr := models.NewDispatchError(channel, err)
	middleware.Logger.ErrorContext(ctx, "Notification dispatch failed",
		slog.String("channel", channel),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("event", string(event)),
		slog.String("error", dispatchErr.Error()),
	)
}
