package notify

import (
	"context"
	"sort"
	"time"

	"carexpert-server/internal/apperr"
	"carexpert-server/internal/models"
)

// Store is the persistence surface the dispatcher needs. Implementations
// return *apperr.NotFoundError for unknown ids.
type Store interface {
	Create(ctx context.Context, n *models.Notification) error
	Get(ctx context.Context, id string) (*models.Notification, error)
	ListForRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string, readAt time.Time) error
	// MarkAllRead flips every unread notification for the recipient and
	// returns how many rows changed.
	MarkAllRead(ctx context.Context, recipientID string, readAt time.Time) (int64, error)
}

// Dispatcher records notifications and exposes read/unread tracking.
type Dispatcher struct {
	store Store
	now   func() time.Time
}

// NewDispatcher creates a Dispatcher backed by the given store.
func NewDispatcher(store Store) *Dispatcher {
	return &Dispatcher{store: store, now: time.Now}
}

// Notify persists a new unread notification for the recipient.
func (d *Dispatcher) Notify(ctx context.Context, n *models.Notification) error {
	n.IsRead = false
	n.ReadAt = nil
	return d.store.Create(ctx, n)
}

// ListForRecipient returns the recipient's notifications newest-first.
func (d *Dispatcher) ListForRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error) {
	notifications, err := d.store.ListForRecipient(ctx, recipientID, unreadOnly)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

// MarkRead marks one notification as read. Only the recipient may do so;
// marking an already-read notification is a no-op.
func (d *Dispatcher) MarkRead(ctx context.Context, notificationID, recipientID string) (*models.Notification, error) {
	n, err := d.store.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.RecipientID != recipientID {
		return nil, apperr.Forbidden("notification does not belong to this user")
	}
	if n.IsRead {
		return n, nil
	}
	readAt := d.now()
	if err := d.store.MarkRead(ctx, n.ID, readAt); err != nil {
		return nil, err
	}
	n.IsRead = true
	n.ReadAt = &readAt
	return n, nil
}

// MarkAllRead marks every unread notification for the recipient as read and
// returns the number updated.
func (d *Dispatcher) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	return d.store.MarkAllRead(ctx, recipientID, d.now())
}
