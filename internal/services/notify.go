package services

import (
	"context"
	"log"

	"github.com/google/uuid"

	"medica-backend/internal/models"
)

type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

// Notifier stores an in-app notification and pushes it to the user's devices.
type Notifier struct {
	store     notificationStore
	publisher Publisher
}

func NewNotifier(store notificationStore, publisher Publisher) *Notifier {
	return &Notifier{store: store, publisher: publisher}
}

// Notify never fails the caller; a notification is a side effect of the real action.
func (n *Notifier) Notify(ctx context.Context, userID uuid.UUID, kind, title, body string) {
	notification := &models.Notification{
		UserID: userID,
		Title:  title,
		Body:   body,
		Kind:   kind,
	}
	if err := n.store.Create(ctx, notification); err != nil {
		log.Printf("notifications: failed to store %q for user %s: %v", title, userID, err)
		return
	}

	n.publisher.Publish(ctx, userID, models.WSMessage{Type: "notification", Payload: notification})
}
