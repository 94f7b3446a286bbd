package service

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ripple/models"
	"ripple/store"
)

// Notifier performs notification fan-out: it persists the notification
// record (the contract), then fires best-effort push and realtime nudges.
// Self-triggered actions never notify.
type Notifier struct {
	notifications store.NotificationStore
	push          PushSender
	stale         StaleNotifier
}

func NewNotifier(notifications store.NotificationStore, push PushSender, stale StaleNotifier) *Notifier {
	if push == nil {
		push = noopPushSender{}
	}
	if stale == nil {
		stale = noopStaleNotifier{}
	}
	return &Notifier{notifications: notifications, push: push, stale: stale}
}

func (n *Notifier) Like(ctx context.Context, actor *models.User, owner *models.User, postID primitive.ObjectID) {
	n.emit(ctx, actor, owner, &models.Notification{
		FromID: actor.ID,
		ToID:   owner.ID,
		Type:   models.NotificationLike,
		PostID: &postID,
	}, actor.Username+" liked your post")
}

func (n *Notifier) Comment(ctx context.Context, actor *models.User, owner *models.User, postID, commentID primitive.ObjectID) {
	n.emit(ctx, actor, owner, &models.Notification{
		FromID:    actor.ID,
		ToID:      owner.ID,
		Type:      models.NotificationComment,
		PostID:    &postID,
		CommentID: &commentID,
	}, actor.Username+" commented on your post")
}

func (n *Notifier) Follow(ctx context.Context, actor *models.User, target *models.User) {
	n.emit(ctx, actor, target, &models.Notification{
		FromID: actor.ID,
		ToID:   target.ID,
		Type:   models.NotificationFollow,
	}, actor.Username+" followed you")
}

func (n *Notifier) emit(ctx context.Context, actor, recipient *models.User, record *models.Notification, body string) {
	if actor.ID == recipient.ID {
		return
	}

	if _, err := n.notifications.Create(ctx, record); err != nil {
		// The primary operation already succeeded; a lost notification is
		// logged, not surfaced.
		log.Printf("Failed to create %s notification: %v", record.Type, err)
		return
	}

	n.push.Send(recipient.ID, "Ripple", body)
	n.stale.NotifyStale(recipient.ClerkID, "notifications")
}
