package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ripple/apperr"
	"ripple/models"
	"ripple/store"
)

type NotificationService struct {
	notifications store.NotificationStore
	users         store.UserStore
	posts         store.PostStore
}

func NewNotificationService(notifications store.NotificationStore, users store.UserStore, posts store.PostStore) *NotificationService {
	return &NotificationService{notifications: notifications, users: users, posts: posts}
}

// ListForRecipient returns the actor's notifications newest first, with
// the acting user and post context expanded.
func (s *NotificationService) ListForRecipient(ctx context.Context, clerkID string) ([]models.Notification, error) {
	actor, err := resolveActor(ctx, s.users, clerkID)
	if err != nil {
		return nil, err
	}

	notifications, err := s.notifications.ListByRecipient(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch notifications", err)
	}
	if len(notifications) == 0 {
		return notifications, nil
	}

	actorIDs := make([]primitive.ObjectID, 0, len(notifications))
	seen := make(map[primitive.ObjectID]bool, len(notifications))
	for _, n := range notifications {
		if !seen[n.FromID] {
			seen[n.FromID] = true
			actorIDs = append(actorIDs, n.FromID)
		}
	}

	actors, err := s.users.GetByIDs(ctx, actorIDs)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch notification actors", err)
	}

	for i := range notifications {
		if from, ok := actors[notifications[i].FromID]; ok {
			summary := from.Summary()
			notifications[i].From = &summary
		}
		if notifications[i].PostID != nil {
			// Post context is best effort; the post may have been deleted
			// since the notification was written.
			if post, postErr := s.posts.GetByID(ctx, *notifications[i].PostID); postErr == nil {
				notifications[i].Post = post
			}
		}
	}
	return notifications, nil
}

// Delete removes one notification; only its recipient may do so.
func (s *NotificationService) Delete(ctx context.Context, clerkID, notificationID string) error {
	id, err := parseObjectID(notificationID, "notification")
	if err != nil {
		return err
	}

	actor, err := resolveActor(ctx, s.users, clerkID)
	if err != nil {
		return err
	}

	notification, err := s.notifications.GetByID(ctx, id)
	if err == store.ErrNotFound {
		return apperr.NotFound("Notification not found")
	}
	if err != nil {
		return apperr.Internal("Failed to fetch notification", err)
	}

	if notification.ToID != actor.ID {
		return apperr.Forbidden("You can only delete your own notifications")
	}

	if err := s.notifications.Delete(ctx, notification.ID); err != nil {
		return apperr.Internal("Failed to delete notification", err)
	}
	return nil
}
