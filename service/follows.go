package service

import (
	"context"

	"ripple/apperr"
	"ripple/store"
)

type FollowService struct {
	users    store.UserStore
	tx       store.Transactor
	notifier *Notifier
}

func NewFollowService(users store.UserStore, tx store.Transactor, notifier *Notifier) *FollowService {
	return &FollowService{users: users, tx: tx, notifier: notifier}
}

// Toggle follows or unfollows the target depending on the actor's current
// following membership. Both edge sets move together; only the follow
// transition notifies.
func (s *FollowService) Toggle(ctx context.Context, clerkID, targetUserID string) (following bool, err error) {
	targetID, err := parseObjectID(targetUserID, "user")
	if err != nil {
		return false, err
	}

	actor, err := resolveActor(ctx, s.users, clerkID)
	if err != nil {
		return false, err
	}

	if actor.ID == targetID {
		return false, apperr.Validation("You cannot follow yourself")
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err == store.ErrNotFound {
		return false, apperr.NotFound("User not found")
	}
	if err != nil {
		return false, apperr.Internal("Failed to fetch user", err)
	}

	isFollowing := false
	for _, id := range actor.Following {
		if id == target.ID {
			isFollowing = true
			break
		}
	}

	// Both edge writes ride one transaction where the deployment supports
	// it; the fallback still writes the follower's edge first.
	if isFollowing {
		err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
			return s.users.RemoveFollow(ctx, actor.ID, target.ID)
		})
		if err != nil {
			return false, apperr.Internal("Failed to unfollow user", err)
		}
		return false, nil
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		return s.users.AddFollow(ctx, actor.ID, target.ID)
	})
	if err != nil {
		return false, apperr.Internal("Failed to follow user", err)
	}

	s.notifier.Follow(ctx, actor, target)
	return true, nil
}
