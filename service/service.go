// Package service implements the feed interaction operations. Every
// operation validates inputs and resolves references before its first
// write, so a precondition failure never leaves partial state.
package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ripple/apperr"
	"ripple/models"
	"ripple/store"
)

// StaleNotifier nudges a user's connected clients that resource keys went
// stale. The realtime manager implements it; tests use a recorder.
type StaleNotifier interface {
	NotifyStale(userID string, resourceKeys ...string)
}

// PushSender is the advisory delivery half of notification fan-out.
type PushSender interface {
	Send(userID primitive.ObjectID, title, body string)
}

type noopStaleNotifier struct{}

func (noopStaleNotifier) NotifyStale(string, ...string) {}

type noopPushSender struct{}

func (noopPushSender) Send(primitive.ObjectID, string, string) {}

// resolveActor maps the verified external identity to its synced User
// record. All mutation paths go through this: the actor is always the
// authenticated caller, never a record looked up from request input.
func resolveActor(ctx context.Context, users store.UserStore, clerkID string) (*models.User, error) {
	user, err := users.GetByClerkID(ctx, clerkID)
	if err == store.ErrNotFound {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to resolve user", err)
	}
	return user, nil
}

func parseObjectID(raw, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("Invalid " + what + " ID")
	}
	return id, nil
}
