package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/mongo"

	"ripple/apperr"
	"ripple/identity"
	"ripple/models"
	"ripple/store"
)

const maxBioLength = 160

type UserService struct {
	users    store.UserStore
	provider identity.Provider
}

func NewUserService(users store.UserStore, provider identity.Provider) *UserService {
	return &UserService{users: users, provider: provider}
}

// Sync is the sync-on-login operation: called on every session start, it
// creates the User record on first sight of an external identity and is a
// plain read afterwards.
func (s *UserService) Sync(ctx context.Context, clerkID string) (user *models.User, created bool, err error) {
	existing, err := s.users.GetByClerkID(ctx, clerkID)
	if err == nil {
		return existing, false, nil
	}
	if err != store.ErrNotFound {
		return nil, false, apperr.Internal("Failed to look up user", err)
	}

	profile, err := s.provider.FetchProfile(ctx, clerkID)
	if err != nil {
		return nil, false, apperr.Internal("Failed to fetch profile from identity provider", err)
	}

	user, err = s.users.Create(ctx, &models.User{
		ClerkID:        clerkID,
		Email:          profile.Email,
		Username:       usernameFromEmail(profile.Email),
		FirstName:      profile.FirstName,
		LastName:       profile.LastName,
		ProfilePicture: profile.ImageURL,
	})
	if mongo.IsDuplicateKeyError(err) {
		// Lost a race with a concurrent sync for the same identity; the
		// winner's record is the answer.
		existing, lookupErr := s.users.GetByClerkID(ctx, clerkID)
		if lookupErr == nil {
			return existing, false, nil
		}
		return nil, false, apperr.Internal("Failed to create user", err)
	}
	if err != nil {
		return nil, false, apperr.Internal("Failed to create user", err)
	}

	return user, true, nil
}

// GetCurrent returns the actor's own record.
func (s *UserService) GetCurrent(ctx context.Context, clerkID string) (*models.User, error) {
	return resolveActor(ctx, s.users, clerkID)
}

// GetByUsername returns a public profile.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err == store.ErrNotFound {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to fetch user", err)
	}
	return user, nil
}

// UpdateProfile applies only the provided fields to the actor's record.
func (s *UserService) UpdateProfile(ctx context.Context, clerkID string, update store.ProfileUpdate) (*models.User, error) {
	if update.Bio != nil && utf8.RuneCountInString(*update.Bio) > maxBioLength {
		return nil, apperr.Validation("Bio must be 160 characters or less")
	}

	actor, err := resolveActor(ctx, s.users, clerkID)
	if err != nil {
		return nil, err
	}

	updated, err := s.users.UpdateProfile(ctx, actor.ID, update)
	if err == store.ErrNotFound {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to update profile", err)
	}
	return updated, nil
}

// usernameFromEmail derives the default username from the email local
// part, e.g. "jane.doe@example.com" -> "jane.doe".
func usernameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
