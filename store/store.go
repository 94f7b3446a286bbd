// Package store persists the feed entities. Interfaces front the Mongo
// implementations so the services can run against in-memory fakes in tests.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ripple/models"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// ProfileUpdate carries the partial profile fields; nil means "leave as is".
type ProfileUpdate struct {
	FirstName      *string
	LastName       *string
	Bio            *string
	Location       *string
	ProfilePicture *string
	BannerImage    *string
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByClerkID(ctx context.Context, clerkID string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByIDs batch-loads users; missing ids are simply absent from the map.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error)

	UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*models.User, error)

	// AddFollow and RemoveFollow update both edge sets together: the
	// follower's following and the target's followers never drift apart.
	AddFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error
	RemoveFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error
}

type PostStore interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error)

	// AddLike is a set insert: adding an existing member is a no-op.
	AddLike(ctx context.Context, postID, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error

	// AddComment appends to the post's ordered comment references.
	AddComment(ctx context.Context, postID, commentID primitive.ObjectID) error
	RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) error

	Delete(ctx context.Context, id primitive.ObjectID) error
}

type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	ListByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)

	// ListByPosts batch-loads the comments of several posts, newest first,
	// grouped by parent post.
	ListByPosts(ctx context.Context, postIDs []primitive.ObjectID) (map[primitive.ObjectID][]models.Comment, error)

	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	ListByRecipient(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) error
}

type SubscriptionStore interface {
	Upsert(ctx context.Context, sub *models.PushSubscription) error
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.PushSubscription, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

// Transactor runs fn inside one logical transaction where the store
// supports it. Implementations without multi-document transactions run fn
// directly; callers order writes child-before-parent so partial completion
// never leaves a dangling reference.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
