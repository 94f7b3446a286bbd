package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Notification types. Only positive social actions notify.
const (
	NotificationFollow  = "follow"
	NotificationLike    = "like"
	NotificationComment = "comment"
)

type Notification struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FromID primitive.ObjectID `bson:"from" json:"from"`
	ToID   primitive.ObjectID `bson:"to" json:"to"`
	Type   string             `bson:"type" json:"type"`

	PostID    *primitive.ObjectID `bson:"postId,omitempty" json:"postId,omitempty"`
	CommentID *primitive.ObjectID `bson:"commentId,omitempty" json:"commentId,omitempty"`

	CreatedAt int64 `bson:"createdAt" json:"createdAt"`
	UpdatedAt int64 `bson:"updatedAt" json:"updatedAt"`

	From *UserSummary `bson:"fromUser,omitempty" json:"fromUser,omitempty"` // populated in responses only
	Post *Post        `bson:"post,omitempty" json:"post,omitempty"`         // populated in responses only
}
