package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Post struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID  primitive.ObjectID `bson:"userId" json:"userId"`
	Content string             `bson:"content" json:"content"`
	Image   string             `bson:"image" json:"image"`

	Likes    []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments []primitive.ObjectID `bson:"comments" json:"comments"`

	CreatedAt int64 `bson:"createdAt" json:"createdAt"`
	UpdatedAt int64 `bson:"updatedAt" json:"updatedAt"`

	User *UserSummary `bson:"user,omitempty" json:"user,omitempty"` // populated in responses only

	// ExpandedComments carries the full comment objects with their author
	// summaries for read responses; the stored document keeps only the ids.
	ExpandedComments []Comment `bson:"-" json:"expandedComments,omitempty"`
}

// HasLike reports whether userID is a member of the post's likes set.
func (p *Post) HasLike(userID primitive.ObjectID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
