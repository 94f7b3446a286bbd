package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClerkID string             `bson:"clerkId" json:"clerkId"`
	Email   string             `bson:"email" json:"email"`

	Username  string `bson:"username" json:"username"`
	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`

	Bio            string `bson:"bio" json:"bio"`
	Location       string `bson:"location" json:"location"`
	ProfilePicture string `bson:"profilePicture" json:"profilePicture"`
	BannerImage    string `bson:"bannerImage" json:"bannerImage"`

	Followers []primitive.ObjectID `bson:"followers" json:"followers"`
	Following []primitive.ObjectID `bson:"following" json:"following"`

	CreatedAt int64 `bson:"createdAt" json:"createdAt"`
	UpdatedAt int64 `bson:"updatedAt" json:"updatedAt"`
}

// UserSummary is the public slice of a user embedded in posts, comments
// and notifications.
type UserSummary struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	Username       string             `bson:"username" json:"username"`
	FirstName      string             `bson:"firstName" json:"firstName"`
	LastName       string             `bson:"lastName" json:"lastName"`
	ProfilePicture string             `bson:"profilePicture" json:"profilePicture"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		ProfilePicture: u.ProfilePicture,
	}
}
