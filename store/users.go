package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"ripple/database"
	"ripple/models"
)

type mongoUserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) UserStore {
	return &mongoUserStore{coll: db.Collection(database.ColUsers)}
}

func (s *mongoUserStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now().Unix()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}

	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *mongoUserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *mongoUserStore) GetByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"clerkId": clerkID})
}

func (s *mongoUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *mongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *mongoUserStore) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	result := make(map[primitive.ObjectID]*models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	for i := range users {
		result[users[i].ID] = &users[i]
	}
	return result, nil
}

func (s *mongoUserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now().Unix()}
	if update.FirstName != nil {
		set["firstName"] = *update.FirstName
	}
	if update.LastName != nil {
		set["lastName"] = *update.LastName
	}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}
	if update.Location != nil {
		set["location"] = *update.Location
	}
	if update.ProfilePicture != nil {
		set["profilePicture"] = *update.ProfilePicture
	}
	if update.BannerImage != nil {
		set["bannerImage"] = *update.BannerImage
	}

	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}

	return s.GetByID(ctx, id)
}

func (s *mongoUserStore) AddFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	return s.updateFollow(ctx, followerID, targetID, "$addToSet")
}

func (s *mongoUserStore) RemoveFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	return s.updateFollow(ctx, followerID, targetID, "$pull")
}

// updateFollow applies the same set operator to both sides of the edge.
func (s *mongoUserStore) updateFollow(ctx context.Context, followerID, targetID primitive.ObjectID, op string) error {
	now := time.Now().Unix()

	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": followerID}, bson.M{
		op:     bson.M{"following": targetID},
		"$set": bson.M{"updatedAt": now},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	result, err = s.coll.UpdateOne(ctx, bson.M{"_id": targetID}, bson.M{
		op:     bson.M{"followers": followerID},
		"$set": bson.M{"updatedAt": now},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
