package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ripple/database"
	"ripple/models"
)

type mongoSubscriptionStore struct {
	coll *mongo.Collection
}

func NewSubscriptionStore(db *mongo.Database) SubscriptionStore {
	return &mongoSubscriptionStore{coll: db.Collection(database.ColPushSubs)}
}

func (s *mongoSubscriptionStore) Upsert(ctx context.Context, sub *models.PushSubscription) error {
	now := time.Now().Unix()
	_, err := s.coll.UpdateOne(
		ctx,
		bson.M{"userId": sub.UserID},
		bson.M{
			"$set":         bson.M{"sub": sub.Sub, "updatedAt": now},
			"$setOnInsert": bson.M{"userId": sub.UserID, "createdAt": now},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *mongoSubscriptionStore) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.PushSubscription, error) {
	var sub models.PushSubscription
	err := s.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&sub)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *mongoSubscriptionStore) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"userId": userID})
	return err
}
