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

type mongoNotificationStore struct {
	coll *mongo.Collection
}

func NewNotificationStore(db *mongo.Database) NotificationStore {
	return &mongoNotificationStore{coll: db.Collection(database.ColNotifications)}
}

func (s *mongoNotificationStore) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	now := time.Now().Unix()
	n.ID = primitive.NewObjectID()
	n.CreatedAt = now
	n.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *mongoNotificationStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var n models.Notification
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *mongoNotificationStore) ListByRecipient(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"to": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *mongoNotificationStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoNotificationStore) DeleteByPost(ctx context.Context, postID primitive.ObjectID) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"postId": postID})
	return err
}
