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

type mongoPostStore struct {
	coll *mongo.Collection
}

func NewPostStore(db *mongo.Database) PostStore {
	return &mongoPostStore{coll: db.Collection(database.ColPosts)}
}

func (s *mongoPostStore) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	now := time.Now().Unix()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []primitive.ObjectID{}
	}

	if _, err := s.coll.InsertOne(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *mongoPostStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *mongoPostStore) List(ctx context.Context) ([]models.Post, error) {
	return s.find(ctx, bson.M{})
}

func (s *mongoPostStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	return s.find(ctx, bson.M{"userId": userID})
}

func (s *mongoPostStore) find(ctx context.Context, filter bson.M) ([]models.Post, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *mongoPostStore) AddLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	return s.update(ctx, postID, bson.M{
		"$addToSet": bson.M{"likes": userID},
		"$set":      bson.M{"updatedAt": time.Now().Unix()},
	})
}

func (s *mongoPostStore) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	return s.update(ctx, postID, bson.M{
		"$pull": bson.M{"likes": userID},
		"$set":  bson.M{"updatedAt": time.Now().Unix()},
	})
}

func (s *mongoPostStore) AddComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	return s.update(ctx, postID, bson.M{
		"$push": bson.M{"comments": commentID},
		"$set":  bson.M{"updatedAt": time.Now().Unix()},
	})
}

func (s *mongoPostStore) RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	return s.update(ctx, postID, bson.M{
		"$pull": bson.M{"comments": commentID},
		"$set":  bson.M{"updatedAt": time.Now().Unix()},
	})
}

func (s *mongoPostStore) update(ctx context.Context, postID primitive.ObjectID, update bson.M) error {
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": postID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoPostStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
