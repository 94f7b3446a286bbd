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

type mongoCommentStore struct {
	coll *mongo.Collection
}

func NewCommentStore(db *mongo.Database) CommentStore {
	return &mongoCommentStore{coll: db.Collection(database.ColComments)}
}

func (s *mongoCommentStore) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	now := time.Now().Unix()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	if comment.Likes == nil {
		comment.Likes = []primitive.ObjectID{}
	}

	if _, err := s.coll.InsertOne(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *mongoCommentStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *mongoCommentStore) ListByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"postId": postID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *mongoCommentStore) ListByPosts(ctx context.Context, postIDs []primitive.ObjectID) (map[primitive.ObjectID][]models.Comment, error) {
	result := make(map[primitive.ObjectID][]models.Comment, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"postId": bson.M{"$in": postIDs}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	for _, comment := range comments {
		result[comment.PostID] = append(result[comment.PostID], comment)
	}
	return result, nil
}

func (s *mongoCommentStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoCommentStore) DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	result, err := s.coll.DeleteMany(ctx, bson.M{"postId": postID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
