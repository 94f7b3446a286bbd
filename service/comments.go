package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ripple/apperr"
	"ripple/models"
	"ripple/store"
)

type CommentService struct {
	comments store.CommentStore
	posts    store.PostStore
	users    store.UserStore
	notifier *Notifier
}

func NewCommentService(comments store.CommentStore, posts store.PostStore, users store.UserStore, notifier *Notifier) *CommentService {
	return &CommentService{comments: comments, posts: posts, users: users, notifier: notifier}
}

// Create persists the comment, then appends its reference to the parent
// post's ordered comments. The append only happens after the comment is
// durably written, so a partial failure never leaves a dangling reference
// in the post.
func (s *CommentService) Create(ctx context.Context, clerkID, postID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("Comment content is required")
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return nil, apperr.Validation("Comment must be 280 characters or less")
	}

	id, err := parseObjectID(postID, "post")
	if err != nil {
		return nil, err
	}

	actor, err := resolveActor(ctx, s.users, clerkID)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, id)
	if err == store.ErrNotFound {
		return nil, apperr.NotFound("Post not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to fetch post", err)
	}

	comment, err := s.comments.Create(ctx, &models.Comment{
		UserID:  actor.ID,
		PostID:  post.ID,
		Content: content,
	})
	if err != nil {
		return nil, apperr.Internal("Failed to create comment", err)
	}

	if err := s.posts.AddComment(ctx, post.ID, comment.ID); err != nil {
		return nil, apperr.Internal("Failed to link comment to post", err)
	}

	if owner, ownerErr := s.users.GetByID(ctx, post.UserID); ownerErr == nil {
		s.notifier.Comment(ctx, actor, owner, post.ID, comment.ID)
	}

	summary := actor.Summary()
	comment.User = &summary
	return comment, nil
}

// ListByPost returns a post's comments newest first, authors expanded. An
// unknown post id yields an empty list rather than NotFound: the endpoint
// is public and never resolves the parent.
func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	id, err := parseObjectID(postID, "post")
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByPost(ctx, id)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch comments", err)
	}

	if len(comments) == 0 {
		return comments, nil
	}

	ids := make([]primitive.ObjectID, 0, len(comments))
	seen := make(map[primitive.ObjectID]bool, len(comments))
	for _, c := range comments {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			ids = append(ids, c.UserID)
		}
	}

	authors, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch comment authors", err)
	}

	for i := range comments {
		if author, ok := authors[comments[i].UserID]; ok {
			summary := author.Summary()
			comments[i].User = &summary
		}
	}
	return comments, nil
}

// Delete removes the actor's comment: the post's reference is pulled
// first, then the comment record goes away. The parent post id is returned
// so callers can tell connected clients which comment list changed.
func (s *CommentService) Delete(ctx context.Context, clerkID, commentID string) (primitive.ObjectID, error) {
	id, err := parseObjectID(commentID, "comment")
	if err != nil {
		return primitive.NilObjectID, err
	}

	actor, err := resolveActor(ctx, s.users, clerkID)
	if err != nil {
		return primitive.NilObjectID, err
	}

	comment, err := s.comments.GetByID(ctx, id)
	if err == store.ErrNotFound {
		return primitive.NilObjectID, apperr.NotFound("Comment not found")
	}
	if err != nil {
		return primitive.NilObjectID, apperr.Internal("Failed to fetch comment", err)
	}

	if comment.UserID != actor.ID {
		return primitive.NilObjectID, apperr.Forbidden("You can only delete your own comments")
	}

	if err := s.posts.RemoveComment(ctx, comment.PostID, comment.ID); err != nil && err != store.ErrNotFound {
		// A missing parent is fine: the post may already be gone.
		return primitive.NilObjectID, apperr.Internal("Failed to unlink comment from post", err)
	}

	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return primitive.NilObjectID, apperr.Internal("Failed to delete comment", err)
	}
	return comment.PostID, nil
}
