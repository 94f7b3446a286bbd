package service

import (
	"context"
	"io"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ripple/apperr"
	"ripple/media"
	"ripple/models"
	"ripple/store"
)

const maxContentLength = 280

type PostService struct {
	posts         store.PostStore
	comments      store.CommentStore
	users         store.UserStore
	notifications store.NotificationStore
	uploader      media.Uploader
	tx            store.Transactor
	notifier      *Notifier
}

func NewPostService(
	posts store.PostStore,
	comments store.CommentStore,
	users store.UserStore,
	notifications store.NotificationStore,
	uploader media.Uploader,
	tx store.Transactor,
	notifier *Notifier,
) *PostService {
	return &PostService{
		posts:         posts,
		comments:      comments,
		users:         users,
		notifications: notifications,
		uploader:      uploader,
		tx:            tx,
		notifier:      notifier,
	}
}

// Create persists a new post for the actor. An image payload is uploaded
// first; upload failure aborts before anything is written.
func (s *PostService) Create(ctx context.Context, clerkID, content string, image io.Reader) (*models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" && image == nil {
		return nil, apperr.Validation("Please provide content or image")
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return nil, apperr.Validation("Content must be 280 characters or less")
	}

	actor, err := resolveActor(ctx, s.users, clerkID)
	if err != nil {
		return nil, err
	}

	imageURL := ""
	if image != nil {
		if s.uploader == nil {
			return nil, apperr.Upload("Image uploads are not configured", nil)
		}
		imageURL, err = s.uploader.Upload(ctx, image, media.FolderPosts, actor.ID.Hex()+"_"+primitive.NewObjectID().Hex())
		if err != nil {
			return nil, apperr.Upload("Failed to upload image", err)
		}
	}

	post, err := s.posts.Create(ctx, &models.Post{
		UserID:  actor.ID,
		Content: content,
		Image:   imageURL,
	})
	if err != nil {
		return nil, apperr.Internal("Failed to create post", err)
	}

	summary := actor.Summary()
	post.User = &summary
	return post, nil
}

// List returns all posts newest first, owners expanded.
func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch posts", err)
	}
	return s.expand(ctx, posts)
}

func (s *PostService) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	id, err := parseObjectID(postID, "post")
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

	expanded, err := s.expand(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &expanded[0], nil
}

// ListByUsername returns the user's posts newest first. An unknown
// username is NotFound, not an empty list.
func (s *PostService) ListByUsername(ctx context.Context, username string) ([]models.Post, error) {
	owner, err := s.users.GetByUsername(ctx, username)
	if err == store.ErrNotFound {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to resolve user", err)
	}

	posts, err := s.posts.ListByUser(ctx, owner.ID)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch posts", err)
	}
	return s.expand(ctx, posts)
}

// ToggleLike flips the actor's membership in the post's likes set and
// reports which transition happened. Only the like transition notifies,
// and never for the actor's own post.
func (s *PostService) ToggleLike(ctx context.Context, clerkID, postID string) (liked bool, err error) {
	id, err := parseObjectID(postID, "post")
	if err != nil {
		return false, err
	}

	actor, err := resolveActor(ctx, s.users, clerkID)
	if err != nil {
		return false, err
	}

	post, err := s.posts.GetByID(ctx, id)
	if err == store.ErrNotFound {
		return false, apperr.NotFound("Post not found")
	}
	if err != nil {
		return false, apperr.Internal("Failed to fetch post", err)
	}

	if post.HasLike(actor.ID) {
		if err := s.posts.RemoveLike(ctx, post.ID, actor.ID); err != nil {
			return false, apperr.Internal("Failed to unlike post", err)
		}
		return false, nil
	}

	if err := s.posts.AddLike(ctx, post.ID, actor.ID); err != nil {
		return false, apperr.Internal("Failed to like post", err)
	}

	if owner, ownerErr := s.users.GetByID(ctx, post.UserID); ownerErr == nil {
		s.notifier.Like(ctx, actor, owner, post.ID)
	}
	return true, nil
}

// Delete removes the actor's post and cascades: comments first, then
// notifications referencing the post, then the post itself.
func (s *PostService) Delete(ctx context.Context, clerkID, postID string) error {
	id, err := parseObjectID(postID, "post")
	if err != nil {
		return err
	}

	actor, err := resolveActor(ctx, s.users, clerkID)
	if err != nil {
		return err
	}

	post, err := s.posts.GetByID(ctx, id)
	if err == store.ErrNotFound {
		return apperr.NotFound("Post not found")
	}
	if err != nil {
		return apperr.Internal("Failed to fetch post", err)
	}

	if post.UserID != actor.ID {
		return apperr.Forbidden("You can only delete your own posts")
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.comments.DeleteByPost(ctx, post.ID); err != nil {
			return err
		}
		if err := s.notifications.DeleteByPost(ctx, post.ID); err != nil {
			return err
		}
		return s.posts.Delete(ctx, post.ID)
	})
	if err != nil {
		return apperr.Internal("Failed to delete post", err)
	}
	return nil
}

// expand populates each post's owner summary and its full comment objects,
// comment authors included, with one batch comment query and one batch user
// lookup.
func (s *PostService) expand(ctx context.Context, posts []models.Post) ([]models.Post, error) {
	if len(posts) == 0 {
		return posts, nil
	}

	postIDs := make([]primitive.ObjectID, len(posts))
	for i := range posts {
		postIDs[i] = posts[i].ID
	}
	commentsByPost, err := s.comments.ListByPosts(ctx, postIDs)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch post comments", err)
	}

	ids := []primitive.ObjectID{}
	seen := map[primitive.ObjectID]bool{}
	collect := func(id primitive.ObjectID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, p := range posts {
		collect(p.UserID)
	}
	for _, comments := range commentsByPost {
		for _, c := range comments {
			collect(c.UserID)
		}
	}

	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch post owners", err)
	}

	for i := range posts {
		if owner, ok := users[posts[i].UserID]; ok {
			summary := owner.Summary()
			posts[i].User = &summary
		}

		comments := commentsByPost[posts[i].ID]
		for j := range comments {
			if author, ok := users[comments[j].UserID]; ok {
				summary := author.Summary()
				comments[j].User = &summary
			}
		}
		posts[i].ExpandedComments = comments
	}
	return posts, nil
}
