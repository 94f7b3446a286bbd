package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) ListPosts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	posts, err := h.Posts.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *Handlers) GetPost(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	post, err := h.Posts.GetByID(ctx, c.Param("postId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *Handlers) ListUserPosts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	posts, err := h.Posts.ListByUsername(ctx, c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// CreatePost accepts multipart form data: a content field and an optional
// image file.
func (h *Handlers) CreatePost(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), uploadTimeout)
	defer cancel()

	content := c.PostForm("content")

	var image io.Reader
	file, _, err := c.Request.FormFile("image")
	if err == nil {
		defer file.Close()
		image = file
	}

	post, err := h.Posts.Create(ctx, clerkID(c), content, image)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifyStale(c, "posts", "posts:user:"+post.User.Username)
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// LikePost toggles the caller's like on the post. The response is a
// transition message, not the mutated post; callers re-read post state.
func (h *Handlers) LikePost(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	liked, err := h.Posts.ToggleLike(ctx, clerkID(c), c.Param("postId"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifyStale(c, "posts")
	message := "Post unliked successfully"
	if liked {
		message = "Post liked successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *Handlers) DeletePost(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.Posts.Delete(ctx, clerkID(c), c.Param("postId")); err != nil {
		respondError(c, err)
		return
	}

	h.notifyStale(c, "posts")
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}
