package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ripple/apperr"
)

type createCommentRequest struct {
	Content string `json:"content"`
}

func (h *Handlers) ListComments(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	comments, err := h.Comments.ListByPost(ctx, c.Param("postId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (h *Handlers) CreateComment(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("Invalid request body"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	comment, err := h.Comments.Create(ctx, clerkID(c), c.Param("postId"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifyStale(c, "comments:post:"+c.Param("postId"), "posts")
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func (h *Handlers) DeleteComment(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	postID, err := h.Comments.Delete(ctx, clerkID(c), c.Param("commentId"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifyStale(c, "comments:post:"+postID.Hex(), "posts")
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
