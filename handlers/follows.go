package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) FollowUser(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	following, err := h.Follows.Toggle(ctx, clerkID(c), c.Param("targetUserId"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifyStale(c, "me")
	message := "User unfollowed successfully"
	if following {
		message = "User followed successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}
