package handlers

import (
	"context"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"ripple/apperr"
	"ripple/models"
)

type subscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

func (h *Handlers) GetPushPublicKey(c *gin.Context) {
	if h.VAPIDPublicKey == "" {
		respondError(c, apperr.NotFound("Push is not configured"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": h.VAPIDPublicKey})
}

// SubscribePush upserts the caller's web-push subscription; one endpoint
// per user.
func (h *Handlers) SubscribePush(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("Invalid subscription payload"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.Users.GetCurrent(ctx, clerkID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	err = h.Subscriptions.Upsert(ctx, &models.PushSubscription{
		UserID: user.ID,
		Sub: webpush.Subscription{
			Endpoint: req.Endpoint,
			Keys: webpush.Keys{
				P256dh: req.Keys.P256dh,
				Auth:   req.Keys.Auth,
			},
		},
	})
	if err != nil {
		respondError(c, apperr.Internal("Failed to save subscription", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Push subscription saved successfully"})
}
