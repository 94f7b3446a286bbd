package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ripple/apperr"
	"ripple/store"
)

type updateProfileRequest struct {
	FirstName      *string `json:"firstName"`
	LastName       *string `json:"lastName"`
	Bio            *string `json:"bio"`
	Location       *string `json:"location"`
	ProfilePicture *string `json:"profilePicture"`
	BannerImage    *string `json:"bannerImage"`
}

// SyncUser is idempotent: safe to call on every app launch.
func (h *Handlers) SyncUser(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, created, err := h.Users.Sync(ctx, clerkID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	message := "User already exists"
	if created {
		status = http.StatusCreated
		message = "User created successfully"
	}
	c.JSON(status, gin.H{"user": user, "message": message})
}

func (h *Handlers) GetCurrentUser(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.Users.GetCurrent(ctx, clerkID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handlers) GetUserProfile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.Users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("Invalid request body"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.Users.UpdateProfile(ctx, clerkID(c), store.ProfileUpdate{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Bio:            req.Bio,
		Location:       req.Location,
		ProfilePicture: req.ProfilePicture,
		BannerImage:    req.BannerImage,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifyStale(c, "me")
	c.JSON(http.StatusOK, gin.H{"user": user})
}
