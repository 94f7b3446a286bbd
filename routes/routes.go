package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"ripple/handlers"
	"ripple/middleware"
)

func SetupRouter(h *handlers.Handlers, jwtSecret string) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8081", "http://localhost:19006", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	auth := middleware.AuthMiddleware(jwtSecret)

	// Posts
	router.GET("/posts", h.ListPosts)
	router.GET("/posts/:postId", h.GetPost)
	router.GET("/posts/user/:username", h.ListUserPosts)
	router.POST("/posts", auth, h.CreatePost)
	router.POST("/posts/:postId/like", auth, h.LikePost)
	router.DELETE("/posts/:postId", auth, h.DeletePost)

	// Comments
	router.GET("/comments/post/:postId", h.ListComments)
	router.POST("/comments/post/:postId", auth, h.CreateComment)
	router.DELETE("/comments/:commentId", auth, h.DeleteComment)

	// Follow
	router.POST("/follow/:targetUserId", auth, h.FollowUser)

	// Users
	router.POST("/users/sync", auth, h.SyncUser)
	router.GET("/users/me", auth, h.GetCurrentUser)
	router.GET("/users/:username", h.GetUserProfile)
	router.PUT("/users/profile", auth, h.UpdateProfile)

	// Notifications
	router.GET("/notifications", auth, h.ListNotifications)
	router.DELETE("/notifications/:notificationId", auth, h.DeleteNotification)

	// Push
	router.GET("/push/public-key", h.GetPushPublicKey)
	router.POST("/push/subscribe", auth, h.SubscribePush)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error": "Endpoint not found",
			"kind":  "NOT_FOUND",
			"path":  c.Request.URL.Path,
		})
	})

	return router
}
