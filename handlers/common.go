package handlers

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"ripple/apperr"
	"ripple/middleware"
	"ripple/service"
	"ripple/store"
)

// Handlers bundles the services behind the HTTP surface. Everything is
// injected; there is no package-level state.
type Handlers struct {
	Posts         *service.PostService
	Comments      *service.CommentService
	Follows       *service.FollowService
	Users         *service.UserService
	Notifications *service.NotificationService

	Subscriptions  store.SubscriptionStore
	Stale          service.StaleNotifier
	VAPIDPublicKey string
}

// Per-request store timeouts; uploads get longer because the media
// service call is in the request path.
const (
	requestTimeout = 10 * time.Second
	uploadTimeout  = 30 * time.Second
)

func clerkID(c *gin.Context) string {
	return c.GetString(middleware.ContextClerkID)
}

// respondError maps the operation error onto the boundary envelope. The
// underlying cause is logged; callers only ever see the kind and the safe
// message.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal || kind == apperr.KindUpload {
		log.Printf("[%s %s] %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(apperr.Status(kind), gin.H{
		"error": apperr.MessageOf(err),
		"kind":  string(kind),
	})
}

// notifyStale nudges the actor's other connected clients that resource
// keys changed underneath them.
func (h *Handlers) notifyStale(c *gin.Context, resourceKeys ...string) {
	if h.Stale != nil {
		h.Stale.NotifyStale(clerkID(c), resourceKeys...)
	}
}
