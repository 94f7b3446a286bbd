package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"ripple/config"
	"ripple/database"
	"ripple/handlers"
	"ripple/identity"
	"ripple/media"
	"ripple/middleware"
	"ripple/push"
	"ripple/realtime"
	"ripple/routes"
	"ripple/service"
	"ripple/store"
)

func main() {
	log.Println("Starting Ripple API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Configuration error: ", err)
	}

	// ===== CONNECT TO MONGODB WITH RETRY =====
	log.Println("Connecting to MongoDB...")

	var dbErr error
	for i := 1; i <= 3; i++ {
		if err := database.ConnectMongo(cfg.MongoURI); err != nil {
			dbErr = err
			log.Printf("MongoDB connection attempt %d failed: %v", i, err)
			time.Sleep(2 * time.Second)
			continue
		}
		dbErr = nil
		break
	}
	if dbErr != nil {
		log.Fatal("Failed to connect to MongoDB: ", dbErr)
	}

	indexCtx, indexCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := database.EnsureIndexes(indexCtx); err != nil {
		log.Printf("Failed to ensure indexes: %v", err)
	}
	indexCancel()

	// ===== GIN MODE =====
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ===== STORES =====
	users := store.NewUserStore(database.DB)
	posts := store.NewPostStore(database.DB)
	comments := store.NewCommentStore(database.DB)
	notifications := store.NewNotificationStore(database.DB)
	subscriptions := store.NewSubscriptionStore(database.DB)
	tx := store.NewTransactor(database.Client)

	// ===== COLLABORATORS =====
	provider := identity.NewClerkProvider(cfg.ClerkAPIURL, cfg.ClerkSecretKey)

	var uploader media.Uploader
	if cfg.CloudinaryURL != "" {
		uploader, err = media.NewCloudinaryUploader(cfg.CloudinaryURL)
		if err != nil {
			log.Fatal("Cloudinary configuration error: ", err)
		}
	} else {
		log.Println("CLOUDINARY_URL not set, image uploads will fail")
	}

	wsManager := realtime.NewManager()
	go wsManager.Start()

	pusher := push.NewWebPushSender(subscriptions, cfg.PushSubscriber, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
	notifier := service.NewNotifier(notifications, pusher, wsManager)

	// ===== SERVICES =====
	h := &handlers.Handlers{
		Posts:          service.NewPostService(posts, comments, users, notifications, uploader, tx, notifier),
		Comments:       service.NewCommentService(comments, posts, users, notifier),
		Follows:        service.NewFollowService(users, tx, notifier),
		Users:          service.NewUserService(users, provider),
		Notifications:  service.NewNotificationService(notifications, users, posts),
		Subscriptions:  subscriptions,
		Stale:          wsManager,
		VAPIDPublicKey: cfg.VAPIDPublicKey,
	}

	// ===== ROUTER =====
	router := routes.SetupRouter(h, cfg.JWTSecret)

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "Ripple API running",
			"service": "healthy",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	router.GET("/ws", func(c *gin.Context) {
		realtime.Handler(wsManager, func(token string) (string, error) {
			return middleware.VerifyToken(token, cfg.JWTSecret)
		})(c.Writer, c.Request)
	})

	// ===== SERVER =====
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: ", err)
		}
	}()

	// ===== GRACEFUL SHUTDOWN =====
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown: ", err)
	}

	if err := database.DisconnectMongo(); err != nil {
		log.Println("Mongo disconnect error: ", err)
	}

	log.Println("Server stopped gracefully")
}
