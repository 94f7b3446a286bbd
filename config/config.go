package config

import (
	"fmt"
	"log"
	"os"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	GinMode  string
	MongoURI string

	// JWTSecret verifies the identity provider's session tokens.
	JWTSecret string
	// ClerkSecretKey authenticates profile lookups against the identity
	// provider's backend API.
	ClerkSecretKey string
	ClerkAPIURL    string

	CloudinaryURL string

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	PushSubscriber  string
}

// Load reads .env if present, then the environment. JWT_SECRET and
// MONGODB_URI are required; everything else has a dev default.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:            getenv("PORT", "8080"),
		GinMode:         os.Getenv("GIN_MODE"),
		MongoURI:        os.Getenv("MONGODB_URI"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		ClerkSecretKey:  os.Getenv("CLERK_SECRET_KEY"),
		ClerkAPIURL:     getenv("CLERK_API_URL", "https://api.clerk.com/v1"),
		CloudinaryURL:   os.Getenv("CLOUDINARY_URL"),
		VAPIDPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
		PushSubscriber:  getenv("PUSH_SUBSCRIBER", "mailto:admin@ripple.app"),
	}

	if cfg.JWTSecret == "" || cfg.MongoURI == "" {
		return nil, fmt.Errorf("JWT_SECRET and MONGODB_URI must be set")
	}

	// Generate throwaway VAPID keys when none are configured so push still
	// works in development. Production should pin these in the environment.
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		publicKey, privateKey, err := webpush.GenerateVAPIDKeys()
		if err != nil {
			log.Printf("Failed to generate VAPID keys: %v", err)
		} else {
			cfg.VAPIDPublicKey = publicKey
			cfg.VAPIDPrivateKey = privateKey
			log.Println("Generated new VAPID keys - for production, set VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY")
		}
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
