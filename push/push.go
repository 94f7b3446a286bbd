// Package push delivers web-push notifications to stored subscriptions.
// Delivery is advisory: the notification record is the contract, a failed
// push is logged and dropped.
package push

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ripple/store"
)

// Sender is the delivery half of notification fan-out.
type Sender interface {
	Send(userID primitive.ObjectID, title, body string)
}

type WebPushSender struct {
	subs            store.SubscriptionStore
	subscriber      string
	vapidPublicKey  string
	vapidPrivateKey string
}

func NewWebPushSender(subs store.SubscriptionStore, subscriber, publicKey, privateKey string) *WebPushSender {
	return &WebPushSender{
		subs:            subs,
		subscriber:      subscriber,
		vapidPublicKey:  publicKey,
		vapidPrivateKey: privateKey,
	}
}

// Send pushes asynchronously; the caller's request never waits on the push
// service.
func (s *WebPushSender) Send(userID primitive.ObjectID, title, body string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Panic in push notification: %v", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		sub, err := s.subs.GetByUser(ctx, userID)
		if err == store.ErrNotFound {
			return // user never subscribed
		}
		if err != nil {
			log.Printf("Failed to load subscription for user %s: %v", userID.Hex(), err)
			return
		}

		payload, err := json.Marshal(map[string]interface{}{
			"title": title,
			"body":  body,
			"data": map[string]interface{}{
				"timestamp": time.Now().Unix(),
			},
		})
		if err != nil {
			log.Printf("Failed to marshal push payload: %v", err)
			return
		}

		resp, err := webpush.SendNotification(payload, &sub.Sub, &webpush.Options{
			Subscriber:      s.subscriber,
			VAPIDPublicKey:  s.vapidPublicKey,
			VAPIDPrivateKey: s.vapidPrivateKey,
			TTL:             30,
		})
		if err != nil {
			log.Printf("Failed to send push notification to user %s: %v", userID.Hex(), err)
			// Expired subscriptions come back as 410; drop them.
			if resp != nil && resp.StatusCode == http.StatusGone {
				if delErr := s.subs.DeleteByUser(ctx, userID); delErr != nil {
					log.Printf("Failed to delete expired subscription: %v", delErr)
				}
			}
			return
		}
		resp.Body.Close()
	}()
}
