// Package webpush adapts the Web Push protocol to the application's
// PushSender port.
package webpush

import (
	"context"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/undercover-social/backend/internal/domain"
)

// Sender sends VAPID-signed Web Push messages. It is stateless apart from
// the shared HTTP client; per-call deadlines come from the caller's context.
type Sender struct {
	subscriber      string
	vapidPublicKey  string
	vapidPrivateKey string
	client          *http.Client
}

// NewSender creates a Sender. subscriber is the contact address required by
// the VAPID spec (mailto: or https: URL).
func NewSender(subscriber, vapidPublicKey, vapidPrivateKey string) *Sender {
	return &Sender{
		subscriber:      subscriber,
		vapidPublicKey:  vapidPublicKey,
		vapidPrivateKey: vapidPrivateKey,
		client:          &http.Client{},
	}
}

// Send delivers payload to one subscription. Endpoint rejections are
// returned as *domain.PushError so the fan-out engine can distinguish gone
// endpoints from transient failures.
func (s *Sender) Send(ctx context.Context, sub *domain.PushSubscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		HTTPClient:      s.client,
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.vapidPublicKey,
		VAPIDPrivateKey: s.vapidPrivateKey,
		TTL:             60,
	})
	if err != nil {
		return fmt.Errorf("send web push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &domain.PushError{StatusCode: resp.StatusCode}
	}
	return nil
}
