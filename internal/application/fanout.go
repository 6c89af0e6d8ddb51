package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/undercover-social/backend/internal/domain"
)

// PushSender delivers a serialized payload to one subscription. The default
// implementation speaks the Web Push protocol; failures carrying an endpoint
// status code are reported as *domain.PushError.
type PushSender interface {
	Send(ctx context.Context, sub *domain.PushSubscription, payload []byte) error
}

// Hub is the in-app real-time channel for connected clients.
// Implementation lives in transport/http/sse_hub.go.
type Hub interface {
	Push(userID uuid.UUID, n *domain.Notification)
}

// defaultPushTimeout bounds a single transport call so one unreachable
// endpoint cannot stall the rest of the batch.
const defaultPushTimeout = 10 * time.Second

// FanoutEngine persists one notification per recipient and delivers it to
// every active device subscription of every recipient.
type FanoutEngine struct {
	notifications domain.NotificationRepository
	subscriptions domain.SubscriptionRepository
	sender        PushSender
	hub           Hub
	pushTimeout   time.Duration
}

// NewFanoutEngine creates a FanoutEngine. hub may be nil when no in-app
// channel is wired (tests). pushTimeout <= 0 selects the default.
func NewFanoutEngine(
	notifications domain.NotificationRepository,
	subscriptions domain.SubscriptionRepository,
	sender PushSender,
	hub Hub,
	pushTimeout time.Duration,
) *FanoutEngine {
	if pushTimeout <= 0 {
		pushTimeout = defaultPushTimeout
	}
	return &FanoutEngine{
		notifications: notifications,
		subscriptions: subscriptions,
		sender:        sender,
		hub:           hub,
		pushTimeout:   pushTimeout,
	}
}

// Deliver fans input out to every target user: one persisted Notification
// per recipient (so read history exists even with zero devices), then one
// concurrent push attempt per active subscription.
//
// Per-device attempts are isolated: a failing endpoint is logged, a gone
// endpoint (404/410) additionally deactivates its subscription, and neither
// affects other devices, other users, or the return value. The only errors
// Deliver surfaces are failures to persist the notification records
// themselves.
func (e *FanoutEngine) Deliver(ctx context.Context, input domain.DeliveryInput, targets []uuid.UUID) error {
	var persistErr error
	g := new(errgroup.Group)

	for _, userID := range targets {
		n, err := e.notifications.Create(ctx, userID, input)
		if err != nil {
			persistErr = fmt.Errorf("persist notification for %s: %w", userID, err)
			log.Error().Err(err).Str("user", userID.String()).Msg("fan-out: persist failed")
			continue
		}

		if e.hub != nil {
			go e.hub.Push(n.User, n)
		}

		subs, err := e.subscriptions.ListActiveByUser(ctx, userID)
		if err != nil {
			// Record exists, devices unreachable. Same outcome as a failed
			// push: the user keeps the in-app notification.
			log.Warn().Err(err).Str("user", userID.String()).Msg("fan-out: listing subscriptions failed")
			continue
		}
		if len(subs) == 0 {
			continue
		}

		payload, err := json.Marshal(domain.PushPayload{
			Title: input.Title,
			Body:  input.Body,
			URL:   input.URL,
			Data:  n,
		})
		if err != nil {
			log.Error().Err(err).Str("user", userID.String()).Msg("fan-out: payload marshal failed")
			continue
		}

		for _, sub := range subs {
			sub := sub
			g.Go(func() error {
				e.push(ctx, sub, payload)
				return nil
			})
		}
	}

	// Join all device deliveries. Their errors were handled in push; only
	// persistence failures propagate to the caller.
	_ = g.Wait()
	return persistErr
}

// push attempts one transport call with a bounded timeout and absorbs the
// outcome.
func (e *FanoutEngine) push(ctx context.Context, sub *domain.PushSubscription, payload []byte) {
	sendCtx, cancel := context.WithTimeout(ctx, e.pushTimeout)
	defer cancel()

	err := e.sender.Send(sendCtx, sub, payload)
	if err == nil {
		return
	}

	var pushErr *domain.PushError
	if errors.As(err, &pushErr) && pushErr.Gone() {
		if derr := e.subscriptions.Deactivate(ctx, sub.ID); derr != nil {
			log.Error().Err(derr).Str("subscription", sub.ID.String()).Msg("fan-out: deactivating dead subscription failed")
			return
		}
		log.Info().
			Str("subscription", sub.ID.String()).
			Str("user", sub.User.String()).
			Int("status", pushErr.StatusCode).
			Msg("fan-out: subscription gone, deactivated")
		return
	}

	// Transient failure: no retry, the record already exists in-app.
	log.Warn().Err(err).
		Str("subscription", sub.ID.String()).
		Str("user", sub.User.String()).
		Msg("fan-out: push delivery failed")
}
