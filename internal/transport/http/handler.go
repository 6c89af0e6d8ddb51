package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/undercover-social/backend/internal/application"
	"github.com/undercover-social/backend/internal/domain"
)

// Handler holds the user-facing HTTP handler methods.
type Handler struct {
	lifecycle      *application.LifecycleService
	notifications  domain.NotificationRepository
	subscriptions  domain.SubscriptionRepository
	hub            *Hub
	vapidPublicKey string
}

// NewHandler creates a new Handler.
func NewHandler(
	lifecycle *application.LifecycleService,
	notifications domain.NotificationRepository,
	subscriptions domain.SubscriptionRepository,
	hub *Hub,
	vapidPublicKey string,
) *Handler {
	return &Handler{
		lifecycle:      lifecycle,
		notifications:  notifications,
		subscriptions:  subscriptions,
		hub:            hub,
		vapidPublicKey: vapidPublicKey,
	}
}

// --- Notification read path ---

// ListNotifications GET /api/notifications
func (h *Handler) ListNotifications(c echo.Context) error {
	userID := mustUserID(c)

	limit := parseIntQuery(c, "limit", 50)
	if limit > 100 {
		limit = 50
	}

	notifications, err := h.notifications.ListByUser(c.Request().Context(), userID, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, notifications)
}

// MarkRead PUT /api/notifications/:id/read
func (h *Handler) MarkRead(c echo.Context) error {
	userID := mustUserID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid notification id")
	}

	n, err := h.notifications.MarkRead(c.Request().Context(), id, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, n)
}

// MarkAllRead PUT /api/notifications/read-all
func (h *Handler) MarkAllRead(c echo.Context) error {
	userID := mustUserID(c)

	count, err := h.notifications.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"marked": count})
}

// --- Push subscription registration ---

type subscriptionRequest struct {
	Subscription struct {
		Endpoint string                  `json:"endpoint"`
		Keys     domain.SubscriptionKeys `json:"keys"`
	} `json:"subscription"`
}

// SaveSubscription POST /api/notifications/subscription
func (h *Handler) SaveSubscription(c echo.Context) error {
	userID := mustUserID(c)

	var req subscriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid subscription payload")
	}
	if req.Subscription.Endpoint == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "subscription data is required")
	}

	err := h.subscriptions.Upsert(c.Request().Context(), userID, req.Subscription.Endpoint, req.Subscription.Keys)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": "subscription saved"})
}

// VapidPublicKey GET /api/notifications/vapid-public-key
func (h *Handler) VapidPublicKey(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"publicKey": h.vapidPublicKey})
}

// --- Post lifecycle ---

// LikePost POST /api/posts/:id/like
func (h *Handler) LikePost(c echo.Context) error {
	userID := mustUserID(c)

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}

	var body struct {
		AnonymousAlias string `json:"anonymousAlias"`
	}
	_ = c.Bind(&body)

	count, err := h.lifecycle.RecordLike(c.Request().Context(), postID, userID, body.AnonymousAlias)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"likes": count})
}

// --- SSE ---

// Stream GET /api/notifications/stream — SSE endpoint
func (h *Handler) Stream(c echo.Context) error {
	userID := mustUserID(c)

	// SSE headers
	w := c.Response()
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable proxy buffering

	sendCh := make(chan []byte, 32)
	client := h.hub.Register(userID, sendCh)
	defer h.hub.Unregister(client)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"ok\"}\n\n")
	w.Flush()

	log.Info().Str("user", userID.String()).Msg("SSE stream opened")

	ctx := c.Request().Context()
	for {
		select {
		case msg, ok := <-sendCh:
			if !ok {
				return nil
			}
			if _, err := w.Write(msg); err != nil {
				return nil
			}
			w.Flush()

		case <-ctx.Done():
			log.Info().Str("user", userID.String()).Msg("SSE stream closed by client")
			return nil
		}
	}
}

// --- Healthcheck ---

// Health GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "ok",
		"sse_clients": h.hub.ConnectedCount(),
	})
}

// --- Helpers ---

func mustUserID(c echo.Context) uuid.UUID {
	return c.Get("userID").(uuid.UUID)
}

func parseIntQuery(c echo.Context, key string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// httpError maps domain sentinels onto HTTP status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.ErrInternalServerError
	}
}
