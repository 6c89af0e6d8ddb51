package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/undercover-social/backend/internal/application"
	"github.com/undercover-social/backend/internal/domain"
	"github.com/undercover-social/backend/internal/infrastructure/postgres"
)

// UserLister is the admin-facing slice of the user directory.
type UserLister interface {
	ListUsers(ctx context.Context) ([]*postgres.UserRecord, error)
}

// AdminHandler holds the admin-gated HTTP handler methods.
type AdminHandler struct {
	broadcasts *application.BroadcastService
	lifecycle  *application.LifecycleService
	users      UserLister
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(broadcasts *application.BroadcastService, lifecycle *application.LifecycleService, users UserLister) *AdminHandler {
	return &AdminHandler{broadcasts: broadcasts, lifecycle: lifecycle, users: users}
}

type broadcastRequest struct {
	Title        string             `json:"title"`
	Body         string             `json:"body"`
	TargetGroup  domain.TargetGroup `json:"targetGroup"`
	TargetUsers  []uuid.UUID        `json:"targetUsers"`
	ScheduledFor *time.Time         `json:"scheduledFor"`
}

func (r broadcastRequest) input(createdBy uuid.UUID) application.BroadcastInput {
	return application.BroadcastInput{
		Title:       r.Title,
		Body:        r.Body,
		TargetGroup: r.TargetGroup,
		TargetUsers: r.TargetUsers,
		CreatedBy:   createdBy,
	}
}

// SendBroadcast POST /api/admin/broadcast
func (h *AdminHandler) SendBroadcast(c echo.Context) error {
	adminID := mustUserID(c)

	var req broadcastRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid broadcast payload")
	}

	b, err := h.broadcasts.SendNow(c.Request().Context(), req.input(adminID))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

// ScheduleBroadcast POST /api/admin/broadcast/schedule
func (h *AdminHandler) ScheduleBroadcast(c echo.Context) error {
	adminID := mustUserID(c)

	var req broadcastRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid broadcast payload")
	}
	if req.ScheduledFor == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "scheduledFor is required")
	}

	b, err := h.broadcasts.Schedule(c.Request().Context(), req.input(adminID), *req.ScheduledFor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

// BroadcastHistory GET /api/admin/broadcast/history
func (h *AdminHandler) BroadcastHistory(c echo.Context) error {
	history, err := h.broadcasts.History(c.Request().Context(), parseIntQuery(c, "limit", 50))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, history)
}

// PinPost POST /api/admin/posts/:id/pin
func (h *AdminHandler) PinPost(c echo.Context) error {
	adminID := mustUserID(c)

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}

	var req struct {
		Duration domain.PinDuration `json:"duration"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pin payload")
	}

	post, err := h.lifecycle.Pin(c.Request().Context(), postID, adminID, req.Duration)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// UnpinPost POST /api/admin/posts/:id/unpin
func (h *AdminHandler) UnpinPost(c echo.Context) error {
	adminID := mustUserID(c)

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}

	post, err := h.lifecycle.Unpin(c.Request().Context(), postID, adminID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// ListUsers GET /api/admin/users
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}
