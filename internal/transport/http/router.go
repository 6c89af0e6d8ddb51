package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/undercover-social/backend/internal/transport/mw"
)

// NewRouter sets up all Echo routes and middleware.
func NewRouter(h *Handler, admin *AdminHandler, jwtSecret string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
	}))

	// No auth required
	e.GET("/health", h.Health)
	e.GET("/api/notifications/vapid-public-key", h.VapidPublicKey)

	// Authenticated API
	api := e.Group("/api")
	api.Use(mw.JWTAuth(jwtSecret))

	api.GET("/notifications", h.ListNotifications)
	api.PUT("/notifications/:id/read", h.MarkRead)
	api.PUT("/notifications/read-all", h.MarkAllRead)
	api.POST("/notifications/subscription", h.SaveSubscription)
	api.GET("/notifications/stream", h.Stream)

	api.POST("/posts/:id/like", h.LikePost)

	// Admin-gated API
	adm := api.Group("/admin")
	adm.Use(mw.AdminOnly())

	adm.POST("/broadcast", admin.SendBroadcast)
	adm.POST("/broadcast/schedule", admin.ScheduleBroadcast)
	adm.GET("/broadcast/history", admin.BroadcastHistory)
	adm.POST("/posts/:id/pin", admin.PinPost)
	adm.POST("/posts/:id/unpin", admin.UnpinPost)
	adm.GET("/users", admin.ListUsers)

	return e
}
