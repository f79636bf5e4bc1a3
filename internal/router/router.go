// Package router maps HTTP routes to their handlers and access rules.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deskhive/workspace-reservation/internal/handler"
	"github.com/deskhive/workspace-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterMember registers the member-facing catalog, availability and
// booking endpoints under /v1.  All routes require a valid JWT of any role;
// scoping to the caller's organization happens inside the handlers.  The
// limiter may be nil when rate limiting is disabled.
func RegisterMember(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	if limiter != nil {
		g.Use(limiter)
	}
	g.GET("/workspaces", h.ListWorkspaces)
	g.GET("/workspaces/:id", h.GetWorkspace)
	g.GET("/workspaces/:id/free-slots", h.FreeSlots)
	g.GET("/workspaces/:id/quote", h.QuoteBooking)
	g.POST("/bookings", h.CreateBooking)
	g.DELETE("/bookings/:id", h.CancelBooking)
	g.GET("/my-bookings", h.MyBookings)
}

// RegisterCheckIn registers the occupancy endpoints.  Check-in and checkout
// are open to any authenticated caller; booking search by email is the
// front-desk view and is restricted to hub managers and admins.
func RegisterCheckIn(e *echo.Echo, h *handler.CheckInHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/checkins", h.CheckIn)
	g.POST("/checkins/walk-in", h.WalkIn)
	g.POST("/checkins/:id/checkout", h.CheckOut)

	desk := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleHubManager, middleware.RoleAdmin),
	)
	desk.GET("/bookings/search", h.SearchBookings)
}

// RegisterAdmin registers the catalog management endpoints under /v1/admin,
// restricted to the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleAdmin),
	)
	g.POST("/workspaces", h.CreateWorkspace)
	g.PATCH("/workspaces/:id", h.UpdateWorkspace)
	g.POST("/workspaces/:id/disable", h.DisableWorkspace)
}
