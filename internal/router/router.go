package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/hotel-room-booking/internal/config"
	"github.com/iliyamo/hotel-room-booking/internal/handler"
	"github.com/iliyamo/hotel-room-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check
// for load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.
// Unauthenticated operations (register, login, refresh, logout) live
// under /v1/auth; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the token pair; the old refresh token is revoked.
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.POST("/auth/logout-all", a.LogoutAll)
}

// RegisterPublic registers the unauthenticated browse endpoints.  When
// a Redis client is available the responses are served through the
// cache middleware; without one the routes are registered uncached.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, rdb *redis.Client) {
	g := e.Group("/v1")
	if rdb != nil {
		g.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	}
	g.GET("/hotels", p.ListHotels)
	g.GET("/hotels/:id/rooms", p.ListHotelRooms)
	g.GET("/hotels/:id/availability", p.Availability)
}

// RegisterGuest registers the guest booking-request surface.  Requests
// are submitted without an account; the reference returned at submit
// time is the guest's handle for the status lookup.  The submit
// endpoint sits behind the Redis token-bucket limiter when Redis is
// available, since it is unauthenticated and writes to the ledger.
func RegisterGuest(e *echo.Echo, g *handler.GuestHandler, rdb *redis.Client) {
	var limit echo.MiddlewareFunc
	if rdb != nil {
		limit = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	}
	if limit != nil {
		e.POST("/v1/booking-requests", g.SubmitRequest, limit)
	} else {
		e.POST("/v1/booking-requests", g.SubmitRequest)
	}
	e.GET("/v1/booking-requests/:reference", g.GetRequestByReference)
}

// RegisterHotelier registers the hotel-management surface.  Every
// route requires a valid access token with the HOTELIER role; handlers
// additionally scope all queries to the caller's own hotel.
func RegisterHotelier(e *echo.Echo, h *handler.HotelierHandler, jwtSecret string) {
	g := e.Group("/v1/hotelier")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("HOTELIER"))

	g.GET("/hotel", h.MyHotel)
	g.POST("/rooms", h.CreateRoom)
	g.POST("/rooms/bulk", h.CreateRoomsBulk)
	g.GET("/rooms", h.ListRooms)
	g.GET("/requests", h.ListRequests)
	// Physical room lifecycle: arrival, departure, and freeing a
	// reservation that never arrived.
	g.POST("/rooms/check-in", h.CheckIn)
	g.POST("/rooms/check-out", h.CheckOut)
	g.POST("/rooms/release", h.Release)
}

// RegisterAdmin registers the back-office surface: hotelier account
// approval and booking-request decisions.  ADMIN role only.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))

	g.GET("/hoteliers/pending", a.ListPendingHoteliers)
	g.POST("/hoteliers/:id/approve", a.ApproveHotelier)
	g.POST("/hoteliers/:id/decline", a.DeclineHotelier)

	g.GET("/requests/pending", a.ListPendingRequests)
	g.POST("/requests/:id/approve", a.ApproveRequest)
	g.POST("/requests/:id/reject", a.RejectRequest)
}
