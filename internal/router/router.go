package router // router wires HTTP routes to their handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/10190997/stud-do/internal/config"
	"github.com/10190997/stud-do/internal/handler"
	"github.com/10190997/stud-do/internal/middleware"
)

// Handlers groups everything the router needs to register the API.
type Handlers struct {
	Auth      *handler.AuthHandler
	Users     *handler.UserHandler
	Rooms     *handler.RoomHandler
	Schedules *handler.ScheduleHandler
	Events    *handler.EventHandler
	Posts     *handler.PostHandler
}

// Register sets up all routes. Unauthenticated endpoints live under
// /v1/auth plus the health check; everything else requires a valid
// access token. The Redis-backed rate limiter guards the whole API and
// the response cache fronts the read-heavy listing endpoints. A nil
// Redis client disables both.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	auth := e.Group("/v1/auth", limiter)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)           // rotates the refresh token
	auth.POST("/refresh-access", h.Auth.RefreshAccess) // new access token only
	auth.POST("/logout", h.Auth.Logout)

	g := e.Group("/v1", limiter, middleware.JWTAuth(cfg.JWTSecret))
	g.GET("/me", h.Auth.Me)

	// ---- Users ----
	g.GET("/users/search", h.Users.Search)
	g.GET("/users/:id", h.Users.GetByID)

	// ---- Rooms ----
	g.POST("/rooms", h.Rooms.Create)
	g.GET("/rooms", h.Rooms.List, cache)
	g.GET("/rooms/search", h.Rooms.Search)
	g.GET("/rooms/suggest", h.Rooms.Suggest)
	g.GET("/rooms/:id", h.Rooms.Get)
	g.PUT("/rooms/:id", h.Rooms.Update)
	g.PATCH("/rooms/:id", h.Rooms.Update)
	g.DELETE("/rooms/:id", h.Rooms.Delete)
	g.POST("/rooms/:id/members", h.Rooms.AddMember)
	g.DELETE("/rooms/:id/members/:user_id", h.Rooms.RemoveMember)
	g.POST("/rooms/:id/moderators", h.Rooms.AddModerator)
	g.DELETE("/rooms/:id/moderators/:user_id", h.Rooms.RemoveModerator)

	// ---- Posts ----
	g.POST("/rooms/:id/posts", h.Posts.Create)
	g.GET("/rooms/:id/posts", h.Posts.ListByRoom)
	g.GET("/posts/:id", h.Posts.Get)
	g.PUT("/posts/:id", h.Posts.Update)
	g.PATCH("/posts/:id", h.Posts.Update)
	g.DELETE("/posts/:id", h.Posts.Delete)

	// ---- Schedules ----
	g.POST("/schedules", h.Schedules.Create)
	g.GET("/schedules", h.Schedules.List, cache)
	g.GET("/schedules/:id", h.Schedules.Get)
	g.PUT("/schedules/:id", h.Schedules.Update)
	g.PATCH("/schedules/:id", h.Schedules.Update)
	g.DELETE("/schedules/:id", h.Schedules.Delete)
	g.POST("/schedules/:id/shares", h.Schedules.GrantAccess)
	g.DELETE("/schedules/:id/shares/:user_id", h.Schedules.RevokeAccess)
	g.PUT("/schedules/:id/appearance", h.Schedules.UpdateAppearance)

	// ---- Events ----
	g.POST("/events", h.Events.Create)
	g.GET("/schedules/:id/events", h.Events.ListBySchedule)
	g.GET("/events/:id", h.Events.Get)
	g.PUT("/events/:id", h.Events.Update)
	g.PATCH("/events/:id", h.Events.Update)
	g.DELETE("/events/:id", h.Events.Delete)
}
