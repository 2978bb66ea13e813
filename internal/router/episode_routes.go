package router

import (
	"github.com/labstack/echo/v4"

	"github.com/lunafm/station-api/internal/handler"
	"github.com/lunafm/station-api/internal/middleware"
	"github.com/lunafm/station-api/internal/model"
	"github.com/lunafm/station-api/internal/repository"
)

// RegisterEpisodes registers the authenticated episode endpoints under
// /api/episodes. Reads are role-scoped inside the handlers (artists only
// see episodes of their own shows); writes are admin-only.
func RegisterEpisodes(e *echo.Echo, h *handler.EpisodeHandler, users *repository.UserRepo, jwtSecret string) {
	g := e.Group("/api/episodes", middleware.Authenticate(jwtSecret, users))

	g.GET("", h.List)
	g.GET("/:id", h.Get)

	admin := g.Group("", middleware.RequireRole(model.RoleAdmin))
	admin.POST("", h.Create)
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
}
