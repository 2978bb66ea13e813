package router

import (
	"github.com/labstack/echo/v4"

	"github.com/lunafm/station-api/internal/handler"
	"github.com/lunafm/station-api/internal/middleware"
	"github.com/lunafm/station-api/internal/model"
	"github.com/lunafm/station-api/internal/repository"
)

// RegisterShows registers the authenticated show endpoints under
// /api/shows. Browsing is open to both roles; the request workflow is
// artist-scoped and everything that mutates the catalogue is admin-only.
func RegisterShows(e *echo.Echo, h *handler.ShowHandler, users *repository.UserRepo, jwtSecret string) {
	g := e.Group("/api/shows", middleware.Authenticate(jwtSecret, users))

	g.GET("", h.List)
	g.GET("/:id", h.Get)

	artist := g.Group("/artist", middleware.RequireRole(model.RoleArtist, model.RoleAdmin))
	artist.POST("/request", h.CreateRequest)
	artist.GET("/my-shows", h.MyShows)

	admin := g.Group("", middleware.RequireRole(model.RoleAdmin))
	admin.POST("", h.Create)
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
	admin.GET("/admin/requests", h.Requests)
	admin.PUT("/admin/:id/approve", h.Approve)
	admin.PUT("/admin/:id/reject", h.Reject)
}
