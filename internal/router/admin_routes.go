package router

import (
	"github.com/labstack/echo/v4"

	"github.com/lunafm/station-api/internal/handler"
	"github.com/lunafm/station-api/internal/middleware"
	"github.com/lunafm/station-api/internal/model"
	"github.com/lunafm/station-api/internal/repository"
)

// RegisterUpload registers the image upload endpoints under /api/upload.
// Artists use these to attach cover art to their show requests, so both
// roles are allowed.
func RegisterUpload(e *echo.Echo, h *handler.UploadHandler, users *repository.UserRepo, jwtSecret string) {
	g := e.Group("/api/upload",
		middleware.Authenticate(jwtSecret, users),
		middleware.RequireRole(model.RoleArtist, model.RoleAdmin),
	)
	g.POST("", h.Image)
	g.DELETE("/:filename", h.Delete)
}

// RegisterStreaming registers the Airtime-facing endpoints under
// /api/admin/streaming. The whole group is admin-only.
func RegisterStreaming(e *echo.Echo, h *handler.StreamingHandler, users *repository.UserRepo, jwtSecret string) {
	g := e.Group("/api/admin/streaming",
		middleware.Authenticate(jwtSecret, users),
		middleware.RequireRole(model.RoleAdmin),
	)

	g.GET("/live-info", h.LiveInfo)
	g.GET("/current-show", h.CurrentShow)
	g.GET("/week-schedule", h.WeekSchedule)
	g.GET("/statistics", h.Statistics)
	g.GET("/test-connection", h.TestConnection)

	g.GET("/uploaded-episodes", h.UploadedEpisodes)
	g.POST("/episodes/:id/upload", h.UploadAudio)
	g.GET("/episodes/:id/download", h.DownloadAudio)
	g.DELETE("/episodes/:id/file", h.DeleteAudio)
	g.POST("/episodes/:id/mark-uploaded", h.MarkUploaded)
	g.POST("/episodes/:id/schedule", h.Schedule)
	g.DELETE("/episodes/:id/schedule", h.Unschedule)
}
