package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/lunafm/station-api/internal/handler"
)

// RegisterPublic registers the endpoints that need no authentication: the
// health probe and the public show/episode pages consumed by the station
// website. The cache middleware is passed in so the caller decides whether
// Redis is in play.
func RegisterPublic(e *echo.Echo, sh *handler.ShowHandler, eh *handler.EpisodeHandler, cache echo.MiddlewareFunc) {
	e.GET("/health", handler.Health)

	g := e.Group("/api", cache)
	g.GET("/shows/slug/:slug", sh.GetBySlug)
	g.GET("/episodes/public/show/:showSlug", eh.PublicByShowSlug)
}
