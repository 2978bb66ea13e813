package router

import (
	"github.com/labstack/echo/v4"

	"github.com/lunafm/station-api/internal/handler"
	"github.com/lunafm/station-api/internal/middleware"
	"github.com/lunafm/station-api/internal/repository"
)

// RegisterAuth registers the authentication endpoints under /api/auth. The
// credential endpoints are rate limited; /me requires a valid session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, users *repository.UserRepo, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/api/auth", limit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/google", a.Google)

	g.GET("/me", a.Me, middleware.Authenticate(jwtSecret, users))
}
