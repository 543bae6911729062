package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	authmw "github.com/sharkweb/boardsite/internal/middleware/auth"
)

type Deps struct {
	Auth          *AuthHTTP
	Board         *BoardHTTP
	Authenticator *authmw.Authenticator
	AllowedOrigin string
}

// Register wires the routes. The auth endpoints stay reachable without a
// token; everything else sits behind the authenticator and the identity
// requirement.
func Register(e *echo.Echo, d *Deps) {
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{d.AllowedOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}))

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authGroup := e.Group("/api/auth")
	authGroup.POST("/register", d.Auth.Register)
	authGroup.POST("/login", d.Auth.Login)
	authGroup.POST("/logout", d.Auth.Logout)

	boards := e.Group("/api/boards", d.Authenticator.Authenticate, authmw.RequireIdentity)
	boards.GET("", d.Board.List)
	boards.GET("/mine", d.Board.Mine)
	if d.Board.Search != nil {
		boards.GET("/search", d.Board.SearchBoards)
	}
	boards.GET("/:bid", d.Board.Detail)
	boards.POST("", d.Board.Create)
	boards.PUT("/:bid", d.Board.Update)
	boards.DELETE("/:bid", d.Board.Delete)
}
