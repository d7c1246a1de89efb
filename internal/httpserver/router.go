package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/auth_service/internal/logging"
	authmw "github.com/Skotchmaster/auth_service/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/auth_service/internal/middleware/logging"
)

const readyTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	AuthHandler *AuthHTTP
	Verifier    authmw.AccessVerifier
	DB          Pinger
	Logger      *slog.Logger
	CORSOrigins []string
}

func Register(e *echo.Echo, d *Deps) {
	e.Binder = &strictBinder{}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if d.Logger != nil {
		e.Use(loggingmw.RequestLogger(d.Logger))
	}
	if len(d.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
			AllowCredentials: true,
		}))
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	g := e.Group("/auth")
	g.POST("/sign-up", d.AuthHandler.SignUp)
	g.POST("/sign-in", d.AuthHandler.SignIn)
	g.POST("/refresh", d.AuthHandler.Refresh)
	g.GET("/dashboard", d.AuthHandler.Dashboard, authmw.RequireBearer(d.Verifier))
}

func (d *Deps) ready(c echo.Context) error {
	if d.DB == nil {
		return c.NoContent(http.StatusOK)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), readyTimeout)
	defer cancel()

	if err := d.DB.Ping(ctx); err != nil {
		logging.FromContext(ctx).Error("readiness_failed", "error", err)
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}
