package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/logging"
	authmw "github.com/Skotchmaster/auth_service/internal/middleware/auth"
	"github.com/Skotchmaster/auth_service/internal/service"
	"github.com/Skotchmaster/auth_service/internal/transport"
)

const dashboardMessage = "Welcome to the protected area!"

type Authenticator interface {
	SignUp(ctx context.Context, email, name, password string) (*service.SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (*service.SignInResult, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*service.RefreshResult, error)
}

type AuthHTTP struct {
	Svc          Authenticator
	RefreshTTL   time.Duration
	SecureCookie bool
}

func (h *AuthHTTP) SignUp(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_sign_up")

	var req transport.SignUpRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("sign_up_error", "status", http.StatusBadRequest, "error", err)
		return err
	}

	res, err := h.Svc.SignUp(ctx, req.Email, req.Name, req.Password)
	if err != nil {
		return h.fail(l, "sign_up_failed", err)
	}

	c.SetCookie(refreshCookie(res.RefreshToken, h.RefreshTTL, h.SecureCookie))
	return c.JSON(http.StatusOK, transport.SignUpResponse{
		AccessToken: res.AccessToken,
		Message:     res.Message,
	})
}

func (h *AuthHTTP) SignIn(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_sign_in")

	var req transport.SignInRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("sign_in_error", "status", http.StatusBadRequest, "error", err)
		return err
	}

	res, err := h.Svc.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return h.fail(l, "sign_in_failed", err)
	}

	c.SetCookie(refreshCookie(res.RefreshToken, h.RefreshTTL, h.SecureCookie))
	return c.JSON(http.StatusOK, transport.TokenResponse{AccessToken: res.AccessToken})
}

// Refresh takes the token from the body and falls back to the refresh cookie.
func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("refresh_error", "status", http.StatusBadRequest, "error", err)
		return bindError(err)
	}
	token := req.RefreshToken
	if token == "" {
		if ck, err := c.Cookie(refreshCookieName); err == nil {
			token = ck.Value
		}
	}
	if token == "" {
		l.Warn("refresh_error", "status", http.StatusBadRequest, "reason", "no_token")
		return echo.NewHTTPError(http.StatusBadRequest, "refresh token is required")
	}

	res, err := h.Svc.RefreshAccessToken(ctx, token)
	if err != nil {
		return h.fail(l, "refresh_failed", err)
	}

	return c.JSON(http.StatusOK, transport.TokenResponse{AccessToken: res.AccessToken})
}

func (h *AuthHTTP) Dashboard(c echo.Context) error {
	if claims, ok := authmw.ClaimsFrom(c); ok {
		logging.FromContext(c.Request().Context()).Debug("dashboard_access", "user_id", claims.Subject)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: dashboardMessage})
}

func (h *AuthHTTP) fail(l *slog.Logger, event string, err error) error {
	code, msg := statusFor(err)
	if code >= http.StatusInternalServerError {
		l.Error(event, "status", code, "error", err)
	} else {
		l.Warn(event, "status", code, "error", err)
	}
	return echo.NewHTTPError(code, msg)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		return http.StatusConflict, service.ErrDuplicateEmail.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return http.StatusUnauthorized, service.ErrInvalidRefreshToken.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return bindError(err)
	}
	if err := transport.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return nil
}
