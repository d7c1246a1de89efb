package auth

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/tokens"
)

const (
	ContextKey = "user"

	deniedMessage = "Access Denied"
)

type AccessVerifier interface {
	VerifyAccess(token string) (*tokens.Claims, error)
}

// RequireBearer rejects requests without a valid "Authorization: Bearer" access
// token. On success the verified claims are available through ClaimsFrom.
func RequireBearer(v AccessVerifier) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return v.VerifyAccess(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logging.FromContext(c.Request().Context()).Warn("access_denied", "reason", denyReason(err))
			return echo.NewHTTPError(http.StatusUnauthorized, deniedMessage)
		},
	})
}

func denyReason(err error) string {
	if kind := tokens.Kind(err); kind != "unknown" && kind != "" {
		return kind
	}
	return "missing_token"
}

func ClaimsFrom(c echo.Context) (*tokens.Claims, bool) {
	claims, ok := c.Get(ContextKey).(*tokens.Claims)
	return claims, ok && claims != nil
}
