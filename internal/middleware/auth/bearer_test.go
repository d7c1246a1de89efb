package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/auth_service/internal/tokens"
)

func newGuardedEcho(v AccessVerifier) *echo.Echo {
	e := echo.New()
	e.GET("/private", func(c echo.Context) error {
		claims, ok := ClaimsFrom(c)
		if !ok {
			return c.NoContent(http.StatusTeapot)
		}
		return c.String(http.StatusOK, claims.Subject)
	}, RequireBearer(v))
	return e
}

func TestRequireBearer(t *testing.T) {
	cfg := tokens.Config{AccessSecret: []byte("access"), RefreshSecret: []byte("refresh")}
	issuer := tokens.NewIssuer(cfg)
	access, err := issuer.IssueAccessToken("user-1", "a@x.com")
	require.NoError(t, err)
	refresh, err := issuer.IssueRefreshToken("user-1", "a@x.com")
	require.NoError(t, err)

	past := func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := tokens.NewIssuer(cfg, tokens.WithClock(past)).IssueAccessToken("user-1", "a@x.com")
	require.NoError(t, err)

	e := newGuardedEcho(tokens.NewVerifier(cfg))

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{name: "valid", header: "Bearer " + access.Value, code: http.StatusOK},
		{name: "missing header", header: "", code: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + access.Value, code: http.StatusUnauthorized},
		{name: "refresh token", header: "Bearer " + refresh.Value, code: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired.Value, code: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer abc.def.ghi", code: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			require.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, "user-1", rec.Body.String())
				return
			}
			assert.JSONEq(t, `{"message":"Access Denied"}`, rec.Body.String())
		})
	}
}
