package authclient

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/auth_service/internal/hash"
	"github.com/Skotchmaster/auth_service/internal/httpserver"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/service"
	"github.com/Skotchmaster/auth_service/internal/testutil"
	"github.com/Skotchmaster/auth_service/internal/tokens"
)

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()

	rp := repo.New(testutil.InitTestDB(t))
	hasher, err := hash.New(bcrypt.MinCost)
	require.NoError(t, err)
	cfg := tokens.Config{AccessSecret: []byte("a"), RefreshSecret: []byte("r")}
	issuer := tokens.NewIssuer(cfg)
	verifier := tokens.NewVerifier(cfg)

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{
			Svc:        service.NewAuthService(rp, hasher, issuer, verifier),
			RefreshTTL: issuer.RefreshTTL(),
		},
		Verifier: verifier,
		DB:       rp,
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Flow(t *testing.T) {
	srv := newAuthServer(t)
	c := NewClient(srv.URL + "/")
	ctx := context.Background()

	up, err := c.SignUp(ctx, "a@x.com", "Ann", "Abc123!@")
	require.NoError(t, err)
	assert.Equal(t, service.SignUpMessage, up.Message)
	require.NotEmpty(t, up.AccessToken)
	require.NotEmpty(t, up.RefreshToken)

	in, err := c.SignIn(ctx, "a@x.com", "Abc123!@")
	require.NoError(t, err)
	require.NotEmpty(t, in.RefreshToken)

	access, err := c.Refresh(ctx, in.RefreshToken)
	require.NoError(t, err)

	msg, err := c.Dashboard(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, "Welcome to the protected area!", msg)
}

func TestClient_Errors(t *testing.T) {
	srv := newAuthServer(t)
	c := NewClient(srv.URL)
	ctx := context.Background()

	_, err := c.SignUp(ctx, "a@x.com", "Ann", "Abc123!@")
	require.NoError(t, err)

	_, err = c.SignUp(ctx, "a@x.com", "Ann", "Abc123!@")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 409, se.Code)
	assert.Equal(t, service.ErrDuplicateEmail.Error(), se.Message)

	_, err = c.SignIn(ctx, "a@x.com", "Wrong123!")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.Dashboard(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorContains(t, err, "Access Denied")
}
