package integration

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skotchmaster/auth_service/internal/db"
	"github.com/Skotchmaster/auth_service/internal/hash"
	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/service"
	"github.com/Skotchmaster/auth_service/internal/tokens"
)

type integrationEnv struct {
	db  *gorm.DB
	rp  *repo.GormRepo
	svc *service.AuthService
}

func newIntegrationEnv(t *testing.T, driver string) *integrationEnv {
	t.Helper()

	dsn := os.Getenv("AUTH_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("AUTH_TEST_DATABASE_URL is required for tests")
	}

	gdb, err := db.Open(context.Background(), driver, dsn)
	require.NoError(t, err)

	hasher, err := hash.New(bcrypt.MinCost)
	require.NoError(t, err)

	cfg := tokens.Config{
		AccessSecret:  []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
	rp := repo.New(gdb)

	t.Cleanup(func() {
		gdb.Exec("TRUNCATE TABLE users")
		_ = db.Close(gdb)
	})

	return &integrationEnv{
		db:  gdb,
		rp:  rp,
		svc: service.NewAuthService(rp, hasher, tokens.NewIssuer(cfg), tokens.NewVerifier(cfg)),
	}
}

func uniqueEmail() string {
	return "u_" + uuid.NewString() + "@example.com"
}

func TestAuthService_SignUpConflict(t *testing.T) {
	for _, driver := range []string{db.DriverPgx, db.DriverPostgres} {
		t.Run(driver, func(t *testing.T) {
			env := newIntegrationEnv(t, driver)
			ctx := context.Background()
			email := uniqueEmail()

			_, err := env.svc.SignUp(ctx, email, "Ann", "Abc123!@")
			require.NoError(t, err)

			_, err = env.svc.SignUp(ctx, email, "Ann", "Abc123!@")
			require.Error(t, err)
			assert.ErrorIs(t, err, service.ErrDuplicateEmail)

			var n int64
			require.NoError(t, env.db.Model(&models.User{}).Where("email = ?", email).Count(&n).Error)
			assert.Equal(t, int64(1), n)
		})
	}
}

func TestGormRepo_UniqueIndexMapsToDuplicate(t *testing.T) {
	for _, driver := range []string{db.DriverPgx, db.DriverPostgres} {
		t.Run(driver, func(t *testing.T) {
			env := newIntegrationEnv(t, driver)
			ctx := context.Background()
			email := uniqueEmail()

			_, err := env.rp.Create(ctx, email, "Ann", "hash")
			require.NoError(t, err)

			_, err = env.rp.Create(ctx, email, "Ann", "hash")
			assert.ErrorIs(t, err, repo.ErrDuplicateEmail)
		})
	}
}

func TestAuthService_FullFlow(t *testing.T) {
	env := newIntegrationEnv(t, db.DriverPgx)
	ctx := context.Background()
	email := uniqueEmail()

	signUp, err := env.svc.SignUp(ctx, email, "Ann", "Abc123!@")
	require.NoError(t, err)

	signIn, err := env.svc.SignIn(ctx, email, "Abc123!@")
	require.NoError(t, err)
	assert.Equal(t, signUp.UserID, signIn.UserID)

	_, err = env.svc.SignIn(ctx, email, "Wrong123!")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	refreshed, err := env.svc.RefreshAccessToken(ctx, signUp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
}
