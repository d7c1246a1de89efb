package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/tokens"
)

const SignUpMessage = "User created successfully"

type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, email, name, passwordHash string) (*models.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
	Dummy(password string)
}

type TokenIssuer interface {
	IssueAccessToken(subject, email string) (tokens.Token, error)
	IssueRefreshToken(subject, email string) (tokens.Token, error)
}

type TokenVerifier interface {
	VerifyRefresh(token string) (*tokens.Claims, error)
}

type AuthService struct {
	store    CredentialStore
	hasher   PasswordHasher
	issuer   TokenIssuer
	verifier TokenVerifier
	events   *userEvents
}

type Option func(*AuthService)

// WithEvents publishes sign-up and sign-in events to topic.
func WithEvents(p EventPublisher, topic string) Option {
	return func(s *AuthService) {
		if p != nil {
			s.events = &userEvents{pub: p, topic: topic}
		}
	}
}

func NewAuthService(store CredentialStore, hasher PasswordHasher, issuer TokenIssuer, verifier TokenVerifier, opts ...Option) *AuthService {
	s := &AuthService{
		store:    store,
		hasher:   hasher,
		issuer:   issuer,
		verifier: verifier,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

type SignUpResult struct {
	TokenPair
	UserID  string
	Message string
}

type SignInResult struct {
	TokenPair
	UserID string
}

type RefreshResult struct {
	AccessToken string
	AccessExp   time.Time
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) SignUp(ctx context.Context, email, name, password string) (*SignUpResult, error) {
	email = normalizeEmail(email)
	l := logging.FromContext(ctx).With("svc", "auth.sign_up")

	_, err := s.store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		l.Warn("sign_up_failed", "reason", "email_taken")
		return nil, ErrDuplicateEmail
	case !errors.Is(err, repo.ErrUserNotFound):
		return nil, fmt.Errorf("find user: %w", err)
	}

	pwHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.Create(ctx, email, strings.TrimSpace(name), pwHash)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			l.Warn("sign_up_failed", "reason", "email_taken_on_insert")
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	s.events.publish(ctx, eventUserRegistered, user)
	l.Info("sign_up_success", "user_id", user.ID)

	return &SignUpResult{TokenPair: *pair, UserID: user.ID, Message: SignUpMessage}, nil
}

// SignIn fails with ErrInvalidCredentials for both an unknown email and a wrong
// password, and spends a bcrypt comparison in both cases.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	email = normalizeEmail(email)
	l := logging.FromContext(ctx).With("svc", "auth.sign_in")

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			s.hasher.Dummy(password)
			l.Warn("sign_in_failed", "reason", "unknown_email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		l.Warn("sign_in_failed", "reason", "password_mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	s.events.publish(ctx, eventUserSignedIn, user)
	l.Info("sign_in_success", "user_id", user.ID)

	return &SignInResult{TokenPair: *pair, UserID: user.ID}, nil
}

// RefreshAccessToken issues a new access token. The refresh token itself is not rotated.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := s.verifier.VerifyRefresh(refreshToken)
	if err != nil {
		l.Warn("refresh_rejected", "reason", tokens.Kind(err))
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.store.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("refresh_rejected", "reason", "unknown_subject", "user_id", claims.Subject)
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	access, err := s.issuer.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	l.Info("refresh_success", "user_id", user.ID)
	return &RefreshResult{AccessToken: access.Value, AccessExp: access.ExpiresAt}, nil
}

func (s *AuthService) issuePair(user *models.User) (*TokenPair, error) {
	access, err := s.issuer.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.issuer.IssueRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:  access.Value,
		RefreshToken: refresh.Value,
		AccessExp:    access.ExpiresAt,
		RefreshExp:   refresh.ExpiresAt,
	}, nil
}
