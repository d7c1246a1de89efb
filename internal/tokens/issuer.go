package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var errEmptySecret = errors.New("signing secret is empty")

type Issuer struct {
	cfg   Config
	clock clock
}

func NewIssuer(cfg Config, opts ...Option) *Issuer {
	return &Issuer{cfg: cfg.withDefaults(), clock: newClock(opts)}
}

func (i *Issuer) AccessTTL() time.Duration  { return i.cfg.AccessTTL }
func (i *Issuer) RefreshTTL() time.Duration { return i.cfg.RefreshTTL }

func (i *Issuer) IssueAccessToken(subject, email string) (Token, error) {
	return i.sign(subject, email, i.cfg.AccessTTL, i.cfg.AccessSecret)
}

func (i *Issuer) IssueRefreshToken(subject, email string) (Token, error) {
	return i.sign(subject, email, i.cfg.RefreshTTL, i.cfg.RefreshSecret)
}

func (i *Issuer) sign(subject, email string, ttl time.Duration, secret []byte) (Token, error) {
	if len(secret) == 0 {
		return Token{}, errEmptySecret
	}

	now := i.clock.now()
	exp := now.Add(ttl)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	return Token{Value: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}
