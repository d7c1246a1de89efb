package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token is expired")
	ErrMalformed        = errors.New("token is malformed")
)

var errUnexpectedSignMethod = errors.New("unexpected sign method")

type Verifier struct {
	cfg   Config
	clock clock
}

func NewVerifier(cfg Config, opts ...Option) *Verifier {
	return &Verifier{cfg: cfg.withDefaults(), clock: newClock(opts)}
}

func (v *Verifier) VerifyAccess(token string) (*Claims, error) {
	return v.Verify(token, v.cfg.AccessSecret)
}

func (v *Verifier) VerifyRefresh(token string) (*Claims, error) {
	return v.Verify(token, v.cfg.RefreshSecret)
}

// Verify checks the HS256 signature and the embedded expiry. Every failure
// wraps exactly one of ErrInvalidSignature, ErrExpired or ErrMalformed.
func (v *Verifier) Verify(token string, secret []byte) (*Claims, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, errEmptySecret)
	}

	var claims Claims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errUnexpectedSignMethod
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		// exp is truncated to whole seconds; a token is still valid at its exp second.
		jwt.WithLeeway(time.Second),
		jwt.WithTimeFunc(v.clock.now),
	)
	if err != nil {
		return nil, classify(err)
	}
	if !tkn.Valid {
		return nil, ErrMalformed
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrMalformed)
	}

	return &claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, errUnexpectedSignMethod):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

// Kind names the verification failure for logs. It is never sent to clients.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	default:
		return "unknown"
	}
}
