package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/user"
)

// Verification failures. Callers that gate requests treat all three the
// same way (no authenticated identity); the distinction exists for tests
// and logs, and must never leak into user-facing responses.
var (
	ErrMalformed        = errors.New("token malformed")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
)

// ErrMissingSecret aborts startup: running with a guessable default
// secret is worse than not running at all.
var ErrMissingSecret = errors.New("jwt signing secret is not configured")

type Claims struct {
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  user.Role `json:"role"`
	jwt.RegisteredClaims
}

// Codec mints and verifies the portal's session tokens. The secret is
// injected at construction so the codec never reads process environment
// on the request path and tests can run with arbitrary secrets.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
	}, nil
}

// TTL is the token validity window; the session cookie's Max-Age is kept
// in lockstep with it.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue freezes the identity's public fields into a signed HS256 token.
// The role inside the token is a snapshot taken now: a role change on
// the backing user is not visible until the next login.
func (c *Codec) Issue(ident user.Identity) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		Email: ident.Email,
		Name:  ident.Name,
		Role:  ident.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ident.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(c.secret)
}

// Verify checks the MAC and the embedded expiry and returns the identity
// snapshot the token carries. Pure CPU work, no I/O.
func (c *Codec) Verify(raw string) (user.Identity, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HMAC; an attacker must not be able to pick the algorithm.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return c.secret, nil
	})

	if err != nil {
		return user.Identity{}, classifyJWTError(err)
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return user.Identity{}, ErrMalformed
	}

	if claims.Subject == "" || !claims.Role.IsValid() {
		return user.Identity{}, ErrMalformed
	}

	return user.Identity{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}, nil
}

func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrInvalidSignature):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return ErrMalformed
	}
}
