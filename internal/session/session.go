package session

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/user"
)

// DefaultCookieName is the cookie the portal has always used; keep it
// stable so existing sessions survive deploys.
const DefaultCookieName = "auth-token"

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbiddenRole = errors.New("forbidden role")
)

// Keep this small interface so tests can fake the codec easily.
type TokenVerifier interface {
	Verify(raw string) (user.Identity, error)
}

// Accessor reads the session cookie off a request and resolves it to an
// identity. It deliberately collapses "no cookie" and "bad cookie" into
// the same anonymous outcome so callers cannot build an oracle out of
// the difference.
type Accessor struct {
	codec  TokenVerifier
	cookie string
}

func NewAccessor(codec TokenVerifier, cookieName string) *Accessor {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}

	return &Accessor{
		codec:  codec,
		cookie: cookieName,
	}
}

func (a *Accessor) CookieName() string {
	return a.cookie
}

// CurrentUser returns the identity carried by the request's session
// cookie, or false for anonymous. Verification failures of any kind
// (malformed, bad signature, expired) are downgraded to anonymous.
func (a *Accessor) CurrentUser(ctx *gin.Context) (user.Identity, bool) {
	raw, err := ctx.Cookie(a.cookie)

	if err != nil || raw == "" {
		return user.Identity{}, false
	}

	ident, err := a.codec.Verify(raw)

	if err != nil {
		return user.Identity{}, false
	}

	return ident, true
}

// RequireAuth is the API-handler guard: anonymous callers get
// ErrUnauthorized instead of a redirect.
func (a *Accessor) RequireAuth(ctx *gin.Context) (user.Identity, error) {
	ident, ok := a.CurrentUser(ctx)

	if !ok {
		return user.Identity{}, ErrUnauthorized
	}

	return ident, nil
}

// RequireAdmin layers a role check on top of RequireAuth.
func (a *Accessor) RequireAdmin(ctx *gin.Context) (user.Identity, error) {
	ident, err := a.RequireAuth(ctx)

	if err != nil {
		return user.Identity{}, err
	}

	if ident.Role != user.RoleAdmin {
		return user.Identity{}, ErrForbiddenRole
	}

	return ident, nil
}
