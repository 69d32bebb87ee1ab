package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/user"
	"github.com/mk-ui-dev/renovation-concierge/internal/observability"
	"github.com/mk-ui-dev/renovation-concierge/internal/repo/postgres"
	"github.com/mk-ui-dev/renovation-concierge/internal/security"
	"github.com/mk-ui-dev/renovation-concierge/internal/session"
)

// dummyHash is a bcrypt hash of a random string. When the email does not
// resolve to a user we still run one compare against it, so the
// unknown-email path costs roughly the same as the wrong-password path.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type TokenIssuer interface {
	Issue(ident user.Identity) (string, error)
	TTL() time.Duration
}

type AuthHandler struct {
	users         UserReader
	tokens        TokenIssuer
	session       *session.Accessor
	secureCookies bool
	prom          *observability.Prom
	log           *slog.Logger
}

func NewAuthHandler(users UserReader, tokens TokenIssuer, sess *session.Accessor, secureCookies bool, prom *observability.Prom, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:         users,
		tokens:        tokens,
		session:       sess,
		secureCookies: secureCookies,
		prom:          prom,
		log:           log,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials, mints a session token and sets it as an
// http-only cookie. Unknown email and wrong password produce the exact
// same response; the caller learns nothing about which one it was.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	dbCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.users.GetByEmail(dbCtx, req.Email)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			_ = security.CheckPassword(dummyHash, req.Password)
			h.rejectLogin(ctx)
			return
		}

		h.log.Error("login lookup failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	if err := security.CheckPassword(u.PasswordHash, req.Password); err != nil {
		h.rejectLogin(ctx)
		return
	}

	ident := u.Identity()

	token, err := h.tokens.Issue(ident)

	if err != nil {
		h.log.Error("token issue failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	h.setSessionCookie(ctx, token, int(h.tokens.TTL().Seconds()))

	if h.prom != nil {
		h.prom.LoginsTotal.WithLabelValues("success").Inc()
	}

	h.log.Info("login", "user_id", ident.ID, "role", ident.Role)

	ctx.JSON(http.StatusOK, gin.H{"user": ident})
}

func (h *AuthHandler) rejectLogin(ctx *gin.Context) {
	if h.prom != nil {
		h.prom.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
	}

	RespondUnauthorized(ctx, "invalid_credentials", "Email or password is incorrect")
}

// Logout clears the session cookie. Tokens are stateless, so the old
// token stays technically valid until its expiry; logout only removes it
// from the browser.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.setSessionCookie(ctx, "", -1)

	ctx.Status(http.StatusNoContent)
}

// Me resolves the current session to its identity snapshot. Handy for
// page shells that need to know who is logged in without a DB round trip.
func (h *AuthHandler) Me(ctx *gin.Context) {
	ident, err := h.session.RequireAuth(ctx)

	if err != nil {
		RespondGuardError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": ident})
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(h.session.CookieName(), token, maxAge, "/", "", h.secureCookies, true)
}
