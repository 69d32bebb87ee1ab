package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/user"
	"github.com/mk-ui-dev/renovation-concierge/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubVerifier maps raw token strings straight to identities.
type stubVerifier struct {
	idents map[string]user.Identity
}

func (s *stubVerifier) Verify(raw string) (user.Identity, error) {
	ident, ok := s.idents[raw]

	if !ok {
		return user.Identity{}, errors.New("unknown token")
	}

	return ident, nil
}

const (
	projAID = "11111111-1111-1111-1111-111111111111"
	projBID = "22222222-2222-2222-2222-222222222222"
)

func adminIdent() user.Identity {
	return user.Identity{ID: "a0000000-0000-0000-0000-000000000001", Email: "admin@example.com", Name: "Admin", Role: user.RoleAdmin}
}

func clientAIdent() user.Identity {
	return user.Identity{ID: "c0000000-0000-0000-0000-00000000000a", Email: "a@example.com", Name: "Client A", Role: user.RoleClient}
}

func clientBIdent() user.Identity {
	return user.Identity{ID: "c0000000-0000-0000-0000-00000000000b", Email: "b@example.com", Name: "Client B", Role: user.RoleClient}
}

// testSession knows three tokens: "admin", "client-a", "client-b".
func testSession() *session.Accessor {
	return session.NewAccessor(&stubVerifier{idents: map[string]user.Identity{
		"admin":    adminIdent(),
		"client-a": clientAIdent(),
		"client-b": clientBIdent(),
	}}, "")
}

func doJSON(t *testing.T, r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader

	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: token})
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}
