package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/user"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeVerifier resolves one known token and fails everything else.
type fakeVerifier struct {
	token string
	ident user.Identity
}

func (f *fakeVerifier) Verify(raw string) (user.Identity, error) {
	if raw == f.token {
		return f.ident, nil
	}
	return user.Identity{}, errors.New("bad token")
}

func adminIdent() user.Identity {
	return user.Identity{ID: "admin-id", Email: "admin@example.com", Name: "Admin", Role: user.RoleAdmin}
}

func clientIdent() user.Identity {
	return user.Identity{ID: "client-id", Email: "client@example.com", Name: "Client", Role: user.RoleClient}
}

func requestContext(t *testing.T, cookie *http.Cookie) *gin.Context {
	t.Helper()

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)

	if cookie != nil {
		req.AddCookie(cookie)
	}

	ctx.Request = req

	return ctx
}

func TestCurrentUserNoCookie(t *testing.T) {
	a := NewAccessor(&fakeVerifier{}, "")

	_, ok := a.CurrentUser(requestContext(t, nil))

	if ok {
		t.Fatal("expected anonymous without cookie")
	}
}

func TestCurrentUserBadToken(t *testing.T) {
	a := NewAccessor(&fakeVerifier{token: "good", ident: clientIdent()}, "")

	ctx := requestContext(t, &http.Cookie{Name: DefaultCookieName, Value: "not-good"})

	_, ok := a.CurrentUser(ctx)

	if ok {
		t.Fatal("bad token must resolve to anonymous, not an error")
	}
}

func TestCurrentUserValidToken(t *testing.T) {
	a := NewAccessor(&fakeVerifier{token: "good", ident: clientIdent()}, "")

	ctx := requestContext(t, &http.Cookie{Name: DefaultCookieName, Value: "good"})

	ident, ok := a.CurrentUser(ctx)

	if !ok {
		t.Fatal("expected authenticated")
	}

	if ident != clientIdent() {
		t.Fatalf("identity mismatch: %+v", ident)
	}
}

func TestCustomCookieName(t *testing.T) {
	a := NewAccessor(&fakeVerifier{token: "good", ident: clientIdent()}, "portal-session")

	// token under the default name must be ignored
	ctx := requestContext(t, &http.Cookie{Name: DefaultCookieName, Value: "good"})

	if _, ok := a.CurrentUser(ctx); ok {
		t.Fatal("cookie under wrong name must not authenticate")
	}

	ctx = requestContext(t, &http.Cookie{Name: "portal-session", Value: "good"})

	if _, ok := a.CurrentUser(ctx); !ok {
		t.Fatal("cookie under configured name must authenticate")
	}
}

func TestRequireAuth(t *testing.T) {
	a := NewAccessor(&fakeVerifier{token: "good", ident: clientIdent()}, "")

	if _, err := a.RequireAuth(requestContext(t, nil)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	ctx := requestContext(t, &http.Cookie{Name: DefaultCookieName, Value: "good"})

	if _, err := a.RequireAuth(ctx); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name    string
		ident   user.Identity
		cookie  *http.Cookie
		wantErr error
	}{
		{"anonymous", adminIdent(), nil, ErrUnauthorized},
		{"client role", clientIdent(), &http.Cookie{Name: DefaultCookieName, Value: "good"}, ErrForbiddenRole},
		{"admin role", adminIdent(), &http.Cookie{Name: DefaultCookieName, Value: "good"}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := NewAccessor(&fakeVerifier{token: "good", ident: tc.ident}, "")

			_, err := a.RequireAdmin(requestContext(t, tc.cookie))

			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
