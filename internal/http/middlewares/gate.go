package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mk-ui-dev/renovation-concierge/internal/config"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/user"
)

// PathCategory is the gate's view of a request path. Everything that is
// not the login page or one of the two portal areas is public and
// passes through untouched (static assets, health, metrics, /api —
// API routes do their own guarding with JSON errors, not redirects).
type PathCategory string

const (
	CategoryPublic     PathCategory = "public"
	CategoryLogin      PathCategory = "login"
	CategoryAdminArea  PathCategory = "admin_area"
	CategoryClientArea PathCategory = "client_area"
)

// Decision is the gate's verdict for one request: either let it reach
// the handler or redirect it somewhere it belongs.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// SessionReader is the slice of the session accessor the gate needs.
type SessionReader interface {
	CurrentUser(ctx *gin.Context) (user.Identity, bool)
}

// Gate runs once in front of every page request and decides, from the
// path category and the session state alone, whether to pass, bounce to
// login, or bounce to the caller's home area. Token verification
// failures never produce an error response here; a bad token is simply
// an absent one.
type Gate struct {
	session SessionReader
	routes  config.Routes
}

func NewGate(session SessionReader, routes config.Routes) *Gate {
	if routes.LoginPath == "" {
		routes.LoginPath = "/login"
	}
	if routes.AdminPrefix == "" {
		routes.AdminPrefix = "/dashboard"
	}
	if routes.ClientPrefix == "" {
		routes.ClientPrefix = "/client"
	}

	return &Gate{
		session: session,
		routes:  routes,
	}
}

// Categorize buckets a request path. Login matches exactly; the two
// areas match by prefix, longest prefix winning if a deployment ever
// nests one under the other.
func (g *Gate) Categorize(path string) PathCategory {
	if path == g.routes.LoginPath {
		return CategoryLogin
	}

	category := CategoryPublic
	longest := 0

	if matchesPrefix(path, g.routes.AdminPrefix) && len(g.routes.AdminPrefix) > longest {
		category = CategoryAdminArea
		longest = len(g.routes.AdminPrefix)
	}

	if matchesPrefix(path, g.routes.ClientPrefix) && len(g.routes.ClientPrefix) > longest {
		category = CategoryClientArea
	}

	return category
}

// Decide implements the authorization table. It is total: every
// (category, session-state) pair lands on exactly one verdict.
func (g *Gate) Decide(category PathCategory, ident user.Identity, authenticated bool) Decision {
	switch category {
	case CategoryLogin:
		if !authenticated {
			return Decision{Allow: true}
		}
		// Already signed in; the login page is not for you.
		return Decision{RedirectTo: g.homeFor(ident.Role)}

	case CategoryAdminArea:
		if !authenticated {
			return Decision{RedirectTo: g.routes.LoginPath}
		}
		if ident.Role == user.RoleAdmin {
			return Decision{Allow: true}
		}
		return Decision{RedirectTo: g.routes.ClientPrefix}

	case CategoryClientArea:
		if !authenticated {
			return Decision{RedirectTo: g.routes.LoginPath}
		}
		if ident.Role == user.RoleClient {
			return Decision{Allow: true}
		}
		return Decision{RedirectTo: g.routes.AdminPrefix}

	default:
		return Decision{Allow: true}
	}
}

func (g *Gate) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		category := g.Categorize(ctx.Request.URL.Path)

		if category == CategoryPublic {
			ctx.Next()
			return
		}

		ident, authenticated := g.session.CurrentUser(ctx)

		decision := g.Decide(category, ident, authenticated)

		if decision.Allow {
			ctx.Next()
			return
		}

		ctx.Redirect(http.StatusFound, decision.RedirectTo)
		ctx.Abort()
	}
}

func (g *Gate) homeFor(role user.Role) string {
	if role == user.RoleAdmin {
		return g.routes.AdminPrefix
	}
	return g.routes.ClientPrefix
}

// matchesPrefix treats the prefix as a path segment boundary, so
// "/client" matches "/client" and "/client/projects" but not "/clients".
func matchesPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
