package handlers

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mk-ui-dev/renovation-concierge/internal/session"
)

// The portal frontend is a separate build; these shells exist so the
// page routes (and the gate in front of them) have something real to
// serve, and so curl against a bare deployment shows sensible pages.
const pageTemplates = `
{{define "login"}}<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Sign in · Renovation Concierge</title></head>
<body>
<main>
  <h1>Sign in</h1>
  <form method="post" action="/api/auth/login" id="login-form">
    <label>Email <input type="email" name="email" autocomplete="username" required></label>
    <label>Password <input type="password" name="password" autocomplete="current-password" required></label>
    <button type="submit">Sign in</button>
  </form>
</main>
</body>
</html>{{end}}

{{define "shell"}}<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}} · Renovation Concierge</title></head>
<body>
<header>
  <h1>{{.Title}}</h1>
  {{if .Name}}<p>Signed in as {{.Name}}</p>{{end}}
</header>
<main id="app" data-area="{{.Area}}"></main>
</body>
</html>{{end}}
`

func PageTemplates() *template.Template {
	return template.Must(template.New("pages").Parse(pageTemplates))
}

type PagesHandler struct {
	session *session.Accessor
}

func NewPagesHandler(sess *session.Accessor) *PagesHandler {
	return &PagesHandler{session: sess}
}

func (h *PagesHandler) Login(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "login", nil)
}

func (h *PagesHandler) AdminShell(ctx *gin.Context) {
	ident, _ := h.session.CurrentUser(ctx)

	ctx.HTML(http.StatusOK, "shell", gin.H{
		"Title": "Dashboard",
		"Area":  "admin",
		"Name":  ident.Name,
	})
}

func (h *PagesHandler) ClientShell(ctx *gin.Context) {
	ident, _ := h.session.CurrentUser(ctx)

	ctx.HTML(http.StatusOK, "shell", gin.H{
		"Title": "My project",
		"Area":  "client",
		"Name":  ident.Name,
	})
}
