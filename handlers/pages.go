// ABOUTME: Server-rendered page shells for the portal
// ABOUTME: Minimal HTML frames; the data on each page is loaded from the API

package handlers

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gaelxxl34/whoiswho-portal/middleware"
	"github.com/gaelxxl34/whoiswho-portal/models"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} | Who is Who</title>
</head>
<body data-page="{{.Slug}}">
<header>
<h1>{{.Title}}</h1>
{{if .User}}<nav><span>{{.DisplayName}}</span> <a href="#" id="logout">Sign out</a></nav>{{end}}
</header>
<main id="app"></main>
<script src="/static/portal.js"></script>
</body>
</html>
`))

type pageData struct {
	Title       string
	Slug        string
	User        *models.UserRecord
	DisplayName string
}

// Page returns a handler rendering the shell for one portal screen. Role
// gating happens in middleware before this runs.
func (h *Handler) Page(title, slug string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middleware.CurrentUser(r)
		data := pageData{Title: title, Slug: slug, User: user}
		if user != nil {
			data.DisplayName = user.DisplayName()
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := pageTemplate.Execute(w, data); err != nil {
			slog.Error("Page render failed", "slug", slug, "error", err)
		}
	}
}

// Home routes the bare origin: authenticated visitors go to their dashboard,
// everyone else to the login screen.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if user := middleware.CurrentUser(r); user != nil {
		http.Redirect(w, r, user.DashboardPath(), http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}
