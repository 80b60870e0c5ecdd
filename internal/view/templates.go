package view

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/shared"
	"github.com/communityhub/communityhub/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates. Nav and BottomNav
// carry the chrome for both viewport surfaces; both are derived from the
// same permission table so they can never disagree.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	Actor       *access.Actor
	Nav         []access.NavItem
	BottomNav   []access.NavItem
	ActivePage  access.Page
	Data        any
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"formatDay": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006")
		},
		"formatMoney": func(amount float64) string {
			return fmt.Sprintf("Rp %.2f", amount)
		},
		"title": func(s string) string {
			return cases.Title(language.Und).String(strings.ReplaceAll(s, "_", " "))
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}

// PageData assembles TemplateData for an authenticated page render. The
// navigation lists are filtered through the permission table here, once, so
// no handler ever re-types a role→page mapping.
func PageData(r *http.Request, csrf *shared.CSRFManager, page access.Page, title string, data any) TemplateData {
	sess := shared.SessionFromContext(r.Context())
	actor := access.ActorFromContext(r.Context())

	csrfToken := ""
	if csrf != nil {
		csrfToken, _ = csrf.EnsureToken(r.Context(), sess)
	}
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}

	td := TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Actor:       actor,
		ActivePage:  page,
		Data:        data,
	}
	if actor != nil {
		td.Nav = access.VisibleNavItems(actor.Role, access.SidebarItems())
		td.BottomNav = access.VisibleNavItems(actor.Role, access.BottomNavItems())
	}
	return td
}
