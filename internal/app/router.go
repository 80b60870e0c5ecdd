package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/amenities"
	"github.com/communityhub/communityhub/internal/auth"
	"github.com/communityhub/communityhub/internal/billing"
	"github.com/communityhub/communityhub/internal/bulkops"
	"github.com/communityhub/communityhub/internal/dashboard"
	"github.com/communityhub/communityhub/internal/directory"
	"github.com/communityhub/communityhub/internal/expenses"
	"github.com/communityhub/communityhub/internal/helpdesk"
	"github.com/communityhub/communityhub/internal/maintenance"
	"github.com/communityhub/communityhub/internal/notices"
	"github.com/communityhub/communityhub/internal/observability"
	"github.com/communityhub/communityhub/internal/setup"
	"github.com/communityhub/communityhub/internal/shared"
	"github.com/communityhub/communityhub/internal/view"
	"github.com/communityhub/communityhub/internal/visitors"
	"github.com/communityhub/communityhub/jobs"
	"github.com/communityhub/communityhub/report"
	"github.com/communityhub/communityhub/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Actors         ActorLoader
	Metrics        *observability.Metrics

	AuthHandler        *auth.Handler
	SetupHandler       *setup.Handler
	DashboardHandler   *dashboard.Handler
	NoticesHandler     *notices.Handler
	HelpdeskHandler    *helpdesk.Handler
	VisitorsHandler    *visitors.Handler
	AmenitiesHandler   *amenities.Handler
	DirectoryHandler   *directory.Handler
	MaintenanceHandler *maintenance.Handler
	ExpensesHandler    *expenses.Handler
	BulkOpsHandler     *bulkops.Handler
	BillingHandler     *billing.Handler
	ReportHandler      *report.Handler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with CommunityHub defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Actors:         params.Actors,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// The root handler replays the last viewed page. The stored value is a
	// hint only: it passes back through Resolve, so a role change since the
	// last visit lands on the grant fallback instead.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		actor := access.ActorFromContext(r.Context())
		if actor == nil {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		requested := access.Allowed(actor.Role).Fallback
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			if page, ok := access.ParsePage(sess.Get(access.LastPageSessionKey)); ok {
				requested = page
			}
		}
		resolved := access.Resolve(actor, requested)
		http.Redirect(w, r, resolved.Path(), http.StatusSeeOther)
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	guard := access.Guard{Logger: params.Logger}
	mount := func(page access.Page, h interface{ MountRoutes(chi.Router) }) {
		r.Route(page.Path(), func(r chi.Router) {
			r.Use(guard.RequirePage(page))
			h.MountRoutes(r)
		})
	}

	mount(access.PageDashboard, params.DashboardHandler)
	mount(access.PageNotices, params.NoticesHandler)
	mount(access.PageHelpdesk, params.HelpdeskHandler)
	mount(access.PageVisitors, params.VisitorsHandler)
	mount(access.PageAmenities, params.AmenitiesHandler)
	mount(access.PageDirectory, params.DirectoryHandler)
	mount(access.PageMaintenance, params.MaintenanceHandler)
	mount(access.PageExpenses, params.ExpensesHandler)
	mount(access.PageBulkOperations, params.BulkOpsHandler)
	mount(access.PageCommunitySetup, params.SetupHandler)
	mount(access.PageBilling, params.BillingHandler)

	if params.ReportHandler != nil {
		r.Route("/report", params.ReportHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		// Static assets carry no session state, so they skip straight to the
		// file server with browser caching enabled.
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
