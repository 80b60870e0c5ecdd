package bulkops

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/shared"
	"github.com/communityhub/communityhub/internal/view"
)

// CommunityNamer resolves the community name placed in invite mail.
type CommunityNamer interface {
	CommunityName(ctx context.Context, id int64) (string, error)
}

// Handler wires HTTP endpoints for the bulk registration page.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	names     CommunityNamer
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, names CommunityNamer, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, names: names, templates: templates, csrf: csrf}
}

// MountRoutes registers bulk registration routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.form)
	r.Post("/", h.run)
}

func (h *Handler) form(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, map[string]any{"Errors": map[string]string{}}, http.StatusOK)
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actor := access.ActorFromContext(r.Context())

	names := r.PostForm["name"]
	emails := r.PostForm["email"]
	roles := r.PostForm["role"]
	unitIDs := r.PostForm["unit_id"]
	if len(names) != len(emails) || len(names) != len(roles) || len(names) != len(unitIDs) {
		h.redirectWithFlash(w, r, "error", "Baris formulir tidak lengkap")
		return
	}

	rows := make([]Row, 0, len(names))
	for i := range names {
		if names[i] == "" && emails[i] == "" {
			continue // trailing empty row from the form
		}
		unitID, _ := strconv.ParseInt(unitIDs[i], 10, 64)
		rows = append(rows, Row{Name: names[i], Email: emails[i], Role: roles[i], UnitID: unitID})
	}

	communityName, err := h.names.CommunityName(r.Context(), actor.CommunityID)
	if err != nil {
		h.logger.Warn("community name", slog.Any("error", err))
	}

	summary, err := h.service.Run(r.Context(), actor, communityName, rows)
	if err != nil {
		h.logger.Warn("bulk run", slog.Any("error", err))
		message := shared.UserSafeMessage(err)
		switch err {
		case ErrRunInProgress:
			message = "Registrasi massal lain sedang berjalan, coba lagi nanti"
		case ErrEmptyBatch:
			message = "Tidak ada baris untuk diproses"
		}
		h.redirectWithFlash(w, r, "error", message)
		return
	}

	h.render(w, r, map[string]any{
		"Summary": summary,
		"Errors":  map[string]string{},
	}, http.StatusOK)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data map[string]any, status int) {
	viewData := view.PageData(r, h.csrf, access.PageBulkOperations, "Registrasi Massal", data)
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/bulkops.html", viewData); err != nil {
		h.logger.Error("render bulkops", slog.Any("error", err))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, access.PageBulkOperations.Path(), http.StatusSeeOther)
}
