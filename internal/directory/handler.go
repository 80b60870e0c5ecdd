package directory

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/shared"
	"github.com/communityhub/communityhub/internal/view"
)

// Handler wires HTTP endpoints for the member directory page.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// MountRoutes registers directory routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := access.ActorFromContext(r.Context())
	query := r.URL.Query().Get("q")

	entries, err := h.service.List(r.Context(), actor, query)
	data := map[string]any{
		"Entries": entries,
		"Query":   query,
	}
	if err != nil {
		h.logger.Error("list directory", slog.Any("error", err))
		data["LoadError"] = shared.UserSafeMessage(err)
	}

	viewData := view.PageData(r, h.csrf, access.PageDirectory, "Direktori Warga", data)
	w.WriteHeader(http.StatusOK)
	if err := h.templates.Render(w, "pages/directory.html", viewData); err != nil {
		h.logger.Error("render directory", slog.Any("error", err))
	}
}
