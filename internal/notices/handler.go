package notices

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/shared"
	"github.com/communityhub/communityhub/internal/view"
)

// Handler wires HTTP endpoints for the notice board page.
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

// MountRoutes registers notice routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/{id}", h.update)
	r.Post("/{id}/delete", h.remove)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := access.ActorFromContext(r.Context())

	var (
		items []Notice
		err   error
	)
	if actor.Role == access.RoleCommunityAdmin && r.URL.Query().Get("archive") == "1" {
		items, err = h.service.ListAll(r.Context(), actor.CommunityID)
	} else {
		items, err = h.service.List(r.Context(), actor.CommunityID)
	}

	data := map[string]any{
		"Notices":  items,
		"CanWrite": actor.Role == access.RoleCommunityAdmin,
		"Errors":   map[string]string{},
	}
	if err != nil {
		// Fetch failure stays inside the page as an inline error state.
		h.logger.Error("list notices", slog.Any("error", err))
		data["LoadError"] = shared.UserSafeMessage(err)
	}
	h.render(w, r, data, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actor := access.ActorFromContext(r.Context())

	notice := Notice{
		Title:    r.PostFormValue("title"),
		Body:     r.PostFormValue("body"),
		Category: Category(r.PostFormValue("category")),
		Pinned:   r.PostFormValue("pinned") == "on",
	}
	if raw := r.PostFormValue("expires_at"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			notice.ExpiresAt = &t
		}
	}

	if _, err := h.service.Create(r.Context(), actor, notice); err != nil {
		h.logger.Warn("create notice", slog.Any("error", err))
		h.redirectWithFlash(w, r, "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "success", "Pengumuman berhasil diterbitkan")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actor := access.ActorFromContext(r.Context())

	notice := Notice{
		ID:       id,
		Title:    r.PostFormValue("title"),
		Body:     r.PostFormValue("body"),
		Category: Category(r.PostFormValue("category")),
		Pinned:   r.PostFormValue("pinned") == "on",
	}
	if raw := r.PostFormValue("expires_at"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			notice.ExpiresAt = &t
		}
	}

	if err := h.service.Update(r.Context(), actor, notice); err != nil {
		h.logger.Warn("update notice", slog.Int64("id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "success", "Pengumuman diperbarui")
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actor := access.ActorFromContext(r.Context())

	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		h.logger.Warn("delete notice", slog.Int64("id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "success", "Pengumuman dihapus")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data map[string]any, status int) {
	viewData := view.PageData(r, h.csrf, access.PageNotices, "Pengumuman", data)
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/notices.html", viewData); err != nil {
		h.logger.Error("render notices", slog.Any("error", err))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, access.PageNotices.Path(), http.StatusSeeOther)
}
