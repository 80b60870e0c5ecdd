package helpdesk

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/shared"
	"github.com/communityhub/communityhub/internal/view"
)

// Handler wires HTTP endpoints for the help desk page.
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

// MountRoutes registers help desk routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Post("/{id}/status", h.transition)
	r.Post("/{id}/assign", h.assign)
	r.Post("/{id}/comments", h.comment)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := access.ActorFromContext(r.Context())

	tickets, err := h.service.ListFor(r.Context(), actor)
	data := map[string]any{
		"Tickets": tickets,
		"IsStaff": isStaff(actor),
		"Errors":  map[string]string{},
	}
	if err != nil {
		h.logger.Error("list tickets", slog.Any("error", err))
		data["LoadError"] = shared.UserSafeMessage(err)
	}
	h.render(w, r, "pages/helpdesk.html", data, http.StatusOK)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actor := access.ActorFromContext(r.Context())

	ticket, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.redirectWithFlash(w, r, "error", shared.UserSafeMessage(shared.ErrNotFound))
		return
	}
	comments, err := h.service.Comments(r.Context(), actor, id)
	if err != nil {
		h.logger.Error("list comments", slog.Int64("ticket", id), slog.Any("error", err))
	}
	h.render(w, r, "pages/helpdesk_detail.html", map[string]any{
		"Ticket":   ticket,
		"Comments": comments,
		"IsStaff":  isStaff(actor),
		"Errors":   map[string]string{},
	}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actor := access.ActorFromContext(r.Context())

	ticket := Ticket{
		Subject:     r.PostFormValue("subject"),
		Description: r.PostFormValue("description"),
		Category:    r.PostFormValue("category"),
		Priority:    Priority(r.PostFormValue("priority")),
	}
	if ticket.Priority == "" {
		ticket.Priority = PriorityNormal
	}

	if _, err := h.service.Create(r.Context(), actor, ticket); err != nil {
		h.logger.Warn("create ticket", slog.Any("error", err))
		h.redirectWithFlash(w, r, "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "success", "Tiket bantuan dibuat")
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
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

	target := Status(r.PostFormValue("status"))
	if err := h.service.Transition(r.Context(), actor, id, target); err != nil {
		h.logger.Warn("transition ticket", slog.Int64("id", id), slog.String("target", string(target)), slog.Any("error", err))
		message := shared.UserSafeMessage(err)
		if err == ErrInvalidTransition {
			message = "Perubahan status tidak diizinkan"
		}
		h.redirectWithFlash(w, r, "error", message)
		return
	}
	h.redirectWithFlash(w, r, "success", "Status tiket diperbarui")
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
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

	var assignee *int64
	if raw := r.PostFormValue("assignee_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		assignee = &parsed
	}

	if err := h.service.Assign(r.Context(), actor, id, assignee); err != nil {
		h.logger.Warn("assign ticket", slog.Int64("id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "success", "Petugas tiket diperbarui")
}

func (h *Handler) comment(w http.ResponseWriter, r *http.Request) {
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

	if _, err := h.service.Comment(r.Context(), actor, id, r.PostFormValue("body")); err != nil {
		h.logger.Warn("comment ticket", slog.Int64("id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, "error", shared.UserSafeMessage(err))
		return
	}
	http.Redirect(w, r, access.PageHelpdesk.Path()+"/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	viewData := view.PageData(r, h.csrf, access.PageHelpdesk, "Bantuan", data)
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render helpdesk", slog.Any("error", err), slog.String("template", template))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, access.PageHelpdesk.Path(), http.StatusSeeOther)
}
