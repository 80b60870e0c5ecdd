package visitors

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

// Handler wires HTTP endpoints for the visitor log page.
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

// MountRoutes registers visitor log routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.preauthorize)
	r.Post("/lookup", h.lookup)
	r.Post("/{id}/check-in", h.checkIn)
	r.Post("/{id}/check-out", h.checkOut)
	r.Post("/{id}/deny", h.deny)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := access.ActorFromContext(r.Context())

	visits, err := h.service.ListFor(r.Context(), actor)
	data := map[string]any{
		"Visits":  visits,
		"IsStaff": isGateStaff(actor),
		"Errors":  map[string]string{},
	}
	if err != nil {
		h.logger.Error("list visits", slog.Any("error", err))
		data["LoadError"] = shared.UserSafeMessage(err)
	}
	h.render(w, r, data, http.StatusOK)
}

func (h *Handler) preauthorize(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actor := access.ActorFromContext(r.Context())

	unitID, _ := strconv.ParseInt(r.PostFormValue("unit_id"), 10, 64)
	expectedOn, err := time.Parse("2006-01-02", r.PostFormValue("expected_on"))
	if err != nil {
		h.redirectWithFlash(w, r, "error", "Tanggal kunjungan tidak valid")
		return
	}

	visit, err := h.service.Preauthorize(r.Context(), actor, Visit{
		UnitID:     unitID,
		Name:       r.PostFormValue("name"),
		Phone:      r.PostFormValue("phone"),
		Purpose:    r.PostFormValue("purpose"),
		ExpectedOn: expectedOn,
	})
	if err != nil {
		h.logger.Warn("preauthorize visit", slog.Any("error", err))
		h.redirectWithFlash(w, r, "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "success", "Tamu terdaftar, kode akses: "+visit.GatePass)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actor := access.ActorFromContext(r.Context())

	visit, err := h.service.Lookup(r.Context(), actor, r.PostFormValue("gate_pass"))
	if err != nil {
		message := shared.UserSafeMessage(err)
		if err == ErrGatePassInvalid {
			message = "Kode akses tidak ditemukan"
		}
		h.redirectWithFlash(w, r, "error", message)
		return
	}

	visits, listErr := h.service.ListFor(r.Context(), actor)
	if listErr != nil {
		h.logger.Error("list visits", slog.Any("error", listErr))
	}
	h.render(w, r, map[string]any{
		"Visits":  visits,
		"Lookup":  visit,
		"IsStaff": true,
		"Errors":  map[string]string{},
	}, http.StatusOK)
}

func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request) {
	h.gateAction(w, r, "Tamu dicatat masuk", func(actor *access.Actor, id int64) error {
		return h.service.CheckIn(r.Context(), actor, id)
	})
}

func (h *Handler) checkOut(w http.ResponseWriter, r *http.Request) {
	h.gateAction(w, r, "Tamu dicatat keluar", func(actor *access.Actor, id int64) error {
		return h.service.CheckOut(r.Context(), actor, id)
	})
}

func (h *Handler) deny(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	note := r.PostFormValue("note")
	h.gateAction(w, r, "Tamu ditolak", func(actor *access.Actor, id int64) error {
		return h.service.Deny(r.Context(), actor, id, note)
	})
}

func (h *Handler) gateAction(w http.ResponseWriter, r *http.Request, okMessage string, fn func(*access.Actor, int64) error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actor := access.ActorFromContext(r.Context())

	if err := fn(actor, id); err != nil {
		h.logger.Warn("gate action", slog.Int64("id", id), slog.Any("error", err))
		message := shared.UserSafeMessage(err)
		if err == ErrInvalidTransition {
			message = "Status kunjungan tidak dapat diubah"
		}
		h.redirectWithFlash(w, r, "error", message)
		return
	}
	h.redirectWithFlash(w, r, "success", okMessage)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data map[string]any, status int) {
	viewData := view.PageData(r, h.csrf, access.PageVisitors, "Buku Tamu", data)
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/visitors.html", viewData); err != nil {
		h.logger.Error("render visitors", slog.Any("error", err))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, access.PageVisitors.Path(), http.StatusSeeOther)
}
