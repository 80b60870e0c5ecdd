package expenses

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/shared"
	"github.com/communityhub/communityhub/internal/view"
)

// Handler wires HTTP endpoints for the expenses page.
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

// MountRoutes registers expense routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.submit)
	r.Post("/{id}/approve", h.approve)
	r.Post("/{id}/reject", h.reject)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := access.ActorFromContext(r.Context())
	status := Status(r.URL.Query().Get("status"))

	expenses, err := h.service.List(r.Context(), actor, status)
	data := map[string]any{
		"Expenses":   expenses,
		"Status":     string(status),
		"IsReviewer": isReviewer(actor),
		"Errors":     map[string]string{},
	}
	if err != nil {
		h.logger.Error("list expenses", slog.Any("error", err))
		data["LoadError"] = shared.UserSafeMessage(err)
	}
	h.render(w, r, data, http.StatusOK)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actor := access.ActorFromContext(r.Context())

	amount, _ := strconv.ParseInt(r.PostFormValue("amount"), 10, 64)
	incurredAt, _ := time.Parse("2006-01-02", r.PostFormValue("incurred_at"))
	_, err := h.service.Submit(r.Context(), actor, Expense{
		Category:    Category(r.PostFormValue("category")),
		Vendor:      r.PostFormValue("vendor"),
		Description: r.PostFormValue("description"),
		Amount:      amount,
		IncurredAt:  incurredAt,
		ReceiptRef:  r.PostFormValue("receipt_ref"),
	})
	if err != nil {
		h.logger.Warn("submit expense", slog.Any("error", err))
		message := shared.UserSafeMessage(err)
		if err == ErrCategoryInvalid {
			message = "Kategori pengeluaran tidak dikenal"
		}
		h.redirectWithFlash(w, r, "error", message)
		return
	}
	h.redirectWithFlash(w, r, "success", "Pengeluaran diajukan")
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "Pengeluaran disetujui", h.service.Approve)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "Pengeluaran ditolak", h.service.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, okMessage string, fn func(ctx context.Context, actor *access.Actor, id int64, note string) error) {
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

	if err := fn(r.Context(), actor, id, r.PostFormValue("note")); err != nil {
		h.logger.Warn("decide expense", slog.Int64("id", id), slog.Any("error", err))
		message := shared.UserSafeMessage(err)
		if err == ErrAlreadyDecided {
			message = "Pengeluaran sudah diputuskan"
		}
		h.redirectWithFlash(w, r, "error", message)
		return
	}
	h.redirectWithFlash(w, r, "success", okMessage)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data map[string]any, status int) {
	viewData := view.PageData(r, h.csrf, access.PageExpenses, "Pengeluaran", data)
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/expenses.html", viewData); err != nil {
		h.logger.Error("render expenses", slog.Any("error", err))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, access.PageExpenses.Path(), http.StatusSeeOther)
}
