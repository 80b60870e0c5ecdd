package billing

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/shared"
	"github.com/communityhub/communityhub/internal/view"
)

// Handler wires HTTP endpoints for the subscription page.
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

// MountRoutes registers billing routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{communityID}/invoices", h.invoices)
	r.Post("/invoices/{id}/pay", h.markPaid)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := access.ActorFromContext(r.Context())

	accounts, err := h.service.Accounts(r.Context(), actor)
	data := map[string]any{
		"Accounts": accounts,
		"Errors":   map[string]string{},
	}
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		data["LoadError"] = shared.UserSafeMessage(err)
	}
	h.render(w, r, data, http.StatusOK)
}

func (h *Handler) invoices(w http.ResponseWriter, r *http.Request) {
	communityID, err := strconv.ParseInt(chi.URLParam(r, "communityID"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actor := access.ActorFromContext(r.Context())

	invoices, err := h.service.Invoices(r.Context(), actor, communityID)
	data := map[string]any{
		"Invoices":    invoices,
		"CommunityID": communityID,
		"Errors":      map[string]string{},
	}
	if err != nil {
		h.logger.Error("list invoices", slog.Int64("community", communityID), slog.Any("error", err))
		data["LoadError"] = shared.UserSafeMessage(err)
	}
	h.render(w, r, data, http.StatusOK)
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actor := access.ActorFromContext(r.Context())

	if err := h.service.MarkInvoicePaid(r.Context(), actor, id); err != nil {
		h.logger.Warn("mark invoice paid", slog.Int64("id", id), slog.Any("error", err))
		message := shared.UserSafeMessage(err)
		if err == ErrInvoicePaid {
			message = "Tagihan sudah lunas"
		}
		h.redirectWithFlash(w, r, "error", message)
		return
	}
	h.redirectWithFlash(w, r, "success", "Tagihan ditandai lunas")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data map[string]any, status int) {
	viewData := view.PageData(r, h.csrf, access.PageBilling, "Langganan", data)
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/billing.html", viewData); err != nil {
		h.logger.Error("render billing", slog.Any("error", err))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, access.PageBilling.Path(), http.StatusSeeOther)
}
