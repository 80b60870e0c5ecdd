package maintenance

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
	"github.com/communityhub/communityhub/report"
)

// PDFRenderer converts receipt HTML into a PDF document.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// CommunityNamer resolves a community's display name for the receipt header.
type CommunityNamer interface {
	CommunityName(ctx context.Context, id int64) (string, error)
}

// Handler wires HTTP endpoints for the maintenance dues page.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	pdf       PDFRenderer
	names     CommunityNamer
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, pdf PDFRenderer, names CommunityNamer, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, pdf: pdf, names: names, templates: templates, csrf: csrf}
}

// MountRoutes registers maintenance routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.issue)
	r.Post("/{id}/pay", h.pay)
	r.Get("/{id}/receipt", h.receipt)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := access.ActorFromContext(r.Context())
	status := DueStatus(r.URL.Query().Get("status"))

	dues, err := h.service.ListFor(r.Context(), actor, status)
	data := map[string]any{
		"Dues":    dues,
		"Status":  string(status),
		"IsAdmin": isLedgerAdmin(actor),
		"PayKey":  shared.NewIdempotencyKey(),
		"Errors":  map[string]string{},
	}
	if err != nil {
		h.logger.Error("list dues", slog.Any("error", err))
		data["LoadError"] = shared.UserSafeMessage(err)
	}
	h.render(w, r, data, http.StatusOK)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actor := access.ActorFromContext(r.Context())

	unitID, _ := strconv.ParseInt(r.PostFormValue("unit_id"), 10, 64)
	amount, _ := strconv.ParseInt(r.PostFormValue("amount"), 10, 64)
	dueDate, err := time.Parse("2006-01-02", r.PostFormValue("due_date"))
	if err != nil {
		h.redirectWithFlash(w, r, "error", "Tanggal jatuh tempo tidak valid")
		return
	}

	_, err = h.service.Issue(r.Context(), actor, Due{
		UnitID:  unitID,
		Period:  r.PostFormValue("period"),
		Amount:  amount,
		DueDate: dueDate,
	})
	if err != nil {
		h.logger.Warn("issue due", slog.Any("error", err))
		message := shared.UserSafeMessage(err)
		if err == ErrBadPeriod {
			message = "Format periode harus TAHUN-BULAN"
		}
		h.redirectWithFlash(w, r, "error", message)
		return
	}
	h.redirectWithFlash(w, r, "success", "Tagihan iuran diterbitkan")
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
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

	key := r.PostFormValue("idempotency_key")
	if key == "" {
		h.redirectWithFlash(w, r, "error", "Formulir kedaluwarsa, muat ulang halaman")
		return
	}

	if _, err := h.service.RecordPayment(r.Context(), actor, id, key); err != nil {
		h.logger.Warn("record payment", slog.Int64("id", id), slog.Any("error", err))
		message := shared.UserSafeMessage(err)
		if err == ErrAlreadyPaid {
			message = "Tagihan sudah lunas"
		}
		h.redirectWithFlash(w, r, "error", message)
		return
	}
	h.redirectWithFlash(w, r, "success", "Pembayaran dicatat")
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actor := access.ActorFromContext(r.Context())

	due, err := h.service.Get(r.Context(), actor, id)
	if err != nil || due.Status != DuePaid {
		h.redirectWithFlash(w, r, "error", "Kuitansi tidak tersedia")
		return
	}

	paidAt := time.Now()
	if due.PaidAt != nil {
		paidAt = *due.PaidAt
	}
	communityName, err := h.names.CommunityName(r.Context(), actor.CommunityID)
	if err != nil {
		h.logger.Warn("community name", slog.Any("error", err))
	}
	pdf, err := h.pdf.RenderHTML(r.Context(), report.ReceiptHTML(report.Receipt{
		Community:  communityName,
		UnitLabel:  due.UnitLabel,
		Period:     due.Period,
		Amount:     due.Amount,
		PaymentRef: due.PaymentRef.String(),
		PaidAt:     paidAt,
	}))
	if err != nil {
		h.logger.Error("render receipt", slog.Int64("id", id), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=kuitansi-"+due.Period+".pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data map[string]any, status int) {
	viewData := view.PageData(r, h.csrf, access.PageMaintenance, "Iuran Pemeliharaan", data)
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/maintenance.html", viewData); err != nil {
		h.logger.Error("render maintenance", slog.Any("error", err))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, access.PageMaintenance.Path(), http.StatusSeeOther)
}
