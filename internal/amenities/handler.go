package amenities

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

// Handler wires HTTP endpoints for the amenities page.
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

// MountRoutes registers amenity routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.saveAmenity)
	r.Post("/bookings", h.book)
	r.Post("/bookings/{id}/cancel", h.cancel)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := access.ActorFromContext(r.Context())

	day := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			day = parsed
		}
	}

	catalogue, err := h.service.ListAmenities(r.Context(), actor)
	data := map[string]any{
		"Amenities": catalogue,
		"Day":       day,
		"IsAdmin":   isCatalogueAdmin(actor),
		"Errors":    map[string]string{},
	}
	if err != nil {
		h.logger.Error("list amenities", slog.Any("error", err))
		data["LoadError"] = shared.UserSafeMessage(err)
	}
	if schedule, err := h.service.BookingsOn(r.Context(), actor, day); err == nil {
		data["Schedule"] = schedule
	} else {
		h.logger.Error("list bookings", slog.Any("error", err))
	}
	if mine, err := h.service.MyBookings(r.Context(), actor); err == nil {
		data["MyBookings"] = mine
	} else {
		h.logger.Error("list my bookings", slog.Any("error", err))
	}
	h.render(w, r, data, http.StatusOK)
}

func (h *Handler) saveAmenity(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actor := access.ActorFromContext(r.Context())

	id, _ := strconv.ParseInt(r.PostFormValue("id"), 10, 64)
	capacity, _ := strconv.Atoi(r.PostFormValue("capacity"))
	amenity := Amenity{
		ID:          id,
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		Capacity:    capacity,
		OpensAt:     r.PostFormValue("opens_at"),
		ClosesAt:    r.PostFormValue("closes_at"),
		Active:      r.PostFormValue("active") != "",
	}

	if _, err := h.service.SaveAmenity(r.Context(), actor, amenity); err != nil {
		h.logger.Warn("save amenity", slog.Any("error", err))
		h.redirectWithFlash(w, r, "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "success", "Fasilitas disimpan")
}

func (h *Handler) book(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actor := access.ActorFromContext(r.Context())

	amenityID, _ := strconv.ParseInt(r.PostFormValue("amenity_id"), 10, 64)
	unitID, _ := strconv.ParseInt(r.PostFormValue("unit_id"), 10, 64)
	date, err := time.Parse("2006-01-02", r.PostFormValue("date"))
	if err != nil {
		h.redirectWithFlash(w, r, "error", "Tanggal pemesanan tidak valid")
		return
	}

	_, err = h.service.Book(r.Context(), actor, Booking{
		AmenityID: amenityID,
		UnitID:    unitID,
		Date:      date,
		StartsAt:  r.PostFormValue("starts_at"),
		EndsAt:    r.PostFormValue("ends_at"),
	})
	if err != nil {
		h.logger.Warn("book amenity", slog.Any("error", err))
		message := shared.UserSafeMessage(err)
		switch err {
		case ErrOutsideHours:
			message = "Jadwal di luar jam operasional fasilitas"
		case ErrInactive:
			message = "Fasilitas sedang tidak menerima pemesanan"
		}
		h.redirectWithFlash(w, r, "error", message)
		return
	}
	h.redirectWithFlash(w, r, "success", "Pemesanan fasilitas dibuat")
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actor := access.ActorFromContext(r.Context())

	if err := h.service.Cancel(r.Context(), actor, id); err != nil {
		h.logger.Warn("cancel booking", slog.Int64("id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "success", "Pemesanan dibatalkan")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data map[string]any, status int) {
	viewData := view.PageData(r, h.csrf, access.PageAmenities, "Fasilitas", data)
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/amenities.html", viewData); err != nil {
		h.logger.Error("render amenities", slog.Any("error", err))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, access.PageAmenities.Path(), http.StatusSeeOther)
}
