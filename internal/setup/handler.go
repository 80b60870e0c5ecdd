package setup

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/communityhub/communityhub/internal/access"
	"github.com/communityhub/communityhub/internal/community"
	"github.com/communityhub/communityhub/internal/shared"
	"github.com/communityhub/communityhub/internal/view"
)

// pendingCommunityKey holds the community chosen via join code until the
// resident claims a unit.
const pendingCommunityKey = "setup_pending_community"

// Handler serves the community setup page, the destination of the setup
// gate. Community admins create a community with its first units; residents
// join an existing one by code and claim a unit.
type Handler struct {
	logger      *slog.Logger
	communities *community.Service
	templates   *view.Engine
	csrf        *shared.CSRFManager
	validator   *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, communities *community.Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:      logger,
		communities: communities,
		templates:   templates,
		csrf:        csrf,
		validator:   validator.New(),
	}
}

// MountRoutes registers setup routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showSetup)
	r.Post("/community", h.handleCreateCommunity)
	r.Post("/join", h.handleJoin)
	r.Post("/claim", h.handleClaim)
}

type createCommunityForm struct {
	Name    string `validate:"required,min=3"`
	Address string
	Tower   string `validate:"required"`
	Number  string `validate:"required"`
}

type setupPageData struct {
	Role    access.Role
	Errors  map[string]string
	Pending *community.Community
	Units   []community.Unit
}

func (h *Handler) showSetup(w http.ResponseWriter, r *http.Request) {
	actor := access.ActorFromContext(r.Context())
	sess := shared.SessionFromContext(r.Context())

	data := setupPageData{Role: actor.Role, Errors: map[string]string{}}
	if sess != nil {
		// Resume an interrupted join flow if a community is already chosen.
		if raw := sess.Get(pendingCommunityKey); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				if units, err := h.communities.ListUnits(r.Context(), id); err == nil {
					data.Pending = &community.Community{ID: id}
					data.Units = units
				}
			}
		}
	}
	h.render(w, r, data, http.StatusOK)
}

func (h *Handler) handleCreateCommunity(w http.ResponseWriter, r *http.Request) {
	actor := access.ActorFromContext(r.Context())
	if actor.Role != access.RoleCommunityAdmin {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := createCommunityForm{
		Name:    r.PostFormValue("name"),
		Address: r.PostFormValue("address"),
		Tower:   r.PostFormValue("tower"),
		Number:  r.PostFormValue("number"),
	}
	errs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errs[fieldErr.Field()] = fieldErr.Error()
		}
	}
	if len(errs) > 0 {
		h.render(w, r, setupPageData{Role: actor.Role, Errors: errs}, http.StatusBadRequest)
		return
	}

	c, err := h.communities.CreateCommunity(r.Context(), form.Name, form.Address)
	if err != nil {
		h.logger.Error("create community", slog.Any("error", err))
		errs["general"] = shared.UserSafeMessage(err)
		h.render(w, r, setupPageData{Role: actor.Role, Errors: errs}, http.StatusBadRequest)
		return
	}
	unit, err := h.communities.AddUnit(r.Context(), c.ID, form.Tower, form.Number)
	if err == nil {
		_, err = h.communities.AssignUnit(r.Context(), actor.UserID, unit.ID, community.OccupancyOwner)
	}
	if err != nil {
		h.logger.Error("complete admin setup", slog.Any("error", err))
		errs["general"] = shared.UserSafeMessage(err)
		h.render(w, r, setupPageData{Role: actor.Role, Errors: errs}, http.StatusBadRequest)
		return
	}

	h.finish(w, r, "Komunitas berhasil dibuat. Kode gabung: "+c.JoinCode)
}

func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actor := access.ActorFromContext(r.Context())

	c, err := h.communities.JoinByCode(r.Context(), r.PostFormValue("join_code"))
	if err != nil {
		h.render(w, r, setupPageData{
			Role:   actor.Role,
			Errors: map[string]string{"join_code": "Kode gabung tidak ditemukan"},
		}, http.StatusBadRequest)
		return
	}

	units, err := h.communities.ListUnits(r.Context(), c.ID)
	if err != nil {
		h.logger.Error("list units", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.Set(pendingCommunityKey, strconv.FormatInt(c.ID, 10))
	}
	h.render(w, r, setupPageData{
		Role:    actor.Role,
		Errors:  map[string]string{},
		Pending: &c,
		Units:   units,
	}, http.StatusOK)
}

func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actor := access.ActorFromContext(r.Context())

	unitID, err := strconv.ParseInt(r.PostFormValue("unit_id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	occupancy := community.OccupancyOwner
	if r.PostFormValue("occupancy") == string(community.OccupancyTenant) {
		occupancy = community.OccupancyTenant
	}

	if _, err := h.communities.AssignUnit(r.Context(), actor.UserID, unitID, occupancy); err != nil {
		h.logger.Warn("claim unit", slog.Int64("unit_id", unitID), slog.Any("error", err))
		h.render(w, r, setupPageData{
			Role:   actor.Role,
			Errors: map[string]string{"general": shared.UserSafeMessage(err)},
		}, http.StatusBadRequest)
		return
	}

	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.Delete(pendingCommunityKey)
	}
	h.finish(w, r, "Pengaturan awal selesai")
}

// finish redirects through the root handler; the next request reloads the
// actor with its new unit, so the resolver jumps off the setup page.
func (h *Handler) finish(w http.ResponseWriter, r *http.Request, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: message})
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data setupPageData, status int) {
	viewData := view.PageData(r, h.csrf, access.PageCommunitySetup, "Pengaturan Awal", data)
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/setup.html", viewData); err != nil {
		h.logger.Error("render setup", slog.Any("error", err))
	}
}
