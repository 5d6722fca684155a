package district

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gloria-mdrrmo/sigurado/internal/access"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/httpapi"
)

// Handler provides HTTP handlers for districts and resources
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler creates a new district handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, log: svc.log}
}

// DistrictRoutes is mounted at /districts
func (h *Handler) DistrictRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{districtID}", h.Get)
	return r
}

// ResourceRoutes is mounted at /resources
func (h *Handler) ResourceRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListResources)
	r.Post("/", h.AddResource)
	return r
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	districts, err := h.svc.List(r.Context(), access.ActorFrom(r.Context()))
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, districts)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.IDParam(r, "districtID")
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	detail, err := h.svc.Detail(r.Context(), access.ActorFrom(r.Context()), id)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, detail)
}

func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	districtID, err := httpapi.OptionalIDQuery(r, "district_id")
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	resources, err := h.svc.ListResources(r.Context(), access.ActorFrom(r.Context()), districtID)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, resources)
}

func (h *Handler) AddResource(w http.ResponseWriter, r *http.Request) {
	var req ResourceInput
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	res, err := h.svc.AddResource(r.Context(), access.ActorFrom(r.Context()), req)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, res)
}
