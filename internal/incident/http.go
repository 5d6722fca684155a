package incident

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gloria-mdrrmo/sigurado/internal/access"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/errors"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/httpapi"
)

// Handler provides HTTP handlers for incidents
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler creates a new incident handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, log: svc.log}
}

// Routes registers the incident routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)

	r.Route("/{incidentID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/status", h.SetStatus)

		// Chat thread
		r.Get("/messages", h.ListMessages)
		r.Post("/messages", h.PostMessage)
	})

	return r
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

type PostMessageRequest struct {
	Body string `json:"body"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	districtID, err := httpapi.OptionalIDQuery(r, "district_id")
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	filter := ListFilter{
		DistrictID: districtID,
		Status:     r.URL.Query().Get("status"),
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 0 {
			httpapi.WriteError(w, h.log, errors.BadRequest("invalid limit"))
			return
		}
		filter.Limit = limit
	}

	incidents, err := h.svc.List(r.Context(), access.ActorFrom(r.Context()), filter)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, incidents)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInput
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	res, err := h.svc.Create(r.Context(), access.ActorFrom(r.Context()), req)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.IDParam(r, "incidentID")
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	incident, err := h.svc.Get(r.Context(), access.ActorFrom(r.Context()), id)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, incident)
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.IDParam(r, "incidentID")
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	var req SetStatusRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	res, err := h.svc.SetStatus(r.Context(), access.ActorFrom(r.Context()), id, req.Status)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.IDParam(r, "incidentID")
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	messages, err := h.svc.ListMessages(r.Context(), access.ActorFrom(r.Context()), id)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, messages)
}

func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.IDParam(r, "incidentID")
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	var req PostMessageRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	msg, err := h.svc.PostMessage(r.Context(), access.ActorFrom(r.Context()), id, req.Body)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}
	httpapi.WriteData(w, http.StatusCreated, msg)
}
