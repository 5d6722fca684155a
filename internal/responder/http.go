package responder

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gloria-mdrrmo/sigurado/internal/access"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/httpapi"
)

// Handler provides HTTP handlers for responders
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler creates a new responder handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, log: svc.log}
}

// Routes registers the responder routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Add)
	r.Post("/{responderID}/claim", h.Claim)

	// The acting responder's own profile
	r.Route("/me", func(r chi.Router) {
		r.Get("/reports", h.MyReports)
		r.Post("/reports", h.SubmitReport)
		r.Put("/status", h.SetStatus)
	})

	return r
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	districtID, err := httpapi.OptionalIDQuery(r, "district_id")
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	responders, err := h.svc.ListForDistrict(r.Context(), access.ActorFrom(r.Context()), districtID)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, responders)
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddInput
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	res, err := h.svc.AddResponder(r.Context(), access.ActorFrom(r.Context()), req)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.IDParam(r, "responderID")
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	res, err := h.svc.ClaimProfile(r.Context(), access.ActorFrom(r.Context()), id)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	var req ReportInput
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	res, err := h.svc.SubmitReport(r.Context(), access.ActorFrom(r.Context()), req)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) MyReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.svc.MyReports(r.Context(), access.ActorFrom(r.Context()))
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, reports)
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req SetStatusRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	res, err := h.svc.SetResponderStatus(r.Context(), access.ActorFrom(r.Context()), req.Status)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, res)
}
