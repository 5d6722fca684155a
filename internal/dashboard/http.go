package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gloria-mdrrmo/sigurado/internal/access"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/httpapi"
)

// Handler serves the dashboard
type Handler struct {
	agg *Aggregator
}

// NewHandler creates a new dashboard handler
func NewHandler(agg *Aggregator) *Handler {
	return &Handler{agg: agg}
}

// Routes registers the dashboard routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	return r
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.agg.Build(r.Context(), access.ActorFrom(r.Context()))
	if err != nil {
		httpapi.WriteError(w, h.agg.log, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, view)
}
