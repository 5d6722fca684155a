package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gloria-mdrrmo/sigurado/internal/access"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/auth"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/errors"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/httpapi"
)

// Handler provides the /auth endpoints
type Handler struct {
	svc    *Service
	tokens *auth.Tokens
}

// NewHandler creates a new account handler
func NewHandler(svc *Service, tokens *auth.Tokens) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

// Routes registers the account routes. /me requires a bearer token.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(h.tokens))
		r.Use(h.svc.Middleware)
		r.Get("/me", h.Me)
	})

	return r
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterInput
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.svc.log, err)
		return
	}

	res, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpapi.WriteError(w, h.svc.log, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginInput
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.svc.log, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpapi.WriteError(w, h.svc.log, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	httpapi.WriteData(w, http.StatusOK, access.ActorFrom(r.Context()))
}

// Middleware resolves the verified token identity to the stored actor
// and places it in the request context. It must run after auth.Middleware.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFrom(r.Context())
		if !ok {
			httpapi.WriteError(w, s.log, errors.Unauthenticated("authentication required"))
			return
		}

		actor, err := s.Resolve(r.Context(), id)
		if err != nil {
			httpapi.WriteError(w, s.log, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(access.WithActor(r.Context(), actor)))
	})
}
