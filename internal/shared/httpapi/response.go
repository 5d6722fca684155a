package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gloria-mdrrmo/sigurado/internal/shared/errors"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/types"
)

// WriteJSON encodes data with the given status
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteData wraps data in the {"data": ...} envelope
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, map[string]any{"data": data})
}

// WriteError maps err onto its HTTP status. Server-side failures are
// logged with their cause and reported without internal detail.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	appErr := errors.As(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed", zap.String("code", appErr.Code), zap.Error(err))
		}
		WriteJSON(w, appErr.HTTPStatus, map[string]any{
			"error": appErr.Message,
			"code":  appErr.Code,
		})
		return
	}

	WriteJSON(w, appErr.HTTPStatus, map[string]any{
		"error":   appErr.Message,
		"code":    appErr.Code,
		"details": appErr.Details,
	})
}

// Decode reads a JSON request body into dst
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.BadRequest("invalid request body")
	}
	return nil
}

// IDParam parses a chi URL parameter as an ID
func IDParam(r *http.Request, name string) (types.ID, error) {
	id, err := types.ParseID(chi.URLParam(r, name))
	if err != nil {
		return "", errors.BadRequest("invalid " + name)
	}
	return id, nil
}

// OptionalIDQuery parses an optional ID query parameter
func OptionalIDQuery(r *http.Request, name string) (*types.ID, error) {
	id, err := types.ParseOptionalID(r.URL.Query().Get(name))
	if err != nil {
		return nil, errors.BadRequest("invalid " + name)
	}
	return id, nil
}
