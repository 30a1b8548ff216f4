// Package handler exposes the storefront over JSON HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/session"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

var statusByCode = map[string]int{
	model.ErrCodeInvalidJSON:               http.StatusBadRequest,
	model.ErrCodeMissingField:              http.StatusBadRequest,
	model.ErrCodeInvalidQuantity:           http.StatusBadRequest,
	model.ErrCodeInvalidColor:              http.StatusBadRequest,
	model.ErrCodeInvalidQuery:              http.StatusBadRequest,
	model.ErrCodeProductNotFound:           http.StatusNotFound,
	model.ErrCodeValidation:                http.StatusUnprocessableEntity,
	model.ErrCodeEmptyCart:                 http.StatusConflict,
	model.ErrCodeCheckoutInProgress:        http.StatusConflict,
	model.ErrCodeNoActivePayment:           http.StatusConflict,
	model.ErrCodePaymentCancelled:          http.StatusOK,
	model.ErrCodePaymentFailed:             http.StatusPaymentRequired,
	model.ErrCodePersistence:               http.StatusServiceUnavailable,
	model.ErrCodeFetch:                     http.StatusServiceUnavailable,
	model.ErrCodePaymentRecordUpdateFailed: http.StatusInternalServerError,
	model.ErrCodeUnauthorised:              http.StatusUnauthorized,
	model.ErrCodeInternalError:             http.StatusInternalServerError,
}

// StatusFor returns the HTTP status for a domain error code.
func StatusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// The status line is already sent.
		return
	}
}

// writeError renders err as an ErrorResponse. Errors outside the domain
// taxonomy are reported as INTERNAL_ERROR without their detail.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	resp := model.ErrorResponse{CorrelationID: middleware.GetReqID(r.Context())}

	var ve *model.ValidationError
	var de *model.DomainError
	switch {
	case errors.As(err, &ve):
		resp.Error = model.ErrValidation.Code
		resp.Message = model.ErrValidation.Message
		resp.Action = model.ErrValidation.Action
		resp.Fields = ve.Fields
	case errors.As(err, &de):
		resp.Error = de.Code
		resp.Message = de.Message
		resp.Action = de.Action
	default:
		resp.Error = model.ErrInternal.Code
		resp.Message = model.ErrInternal.Message
		resp.Action = model.ErrInternal.Action
	}

	status := StatusFor(resp.Error)
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Str("code", resp.Error).
		Int("status", status).
		Str("path", r.URL.Path).
		Msg("request failed")

	writeJSON(w, status, resp)
}

// decodeJSON reads a single JSON object from the request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return model.ErrInvalidJSON.Wrap(err)
	}
	return nil
}

// currentSession returns the visitor session attached by the session middleware.
func currentSession(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (*session.Session, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		writeError(w, r, errors.New("no session on request"), logger)
		return nil, false
	}
	return s, true
}
