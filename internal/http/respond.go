package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Amit9DeV/NexiCart-sub001/internal/repository"
	"github.com/Amit9DeV/NexiCart-sub001/internal/service"
)

// Envelope wraps every successful response body.
type Envelope struct {
	Data any `json:"data"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, Envelope{Data: data})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError converts service and repository errors to HTTP
// responses. Anything unrecognised is logged and reported as a 500.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	var httpStatus int
	var code string

	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrEmptyOrder):
		httpStatus = http.StatusBadRequest
		code = "invalid_argument"
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrAddressNotFound),
		errors.Is(err, repository.ErrCartNotFound),
		errors.Is(err, repository.ErrItemNotFound):
		httpStatus = http.StatusNotFound
		code = "not_found"
	case errors.Is(err, repository.ErrDuplicateEmail):
		httpStatus = http.StatusConflict
		code = "already_exists"
	case errors.Is(err, repository.ErrInsufficientStock):
		httpStatus = http.StatusConflict
		code = "insufficient_stock"
	case errors.Is(err, service.ErrInvalidTransition):
		httpStatus = http.StatusConflict
		code = "invalid_transition"
	case errors.Is(err, service.ErrInvalidCredentials):
		httpStatus = http.StatusUnauthorized
		code = "unauthenticated"
	case errors.Is(err, service.ErrForbidden):
		httpStatus = http.StatusForbidden
		code = "permission_denied"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus = http.StatusGatewayTimeout
		code = "timeout"
	default:
		log.Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondError(w, httpStatus, code, err.Error())
}

// decodeJSON reads the request body into dst and answers the request itself
// when the body is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request_too_large", "request body too large")
			return false
		}
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// pathID parses an ObjectID URL parameter. A malformed id cannot name an
// existing resource, so it is reported as not found.
func pathID(w http.ResponseWriter, r *http.Request, param, resource string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, param))
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", resource+" not found")
		return primitive.NilObjectID, false
	}
	return id, true
}
