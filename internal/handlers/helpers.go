package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"decoded-backend/internal/models"
	"decoded-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

// validationFields flattens validator errors into field -> failed tag.
func validationFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return fields
}

// handleGenerationError maps the gateway taxonomy to HTTP.
func handleGenerationError(w http.ResponseWriter, r *http.Request, err error) {
	var ge *services.GenerationError
	if !errors.As(err, &ge) {
		if errors.Is(err, services.ErrInvalidMode) {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Mode is required",
				map[string]string{"mode": "required"}, r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Internal server error", r))
		return
	}

	switch ge.Kind {
	case services.KindMissingCredential:
		writeJSON(w, http.StatusUnauthorized, errorResp("CREDENTIAL_MISSING", ge.Detail, r))
	case services.KindEmptyInput:
		writeJSON(w, http.StatusBadRequest, errorResp("EMPTY_INPUT", ge.Detail, r))
	case services.KindAuthorization:
		writeJSON(w, http.StatusUnauthorized, errorResp("AUTHORIZATION_ERROR", ge.Error(), r))
	case services.KindNoCapableBackend:
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("NO_CAPABLE_BACKEND", ge.Error(), r))
	case services.KindGeneration:
		if errors.Is(err, context.DeadlineExceeded) {
			writeJSON(w, http.StatusGatewayTimeout, errorResp("GENERATION_TIMEOUT", "Generation took too long. Try a shorter text.", r))
			return
		}
		writeJSON(w, http.StatusBadGateway, errorResp("GENERATION_ERROR", ge.Error(), r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", ge.Error(), r))
	}
}

// titleParam reads the {title} route parameter, undoing percent-encoding
// left in place by chi when the raw path was used for routing.
func titleParam(r *http.Request) string {
	raw := chi.URLParam(r, "title")
	if t, err := url.PathUnescape(raw); err == nil {
		return t
	}
	return raw
}
