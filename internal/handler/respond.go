package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/morphcute/kim-dispo-vape-shop/models"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/logger"
)

// writeJSONResponse writes JSON response with given status code and data
func writeJSONResponse(log *logger.Logger, w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// writeErrorResponse writes an error response with given status code and message
func writeErrorResponse(log *logger.Logger, w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	resp := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("Failed to encode error response", "error", err)
	}
}

// parseRequestBody parses JSON request body into the target struct
func parseRequestBody(r *http.Request, target interface{}) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// parseIDParam reads a numeric {id} route parameter.
func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// writeDomainError maps domain errors onto HTTP status codes. Validation
// failures carry the per-field breakdown so the client can highlight them.
func writeDomainError(log *logger.Logger, w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError
	var skuErr *models.UnknownSKUError
	var stockErr *models.InsufficientStockError
	var transitionErr *models.InvalidTransitionError

	switch {
	case errors.As(err, &validationErr):
		writeJSONResponse(log, w, http.StatusBadRequest, map[string]interface{}{
			"error":  "Validation failed",
			"fields": validationErr.Fields,
		})
	case errors.As(err, &skuErr):
		writeErrorResponse(log, w, http.StatusBadRequest, err.Error())
	case errors.As(err, &stockErr):
		writeJSONResponse(log, w, http.StatusConflict, map[string]interface{}{
			"error":     err.Error(),
			"flavor_id": stockErr.FlavorID,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	case errors.As(err, &transitionErr):
		writeErrorResponse(log, w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrNotFound):
		writeErrorResponse(log, w, http.StatusNotFound, err.Error())
	default:
		log.Error("Unhandled error", "error", err)
		writeErrorResponse(log, w, http.StatusInternalServerError, "Internal server error")
	}
}
