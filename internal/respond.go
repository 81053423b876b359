package internal

import (
	"encoding/json"
	"errors"
	"net/http"

	"asset-angel-api/internal/logging"
	"asset-angel-api/internal/store"
)

// apiError is the JSON body of every non-auth error response
type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: message, Code: code})
}

// writeStoreError maps a store error to its HTTP status
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *store.ValidationError
		nerr *store.NotFoundError
		cerr *store.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, apiError{Error: verr.Error(), Code: "VALIDATION_FAILED", Field: verr.Field})
	case errors.As(err, &nerr):
		writeError(w, http.StatusNotFound, "NOT_FOUND", nerr.Error())
	case errors.As(err, &cerr):
		writeError(w, http.StatusConflict, "CONFLICT", cerr.Error())
	default:
		logging.FromContext(r.Context()).Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func notFound(w http.ResponseWriter, entity string) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", entity+" not found")
}

// decodeJSON reads the request body into v, answering 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}
	return true
}
