// Package service exposes the ledger over a JSON HTTP API. Handlers stay
// thin: decode, validate through the ledger package, call the store, encode.
package service

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/storage"
)

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Error  string                   `json:"error,omitempty"`
	Errors []ledger.ValidationError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeValidationErrors returns every field-level problem at once so the
// client can surface all of them in one round trip.
func writeValidationErrors(w http.ResponseWriter, errs ledger.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, errorBody{Errors: errs})
}

// writeStoreError maps storage failures onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
