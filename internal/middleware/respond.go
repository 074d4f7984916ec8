package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hngstage/profile-api/internal/model"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeInternalError writes the generic, non-leaking 500 envelope.
func writeInternalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, model.GenericError())
}
