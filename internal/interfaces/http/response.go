package http

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"bankclient/internal/infrastructure/ledgerstub"
)

// errorResponse mirrors the body the real ledger sends with errors.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: http.StatusText(status), Message: message})
}

// writeBankError answers with the status a ledger error carries, or 500.
func writeBankError(w http.ResponseWriter, r *http.Request, err error) {
	if sErr, ok := ledgerstub.AsError(err); ok {
		writeError(w, sErr.Status, sErr.Message)
		return
	}
	log.Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
