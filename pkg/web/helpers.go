package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// RespondDetail writes an error body in the {"detail": "..."} shape used by
// every failure response of the storefront API.
func RespondDetail(w http.ResponseWriter, logger *slog.Logger, status int, detail string) {
	RespondJSON(w, logger, status, map[string]string{"detail": detail})
}

// ParseID extracts and validates the numeric product ID from the request path.
// Returns the ID and a boolean indicating success.
func ParseID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int64, bool) {
	pathValueID := r.PathValue("id")
	id, err := strconv.ParseInt(pathValueID, 10, 64)
	if err != nil || id <= 0 {
		RespondDetail(w, logger, http.StatusUnprocessableEntity, "Invalid product ID: "+pathValueID)
		return 0, false
	}
	return id, true
}
