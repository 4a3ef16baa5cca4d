package common

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// DetailResponse is the error body returned by every handler
type DetailResponse struct {
	Detail string `json:"detail"`
}

// MessageResponse is the body returned by successful mutations
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSONResponse writes a JSON response with the given data
func WriteJSONResponse(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// WriteDetailResponse writes a standardized error response
func WriteDetailResponse(w http.ResponseWriter, detail string, statusCode int) {
	WriteJSONResponse(w, DetailResponse{Detail: detail}, statusCode)
}
