package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func sendJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response failed", slog.Any("error", err))
	}
}

func sendJSONError(w http.ResponseWriter, statusCode int, message string) {
	sendJSON(w, statusCode, errorResponse{Error: message})
}
