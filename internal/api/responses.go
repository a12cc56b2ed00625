package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type successEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, successEnvelope{Data: data}, nil)
}

func writeError(logger *slog.Logger, r *http.Request, w http.ResponseWriter, err error) {
	statusCode, apiErr := toAPIError(err)
	if logger != nil {
		level := slog.LevelWarn
		if statusCode >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.LogAttrs(r.Context(), level, "request.error",
			slog.String("request_id", RequestIDFrom(r.Context())),
			slog.String("path", r.URL.Path),
			slog.Int("status", statusCode),
			slog.Any("error", err),
		)
	}
	writeJSON(w, statusCode, errorEnvelope{Error: apiErr}, logger)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}
