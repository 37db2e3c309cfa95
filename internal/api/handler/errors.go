package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/teamscore/internal/api/apierr"
	"github.com/mcoot/teamscore/internal/middleware"
)

// writeError writes err as an API error, logging anything that maps to a
// server failure
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if apierr.Status(err) >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", middleware.RequestID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	apierr.WriteError(w, err)
}
