package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/teamscore/internal/api/response"
)

// Pinger checks that a storage backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

const healthTimeout = 2 * time.Second

// HealthHandler reports service liveness
type HealthHandler struct {
	pinger Pinger
	logger *slog.Logger
}

// NewHealthHandler creates a health handler. A nil pinger reports in-memory
// storage, which is always available.
func NewHealthHandler(pinger Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{pinger: pinger, logger: logger}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.pinger == nil {
		response.JSON(w, http.StatusOK, response.Health{Status: "ok", Storage: "memory"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.WarnContext(r.Context(), "storage ping failed", slog.Any("error", err))
		response.JSON(w, http.StatusServiceUnavailable, response.Health{Status: "degraded", Storage: "unreachable"})
		return
	}

	response.JSON(w, http.StatusOK, response.Health{Status: "ok", Storage: "redis"})
}
