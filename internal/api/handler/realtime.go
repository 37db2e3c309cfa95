package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/teamscore/internal/api/middleware"
	"github.com/mcoot/teamscore/internal/model"
	"github.com/mcoot/teamscore/internal/realtime"
)

// RealtimeHandler serves category rooms over SSE and websockets
type RealtimeHandler struct {
	hubManager *realtime.HubManager
	logger     *slog.Logger
}

// NewRealtimeHandler creates a new realtime handler
func NewRealtimeHandler(hubManager *realtime.HubManager, logger *slog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "realtime")),
	}
}

// Events handles GET /api/v1/rooms/{roomId}/events
func (h *RealtimeHandler) Events(w http.ResponseWriter, r *http.Request) {
	gc := middleware.MustGetCompetition(r.Context())
	room := model.RoomID(mux.Vars(r)["roomId"])

	if _, err := model.ParseRoomID(room); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	realtime.ServeSSE(w, r, h.hubManager, realtime.RoomKey{CompetitionID: gc.CompetitionID, Room: room}, gc.Caller.Subject())
}

// WebSocket handles GET /api/v1/ws
func (h *RealtimeHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	gc := middleware.MustGetCompetition(r.Context())
	realtime.ServeWS(w, r, h.hubManager, gc.CompetitionID, gc.Caller.Subject(), h.logger)
}
