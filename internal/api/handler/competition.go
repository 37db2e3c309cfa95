package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/teamscore/internal/api/middleware"
	"github.com/mcoot/teamscore/internal/api/request"
	"github.com/mcoot/teamscore/internal/api/response"
	"github.com/mcoot/teamscore/internal/model"
	"github.com/mcoot/teamscore/internal/services/competition"
)

// CompetitionHandler handles competition management endpoints
type CompetitionHandler struct {
	service *competition.Service
	logger  *slog.Logger
}

// NewCompetitionHandler creates a new competition handler
func NewCompetitionHandler(service *competition.Service, logger *slog.Logger) *CompetitionHandler {
	return &CompetitionHandler{service: service, logger: logger}
}

// SetAdmins handles PUT /api/v1/competition/admins
func (h *CompetitionHandler) SetAdmins(w http.ResponseWriter, r *http.Request) {
	gc := middleware.MustGetCompetition(r.Context())

	var req request.SetAdminsRequest
	if err := request.Decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	ids := make([]model.AccountID, len(req.AdminIDs))
	for i, id := range req.AdminIDs {
		ids[i] = model.AccountID(id)
	}

	c, err := h.service.SetAssignedAdmins(r.Context(), gc, ids)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CompetitionFromModel(c))
}
