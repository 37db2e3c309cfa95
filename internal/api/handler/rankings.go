package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/teamscore/internal/api/middleware"
	"github.com/mcoot/teamscore/internal/api/response"
	"github.com/mcoot/teamscore/internal/services/scorecard"
)

// RankingHandler handles leaderboard endpoints
type RankingHandler struct {
	controller *scorecard.Controller
	logger     *slog.Logger
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(controller *scorecard.Controller, logger *slog.Logger) *RankingHandler {
	return &RankingHandler{controller: controller, logger: logger}
}

// Individual handles GET /api/v1/rankings/individual
func (h *RankingHandler) Individual(w http.ResponseWriter, r *http.Request) {
	gc := middleware.MustGetCompetition(r.Context())

	filter, err := scoreFilter(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	entries, err := h.controller.IndividualRanking(r.Context(), gc, filter)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.IndividualRankingFromEntries(entries))
}

// Team handles GET /api/v1/rankings/team
func (h *RankingHandler) Team(w http.ResponseWriter, r *http.Request) {
	gc := middleware.MustGetCompetition(r.Context())

	filter, err := scoreFilter(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	entries, err := h.controller.TeamRanking(r.Context(), gc, filter)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TeamRankingFromEntries(entries))
}
