package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/teamscore/internal/api/apierr"
	"github.com/mcoot/teamscore/internal/api/middleware"
	"github.com/mcoot/teamscore/internal/api/request"
	"github.com/mcoot/teamscore/internal/api/response"
	"github.com/mcoot/teamscore/internal/model"
	"github.com/mcoot/teamscore/internal/services/scorecard"
)

// ScoreHandler handles score endpoints
type ScoreHandler struct {
	controller *scorecard.Controller
	logger     *slog.Logger
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(controller *scorecard.Controller, logger *slog.Logger) *ScoreHandler {
	return &ScoreHandler{controller: controller, logger: logger}
}

// SubmitMark handles POST /api/v1/scores/marks
func (h *ScoreHandler) SubmitMark(w http.ResponseWriter, r *http.Request) {
	gc := middleware.MustGetCompetition(r.Context())

	var req request.SubmitMarkRequest
	if err := request.Decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.controller.SubmitMark(r.Context(), gc, scorecard.MarkInput{
		TeamID:   model.TeamID(req.TeamID),
		PlayerID: model.PlayerID(req.PlayerID),
		Category: model.Category{Gender: model.Gender(req.Gender), AgeGroup: model.AgeGroup(req.AgeGroup)},
		Score:    *req.Score,
		Time:     req.Time,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MarkFromResult(result))
}

// BulkSave handles POST /api/v1/scores
func (h *ScoreHandler) BulkSave(w http.ResponseWriter, r *http.Request) {
	gc := middleware.MustGetCompetition(r.Context())

	var req request.BulkSaveRequest
	if err := request.Decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	players := make([]scorecard.PlayerInput, len(req.Scores))
	for i, ps := range req.Scores {
		players[i] = scorecard.PlayerInput{
			PlayerID: model.PlayerID(ps.PlayerID),
			Time:     ps.Time,
			Marks: model.Marks{
				SeniorJudge: ps.Marks.SeniorJudge,
				Judge1:      ps.Marks.Judge1,
				Judge2:      ps.Marks.Judge2,
				Judge3:      ps.Marks.Judge3,
				Judge4:      ps.Marks.Judge4,
			},
			Deduction:      ps.Deduction,
			OtherDeduction: ps.OtherDeduction,
		}
	}

	result, err := h.controller.BulkSave(r.Context(), gc, scorecard.BulkInput{
		TeamID:         model.TeamID(req.TeamID),
		Category:       model.Category{Gender: model.Gender(req.Gender), AgeGroup: model.AgeGroup(req.AgeGroup)},
		TimeKeeperName: req.TimeKeeperName,
		ScorerName:     req.ScorerName,
		Remarks:        req.Remarks,
		Players:        players,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	response.JSON(w, status, response.BulkSaveFromResult(result))
}

// Unlock handles POST /api/v1/scores/{scoreId}/unlock
func (h *ScoreHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	gc := middleware.MustGetCompetition(r.Context())
	id := model.ScoreID(mux.Vars(r)["scoreId"])

	record, err := h.controller.Unlock(r.Context(), gc, id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Unlock{
		ScoreID:  string(record.ID),
		IsLocked: record.IsLocked,
		Version:  record.Version,
	})
}

// Get handles GET /api/v1/scores/{scoreId}
func (h *ScoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	gc := middleware.MustGetCompetition(r.Context())
	id := model.ScoreID(mux.Vars(r)["scoreId"])

	record, err := h.controller.Get(r.Context(), gc, id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, record)
}

// List handles GET /api/v1/scores
func (h *ScoreHandler) List(w http.ResponseWriter, r *http.Request) {
	gc := middleware.MustGetCompetition(r.Context())

	filter, err := scoreFilter(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	records, err := h.controller.List(r.Context(), gc, filter)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Scores{Scores: records})
}

// scoreFilter reads the optional teamId, gender and ageGroup query parameters.
// An age group is only meaningful alongside a gender.
func scoreFilter(r *http.Request) (model.ScoreFilter, error) {
	q := r.URL.Query()
	filter := model.ScoreFilter{
		TeamID:   model.TeamID(q.Get("teamId")),
		Gender:   model.Gender(q.Get("gender")),
		AgeGroup: model.AgeGroup(q.Get("ageGroup")),
	}

	switch {
	case filter.Gender != "" && filter.AgeGroup != "":
		if err := (model.Category{Gender: filter.Gender, AgeGroup: filter.AgeGroup}).Validate(); err != nil {
			return model.ScoreFilter{}, err
		}
	case filter.Gender != "":
		if !filter.Gender.Valid() {
			return model.ScoreFilter{}, apierr.NewValidationError("gender", string(filter.Gender), "gender must be Male or Female")
		}
	case filter.AgeGroup != "":
		return model.ScoreFilter{}, apierr.NewValidationError("ageGroup", string(filter.AgeGroup), "ageGroup requires gender")
	}
	return filter, nil
}
