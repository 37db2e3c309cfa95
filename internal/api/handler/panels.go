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
	"github.com/mcoot/teamscore/internal/services/panel"
)

// PanelHandler handles judge panel endpoints
type PanelHandler struct {
	service *panel.Service
	logger  *slog.Logger
}

// NewPanelHandler creates a new panel handler
func NewPanelHandler(service *panel.Service, logger *slog.Logger) *PanelHandler {
	return &PanelHandler{service: service, logger: logger}
}

// Ensure handles POST /api/v1/panels
func (h *PanelHandler) Ensure(w http.ResponseWriter, r *http.Request) {
	gc := middleware.MustGetCompetition(r.Context())

	var req request.EnsurePanelRequest
	if err := request.Decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	judges, err := h.service.EnsurePanel(r.Context(), gc, model.Category{
		Gender:   model.Gender(req.Gender),
		AgeGroup: model.AgeGroup(req.AgeGroup),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PanelFromModels(judges))
}

// List handles GET /api/v1/panels
func (h *PanelHandler) List(w http.ResponseWriter, r *http.Request) {
	gc := middleware.MustGetCompetition(r.Context())

	q := r.URL.Query()
	gender := model.Gender(q.Get("gender"))
	if gender != "" && !gender.Valid() {
		writeError(w, r, h.logger, apierr.NewValidationError("gender", string(gender), "gender must be Male or Female"))
		return
	}

	judges, err := h.service.List(r.Context(), gc, gender, model.AgeGroup(q.Get("ageGroup")))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PanelFromModels(judges))
}

// Assign handles PUT /api/v1/judges/{judgeId}
func (h *PanelHandler) Assign(w http.ResponseWriter, r *http.Request) {
	gc := middleware.MustGetCompetition(r.Context())
	id := model.JudgeID(mux.Vars(r)["judgeId"])

	var req request.AssignJudgeRequest
	if err := request.Decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	judge, err := h.service.Assign(r.Context(), gc, id, panel.Assignment{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.JudgeFromModel(judge))
}

// Deactivate handles POST /api/v1/judges/{judgeId}/deactivate
func (h *PanelHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	gc := middleware.MustGetCompetition(r.Context())
	id := model.JudgeID(mux.Vars(r)["judgeId"])

	judge, err := h.service.Deactivate(r.Context(), gc, id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.JudgeFromModel(judge))
}
