package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/teamscore/internal/api/request"
	"github.com/mcoot/teamscore/internal/api/response"
	"github.com/mcoot/teamscore/internal/model"
	"github.com/mcoot/teamscore/internal/services/auth"
)

// AuthHandler handles sign-in endpoints
type AuthHandler struct {
	authService *auth.Service
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := request.Decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	token, err := h.authService.Login(r.Context(), req.Username, req.Password, model.CompetitionID(req.CompetitionID))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TokenFromAuth(token))
}

// JudgeLogin handles POST /api/v1/auth/judge/login
func (h *AuthHandler) JudgeLogin(w http.ResponseWriter, r *http.Request) {
	var req request.JudgeLoginRequest
	if err := request.Decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	token, err := h.authService.JudgeLogin(r.Context(), model.CompetitionID(req.CompetitionID), req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TokenFromAuth(token))
}
