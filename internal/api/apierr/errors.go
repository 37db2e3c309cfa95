package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/teamscore/internal/model"
	"github.com/mcoot/teamscore/internal/services/auth"
	"github.com/mcoot/teamscore/internal/services/guard"
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Value   any    `json:"value,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeForbidden           = "FORBIDDEN"
	CodeCompetitionRequired = "COMPETITION_REQUIRED"
	CodeInvalidCompetition  = "INVALID_COMPETITION_ID"
	CodeCompetitionNotFound = "COMPETITION_NOT_FOUND"
	CodeCompetitionDeleted  = "COMPETITION_DELETED"
	CodeStaleCredential     = "STALE_CREDENTIAL"
	CodeScoreLocked         = "SCORE_LOCKED"
	CodeScoreNotFound       = "SCORE_NOT_FOUND"
	CodeTeamNotFound        = "TEAM_NOT_FOUND"
	CodeJudgeNotFound       = "JUDGE_NOT_FOUND"
	CodeAccountNotFound     = "ACCOUNT_NOT_FOUND"
	CodeJudgeInactive       = "JUDGE_INACTIVE"
	CodeJudgeScopeMismatch  = "JUDGE_SCOPE_MISMATCH"
	CodeTeamScopeMismatch   = "TEAM_SCOPE_MISMATCH"
	CodePlayerScopeMismatch = "PLAYER_SCOPE_MISMATCH"
	CodePlayerNotInTeam     = "PLAYER_NOT_IN_TEAM"
	CodeDuplicatePlayer     = "DUPLICATE_PLAYER"
	CodeInvalidScore        = "INVALID_SCORE"
	CodeInvalidCategory     = "INVALID_CATEGORY"
	CodeJudgeSlotTaken      = "JUDGE_SLOT_TAKEN"
	CodeUsernameExists      = "USERNAME_EXISTS"
	CodeRateLimited         = "RATE_LIMITED"
	CodeNotFound            = "NOT_FOUND"
	CodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
	CodeInternalError       = "INTERNAL_ERROR"

	// CodeReauthenticate tells the client to discard its token and sign in again
	CodeReauthenticate = "REAUTHENTICATE"
)

// httpError combines an HTTP status code with a response body
type httpError struct {
	status int
	body   ErrorResponse
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.body.Message
}

func newError(status int, code, message string) *httpError {
	return &httpError{status, ErrorResponse{Error: code, Message: message}}
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(he.body)
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var rej *guard.RejectionError
	if errors.As(err, &rej) {
		return fromRejection(rej)
	}

	switch {
	// Lookup errors
	case errors.Is(err, model.ErrCompetitionNotFound):
		return newError(http.StatusNotFound, CodeCompetitionNotFound, "Competition not found")
	case errors.Is(err, model.ErrScoreNotFound):
		return newError(http.StatusNotFound, CodeScoreNotFound, "Score record not found")
	case errors.Is(err, model.ErrTeamNotFound):
		return newError(http.StatusNotFound, CodeTeamNotFound, "Team not found")
	case errors.Is(err, model.ErrJudgeNotFound):
		return newError(http.StatusNotFound, CodeJudgeNotFound, "Judge not found")
	case errors.Is(err, model.ErrAccountNotFound):
		return newError(http.StatusNotFound, CodeAccountNotFound, "Account not found")

	// Scoring errors
	case errors.Is(err, model.ErrScoreLocked):
		return newError(http.StatusForbidden, CodeScoreLocked, "Score record is locked; unlock it before editing")
	case errors.Is(err, model.ErrJudgeInactive):
		return newError(http.StatusForbidden, CodeJudgeInactive, "Judge is not active")
	case errors.Is(err, model.ErrJudgeScopeMismatch):
		return newError(http.StatusForbidden, CodeJudgeScopeMismatch, "Judge is not assigned to this gender and age group")
	case errors.Is(err, model.ErrTeamScopeMismatch):
		return newError(http.StatusForbidden, CodeTeamScopeMismatch, "Team belongs to another competition")
	case errors.Is(err, model.ErrPlayerScopeMismatch):
		return newError(http.StatusForbidden, CodePlayerScopeMismatch, err.Error())
	case errors.Is(err, model.ErrPlayerNotInTeam):
		return newError(http.StatusBadRequest, CodePlayerNotInTeam, err.Error())
	case errors.Is(err, model.ErrDuplicatePlayer):
		return newError(http.StatusBadRequest, CodeDuplicatePlayer, err.Error())
	case errors.Is(err, model.ErrMarkOutOfRange),
		errors.Is(err, model.ErrNegativeDeduction):
		return newError(http.StatusBadRequest, CodeInvalidScore, err.Error())
	case errors.Is(err, model.ErrInvalidGender),
		errors.Is(err, model.ErrInvalidAgeGroup),
		errors.Is(err, model.ErrInvalidRoom):
		return newError(http.StatusBadRequest, CodeInvalidCategory, err.Error())

	// Panel errors
	case errors.Is(err, model.ErrJudgeSlotTaken):
		return newError(http.StatusConflict, CodeJudgeSlotTaken, "Judge slot already exists for this category")
	case errors.Is(err, model.ErrUsernameExists), errors.Is(err, auth.ErrUsernameExists):
		return newError(http.StatusConflict, CodeUsernameExists, "Username already exists")

	// Auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return newError(http.StatusUnauthorized, CodeInvalidCredentials, "Invalid username or password")
	case errors.Is(err, auth.ErrExpiredToken):
		return newError(http.StatusUnauthorized, CodeTokenExpired, "Token has expired")
	case errors.Is(err, auth.ErrInvalidToken):
		return newError(http.StatusUnauthorized, CodeUnauthorized, "Invalid token")

	default:
		return newError(http.StatusInternalServerError, CodeInternalError, "Internal server error")
	}
}

// fromRejection maps a competition guard rejection to its response
func fromRejection(rej *guard.RejectionError) *httpError {
	switch rej.Reason {
	case guard.ReasonMissing:
		return newError(http.StatusBadRequest, CodeCompetitionRequired, rej.Message)
	case guard.ReasonInvalid:
		return newError(http.StatusBadRequest, CodeInvalidCompetition, rej.Message)
	case guard.ReasonNotFound:
		return newError(http.StatusNotFound, CodeCompetitionNotFound, rej.Message)
	case guard.ReasonDeleted:
		return newError(http.StatusForbidden, CodeCompetitionDeleted, rej.Message)
	case guard.ReasonStale:
		he := newError(http.StatusForbidden, CodeStaleCredential, rej.Message)
		he.body.Code = CodeReauthenticate
		return he
	default:
		return newError(http.StatusForbidden, CodeForbidden, rej.Message)
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return newError(http.StatusBadRequest, CodeInvalidRequest, message)
}

// NewValidationError creates an invalid request error naming the offending field
func NewValidationError(field string, value any, message string) error {
	return &httpError{http.StatusBadRequest, ErrorResponse{
		Error:   CodeValidationFailed,
		Message: message,
		Field:   field,
		Value:   value,
	}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return newError(http.StatusUnauthorized, CodeUnauthorized, "Authentication required")
}

// NewRateLimitedError creates a too-many-requests error
func NewRateLimitedError() error {
	return newError(http.StatusTooManyRequests, CodeRateLimited, "Too many requests; slow down")
}

// NewNotFoundError creates an error for unknown routes
func NewNotFoundError() error {
	return newError(http.StatusNotFound, CodeNotFound, "Route not found")
}

// NewMethodNotAllowedError creates an error for a known route used with the wrong method
func NewMethodNotAllowedError() error {
	return newError(http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed")
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return newError(http.StatusInternalServerError, CodeInternalError, "Internal server error")
}
