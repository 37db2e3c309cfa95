package model

import "errors"

// Common errors used across the application
var (
	// Lookup errors
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrTeamNotFound        = errors.New("team not found")
	ErrJudgeNotFound       = errors.New("judge not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrScoreNotFound       = errors.New("score record not found")

	// Category errors
	ErrInvalidGender   = errors.New("invalid gender")
	ErrInvalidAgeGroup = errors.New("invalid age group")
	ErrInvalidRoom     = errors.New("invalid room id")

	// Scoring errors
	ErrScoreLocked         = errors.New("score record is locked")
	ErrMarkOutOfRange      = errors.New("judge mark must be between 0 and 10")
	ErrNegativeDeduction   = errors.New("deduction must not be negative")
	ErrDuplicatePlayer     = errors.New("player appears more than once")
	ErrPlayerNotInTeam     = errors.New("player does not belong to team")
	ErrJudgeInactive       = errors.New("judge is not active")
	ErrJudgeScopeMismatch  = errors.New("judge is not assigned to this category")
	ErrTeamScopeMismatch   = errors.New("team belongs to another competition")
	ErrPlayerScopeMismatch = errors.New("player does not compete in this category")

	// Panel errors
	ErrJudgeSlotTaken = errors.New("judge slot already exists for this category")
	ErrUsernameExists = errors.New("username already exists in competition")
)
