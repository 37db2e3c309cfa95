// Package guard resolves the competition a request acts on and decides
// whether the caller may act on it.
package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mcoot/teamscore/internal/metrics"
	"github.com/mcoot/teamscore/internal/model"
	"github.com/mcoot/teamscore/internal/storage"
)

// Reason classifies why a request was rejected
type Reason string

const (
	ReasonMissing   Reason = "missing"
	ReasonInvalid   Reason = "invalid"
	ReasonNotFound  Reason = "not_found"
	ReasonDeleted   Reason = "deleted"
	ReasonForbidden Reason = "forbidden"
	ReasonStale     Reason = "stale_credential"
)

// RejectionError is returned whenever the guard refuses a request
type RejectionError struct {
	Reason        Reason
	CompetitionID string
	Subject       string
	Message       string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("competition context rejected (%s): %s", e.Reason, e.Message)
}

// Context is the resolved competition attached to an authorized request
type Context struct {
	CompetitionID model.CompetitionID
	Competition   *model.Competition
	Caller        Caller
}

// Guard resolves and authorizes competition contexts
type Guard struct {
	storage storage.Storage
	tracker *Tracker
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// New creates a Guard
func New(storage storage.Storage, tracker *Tracker, logger *slog.Logger, recorder *metrics.Recorder) *Guard {
	return &Guard{
		storage: storage,
		tracker: tracker,
		logger:  logger.With(slog.String("component", "guard")),
		metrics: recorder,
	}
}

// Resolve runs the full check sequence for one request. claimed is the
// competition id from the caller's credential and wins over fallback, which
// comes from an explicit header.
func (g *Guard) Resolve(ctx context.Context, caller Caller, claimed, fallback string) (*Context, error) {
	raw := claimed
	if raw == "" {
		raw = fallback
	}

	if raw == "" {
		return nil, g.reject(ctx, caller, "", ReasonMissing, "competition id is required")
	}
	if _, err := uuid.Parse(raw); err != nil {
		return nil, g.reject(ctx, caller, raw, ReasonInvalid, "competition id is not a valid identifier")
	}

	id := model.CompetitionID(raw)
	competition, err := g.storage.GetCompetition(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrCompetitionNotFound) {
			return nil, g.reject(ctx, caller, raw, ReasonNotFound, "competition not found")
		}
		return nil, err
	}
	if competition.Deleted {
		return nil, g.reject(ctx, caller, raw, ReasonDeleted, "competition is no longer available")
	}

	if err := g.authorize(ctx, caller, competition); err != nil {
		return nil, err
	}

	return &Context{CompetitionID: id, Competition: competition, Caller: caller}, nil
}

func (g *Guard) authorize(ctx context.Context, caller Caller, competition *model.Competition) error {
	raw := string(competition.ID)

	switch c := caller.(type) {
	case SuperAdmin:
		return nil

	case Admin:
		stale, err := g.tracker.IssuedBeforeChange(ctx, c.AccountID, c.IssuedAt)
		if err != nil {
			return err
		}
		if stale {
			return g.reject(ctx, caller, raw, ReasonStale, "competition assignments changed; sign in again")
		}
		if !competition.HasAdmin(c.AccountID) {
			return g.reject(ctx, caller, raw, ReasonForbidden, "admin is not assigned to this competition")
		}
		return nil

	case Judge, Coach, Player, Anonymous:
		// Authorized per operation
		return nil

	default:
		return g.reject(ctx, caller, raw, ReasonForbidden, "unrecognised caller")
	}
}

// RequireAdministrator allows super-admins and assigned admins
func (g *Guard) RequireAdministrator(ctx context.Context, gc *Context) error {
	if IsAdministrator(gc.Caller) {
		return nil
	}
	return g.reject(ctx, gc.Caller, string(gc.CompetitionID), ReasonForbidden, "administrator access required")
}

// RequireSuperAdmin allows super-admins only
func (g *Guard) RequireSuperAdmin(ctx context.Context, gc *Context) error {
	if _, ok := gc.Caller.(SuperAdmin); ok {
		return nil
	}
	return g.reject(ctx, gc.Caller, string(gc.CompetitionID), ReasonForbidden, "super-admin access required")
}

// AuthorizeJudge loads the calling judge and checks it sits on the panel for
// category within the resolved competition
func (g *Guard) AuthorizeJudge(ctx context.Context, gc *Context, category model.Category) (*model.Judge, error) {
	jc, ok := gc.Caller.(Judge)
	if !ok {
		return nil, g.reject(ctx, gc.Caller, string(gc.CompetitionID), ReasonForbidden, "judge credential required")
	}

	judge, err := g.storage.GetJudge(ctx, jc.JudgeID)
	if err != nil {
		return nil, err
	}
	if judge.CompetitionID != gc.CompetitionID {
		return nil, g.reject(ctx, gc.Caller, string(gc.CompetitionID), ReasonForbidden, "judge belongs to another competition")
	}
	if !judge.IsActive {
		return nil, model.ErrJudgeInactive
	}
	if judge.Category() != category {
		return nil, fmt.Errorf("%w: judge scores %s", model.ErrJudgeScopeMismatch, judge.Category())
	}
	return judge, nil
}

// AuthorizeTeam loads a team and checks it belongs to the resolved competition
func (g *Guard) AuthorizeTeam(ctx context.Context, gc *Context, teamID model.TeamID) (*model.Team, error) {
	team, err := g.storage.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.CompetitionID != gc.CompetitionID {
		return nil, model.ErrTeamScopeMismatch
	}
	return team, nil
}

func (g *Guard) reject(ctx context.Context, caller Caller, competitionID string, reason Reason, message string) error {
	subject := ""
	if caller != nil {
		subject = caller.Subject()
	}

	g.logger.WarnContext(ctx, "request rejected",
		slog.String("reason", string(reason)),
		slog.String("competition_id", competitionID),
		slog.String("subject", subject),
	)
	g.metrics.GuardRejected(string(reason))

	return &RejectionError{
		Reason:        reason,
		CompetitionID: competitionID,
		Subject:       subject,
		Message:       message,
	}
}
