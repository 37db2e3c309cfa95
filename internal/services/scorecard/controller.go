// Package scorecard runs the scoring write path: judge marks, admin bulk saves
// and unlocks, plus competition-scoped reads and rankings.
package scorecard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/teamscore/internal/dependencies/clock"
	"github.com/mcoot/teamscore/internal/metrics"
	"github.com/mcoot/teamscore/internal/model"
	"github.com/mcoot/teamscore/internal/services/guard"
	"github.com/mcoot/teamscore/internal/services/lock"
	"github.com/mcoot/teamscore/internal/services/ranking"
	"github.com/mcoot/teamscore/internal/services/scoring"
	"github.com/mcoot/teamscore/internal/storage"
)

// Notifier receives committed score changes for fan-out
type Notifier interface {
	ScoreUpdated(record *model.ScoreRecord, player model.PlayerScore, role model.JudgeRole)
	ScoresSaved(record *model.ScoreRecord)
	LockChanged(record *model.ScoreRecord)
}

// MarkInput is one judge mark for one player
type MarkInput struct {
	TeamID   model.TeamID
	PlayerID model.PlayerID
	Category model.Category
	Score    float64
	// Time replaces the player's elapsed time when non-empty
	Time string
}

// MarkResult is the committed state after a judge mark
type MarkResult struct {
	Record *model.ScoreRecord
	Player model.PlayerScore
	Role   model.JudgeRole
	// Locked is true when this mark completed the record
	Locked bool
}

// PlayerInput is one player's row in a bulk save
type PlayerInput struct {
	PlayerID       model.PlayerID
	Time           string
	Marks          model.Marks
	Deduction      float64
	OtherDeduction float64
}

// BulkInput is a full team score sheet for one category
type BulkInput struct {
	TeamID         model.TeamID
	Category       model.Category
	TimeKeeperName string
	ScorerName     string
	Remarks        string
	Players        []PlayerInput
}

// BulkResult is the committed state after a bulk save
type BulkResult struct {
	Record  *model.ScoreRecord
	Created bool
	Locked  bool
}

// Controller applies score writes under the lock rules and announces them
type Controller struct {
	storage  storage.Storage
	guard    *guard.Guard
	notifier Notifier
	clock    clock.Clock
	logger   *slog.Logger
	metrics  *metrics.Recorder
}

// NewController creates a new Controller
func NewController(
	storage storage.Storage,
	guard *guard.Guard,
	notifier Notifier,
	clock clock.Clock,
	logger *slog.Logger,
	recorder *metrics.Recorder,
) *Controller {
	return &Controller{
		storage:  storage,
		guard:    guard,
		notifier: notifier,
		clock:    clock,
		logger:   logger.With(slog.String("component", "scorecard")),
		metrics:  recorder,
	}
}

// SubmitMark records the calling judge's mark for one player, creating the
// team's record on first use
func (c *Controller) SubmitMark(ctx context.Context, gc *guard.Context, in MarkInput) (*MarkResult, error) {
	if err := scoring.ValidateMark(in.Score); err != nil {
		return nil, err
	}
	if err := in.Category.Validate(); err != nil {
		return nil, err
	}

	judge, err := c.guard.AuthorizeJudge(ctx, gc, in.Category)
	if err != nil {
		return nil, err
	}
	team, err := c.guard.AuthorizeTeam(ctx, gc, in.TeamID)
	if err != nil {
		return nil, err
	}
	player, err := categoryPlayer(team, in.PlayerID, in.Category)
	if err != nil {
		return nil, err
	}

	key := model.ScoreKey{CompetitionID: gc.CompetitionID, TeamID: team.ID, Category: in.Category}

	var (
		updated    model.PlayerScore
		transition lock.Transition
	)
	record, _, err := c.storage.MutateScoreRecord(ctx, key, true, func(r *model.ScoreRecord) error {
		if err := lock.Guard(r); err != nil {
			return err
		}
		c.stamp(r, team)

		ps := upsertPlayer(r, player)
		ps.Marks = ps.Marks.With(judge.Role, in.Score)
		if in.Time != "" {
			ps.Time = in.Time
		}
		scoring.Recompute(ps)

		updated = *ps
		transition = lock.Evaluate(r)
		return nil
	})
	if err != nil {
		c.logWriteFailure("submit mark", key, err)
		return nil, err
	}

	c.metrics.MarkSubmitted(string(judge.Role))
	c.notifier.ScoreUpdated(record, updated, judge.Role)

	locked := transition == lock.Locked
	if locked {
		c.metrics.LockTransition(true)
		c.notifier.LockChanged(record)
	}

	c.logger.InfoContext(ctx, "judge mark saved",
		slog.String("score_id", string(record.ID)),
		slog.String("judge_id", string(judge.ID)),
		slog.String("judge_type", string(judge.Role)),
		slog.String("player_id", string(player.ID)),
		slog.Float64("score", in.Score),
		slog.Float64("average", updated.AverageMarks),
		slog.Bool("locked", record.IsLocked),
	)

	return &MarkResult{Record: record, Player: updated, Role: judge.Role, Locked: locked}, nil
}

// BulkSave replaces a team's score sheet for one category
func (c *Controller) BulkSave(ctx context.Context, gc *guard.Context, in BulkInput) (*BulkResult, error) {
	if err := c.guard.RequireAdministrator(ctx, gc); err != nil {
		return nil, err
	}
	if err := in.Category.Validate(); err != nil {
		return nil, err
	}
	team, err := c.guard.AuthorizeTeam(ctx, gc, in.TeamID)
	if err != nil {
		return nil, err
	}

	rows, err := buildRows(team, in.Category, in.Players)
	if err != nil {
		return nil, err
	}

	key := model.ScoreKey{CompetitionID: gc.CompetitionID, TeamID: team.ID, Category: in.Category}

	var transition lock.Transition
	record, created, err := c.storage.MutateScoreRecord(ctx, key, true, func(r *model.ScoreRecord) error {
		if err := lock.Guard(r); err != nil {
			return err
		}
		c.stamp(r, team)

		r.TimeKeeperName = in.TimeKeeperName
		r.ScorerName = in.ScorerName
		r.Remarks = in.Remarks
		r.Scores = make([]model.PlayerScore, len(rows))
		copy(r.Scores, rows)

		transition = lock.Evaluate(r)
		return nil
	})
	if err != nil {
		c.logWriteFailure("bulk save", key, err)
		return nil, err
	}

	c.metrics.BulkSaved(created)
	c.notifier.ScoresSaved(record)

	locked := transition == lock.Locked
	if locked {
		c.metrics.LockTransition(true)
		c.notifier.LockChanged(record)
	}

	c.logger.InfoContext(ctx, "scores saved",
		slog.String("score_id", string(record.ID)),
		slog.String("team_id", string(team.ID)),
		slog.String("category", in.Category.String()),
		slog.Int("players", len(rows)),
		slog.Bool("created", created),
		slog.Bool("locked", record.IsLocked),
	)

	return &BulkResult{Record: record, Created: created, Locked: locked}, nil
}

// Unlock reopens a locked record. Marks are left untouched.
func (c *Controller) Unlock(ctx context.Context, gc *guard.Context, id model.ScoreID) (*model.ScoreRecord, error) {
	if err := c.guard.RequireAdministrator(ctx, gc); err != nil {
		return nil, err
	}

	var wasLocked bool
	record, err := c.storage.MutateScoreRecordByID(ctx, id, func(r *model.ScoreRecord) error {
		if r.CompetitionID != gc.CompetitionID {
			return model.ErrScoreNotFound
		}
		wasLocked = r.IsLocked
		lock.Unlock(r)
		r.UpdatedAt = c.clock.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if wasLocked {
		c.metrics.LockTransition(false)
		c.notifier.LockChanged(record)
	}

	c.logger.InfoContext(ctx, "score record unlocked",
		slog.String("score_id", string(record.ID)),
		slog.String("subject", gc.Caller.Subject()),
		slog.Bool("was_locked", wasLocked),
	)

	return record, nil
}

// Get returns one record of the resolved competition
func (c *Controller) Get(ctx context.Context, gc *guard.Context, id model.ScoreID) (*model.ScoreRecord, error) {
	record, err := c.storage.GetScoreRecordByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.CompetitionID != gc.CompetitionID {
		return nil, model.ErrScoreNotFound
	}
	return record, nil
}

// List returns the resolved competition's records matching the filter
func (c *Controller) List(ctx context.Context, gc *guard.Context, filter model.ScoreFilter) ([]*model.ScoreRecord, error) {
	filter.CompetitionID = gc.CompetitionID
	return c.storage.ListScoreRecords(ctx, filter)
}

// IndividualRanking ranks every player in the matching records
func (c *Controller) IndividualRanking(ctx context.Context, gc *guard.Context, filter model.ScoreFilter) ([]ranking.IndividualEntry, error) {
	records, err := c.List(ctx, gc, filter)
	if err != nil {
		return nil, err
	}
	return ranking.Individual(records), nil
}

// TeamRanking ranks teams by their best final scores in the matching records
func (c *Controller) TeamRanking(ctx context.Context, gc *guard.Context, filter model.ScoreFilter) ([]ranking.TeamEntry, error) {
	records, err := c.List(ctx, gc, filter)
	if err != nil {
		return nil, err
	}
	return ranking.Team(records), nil
}

// stamp fills the creation fields on a fresh record and bumps UpdatedAt
func (c *Controller) stamp(r *model.ScoreRecord, team *model.Team) {
	now := c.clock.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
		r.TeamName = team.Name
	}
	r.UpdatedAt = now
}

func (c *Controller) logWriteFailure(op string, key model.ScoreKey, err error) {
	if errors.Is(err, model.ErrScoreLocked) || errors.Is(err, model.ErrScoreNotFound) {
		return
	}
	c.logger.Error("score write failed",
		slog.String("operation", op),
		slog.String("competition_id", string(key.CompetitionID)),
		slog.String("team_id", string(key.TeamID)),
		slog.String("category", key.Category.String()),
		slog.String("error", err.Error()),
	)
}

// upsertPlayer returns the record's entry for the player, appending one if
// the player has not been scored yet
func upsertPlayer(r *model.ScoreRecord, player *model.Player) *model.PlayerScore {
	for i := range r.Scores {
		if r.Scores[i].PlayerID == player.ID {
			return &r.Scores[i]
		}
	}
	r.Scores = append(r.Scores, model.PlayerScore{
		PlayerID:   player.ID,
		PlayerName: player.Name,
	})
	return &r.Scores[len(r.Scores)-1]
}

// categoryPlayer returns the team member with the given id, provided they
// compete in category
func categoryPlayer(team *model.Team, id model.PlayerID, category model.Category) (*model.Player, error) {
	player := team.GetPlayer(id)
	if player == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrPlayerNotInTeam, id)
	}
	if player.Category() != category {
		return nil, fmt.Errorf("%w: %s competes in %s", model.ErrPlayerScopeMismatch, id, player.Category())
	}
	return player, nil
}

// buildRows validates a bulk sheet against the team and computes each row
func buildRows(team *model.Team, category model.Category, players []PlayerInput) ([]model.PlayerScore, error) {
	seen := make(map[model.PlayerID]bool, len(players))
	rows := make([]model.PlayerScore, 0, len(players))

	for _, in := range players {
		if seen[in.PlayerID] {
			return nil, fmt.Errorf("%w: %s", model.ErrDuplicatePlayer, in.PlayerID)
		}
		seen[in.PlayerID] = true

		player, err := categoryPlayer(team, in.PlayerID, category)
		if err != nil {
			return nil, err
		}
		if err := scoring.ValidateMarks(in.Marks); err != nil {
			return nil, err
		}
		if err := scoring.ValidateDeductions(in.Deduction, in.OtherDeduction); err != nil {
			return nil, err
		}

		row := model.PlayerScore{
			PlayerID:       player.ID,
			PlayerName:     player.Name,
			Time:           in.Time,
			Marks:          in.Marks,
			Deduction:      in.Deduction,
			OtherDeduction: in.OtherDeduction,
		}
		scoring.Recompute(&row)
		rows = append(rows, row)
	}
	return rows, nil
}
