// Package competition manages which admins may act on a competition.
package competition

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mcoot/teamscore/internal/dependencies/clock"
	"github.com/mcoot/teamscore/internal/model"
	"github.com/mcoot/teamscore/internal/services/guard"
	"github.com/mcoot/teamscore/internal/storage"
)

// Service updates competition admin assignments
type Service struct {
	storage storage.Storage
	guard   *guard.Guard
	tracker *guard.Tracker
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new competition Service
func New(storage storage.Storage, g *guard.Guard, tracker *guard.Tracker, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		guard:   g,
		tracker: tracker,
		clock:   clock,
		logger:  logger.With(slog.String("component", "competition")),
	}
}

// SetAssignedAdmins replaces the competition's admin set. Every admin gained
// or lost has their earlier credentials invalidated.
func (s *Service) SetAssignedAdmins(ctx context.Context, gc *guard.Context, adminIDs []model.AccountID) (*model.Competition, error) {
	if err := s.guard.RequireSuperAdmin(ctx, gc); err != nil {
		return nil, err
	}

	next := slices.Clone(adminIDs)
	slices.Sort(next)
	next = slices.Compact(next)

	for _, id := range next {
		account, err := s.storage.GetAccount(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("admin %s: %w", id, err)
		}
		if account.Role != model.AccountAdmin {
			return nil, fmt.Errorf("%w: %s is not an admin account", model.ErrAccountNotFound, id)
		}
	}

	competition, err := s.storage.GetCompetition(ctx, gc.CompetitionID)
	if err != nil {
		return nil, err
	}

	changed := symmetricDifference(competition.AssignedAdmins, next)

	competition.AssignedAdmins = next
	competition.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveCompetition(ctx, competition); err != nil {
		return nil, err
	}

	for _, id := range changed {
		if err := s.tracker.RecordChange(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "failed to record assignment change",
				slog.String("admin_id", string(id)),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
	}

	s.logger.InfoContext(ctx, "competition admins updated",
		slog.String("competition_id", string(competition.ID)),
		slog.Int("admins", len(next)),
		slog.Int("changed", len(changed)),
	)
	return competition, nil
}

// symmetricDifference returns the ids present in exactly one of a and b
func symmetricDifference(a, b []model.AccountID) []model.AccountID {
	var out []model.AccountID
	for _, id := range a {
		if !slices.Contains(b, id) {
			out = append(out, id)
		}
	}
	for _, id := range b {
		if !slices.Contains(a, id) {
			out = append(out, id)
		}
	}
	return out
}
