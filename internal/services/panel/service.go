// Package panel manages the five judge seats of each scoring category.
package panel

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/mcoot/teamscore/internal/dependencies/clock"
	"github.com/mcoot/teamscore/internal/model"
	"github.com/mcoot/teamscore/internal/services/auth"
	"github.com/mcoot/teamscore/internal/services/guard"
	"github.com/mcoot/teamscore/internal/storage"
)

// Assignment fills or updates a judge seat. An empty Password keeps the
// current credential.
type Assignment struct {
	Name     string
	Username string
	Password string
}

// Service manages judge panels
type Service struct {
	storage storage.Storage
	guard   *guard.Guard
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new panel Service
func New(storage storage.Storage, guard *guard.Guard, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		guard:   guard,
		clock:   clock,
		logger:  logger.With(slog.String("component", "panel")),
	}
}

// EnsurePanel creates placeholder seats for any role the category is missing
// and returns the full panel in judge-number order
func (s *Service) EnsurePanel(ctx context.Context, gc *guard.Context, category model.Category) ([]*model.Judge, error) {
	if err := s.guard.RequireAdministrator(ctx, gc); err != nil {
		return nil, err
	}
	if err := category.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.list(ctx, gc.CompetitionID, category)
	if err != nil {
		return nil, err
	}

	filled := make(map[model.JudgeRole]bool, len(existing))
	for _, j := range existing {
		filled[j.Role] = true
	}

	now := s.clock.Now()
	created := 0
	for _, role := range model.JudgeRoles {
		if filled[role] {
			continue
		}
		slot := &model.Judge{
			ID:            model.JudgeID(uuid.NewString()),
			CompetitionID: gc.CompetitionID,
			Gender:        category.Gender,
			AgeGroup:      category.AgeGroup,
			Role:          role,
			JudgeNo:       role.Number(),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.storage.SaveJudge(ctx, slot); err != nil {
			// Another request created the seat first
			if errors.Is(err, model.ErrJudgeSlotTaken) {
				continue
			}
			return nil, err
		}
		created++
	}

	if created > 0 {
		s.logger.InfoContext(ctx, "judge panel created",
			slog.String("competition_id", string(gc.CompetitionID)),
			slog.String("category", category.String()),
			slog.Int("slots_created", created),
		)
	}

	return s.list(ctx, gc.CompetitionID, category)
}

// List returns the competition's judges in the category, or every judge of
// the competition when the category fields are empty
func (s *Service) List(ctx context.Context, gc *guard.Context, gender model.Gender, ageGroup model.AgeGroup) ([]*model.Judge, error) {
	if err := s.guard.RequireAdministrator(ctx, gc); err != nil {
		return nil, err
	}
	return s.list(ctx, gc.CompetitionID, model.Category{Gender: gender, AgeGroup: ageGroup})
}

// Assign sets a seat's name and credentials. The seat becomes active once
// name, username and password are all present.
func (s *Service) Assign(ctx context.Context, gc *guard.Context, id model.JudgeID, a Assignment) (*model.Judge, error) {
	if err := s.guard.RequireAdministrator(ctx, gc); err != nil {
		return nil, err
	}

	judge, err := s.load(ctx, gc, id)
	if err != nil {
		return nil, err
	}

	judge.Name = strings.TrimSpace(a.Name)
	judge.Username = strings.TrimSpace(a.Username)
	if a.Password != "" {
		hash, err := auth.HashPassword(a.Password)
		if err != nil {
			return nil, err
		}
		judge.PasswordHash = hash
	}
	judge.IsActive = judge.Complete()
	judge.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveJudge(ctx, judge); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "judge assigned",
		slog.String("judge_id", string(judge.ID)),
		slog.String("category", judge.Category().String()),
		slog.String("judge_type", string(judge.Role)),
		slog.Bool("active", judge.IsActive),
	)
	return judge, nil
}

// Deactivate stops a judge from signing in or scoring
func (s *Service) Deactivate(ctx context.Context, gc *guard.Context, id model.JudgeID) (*model.Judge, error) {
	if err := s.guard.RequireAdministrator(ctx, gc); err != nil {
		return nil, err
	}

	judge, err := s.load(ctx, gc, id)
	if err != nil {
		return nil, err
	}

	judge.IsActive = false
	judge.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveJudge(ctx, judge); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "judge deactivated", slog.String("judge_id", string(judge.ID)))
	return judge, nil
}

// load fetches a judge of the resolved competition
func (s *Service) load(ctx context.Context, gc *guard.Context, id model.JudgeID) (*model.Judge, error) {
	judge, err := s.storage.GetJudge(ctx, id)
	if err != nil {
		return nil, err
	}
	if judge.CompetitionID != gc.CompetitionID {
		return nil, model.ErrJudgeNotFound
	}
	return judge, nil
}

func (s *Service) list(ctx context.Context, competitionID model.CompetitionID, category model.Category) ([]*model.Judge, error) {
	judges, err := s.storage.ListJudges(ctx, model.JudgeFilter{
		CompetitionID: competitionID,
		Gender:        category.Gender,
		AgeGroup:      category.AgeGroup,
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(judges, func(a, b *model.Judge) int {
		if c := cmp.Compare(a.Gender, b.Gender); c != 0 {
			return c
		}
		if c := cmp.Compare(a.AgeGroup, b.AgeGroup); c != 0 {
			return c
		}
		return cmp.Compare(a.JudgeNo, b.JudgeNo)
	})
	return judges, nil
}
