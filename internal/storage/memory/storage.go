package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/teamscore/internal/dependencies/clock"
	"github.com/mcoot/teamscore/internal/model"
	"github.com/mcoot/teamscore/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on the way in and out so callers never share state.
type Storage struct {
	mu    sync.RWMutex
	clock clock.Clock

	competitions map[model.CompetitionID]*model.Competition
	teams        map[model.TeamID]*model.Team
	accounts     map[model.AccountID]*model.Account
	usernames    map[string]model.AccountID
	judges       map[model.JudgeID]*model.Judge
	scores       map[model.ScoreID]*model.ScoreRecord
	scoreIndex   map[model.ScoreKey]model.ScoreID
	changes      map[model.AccountID]assignmentChange
}

type assignmentChange struct {
	at        time.Time
	expiresAt time.Time
}

// New creates a new in-memory storage instance
func New() *Storage {
	return NewWithClock(clock.New())
}

// NewWithClock creates an in-memory storage that expires entries against clk
func NewWithClock(clk clock.Clock) *Storage {
	return &Storage{
		clock:        clk,
		competitions: make(map[model.CompetitionID]*model.Competition),
		teams:        make(map[model.TeamID]*model.Team),
		accounts:     make(map[model.AccountID]*model.Account),
		usernames:    make(map[string]model.AccountID),
		judges:       make(map[model.JudgeID]*model.Judge),
		scores:       make(map[model.ScoreID]*model.ScoreRecord),
		scoreIndex:   make(map[model.ScoreKey]model.ScoreID),
		changes:      make(map[model.AccountID]assignmentChange),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Competition operations

func (s *Storage) SaveCompetition(ctx context.Context, c *model.Competition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	cp.AssignedAdmins = append([]model.AccountID(nil), c.AssignedAdmins...)
	s.competitions[c.ID] = &cp
	return nil
}

func (s *Storage) GetCompetition(ctx context.Context, id model.CompetitionID) (*model.Competition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.competitions[id]
	if !ok {
		return nil, model.ErrCompetitionNotFound
	}
	cp := *c
	cp.AssignedAdmins = append([]model.AccountID(nil), c.AssignedAdmins...)
	return &cp, nil
}

// Team operations

func (s *Storage) SaveTeam(ctx context.Context, team *model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *team
	cp.Players = append([]model.Player(nil), team.Players...)
	s.teams[team.ID] = &cp
	return nil
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.teams[id]
	if !ok {
		return nil, model.ErrTeamNotFound
	}
	cp := *team
	cp.Players = append([]model.Player(nil), team.Players...)
	return &cp, nil
}

// Account operations

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *account
	s.accounts[account.ID] = &cp
	s.usernames[account.Username] = account.ID
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	cp := *account
	return &cp, nil
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernames[username]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	cp := *account
	return &cp, nil
}

// Judge operations

func (s *Storage) SaveJudge(ctx context.Context, judge *model.Judge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, other := range s.judges {
		if id == judge.ID || other.CompetitionID != judge.CompetitionID {
			continue
		}
		if other.Gender == judge.Gender && other.AgeGroup == judge.AgeGroup && other.Role == judge.Role {
			return model.ErrJudgeSlotTaken
		}
		if judge.Username != "" && other.Username == judge.Username {
			return model.ErrUsernameExists
		}
	}

	cp := *judge
	s.judges[judge.ID] = &cp
	return nil
}

func (s *Storage) GetJudge(ctx context.Context, id model.JudgeID) (*model.Judge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	judge, ok := s.judges[id]
	if !ok {
		return nil, model.ErrJudgeNotFound
	}
	cp := *judge
	return &cp, nil
}

func (s *Storage) GetJudgeByUsername(ctx context.Context, competitionID model.CompetitionID, username string) (*model.Judge, error) {
	if username == "" {
		return nil, model.ErrJudgeNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, judge := range s.judges {
		if judge.CompetitionID == competitionID && judge.Username == username {
			cp := *judge
			return &cp, nil
		}
	}
	return nil, model.ErrJudgeNotFound
}

func (s *Storage) ListJudges(ctx context.Context, filter model.JudgeFilter) ([]*model.Judge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	judges := []*model.Judge{}
	for _, judge := range s.judges {
		if filter.Matches(judge) {
			cp := *judge
			judges = append(judges, &cp)
		}
	}
	return judges, nil
}

// Score record operations

func (s *Storage) GetScoreRecord(ctx context.Context, key model.ScoreKey) (*model.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.scoreIndex[key]
	if !ok {
		return nil, model.ErrScoreNotFound
	}
	return s.scores[id].Clone(), nil
}

func (s *Storage) GetScoreRecordByID(ctx context.Context, id model.ScoreID) (*model.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.scores[id]
	if !ok {
		return nil, model.ErrScoreNotFound
	}
	return record.Clone(), nil
}

func (s *Storage) ListScoreRecords(ctx context.Context, filter model.ScoreFilter) ([]*model.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := []*model.ScoreRecord{}
	for _, record := range s.scores {
		if filter.Matches(record) {
			records = append(records, record.Clone())
		}
	}
	return records, nil
}

func (s *Storage) MutateScoreRecord(ctx context.Context, key model.ScoreKey, create bool, fn storage.MutateFunc) (*model.ScoreRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var working *model.ScoreRecord
	created := false
	if id, ok := s.scoreIndex[key]; ok {
		working = s.scores[id].Clone()
	} else {
		if !create {
			return nil, false, model.ErrScoreNotFound
		}
		working = storage.NewScoreRecord(key)
		created = true
	}

	if err := fn(working); err != nil {
		return nil, false, err
	}

	working.Version++
	s.scores[working.ID] = working
	s.scoreIndex[key] = working.ID
	return working.Clone(), created, nil
}

func (s *Storage) MutateScoreRecordByID(ctx context.Context, id model.ScoreID, fn storage.MutateFunc) (*model.ScoreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.scores[id]
	if !ok {
		return nil, model.ErrScoreNotFound
	}
	working := existing.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	working.Version++
	s.scores[id] = working
	return working.Clone(), nil
}

// Assignment change operations

func (s *Storage) RecordAssignmentChange(ctx context.Context, adminID model.AccountID, at time.Time, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for id, c := range s.changes {
		if !now.Before(c.expiresAt) {
			delete(s.changes, id)
		}
	}

	s.changes[adminID] = assignmentChange{at: at, expiresAt: now.Add(ttl)}
	return nil
}

func (s *Storage) GetAssignmentChange(ctx context.Context, adminID model.AccountID) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.changes[adminID]
	if !ok || !s.clock.Now().Before(c.expiresAt) {
		return time.Time{}, false, nil
	}
	return c.at, true, nil
}

// AssignmentChangeCount returns the number of tracked entries, expired or not
func (s *Storage) AssignmentChangeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.changes)
}
